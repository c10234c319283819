package initializers

import (
	"expense-app-backend/config"
	"expense-app-backend/db"

	log "github.com/sirupsen/logrus"
)

func InitDBConnection() {
	err := db.Connect(
		config.Conf.Database.Host,
		config.Conf.Database.Port,
		config.Conf.Database.Name,
		config.Conf.Database.User,
		config.Conf.Database.Password,
		*config.Conf.Database.DebugMode,
		*config.Conf.Database.MigrateOnStart,
	)
	if err != nil {
		log.WithError(err).Fatal("Ошибка подключения к БД")
	}
}
