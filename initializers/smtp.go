package initializers

import (
	"expense-app-backend/config"
	"expense-app-backend/lib/smtp"

	log "github.com/sirupsen/logrus"
)

func InitSmtp() {
	err := smtp.Connect(config.Conf.Smtp.User, config.Conf.Smtp.Password,
		config.Conf.Smtp.Host, config.Conf.Smtp.Port, *config.Conf.Smtp.TLSEnabled)
	if err != nil {
		log.WithError(err).Fatal("Ошибка подключения к smtp серверу")
	}
}
