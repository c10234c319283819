package db

import (
	dbmodels "expense-app-backend/models/db"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func AutoMigrateDB() error {
	DB.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";")
	log.Info("Запуск миграций")
	if err := DB.AutoMigrate(&dbmodels.Company{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры Company")
	}
	if err := DB.AutoMigrate(&dbmodels.User{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры User")
	}
	if err := DB.AutoMigrate(&dbmodels.Expense{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры Expense")
	}
	if err := DB.AutoMigrate(&dbmodels.ApprovalPolicy{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры ApprovalPolicy")
	}
	if err := DB.AutoMigrate(&dbmodels.Approval{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры Approval")
	}
	if err := DB.AutoMigrate(&dbmodels.ApprovalStep{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры ApprovalStep")
	}
	if err := DB.AutoMigrate(&dbmodels.ApprovalAudit{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры ApprovalAudit")
	}
	if err := DB.AutoMigrate(&dbmodels.Notification{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры Notification")
	}
	log.Info("Миграция прошла успешно")
	return nil
}
