package notificationstore

import (
	"time"

	"expense-app-backend/models"
	dbmodels "expense-app-backend/models/db"

	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.Notification) error
	CountRecent(userID string, nType models.NotificationType, title string, since time.Time) (count int64, err error)
	List(userID string) (list []dbmodels.Notification, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.Notification) error {
	return i.db.
		Save(&rec).
		Error
}

func (i impl) CountRecent(userID string, nType models.NotificationType, title string, since time.Time) (count int64, err error) {
	err = i.db.
		Model(&dbmodels.Notification{}).
		Where("user_id = ?", userID).
		Where("type = ?", nType).
		Where("title = ?", title).
		Where("created_at >= ?", since).
		Count(&count).
		Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (i impl) List(userID string) (list []dbmodels.Notification, err error) {
	list = []dbmodels.Notification{}
	err = i.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
