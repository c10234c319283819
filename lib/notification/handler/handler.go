package notificationhandler

import (
	"time"

	"expense-app-backend/config"
	"expense-app-backend/db"
	notificationstore "expense-app-backend/lib/notification/store"
	"expense-app-backend/lib/smtp"
	usersstore "expense-app-backend/lib/users/store"
	"expense-app-backend/models"
	dbmodels "expense-app-backend/models/db"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Окно подавления повторных уведомлений одного типа для пользователя
const dedupWindow = 2 * time.Minute

type Provider interface {
	Publish(userID string, nType models.NotificationType, title, msg, dataJSON string)
	List(userID string) (list []dbmodels.Notification, err error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store:     notificationstore.NewInstance(db.DB),
		userStore: usersstore.NewInstance(db.DB),
	}
}

func NewHandlerWithTx(tx *gorm.DB) Provider {
	return impl{
		store:     notificationstore.NewInstance(tx),
		userStore: usersstore.NewInstance(tx),
	}
}

type impl struct {
	store     notificationstore.Provider
	userStore usersstore.Provider
}

func (i impl) getLogger(userID string, nType models.NotificationType) *log.Entry {
	logger := log.
		WithField("user_id", userID).
		WithField("notification_type", nType)
	return logger
}

// Publish - отправка уведомления пользователю.
// Ошибки не возвращаются вызывающему, бизнес-операция не должна падать из-за уведомлений.
func (i impl) Publish(userID string, nType models.NotificationType, title, msg, dataJSON string) {
	logger := i.getLogger(userID, nType)
	count, err := i.store.CountRecent(userID, nType, title, time.Now().Add(-dedupWindow))
	if err != nil {
		logger.WithError(err).Error("ошибка проверки повторных уведомлений")
		return
	}
	if count > 0 {
		logger.Debug("уведомление подавлено как повторное")
		return
	}
	rec := dbmodels.Notification{
		UserID: userID,
		Type:   nType,
		Title:  title,
		Msg:    msg,
		Data:   dataJSON,
	}
	err = i.store.Create(rec)
	if err != nil {
		logger.WithError(err).Error("ошибка сохранения уведомления")
		return
	}
	user, err := i.userStore.GetByID(userID)
	if err != nil {
		logger.WithError(err).Error("ошибка получения пользователя")
		return
	}
	if user == nil {
		logger.Error("пользователь не найден")
		return
	}
	if !user.EmailNotifyEnabled || user.Email == "" {
		return
	}
	err = smtp.Instance.SendEMail(config.Conf.Smtp.User, user.Email, msg, title)
	if err != nil {
		logger.WithError(err).Error("ошибка отправки письма с уведомлением")
	}
}

func (i impl) List(userID string) (list []dbmodels.Notification, err error) {
	return i.store.List(userID)
}
