package dbmodels

import "expense-app-backend/models"

type Notification struct {
	BaseModel
	UserID string                  `gorm:"type:varchar(36);index:idx_notification_user"`
	Type   models.NotificationType `gorm:"type:varchar(40);index:idx_notification_type"`
	Title  string
	Msg    string
	Data   string `gorm:"type:jsonb"`
}
