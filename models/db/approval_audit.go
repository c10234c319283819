package dbmodels

import "expense-app-backend/models"

// ApprovalAudit - журнал действий по согласованию, только добавление.
type ApprovalAudit struct {
	BaseModel
	ApprovalID string `gorm:"type:varchar(36);index"`
	ActorID    string `gorm:"type:varchar(36)"`
	Actor      *User  `gorm:"foreignKey:ActorID"`
	Action     models.AuditAction `gorm:"type:varchar(20)"`
	Notes      string
}
