package dbmodels

import (
	"time"

	"expense-app-backend/models"
)

// ApprovalStep - этап согласования. Порядок этапов назначается при отправке
// по плану политики и не меняется.
type ApprovalStep struct {
	BaseModel
	ApprovalID string    `gorm:"type:varchar(36);index"`
	Approval   *Approval `gorm:"foreignKey:ApprovalID"`
	StepOrder  int
	Role       string  `gorm:"type:varchar(40)"`
	ApproverID *string `gorm:"type:varchar(36)"`
	Approver   *User   `gorm:"foreignKey:ApproverID"`
	Status     models.ApprovalStatus `gorm:"type:varchar(20)"`
	SlaDueAt   *time.Time
	DecidedAt  *time.Time
	Notes      string
}
