package dbmodels

import (
	"time"

	"expense-app-backend/models"
)

// Approval - агрегат согласования одного расхода.
// Общий статус и общий срок SLA (максимальный из сроков шагов, фиксируется при отправке).
type Approval struct {
	BaseModel
	ExpenseID   string `gorm:"type:varchar(36);index"`
	Expense     *Expense
	RequesterID string  `gorm:"type:varchar(36);index"`
	Requester   *User   `gorm:"foreignKey:RequesterID"`
	ApproverID  *string `gorm:"type:varchar(36);index"`
	Approver    *User   `gorm:"foreignKey:ApproverID"`
	Status      models.ApprovalStatus `gorm:"type:varchar(20)"`
	SlaDueAt    *time.Time
	Steps       []ApprovalStep `gorm:"foreignKey:ApprovalID"`
}

// NextActionableStep - первый шаг в порядке следования, который еще не решен.
// Шаги считаются упорядоченными по StepOrder.
func (r Approval) NextActionableStep() *ApprovalStep {
	var next *ApprovalStep
	for k := range r.Steps {
		step := &r.Steps[k]
		if step.Status != models.ApprovalStatusPending {
			continue
		}
		if next == nil || step.StepOrder < next.StepOrder {
			next = step
		}
	}
	return next
}

func (r Approval) AllStepsDecided() bool {
	for _, step := range r.Steps {
		if step.Status == models.ApprovalStatusPending {
			return false
		}
	}
	return true
}
