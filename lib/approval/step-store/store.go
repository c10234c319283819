package approvalstepstore

import (
	"time"

	"expense-app-backend/models"
	dbmodels "expense-app-backend/models/db"

	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.ApprovalStep) (id string, err error)
	Update(id string, updMap map[string]interface{}) error
	ListByApproval(approvalID string) (list []dbmodels.ApprovalStep, err error)
	ListPendingPastSla(moment time.Time) (list []dbmodels.ApprovalStep, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.ApprovalStep) (id string, err error) {
	err = i.db.
		Omit("Approval", "Approver").
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) Update(id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	err := i.db.
		Model(&dbmodels.ApprovalStep{}).
		Where("id = ?", id).
		Updates(updMap).
		Error
	if err != nil {
		return err
	}
	return nil
}

func (i impl) ListByApproval(approvalID string) (list []dbmodels.ApprovalStep, err error) {
	list = []dbmodels.ApprovalStep{}
	err = i.db.
		Where("approval_id = ?", approvalID).
		Order("step_order ASC").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) ListPendingPastSla(moment time.Time) (list []dbmodels.ApprovalStep, err error) {
	list = []dbmodels.ApprovalStep{}
	err = i.db.
		Where("status = ?", models.ApprovalStatusPending).
		Where("sla_due_at IS NOT NULL").
		Where("sla_due_at < ?", moment).
		Preload("Approval").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
