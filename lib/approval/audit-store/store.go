package approvalauditstore

import (
	dbmodels "expense-app-backend/models/db"

	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.ApprovalAudit) (id string, err error)
	ListByApproval(approvalID string) (list []dbmodels.ApprovalAudit, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.ApprovalAudit) (id string, err error) {
	err = i.db.
		Omit("Actor").
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) ListByApproval(approvalID string) (list []dbmodels.ApprovalAudit, err error) {
	list = []dbmodels.ApprovalAudit{}
	err = i.db.
		Where("approval_id = ?", approvalID).
		Order("created_at ASC").
		Preload("Actor").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
