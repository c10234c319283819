package approvalstore

import (
	"time"

	"expense-app-backend/models"
	dbmodels "expense-app-backend/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.Approval) (id string, err error)
	GetByID(id string) (rec *dbmodels.Approval, err error)
	GetByExpense(expenseID string) (rec *dbmodels.Approval, err error)
	Update(id string, updMap map[string]interface{}) error
	ListByRequester(requesterID string) (list []dbmodels.Approval, err error)
	ListByApprover(approverID string) (list []dbmodels.Approval, err error)
	ListByCompany(companyID string) (list []dbmodels.Approval, err error)
	ListPendingPastSla(moment time.Time) (list []dbmodels.Approval, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.Approval) (id string, err error) {
	err = i.db.
		Omit("Expense", "Requester", "Approver", "Steps").
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(id string) (*dbmodels.Approval, error) {
	rec := dbmodels.Approval{}
	err := i.db.
		Where("id = ?", id).
		Preload("Expense").
		Preload("Requester").
		Preload("Steps", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("step_order ASC")
		}).
		Preload("Steps.Approver").
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) GetByExpense(expenseID string) (*dbmodels.Approval, error) {
	rec := dbmodels.Approval{}
	err := i.db.
		Where("expense_id = ?", expenseID).
		Preload("Expense").
		Preload("Steps", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("step_order ASC")
		}).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) Update(id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	err := i.db.
		Model(&dbmodels.Approval{}).
		Where("id = ?", id).
		Updates(updMap).
		Error
	if err != nil {
		return err
	}
	return nil
}

func (i impl) ListByRequester(requesterID string) (list []dbmodels.Approval, err error) {
	list = []dbmodels.Approval{}
	err = i.db.
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Preload("Expense").
		Preload("Steps", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("step_order ASC")
		}).
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) ListByApprover(approverID string) (list []dbmodels.Approval, err error) {
	list = []dbmodels.Approval{}
	err = i.db.
		Where("approver_id = ?", approverID).
		Order("created_at DESC").
		Preload("Expense").
		Preload("Requester").
		Preload("Steps", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("step_order ASC")
		}).
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) ListByCompany(companyID string) (list []dbmodels.Approval, err error) {
	list = []dbmodels.Approval{}
	tx := i.db.
		Joins("JOIN expenses ON expenses.id = approvals.expense_id")
	if companyID == "" {
		tx = tx.Where("expenses.company_id IS NULL")
	} else {
		tx = tx.Where("expenses.company_id = ?", companyID)
	}
	err = tx.
		Order("approvals.created_at DESC").
		Preload("Expense").
		Preload("Requester").
		Preload("Approver").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) ListPendingPastSla(moment time.Time) (list []dbmodels.Approval, err error) {
	list = []dbmodels.Approval{}
	err = i.db.
		Where("status = ?", models.ApprovalStatusPending).
		Where("sla_due_at IS NOT NULL").
		Where("sla_due_at < ?", moment).
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
