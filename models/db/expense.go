package dbmodels

import (
	"time"

	"expense-app-backend/models"

	"github.com/shopspring/decimal"
)

type Expense struct {
	BaseModel
	OwnerID        string  `gorm:"type:varchar(36);index"`
	Owner          *User   `gorm:"foreignKey:OwnerID"`
	CompanyID      *string `gorm:"type:varchar(36);index"`
	Company        *Company
	Amount         decimal.Decimal `gorm:"type:numeric(14,2)"`
	Currency       string          `gorm:"type:varchar(3)"`
	Description    string
	ApprovalStatus models.ApprovalStatus `gorm:"type:varchar(20)"`
	SubmittedAt    *time.Time
	ApprovedAt     *time.Time
}

// IsCompanyScoped - расход компании, а не личный
func (r Expense) IsCompanyScoped() bool {
	return r.CompanyID != nil && *r.CompanyID != ""
}
