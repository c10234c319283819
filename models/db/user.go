package dbmodels

import (
	"fmt"
	"time"

	"expense-app-backend/models"
)

type User struct {
	BaseModel
	Password           string `gorm:"type:varchar(128)"`
	FirstName          string `gorm:"type:varchar(150)"`
	LastName           string `gorm:"type:varchar(150)"`
	Email              string `gorm:"type:varchar(255);index"`
	IsActive           bool
	CompanyID          *string `gorm:"type:varchar(36);index"`
	Company            *Company
	Role               models.UserRole `gorm:"type:varchar(50)"`
	EmailNotifyEnabled bool
	LastLogin          time.Time
}

func (r User) GetFullName() string {
	return fmt.Sprintf("%s %s", r.FirstName, r.LastName)
}
