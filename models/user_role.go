package models

type UserRole string

const (
	UserRoleEmployee UserRole = "EMPLOYEE"
	UserRoleManager  UserRole = "MANAGER"
	UserRoleFinance  UserRole = "FINANCE"
	UserRoleAdmin    UserRole = "ADMIN"
)

var roleHumanName = map[UserRole]string{
	UserRoleEmployee: "Сотрудник",
	UserRoleManager:  "Руководитель",
	UserRoleFinance:  "Финансовый отдел",
	UserRoleAdmin:    "Администратор",
}

func (r UserRole) ToHuman() string {
	if human, exist := roleHumanName[r]; exist {
		return human
	}
	return string(r)
}

func (r UserRole) IsAdmin() bool {
	return r == UserRoleAdmin
}
