package dbmodels

// ApprovalPolicy - именованный набор правил согласования.
// Правила хранятся как сырой jsonb, разбор выполняется при вычислении плана.
type ApprovalPolicy struct {
	BaseModel
	Name      string `gorm:"type:varchar(120);uniqueIndex"`
	RulesJSON string `gorm:"type:jsonb"`
}
