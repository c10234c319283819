package models

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "PENDING"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusRejected ApprovalStatus = "REJECTED"
)

var approvalStatusHumanName = map[ApprovalStatus]string{
	ApprovalStatusPending:  "На согласовании",
	ApprovalStatusApproved: "Согласован",
	ApprovalStatusRejected: "Отклонен",
}

func (r ApprovalStatus) ToHuman() string {
	if human, exist := approvalStatusHumanName[r]; exist {
		return human
	}
	return string(r)
}

func (r ApprovalStatus) IsDecided() bool {
	return r == ApprovalStatusApproved || r == ApprovalStatusRejected
}

type AuditAction string

const (
	AuditActionSubmitted AuditAction = "SUBMITTED"
	AuditActionApproved  AuditAction = "APPROVED"
	AuditActionRejected  AuditAction = "REJECTED"
	AuditActionEscalated AuditAction = "ESCALATED"
)

var auditActionHumanName = map[AuditAction]string{
	AuditActionSubmitted: "Отправлен на согласование",
	AuditActionApproved:  "Согласован",
	AuditActionRejected:  "Отклонен",
	AuditActionEscalated: "Эскалация",
}

func (r AuditAction) ToHuman() string {
	if human, exist := auditActionHumanName[r]; exist {
		return human
	}
	return string(r)
}

// Роли согласующих из политики. Свободные метки, не справочник.
const (
	ApproverRoleManager = "MANAGER"
	ApproverRoleFinance = "FINANCE"
)

const (
	// DefaultPolicyName - имя единственной активной политики согласования
	DefaultPolicyName = "Default"
	// DefaultPolicyRulesJSON - правила, создаваемые при первом обращении к политике
	DefaultPolicyRulesJSON = `{"thresholds":[{"amount":1000,"approverRole":"MANAGER","slaHours":48},{"amount":5000,"approverRole":"FINANCE","slaHours":24}]}`
	// DefaultStepSlaHours - SLA шага по умолчанию
	DefaultStepSlaHours = 48
)
