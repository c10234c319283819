package models

// NotificationType - код события для публикации уведомления
type NotificationType string

const (
	NotificationApprovalSubmit         NotificationType = "APPROVAL_SUBMIT"
	NotificationApprovalDecision       NotificationType = "APPROVAL_DECISION"
	NotificationApprovalProgress       NotificationType = "APPROVAL_PROGRESS"
	NotificationApprovalEscalation     NotificationType = "APPROVAL_ESCALATION"
	NotificationApprovalStepEscalation NotificationType = "APPROVAL_STEP_ESCALATION"
)
