package approvalapimodels

import (
	"time"

	"expense-app-backend/models"
	dbmodels "expense-app-backend/models/db"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type SubmitData struct {
	ExpenseID  string `json:"expense_id"`
	ApproverID string `json:"approver_id,omitempty"`
}

func (r SubmitData) Validate() error {
	if r.ExpenseID == "" {
		return errors.New("отсутствует идентификатор расхода")
	}
	return nil
}

type DecisionData struct {
	Notes string `json:"notes,omitempty"`
}

type StepView struct {
	ID           string                `json:"id"`
	StepOrder    int                   `json:"step_order"`
	Role         string                `json:"role"`
	ApproverID   string                `json:"approver_id,omitempty"`
	ApproverName string                `json:"approver_name,omitempty"`
	Status       models.ApprovalStatus `json:"status"`
	SlaDueAt     *time.Time            `json:"sla_due_at,omitempty"`
	DecidedAt    *time.Time            `json:"decided_at,omitempty"`
	Notes        string                `json:"notes,omitempty"`
}

type ApprovalView struct {
	ID            string                `json:"id"`
	ExpenseID     string                `json:"expense_id"`
	Amount        decimal.Decimal       `json:"amount"`
	Currency      string                `json:"currency,omitempty"`
	RequesterID   string                `json:"requester_id"`
	RequesterName string                `json:"requester_name,omitempty"`
	ApproverID    string                `json:"approver_id,omitempty"`
	Status        models.ApprovalStatus `json:"status"`
	SlaDueAt      *time.Time            `json:"sla_due_at,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	Steps         []StepView            `json:"steps"`
}

func StepConvert(rec dbmodels.ApprovalStep) StepView {
	view := StepView{
		ID:        rec.ID,
		StepOrder: rec.StepOrder,
		Role:      rec.Role,
		Status:    rec.Status,
		SlaDueAt:  rec.SlaDueAt,
		DecidedAt: rec.DecidedAt,
		Notes:     rec.Notes,
	}
	if rec.ApproverID != nil {
		view.ApproverID = *rec.ApproverID
	}
	if rec.Approver != nil {
		view.ApproverName = rec.Approver.GetFullName()
	}
	return view
}

func ApprovalConvert(rec dbmodels.Approval) ApprovalView {
	view := ApprovalView{
		ID:          rec.ID,
		ExpenseID:   rec.ExpenseID,
		RequesterID: rec.RequesterID,
		Status:      rec.Status,
		SlaDueAt:    rec.SlaDueAt,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
		Steps:       make([]StepView, 0, len(rec.Steps)),
	}
	if rec.Expense != nil {
		view.Amount = rec.Expense.Amount
		view.Currency = rec.Expense.Currency
	}
	if rec.Requester != nil {
		view.RequesterName = rec.Requester.GetFullName()
	}
	if rec.ApproverID != nil {
		view.ApproverID = *rec.ApproverID
	}
	for _, step := range rec.Steps {
		view.Steps = append(view.Steps, StepConvert(step))
	}
	return view
}

type AuditView struct {
	ID        string             `json:"id"`
	ActorID   string             `json:"actor_id"`
	ActorName string             `json:"actor_name,omitempty"`
	Action    models.AuditAction `json:"action"`
	Notes     string             `json:"notes,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

func AuditConvert(rec dbmodels.ApprovalAudit) AuditView {
	view := AuditView{
		ID:        rec.ID,
		ActorID:   rec.ActorID,
		Action:    rec.Action,
		Notes:     rec.Notes,
		CreatedAt: rec.CreatedAt,
	}
	if rec.Actor != nil {
		view.ActorName = rec.Actor.GetFullName()
	}
	return view
}
