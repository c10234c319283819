package approvalapimodels

import (
	"encoding/json"
	"time"

	dbmodels "expense-app-backend/models/db"

	"github.com/pkg/errors"
)

// StepPlanView - один шаг плана согласования, вычисленного политикой
type StepPlanView struct {
	Role     string `json:"role"`
	SlaHours int    `json:"sla_hours"`
}

type PolicyView struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Rules     json.RawMessage `json:"rules"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func PolicyConvert(rec dbmodels.ApprovalPolicy) PolicyView {
	return PolicyView{
		ID:        rec.ID,
		Name:      rec.Name,
		Rules:     json.RawMessage(rec.RulesJSON),
		UpdatedAt: rec.UpdatedAt,
	}
}

// PolicyUpdateData - замена набора правил целиком.
// Правила принимаются как сырой json, разбор отложен до вычисления плана.
type PolicyUpdateData struct {
	Rules json.RawMessage `json:"rules"`
}

func (r PolicyUpdateData) Validate() error {
	if len(r.Rules) == 0 {
		return errors.New("отсутствует набор правил")
	}
	return nil
}
