package approvalpolicyhandler

import (
	"encoding/json"
	"sort"
	"time"

	"expense-app-backend/db"
	approvalpolicystore "expense-app-backend/lib/approval-policy/store"
	expensestore "expense-app-backend/lib/expense/store"
	"expense-app-backend/models"
	dbmodels "expense-app-backend/models/db"

	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StepPlan - требуемый шаг согласования для суммы расхода
type StepPlan struct {
	Role     string
	SlaHours int
}

type Provider interface {
	GetDefault() (rec *dbmodels.ApprovalPolicy, err error)
	Replace(rulesJSON string) (rec *dbmodels.ApprovalPolicy, err error)
	PlanForAmount(amount decimal.Decimal) (plans []StepPlan, err error)
	PreviewForExpense(expenseID string) (plans []StepPlan, hMsg string, err error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store:        approvalpolicystore.NewInstance(db.DB),
		expenseStore: expensestore.NewInstance(db.DB),
	}
}

func NewHandlerWithTx(tx *gorm.DB) Provider {
	return impl{
		store:        approvalpolicystore.NewInstance(tx),
		expenseStore: expensestore.NewInstance(tx),
	}
}

type impl struct {
	store        approvalpolicystore.Provider
	expenseStore expensestore.Provider
}

type policyThreshold struct {
	Amount       decimal.Decimal `json:"amount"`
	ApproverRole string          `json:"approverRole"`
	SlaHours     int             `json:"slaHours"`
}

type policyRules struct {
	Thresholds []policyThreshold `json:"thresholds"`
}

// GetDefault - политика создается при первом обращении с правилами по умолчанию
func (i impl) GetDefault() (*dbmodels.ApprovalPolicy, error) {
	rec, err := i.store.GetByName(models.DefaultPolicyName)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		return rec, nil
	}
	newRec := dbmodels.ApprovalPolicy{
		Name:      models.DefaultPolicyName,
		RulesJSON: models.DefaultPolicyRulesJSON,
	}
	id, err := i.store.Create(newRec)
	if err != nil {
		return nil, err
	}
	newRec.ID = id
	log.WithField("policy_name", models.DefaultPolicyName).
		Info("создана политика согласования по умолчанию")
	return &newRec, nil
}

func (i impl) Replace(rulesJSON string) (*dbmodels.ApprovalPolicy, error) {
	rec, err := i.GetDefault()
	if err != nil {
		return nil, err
	}
	var rules policyRules
	if err := json.Unmarshal([]byte(rulesJSON), &rules); err != nil {
		// некорректный набор сохраняем, при вычислении плана сработает резервная политика
		log.WithField("policy_name", rec.Name).
			WithError(err).
			Warn("сохранен нечитаемый набор правил политики")
	}
	updMap := map[string]interface{}{
		"RulesJSON": rulesJSON,
	}
	err = i.store.Update(rec.ID, updMap)
	if err != nil {
		return nil, err
	}
	rec.RulesJSON = rulesJSON
	rec.UpdatedAt = time.Now()
	return rec, nil
}

// PlanForAmount - вычисление плана согласования по сумме.
// Пороги накопительные: шаг добавляется за каждый порог, не превышающий сумму,
// в порядке возрастания порога. Ошибка разбора правил не прерывает вычисление.
func (i impl) PlanForAmount(amount decimal.Decimal) ([]StepPlan, error) {
	rec, err := i.GetDefault()
	if err != nil {
		return nil, err
	}
	var rules policyRules
	if err := json.Unmarshal([]byte(rec.RulesJSON), &rules); err != nil {
		log.WithField("policy_name", rec.Name).
			WithError(err).
			Warn("набор правил политики не разобран, применена резервная политика")
		return fallbackPlans(amount), nil
	}
	thresholds := rules.Thresholds
	sort.SliceStable(thresholds, func(a, b int) bool {
		return thresholds[a].Amount.LessThan(thresholds[b].Amount)
	})
	plans := make([]StepPlan, 0, len(thresholds))
	for _, threshold := range thresholds {
		if amount.LessThan(threshold.Amount) {
			continue
		}
		plan := StepPlan{
			Role:     threshold.ApproverRole,
			SlaHours: threshold.SlaHours,
		}
		if plan.Role == "" {
			plan.Role = models.ApproverRoleManager
		}
		if plan.SlaHours <= 0 {
			plan.SlaHours = models.DefaultStepSlaHours
		}
		plans = append(plans, plan)
	}
	if len(plans) == 0 {
		plans = append(plans, StepPlan{Role: models.ApproverRoleManager, SlaHours: models.DefaultStepSlaHours})
	}
	return plans, nil
}

func (i impl) PreviewForExpense(expenseID string) (plans []StepPlan, hMsg string, err error) {
	expense, err := i.expenseStore.GetByID(expenseID)
	if err != nil {
		return nil, "", err
	}
	if expense == nil {
		return nil, "расход не найден", nil
	}
	plans, err = i.PlanForAmount(expense.Amount)
	if err != nil {
		return nil, "", err
	}
	return plans, "", nil
}

// Фиксированная резервная политика на случай нечитаемых правил
func fallbackPlans(amount decimal.Decimal) []StepPlan {
	if amount.GreaterThan(decimal.NewFromInt(5000)) {
		return []StepPlan{
			{Role: models.ApproverRoleManager, SlaHours: 48},
			{Role: models.ApproverRoleFinance, SlaHours: 24},
		}
	}
	return []StepPlan{
		{Role: models.ApproverRoleManager, SlaHours: 48},
	}
}
