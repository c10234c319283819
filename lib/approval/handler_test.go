package approvalhandler

import (
	"fmt"
	"sort"
	"testing"
	"time"

	approvalpolicyhandler "expense-app-backend/lib/approval-policy"
	"expense-app-backend/models"
	approvalapimodels "expense-app-backend/models/api/approval"
	dbmodels "expense-app-backend/models/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type publishedNote struct {
	userID string
	nType  models.NotificationType
	title  string
}

type fixture struct {
	users     map[string]*dbmodels.User
	expenses  map[string]*dbmodels.Expense
	approvals map[string]*dbmodels.Approval
	steps     map[string]*dbmodels.ApprovalStep
	audits    []dbmodels.ApprovalAudit
	notes     []publishedNote
	seq       int
}

func newFixture() *fixture {
	return &fixture{
		users:     map[string]*dbmodels.User{},
		expenses:  map[string]*dbmodels.Expense{},
		approvals: map[string]*dbmodels.Approval{},
		steps:     map[string]*dbmodels.ApprovalStep{},
	}
}

func (f *fixture) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fixture) addUser(email string) *dbmodels.User {
	user := &dbmodels.User{
		FirstName: "Иван",
		LastName:  "Петров",
		Email:     email,
		IsActive:  true,
		Role:      models.UserRoleEmployee,
	}
	user.ID = f.nextID("user")
	f.users[user.ID] = user
	return user
}

func (f *fixture) addExpense(owner *dbmodels.User, amount int64, companyID *string) *dbmodels.Expense {
	expense := &dbmodels.Expense{
		OwnerID:   owner.ID,
		CompanyID: companyID,
		Amount:    decimal.NewFromInt(amount),
		Currency:  "RUB",
	}
	expense.ID = f.nextID("exp")
	f.expenses[expense.ID] = expense
	return expense
}

func (f *fixture) stepsOf(approvalID string) []dbmodels.ApprovalStep {
	list := []dbmodels.ApprovalStep{}
	for _, step := range f.steps {
		if step.ApprovalID == approvalID {
			list = append(list, *step)
		}
	}
	sort.Slice(list, func(a, b int) bool {
		return list[a].StepOrder < list[b].StepOrder
	})
	return list
}

func (f *fixture) auditsOf(approvalID string, action models.AuditAction) []dbmodels.ApprovalAudit {
	list := []dbmodels.ApprovalAudit{}
	for _, rec := range f.audits {
		if rec.ApprovalID == approvalID && rec.Action == action {
			list = append(list, rec)
		}
	}
	return list
}

type fakeApprovalStore struct {
	f *fixture
}

func (s fakeApprovalStore) assemble(rec dbmodels.Approval) *dbmodels.Approval {
	rec.Expense = s.f.expenses[rec.ExpenseID]
	rec.Requester = s.f.users[rec.RequesterID]
	rec.Steps = s.f.stepsOf(rec.ID)
	return &rec
}

func (s fakeApprovalStore) Create(rec dbmodels.Approval) (string, error) {
	rec.ID = s.f.nextID("appr")
	rec.CreatedAt = time.Now()
	stored := rec
	stored.Steps = nil
	s.f.approvals[rec.ID] = &stored
	return rec.ID, nil
}

func (s fakeApprovalStore) GetByID(id string) (*dbmodels.Approval, error) {
	rec, ok := s.f.approvals[id]
	if !ok {
		return nil, nil
	}
	return s.assemble(*rec), nil
}

func (s fakeApprovalStore) GetByExpense(expenseID string) (*dbmodels.Approval, error) {
	for _, rec := range s.f.approvals {
		if rec.ExpenseID == expenseID {
			return s.assemble(*rec), nil
		}
	}
	return nil, nil
}

func (s fakeApprovalStore) Update(id string, updMap map[string]interface{}) error {
	rec, ok := s.f.approvals[id]
	if !ok {
		return nil
	}
	for key, value := range updMap {
		switch key {
		case "Status":
			rec.Status = value.(models.ApprovalStatus)
		case "SlaDueAt":
			rec.SlaDueAt = value.(*time.Time)
		case "ApproverID":
			id := value.(string)
			rec.ApproverID = &id
		}
	}
	return nil
}

func (s fakeApprovalStore) ListByRequester(requesterID string) ([]dbmodels.Approval, error) {
	list := []dbmodels.Approval{}
	for _, rec := range s.f.approvals {
		if rec.RequesterID == requesterID {
			list = append(list, *s.assemble(*rec))
		}
	}
	return list, nil
}

func (s fakeApprovalStore) ListByApprover(approverID string) ([]dbmodels.Approval, error) {
	list := []dbmodels.Approval{}
	for _, rec := range s.f.approvals {
		if rec.ApproverID != nil && *rec.ApproverID == approverID {
			list = append(list, *s.assemble(*rec))
		}
	}
	return list, nil
}

func (s fakeApprovalStore) ListByCompany(companyID string) ([]dbmodels.Approval, error) {
	list := []dbmodels.Approval{}
	for _, rec := range s.f.approvals {
		expense := s.f.expenses[rec.ExpenseID]
		if expense == nil {
			continue
		}
		if companyID == "" && expense.CompanyID == nil {
			list = append(list, *s.assemble(*rec))
		}
		if companyID != "" && expense.CompanyID != nil && *expense.CompanyID == companyID {
			list = append(list, *s.assemble(*rec))
		}
	}
	return list, nil
}

func (s fakeApprovalStore) ListPendingPastSla(moment time.Time) ([]dbmodels.Approval, error) {
	list := []dbmodels.Approval{}
	for _, rec := range s.f.approvals {
		if rec.Status == models.ApprovalStatusPending && rec.SlaDueAt != nil && rec.SlaDueAt.Before(moment) {
			list = append(list, *rec)
		}
	}
	return list, nil
}

type fakeStepStore struct {
	f *fixture
}

func (s fakeStepStore) Create(rec dbmodels.ApprovalStep) (string, error) {
	rec.ID = s.f.nextID("step")
	s.f.steps[rec.ID] = &rec
	return rec.ID, nil
}

func (s fakeStepStore) Update(id string, updMap map[string]interface{}) error {
	rec, ok := s.f.steps[id]
	if !ok {
		return nil
	}
	for key, value := range updMap {
		switch key {
		case "Status":
			rec.Status = value.(models.ApprovalStatus)
		case "ApproverID":
			id := value.(string)
			rec.ApproverID = &id
		case "DecidedAt":
			decidedAt := value.(time.Time)
			rec.DecidedAt = &decidedAt
		case "Notes":
			rec.Notes = value.(string)
		}
	}
	return nil
}

func (s fakeStepStore) ListByApproval(approvalID string) ([]dbmodels.ApprovalStep, error) {
	return s.f.stepsOf(approvalID), nil
}

func (s fakeStepStore) ListPendingPastSla(moment time.Time) ([]dbmodels.ApprovalStep, error) {
	list := []dbmodels.ApprovalStep{}
	for _, rec := range s.f.steps {
		if rec.Status == models.ApprovalStatusPending && rec.SlaDueAt != nil && rec.SlaDueAt.Before(moment) {
			step := *rec
			step.Approval = s.f.approvals[rec.ApprovalID]
			list = append(list, step)
		}
	}
	return list, nil
}

type fakeAuditStore struct {
	f *fixture
}

func (s fakeAuditStore) Create(rec dbmodels.ApprovalAudit) (string, error) {
	rec.ID = s.f.nextID("audit")
	rec.CreatedAt = time.Now()
	s.f.audits = append(s.f.audits, rec)
	return rec.ID, nil
}

func (s fakeAuditStore) ListByApproval(approvalID string) ([]dbmodels.ApprovalAudit, error) {
	list := []dbmodels.ApprovalAudit{}
	for _, rec := range s.f.audits {
		if rec.ApprovalID == approvalID {
			list = append(list, rec)
		}
	}
	return list, nil
}

type fakeExpenseStore struct {
	f *fixture
}

func (s fakeExpenseStore) GetByID(id string) (*dbmodels.Expense, error) {
	rec, ok := s.f.expenses[id]
	if !ok {
		return nil, nil
	}
	return rec, nil
}

func (s fakeExpenseStore) Update(id string, updMap map[string]interface{}) error {
	rec, ok := s.f.expenses[id]
	if !ok {
		return nil
	}
	for key, value := range updMap {
		switch key {
		case "ApprovalStatus":
			rec.ApprovalStatus = value.(models.ApprovalStatus)
		case "SubmittedAt":
			submittedAt := value.(time.Time)
			rec.SubmittedAt = &submittedAt
		case "ApprovedAt":
			approvedAt := value.(time.Time)
			rec.ApprovedAt = &approvedAt
		}
	}
	return nil
}

type fakeUserStore struct {
	f *fixture
}

func (s fakeUserStore) GetByID(id string) (*dbmodels.User, error) {
	rec, ok := s.f.users[id]
	if !ok {
		return nil, nil
	}
	return rec, nil
}

func (s fakeUserStore) GetByEmail(email string) (*dbmodels.User, error) {
	for _, rec := range s.f.users {
		if rec.Email == email {
			return rec, nil
		}
	}
	return nil, nil
}

func (s fakeUserStore) Update(id string, updMap map[string]interface{}) error {
	return nil
}

type fakePolicy struct {
	plans []approvalpolicyhandler.StepPlan
}

func (p fakePolicy) GetDefault() (*dbmodels.ApprovalPolicy, error) {
	return nil, nil
}

func (p fakePolicy) Replace(rulesJSON string) (*dbmodels.ApprovalPolicy, error) {
	return nil, nil
}

func (p fakePolicy) PlanForAmount(amount decimal.Decimal) ([]approvalpolicyhandler.StepPlan, error) {
	return p.plans, nil
}

func (p fakePolicy) PreviewForExpense(expenseID string) ([]approvalpolicyhandler.StepPlan, string, error) {
	return p.plans, "", nil
}

type fakeNotifier struct {
	f *fixture
}

func (n fakeNotifier) Publish(userID string, nType models.NotificationType, title, msg, dataJSON string) {
	n.f.notes = append(n.f.notes, publishedNote{userID: userID, nType: nType, title: title})
}

func (n fakeNotifier) List(userID string) ([]dbmodels.Notification, error) {
	return nil, nil
}

func getInstance(f *fixture, plans []approvalpolicyhandler.StepPlan) impl {
	return impl{
		store:        fakeApprovalStore{f: f},
		stepStore:    fakeStepStore{f: f},
		auditStore:   fakeAuditStore{f: f},
		expenseStore: fakeExpenseStore{f: f},
		userStore:    fakeUserStore{f: f},
		policy:       fakePolicy{plans: plans},
		notifier:     fakeNotifier{f: f},
	}
}

func twoStepPlans() []approvalpolicyhandler.StepPlan {
	return []approvalpolicyhandler.StepPlan{
		{Role: models.ApproverRoleManager, SlaHours: 48},
		{Role: models.ApproverRoleFinance, SlaHours: 24},
	}
}

func TestSubmit(t *testing.T) {
	t.Run(`отправка создает шаги по плану и общий срок по максимальному SLA`, func(t *testing.T) {
		f := newFixture()
		requester := f.addUser("ivan@example.com")
		expense := f.addExpense(requester, 7000, nil)
		i := getInstance(f, twoStepPlans())

		rec, events, hMsg, err := i.submit(requester.Email, "", approvalapimodels.SubmitData{ExpenseID: expense.ID})
		require.Nil(t, err)
		require.Empty(t, hMsg)
		require.NotNil(t, rec)
		require.Equal(t, models.ApprovalStatusPending, rec.Status)
		require.Len(t, rec.Steps, 2)
		require.Equal(t, 1, rec.Steps[0].StepOrder)
		require.Equal(t, models.ApproverRoleManager, rec.Steps[0].Role)
		require.Equal(t, 2, rec.Steps[1].StepOrder)
		require.Equal(t, models.ApproverRoleFinance, rec.Steps[1].Role)

		// первый шаг с SLA 48ч дольше второго с 24ч
		require.NotNil(t, rec.SlaDueAt)
		require.Equal(t, rec.Steps[0].SlaDueAt.Unix(), rec.SlaDueAt.Unix())

		require.Equal(t, models.ApprovalStatusPending, f.expenses[expense.ID].ApprovalStatus)
		require.NotNil(t, f.expenses[expense.ID].SubmittedAt)
		require.Len(t, f.auditsOf(rec.ID, models.AuditActionSubmitted), 1)

		require.Len(t, events, 1)
		require.Equal(t, requester.ID, events[0].userID)
		require.Equal(t, models.NotificationApprovalSubmit, events[0].nType)
	})

	t.Run(`повторная отправка возвращает то же согласование без новых шагов`, func(t *testing.T) {
		f := newFixture()
		requester := f.addUser("ivan@example.com")
		expense := f.addExpense(requester, 7000, nil)
		i := getInstance(f, twoStepPlans())

		first, _, hMsg, err := i.submit(requester.Email, "", approvalapimodels.SubmitData{ExpenseID: expense.ID})
		require.Nil(t, err)
		require.Empty(t, hMsg)

		second, events, hMsg, err := i.submit(requester.Email, "", approvalapimodels.SubmitData{ExpenseID: expense.ID})
		require.Nil(t, err)
		require.Empty(t, hMsg)
		require.Equal(t, first.ID, second.ID)
		require.Len(t, second.Steps, 2)
		require.Empty(t, events)
		require.Len(t, f.auditsOf(first.ID, models.AuditActionSubmitted), 1)
	})

	t.Run(`уведомление уходит согласующему, если он указан`, func(t *testing.T) {
		f := newFixture()
		requester := f.addUser("ivan@example.com")
		approver := f.addUser("boss@example.com")
		expense := f.addExpense(requester, 500, nil)
		i := getInstance(f, twoStepPlans())

		rec, events, hMsg, err := i.submit(requester.Email, "", approvalapimodels.SubmitData{ExpenseID: expense.ID, ApproverID: approver.ID})
		require.Nil(t, err)
		require.Empty(t, hMsg)
		require.NotNil(t, rec.ApproverID)
		require.Equal(t, approver.ID, *rec.ApproverID)
		require.Len(t, events, 1)
		require.Equal(t, approver.ID, events[0].userID)
	})

	t.Run(`чужой расход отправить нельзя`, func(t *testing.T) {
		f := newFixture()
		owner := f.addUser("owner@example.com")
		other := f.addUser("mallory@example.com")
		expense := f.addExpense(owner, 7000, nil)
		i := getInstance(f, twoStepPlans())

		rec, events, hMsg, err := i.submit(other.Email, "", approvalapimodels.SubmitData{ExpenseID: expense.ID})
		require.Nil(t, err)
		require.NotEmpty(t, hMsg)
		require.Nil(t, rec)
		require.Empty(t, events)
		require.Len(t, f.approvals, 0)
		require.Len(t, f.steps, 0)

		// собственный расход при этом отправляется
		rec, _, hMsg, err = i.submit(owner.Email, "", approvalapimodels.SubmitData{ExpenseID: expense.ID})
		require.Nil(t, err)
		require.Empty(t, hMsg)
		require.Equal(t, owner.ID, rec.RequesterID)
	})

	t.Run(`несуществующий расход`, func(t *testing.T) {
		f := newFixture()
		requester := f.addUser("ivan@example.com")
		i := getInstance(f, twoStepPlans())

		_, _, hMsg, err := i.submit(requester.Email, "", approvalapimodels.SubmitData{ExpenseID: "нет такого"})
		require.Nil(t, err)
		require.NotEmpty(t, hMsg)
	})
}

func TestScopeIsolation(t *testing.T) {
	companyA := "company-a"
	companyB := "company-b"

	t.Run(`расход компании недоступен в личном режиме`, func(t *testing.T) {
		f := newFixture()
		requester := f.addUser("ivan@example.com")
		expense := f.addExpense(requester, 100, &companyA)
		i := getInstance(f, twoStepPlans())

		_, _, hMsg, err := i.submit(requester.Email, "", approvalapimodels.SubmitData{ExpenseID: expense.ID})
		require.Nil(t, err)
		require.NotEmpty(t, hMsg)
	})

	t.Run(`личный расход недоступен в режиме компании`, func(t *testing.T) {
		f := newFixture()
		requester := f.addUser("ivan@example.com")
		expense := f.addExpense(requester, 100, nil)
		i := getInstance(f, twoStepPlans())

		_, _, hMsg, err := i.submit(requester.Email, companyA, approvalapimodels.SubmitData{ExpenseID: expense.ID})
		require.Nil(t, err)
		require.NotEmpty(t, hMsg)
	})

	t.Run(`расход одной компании недоступен из другой`, func(t *testing.T) {
		f := newFixture()
		requester := f.addUser("ivan@example.com")
		expense := f.addExpense(requester, 100, &companyA)
		i := getInstance(f, twoStepPlans())

		_, _, hMsg, err := i.submit(requester.Email, companyB, approvalapimodels.SubmitData{ExpenseID: expense.ID})
		require.Nil(t, err)
		require.NotEmpty(t, hMsg)
	})

	t.Run(`решение проверяет область так же, как отправка`, func(t *testing.T) {
		f := newFixture()
		requester := f.addUser("ivan@example.com")
		expense := f.addExpense(requester, 100, &companyA)
		i := getInstance(f, twoStepPlans())

		rec, _, hMsg, err := i.submit(requester.Email, companyA, approvalapimodels.SubmitData{ExpenseID: expense.ID})
		require.Nil(t, err)
		require.Empty(t, hMsg)

		_, _, hMsg, err = i.decide(requester.Email, companyB, rec.ID, "", models.ApprovalStatusApproved)
		require.Nil(t, err)
		require.NotEmpty(t, hMsg)
	})
}

func TestDecide(t *testing.T) {
	t.Run(`одобрение завершает согласование только после всех шагов`, func(t *testing.T) {
		f := newFixture()
		requester := f.addUser("ivan@example.com")
		manager := f.addUser("boss@example.com")
		finance := f.addUser("fin@example.com")
		expense := f.addExpense(requester, 7000, nil)
		i := getInstance(f, twoStepPlans())

		rec, _, _, err := i.submit(requester.Email, "", approvalapimodels.SubmitData{ExpenseID: expense.ID})
		require.Nil(t, err)

		rec, events, hMsg, err := i.decide(manager.Email, "", rec.ID, "ок", models.ApprovalStatusApproved)
		require.Nil(t, err)
		require.Empty(t, hMsg)
		require.Equal(t, models.ApprovalStatusPending, rec.Status)
		require.Equal(t, models.ApprovalStatusApproved, rec.Steps[0].Status)
		require.Equal(t, manager.ID, *rec.Steps[0].ApproverID)
		require.Equal(t, models.ApprovalStatusPending, rec.Steps[1].Status)
		require.Len(t, events, 1)
		require.Equal(t, requester.ID, events[0].userID)
		require.Equal(t, models.NotificationApprovalProgress, events[0].nType)

		rec, events, hMsg, err = i.decide(finance.Email, "", rec.ID, "", models.ApprovalStatusApproved)
		require.Nil(t, err)
		require.Empty(t, hMsg)
		require.Equal(t, models.ApprovalStatusApproved, rec.Status)
		require.Equal(t, models.ApprovalStatusApproved, f.expenses[expense.ID].ApprovalStatus)
		require.NotNil(t, f.expenses[expense.ID].ApprovedAt)
		require.Len(t, events, 1)
		require.Equal(t, models.NotificationApprovalDecision, events[0].nType)
		require.Len(t, f.auditsOf(rec.ID, models.AuditActionApproved), 2)
	})

	t.Run(`отклонение завершает согласование сразу, оставшиеся шаги не трогаются`, func(t *testing.T) {
		f := newFixture()
		requester := f.addUser("ivan@example.com")
		manager := f.addUser("boss@example.com")
		expense := f.addExpense(requester, 7000, nil)
		i := getInstance(f, twoStepPlans())

		rec, _, _, err := i.submit(requester.Email, "", approvalapimodels.SubmitData{ExpenseID: expense.ID})
		require.Nil(t, err)

		rec, events, hMsg, err := i.decide(manager.Email, "", rec.ID, "не положено", models.ApprovalStatusRejected)
		require.Nil(t, err)
		require.Empty(t, hMsg)
		require.Equal(t, models.ApprovalStatusRejected, rec.Status)
		require.Equal(t, models.ApprovalStatusRejected, rec.Steps[0].Status)
		require.Equal(t, "не положено", rec.Steps[0].Notes)
		require.Equal(t, models.ApprovalStatusPending, rec.Steps[1].Status)
		require.Equal(t, models.ApprovalStatusRejected, f.expenses[expense.ID].ApprovalStatus)
		require.Nil(t, f.expenses[expense.ID].ApprovedAt)
		require.Len(t, events, 1)
		require.Equal(t, models.NotificationApprovalDecision, events[0].nType)
		require.Len(t, f.auditsOf(rec.ID, models.AuditActionRejected), 1)
	})

	t.Run(`решение всегда применяется к первому нерешенному шагу`, func(t *testing.T) {
		f := newFixture()
		requester := f.addUser("ivan@example.com")
		manager := f.addUser("boss@example.com")
		expense := f.addExpense(requester, 7000, nil)
		i := getInstance(f, twoStepPlans())

		rec, _, _, err := i.submit(requester.Email, "", approvalapimodels.SubmitData{ExpenseID: expense.ID})
		require.Nil(t, err)

		rec, _, _, err = i.decide(manager.Email, "", rec.ID, "", models.ApprovalStatusApproved)
		require.Nil(t, err)
		require.Equal(t, models.ApprovalStatusApproved, rec.Steps[0].Status)
		require.Equal(t, models.ApprovalStatusPending, rec.Steps[1].Status)
	})

	t.Run(`согласование без шагов решается напрямую по агрегату`, func(t *testing.T) {
		f := newFixture()
		requester := f.addUser("ivan@example.com")
		approver := f.addUser("boss@example.com")
		expense := f.addExpense(requester, 100, nil)
		i := getInstance(f, nil)

		legacy := &dbmodels.Approval{
			ExpenseID:   expense.ID,
			RequesterID: requester.ID,
			Status:      models.ApprovalStatusPending,
		}
		legacy.ID = f.nextID("appr")
		f.approvals[legacy.ID] = legacy

		rec, events, hMsg, err := i.decide(approver.Email, "", legacy.ID, "", models.ApprovalStatusApproved)
		require.Nil(t, err)
		require.Empty(t, hMsg)
		require.Equal(t, models.ApprovalStatusApproved, rec.Status)
		require.NotNil(t, rec.ApproverID)
		require.Equal(t, approver.ID, *rec.ApproverID)
		require.Equal(t, models.ApprovalStatusApproved, f.expenses[expense.ID].ApprovalStatus)
		require.Len(t, events, 1)
		require.Len(t, f.auditsOf(legacy.ID, models.AuditActionApproved), 1)
	})

	t.Run(`несуществующее согласование`, func(t *testing.T) {
		f := newFixture()
		requester := f.addUser("ivan@example.com")
		i := getInstance(f, nil)

		_, _, hMsg, err := i.decide(requester.Email, "", "нет такого", "", models.ApprovalStatusApproved)
		require.Nil(t, err)
		require.NotEmpty(t, hMsg)
	})
}

func TestEscalatePendingPastSla(t *testing.T) {
	t.Run(`эскалируются только просроченные ожидающие согласования`, func(t *testing.T) {
		f := newFixture()
		requester := f.addUser("ivan@example.com")
		approver := f.addUser("boss@example.com")
		i := getInstance(f, nil)

		pastDue := time.Now().Add(-time.Hour)
		futureDue := time.Now().Add(time.Hour)

		overdue := &dbmodels.Approval{
			ExpenseID:   "exp-x",
			RequesterID: requester.ID,
			ApproverID:  &approver.ID,
			Status:      models.ApprovalStatusPending,
			SlaDueAt:    &pastDue,
		}
		overdue.ID = f.nextID("appr")
		f.approvals[overdue.ID] = overdue

		fresh := &dbmodels.Approval{
			ExpenseID:   "exp-y",
			RequesterID: requester.ID,
			Status:      models.ApprovalStatusPending,
			SlaDueAt:    &futureDue,
		}
		fresh.ID = f.nextID("appr")
		f.approvals[fresh.ID] = fresh

		decided := &dbmodels.Approval{
			ExpenseID:   "exp-z",
			RequesterID: requester.ID,
			Status:      models.ApprovalStatusApproved,
			SlaDueAt:    &pastDue,
		}
		decided.ID = f.nextID("appr")
		f.approvals[decided.ID] = decided

		count, err := i.EscalatePendingPastSla()
		require.Nil(t, err)
		require.Equal(t, 1, count)
		require.Len(t, f.auditsOf(overdue.ID, models.AuditActionEscalated), 1)
		require.Len(t, f.auditsOf(fresh.ID, models.AuditActionEscalated), 0)
		require.Len(t, f.auditsOf(decided.ID, models.AuditActionEscalated), 0)

		// уведомляются согласующий и инициатор
		require.Len(t, f.notes, 2)
		require.Equal(t, approver.ID, f.notes[0].userID)
		require.Equal(t, requester.ID, f.notes[1].userID)
		require.Equal(t, models.NotificationApprovalEscalation, f.notes[0].nType)
	})

	t.Run(`повторный запуск эскалирует те же записи`, func(t *testing.T) {
		f := newFixture()
		requester := f.addUser("ivan@example.com")
		i := getInstance(f, nil)

		pastDue := time.Now().Add(-time.Hour)
		overdue := &dbmodels.Approval{
			ExpenseID:   "exp-x",
			RequesterID: requester.ID,
			Status:      models.ApprovalStatusPending,
			SlaDueAt:    &pastDue,
		}
		overdue.ID = f.nextID("appr")
		f.approvals[overdue.ID] = overdue

		count, err := i.EscalatePendingPastSla()
		require.Nil(t, err)
		require.Equal(t, 1, count)
		count, err = i.EscalatePendingPastSla()
		require.Nil(t, err)
		require.Equal(t, 1, count)
		require.Len(t, f.auditsOf(overdue.ID, models.AuditActionEscalated), 2)
	})
}

func TestEscalatePendingStepsPastSla(t *testing.T) {
	t.Run(`эскалация на уровне шагов`, func(t *testing.T) {
		f := newFixture()
		requester := f.addUser("ivan@example.com")
		i := getInstance(f, nil)

		approval := &dbmodels.Approval{
			ExpenseID:   "exp-x",
			RequesterID: requester.ID,
			Status:      models.ApprovalStatusPending,
		}
		approval.ID = f.nextID("appr")
		f.approvals[approval.ID] = approval

		pastDue := time.Now().Add(-time.Hour)
		futureDue := time.Now().Add(time.Hour)
		overdueStep := &dbmodels.ApprovalStep{
			ApprovalID: approval.ID,
			StepOrder:  1,
			Role:       models.ApproverRoleManager,
			Status:     models.ApprovalStatusPending,
			SlaDueAt:   &pastDue,
		}
		overdueStep.ID = f.nextID("step")
		f.steps[overdueStep.ID] = overdueStep

		freshStep := &dbmodels.ApprovalStep{
			ApprovalID: approval.ID,
			StepOrder:  2,
			Role:       models.ApproverRoleFinance,
			Status:     models.ApprovalStatusPending,
			SlaDueAt:   &futureDue,
		}
		freshStep.ID = f.nextID("step")
		f.steps[freshStep.ID] = freshStep

		count, err := i.EscalatePendingStepsPastSla()
		require.Nil(t, err)
		require.Equal(t, 1, count)
		escalations := f.auditsOf(approval.ID, models.AuditActionEscalated)
		require.Len(t, escalations, 1)
		require.Equal(t, "Step SLA breached", escalations[0].Notes)
		require.Len(t, f.notes, 1)
		require.Equal(t, requester.ID, f.notes[0].userID)
		require.Equal(t, models.NotificationApprovalStepEscalation, f.notes[0].nType)
	})

	t.Run(`уведомляется согласующий самого шага, а не согласования`, func(t *testing.T) {
		f := newFixture()
		requester := f.addUser("ivan@example.com")
		legacyApprover := f.addUser("boss@example.com")
		stepApprover := f.addUser("fin@example.com")
		i := getInstance(f, nil)

		approval := &dbmodels.Approval{
			ExpenseID:   "exp-x",
			RequesterID: requester.ID,
			ApproverID:  &legacyApprover.ID,
			Status:      models.ApprovalStatusPending,
		}
		approval.ID = f.nextID("appr")
		f.approvals[approval.ID] = approval

		pastDue := time.Now().Add(-time.Hour)
		withApprover := &dbmodels.ApprovalStep{
			ApprovalID: approval.ID,
			StepOrder:  1,
			Role:       models.ApproverRoleFinance,
			ApproverID: &stepApprover.ID,
			Status:     models.ApprovalStatusPending,
			SlaDueAt:   &pastDue,
		}
		withApprover.ID = f.nextID("step")
		f.steps[withApprover.ID] = withApprover

		count, err := i.EscalatePendingStepsPastSla()
		require.Nil(t, err)
		require.Equal(t, 1, count)
		require.Len(t, f.notes, 2)
		require.Equal(t, stepApprover.ID, f.notes[0].userID)
		require.Equal(t, requester.ID, f.notes[1].userID)
	})

	t.Run(`шаг без согласующего уведомляет только инициатора`, func(t *testing.T) {
		f := newFixture()
		requester := f.addUser("ivan@example.com")
		legacyApprover := f.addUser("boss@example.com")
		i := getInstance(f, nil)

		approval := &dbmodels.Approval{
			ExpenseID:   "exp-x",
			RequesterID: requester.ID,
			ApproverID:  &legacyApprover.ID,
			Status:      models.ApprovalStatusPending,
		}
		approval.ID = f.nextID("appr")
		f.approvals[approval.ID] = approval

		pastDue := time.Now().Add(-time.Hour)
		step := &dbmodels.ApprovalStep{
			ApprovalID: approval.ID,
			StepOrder:  1,
			Role:       models.ApproverRoleManager,
			Status:     models.ApprovalStatusPending,
			SlaDueAt:   &pastDue,
		}
		step.ID = f.nextID("step")
		f.steps[step.ID] = step

		count, err := i.EscalatePendingStepsPastSla()
		require.Nil(t, err)
		require.Equal(t, 1, count)
		require.Len(t, f.notes, 1)
		require.Equal(t, requester.ID, f.notes[0].userID)
	})
}

func TestListings(t *testing.T) {
	t.Run(`мои запросы и согласования на рассмотрении`, func(t *testing.T) {
		f := newFixture()
		requester := f.addUser("ivan@example.com")
		approver := f.addUser("boss@example.com")
		expense := f.addExpense(requester, 7000, nil)
		i := getInstance(f, twoStepPlans())

		_, _, hMsg, err := i.submit(requester.Email, "", approvalapimodels.SubmitData{ExpenseID: expense.ID, ApproverID: approver.ID})
		require.Nil(t, err)
		require.Empty(t, hMsg)

		mine, hMsg, err := i.MyRequests(requester.Email)
		require.Nil(t, err)
		require.Empty(t, hMsg)
		require.Len(t, mine, 1)

		toApprove, hMsg, err := i.ToApprove(approver.Email)
		require.Nil(t, err)
		require.Empty(t, hMsg)
		require.Len(t, toApprove, 1)

		toApprove, hMsg, err = i.ToApprove(requester.Email)
		require.Nil(t, err)
		require.Empty(t, hMsg)
		require.Len(t, toApprove, 0)
	})

	t.Run(`история согласования в хронологическом порядке`, func(t *testing.T) {
		f := newFixture()
		requester := f.addUser("ivan@example.com")
		manager := f.addUser("boss@example.com")
		expense := f.addExpense(requester, 500, nil)
		i := getInstance(f, []approvalpolicyhandler.StepPlan{{Role: models.ApproverRoleManager, SlaHours: 48}})

		rec, _, _, err := i.submit(requester.Email, "", approvalapimodels.SubmitData{ExpenseID: expense.ID})
		require.Nil(t, err)
		_, _, _, err = i.decide(manager.Email, "", rec.ID, "", models.ApprovalStatusApproved)
		require.Nil(t, err)

		audit, hMsg, err := i.Audit(rec.ID)
		require.Nil(t, err)
		require.Empty(t, hMsg)
		require.Len(t, audit, 2)
		require.Equal(t, models.AuditActionSubmitted, audit[0].Action)
		require.Equal(t, models.AuditActionApproved, audit[1].Action)
	})
}
