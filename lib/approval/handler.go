package approvalhandler

import (
	"fmt"
	"time"

	"expense-app-backend/db"
	approvalpolicyhandler "expense-app-backend/lib/approval-policy"
	approvalauditstore "expense-app-backend/lib/approval/audit-store"
	approvalstepstore "expense-app-backend/lib/approval/step-store"
	approvalstore "expense-app-backend/lib/approval/store"
	expensestore "expense-app-backend/lib/expense/store"
	notificationhandler "expense-app-backend/lib/notification/handler"
	usersstore "expense-app-backend/lib/users/store"
	"expense-app-backend/models"
	approvalapimodels "expense-app-backend/models/api/approval"
	dbmodels "expense-app-backend/models/db"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Provider interface {
	Submit(actorEmail, companyScope string, data approvalapimodels.SubmitData) (view *approvalapimodels.ApprovalView, hMsg string, err error)
	Approve(actorEmail, companyScope, approvalID string, data approvalapimodels.DecisionData) (view *approvalapimodels.ApprovalView, hMsg string, err error)
	Reject(actorEmail, companyScope, approvalID string, data approvalapimodels.DecisionData) (view *approvalapimodels.ApprovalView, hMsg string, err error)
	MyRequests(actorEmail string) (list []approvalapimodels.ApprovalView, hMsg string, err error)
	ToApprove(actorEmail string) (list []approvalapimodels.ApprovalView, hMsg string, err error)
	Audit(approvalID string) (list []approvalapimodels.AuditView, hMsg string, err error)
	Register(companyScope string) (list []dbmodels.Approval, err error)
	EscalatePendingPastSla() (count int, err error)
	EscalatePendingStepsPastSla() (count int, err error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		gormDB:       db.DB,
		store:        approvalstore.NewInstance(db.DB),
		stepStore:    approvalstepstore.NewInstance(db.DB),
		auditStore:   approvalauditstore.NewInstance(db.DB),
		expenseStore: expensestore.NewInstance(db.DB),
		userStore:    usersstore.NewInstance(db.DB),
		policy:       approvalpolicyhandler.NewHandlerWithTx(db.DB),
		notifier:     notificationhandler.Instance,
	}
}

type impl struct {
	gormDB       *gorm.DB
	store        approvalstore.Provider
	stepStore    approvalstepstore.Provider
	auditStore   approvalauditstore.Provider
	expenseStore expensestore.Provider
	userStore    usersstore.Provider
	policy       approvalpolicyhandler.Provider
	notifier     notificationhandler.Provider
}

func (i impl) withTx(tx *gorm.DB) impl {
	return impl{
		gormDB:       tx,
		store:        approvalstore.NewInstance(tx),
		stepStore:    approvalstepstore.NewInstance(tx),
		auditStore:   approvalauditstore.NewInstance(tx),
		expenseStore: expensestore.NewInstance(tx),
		userStore:    usersstore.NewInstance(tx),
		policy:       approvalpolicyhandler.NewHandlerWithTx(tx),
		notifier:     i.notifier,
	}
}

// Отложенное уведомление, публикуется после фиксации транзакции
type notifyEvent struct {
	userID string
	nType  models.NotificationType
	title  string
	msg    string
	data   string
}

func (i impl) publish(events []notifyEvent) {
	if i.notifier == nil {
		return
	}
	for _, event := range events {
		i.notifier.Publish(event.userID, event.nType, event.title, event.msg, event.data)
	}
}

func (i impl) getLogger(approvalID string) *log.Entry {
	return log.WithField("approval_id", approvalID)
}

func eventData(approvalID, expenseID string) string {
	return fmt.Sprintf(`{"approval_id":%q,"expense_id":%q}`, approvalID, expenseID)
}

// Проверка согласованности области видимости вызова с областью расхода.
// Пустая область - личный режим.
func checkScope(expense dbmodels.Expense, companyScope string) (hMsg string) {
	if expense.IsCompanyScoped() {
		if companyScope == "" || companyScope != *expense.CompanyID {
			return "расход принадлежит другой компании"
		}
		return ""
	}
	if companyScope != "" {
		return "личный расход недоступен в режиме компании"
	}
	return ""
}

func (i impl) Submit(actorEmail, companyScope string, data approvalapimodels.SubmitData) (view *approvalapimodels.ApprovalView, hMsg string, err error) {
	var rec *dbmodels.Approval
	var events []notifyEvent
	err = i.gormDB.Transaction(func(tx *gorm.DB) error {
		h := i.withTx(tx)
		var txErr error
		rec, events, hMsg, txErr = h.submit(actorEmail, companyScope, data)
		return txErr
	})
	if err != nil {
		return nil, "", errors.Wrap(err, "ошибка отправки расхода на согласование")
	}
	if hMsg != "" {
		return nil, hMsg, nil
	}
	i.publish(events)
	converted := approvalapimodels.ApprovalConvert(*rec)
	return &converted, "", nil
}

func (i impl) Approve(actorEmail, companyScope, approvalID string, data approvalapimodels.DecisionData) (view *approvalapimodels.ApprovalView, hMsg string, err error) {
	return i.decideTx(actorEmail, companyScope, approvalID, data.Notes, models.ApprovalStatusApproved)
}

func (i impl) Reject(actorEmail, companyScope, approvalID string, data approvalapimodels.DecisionData) (view *approvalapimodels.ApprovalView, hMsg string, err error) {
	return i.decideTx(actorEmail, companyScope, approvalID, data.Notes, models.ApprovalStatusRejected)
}

func (i impl) decideTx(actorEmail, companyScope, approvalID, notes string, decision models.ApprovalStatus) (view *approvalapimodels.ApprovalView, hMsg string, err error) {
	var rec *dbmodels.Approval
	var events []notifyEvent
	err = i.gormDB.Transaction(func(tx *gorm.DB) error {
		h := i.withTx(tx)
		var txErr error
		rec, events, hMsg, txErr = h.decide(actorEmail, companyScope, approvalID, notes, decision)
		return txErr
	})
	if err != nil {
		return nil, "", errors.Wrap(err, "ошибка обработки решения по согласованию")
	}
	if hMsg != "" {
		return nil, hMsg, nil
	}
	i.publish(events)
	converted := approvalapimodels.ApprovalConvert(*rec)
	return &converted, "", nil
}

// submit - идемпотентная отправка расхода на согласование.
// Повторная отправка того же расхода возвращает существующее согласование без изменений.
func (i impl) submit(actorEmail, companyScope string, data approvalapimodels.SubmitData) (rec *dbmodels.Approval, events []notifyEvent, hMsg string, err error) {
	user, err := i.userStore.GetByEmail(actorEmail)
	if err != nil {
		return nil, nil, "", err
	}
	if user == nil {
		return nil, nil, "пользователь не найден", nil
	}
	expense, err := i.expenseStore.GetByID(data.ExpenseID)
	if err != nil {
		return nil, nil, "", err
	}
	if expense == nil {
		return nil, nil, "расход не найден", nil
	}
	if hMsg = checkScope(*expense, companyScope); hMsg != "" {
		return nil, nil, hMsg, nil
	}
	// отправить на согласование можно только собственный расход
	if expense.OwnerID != user.ID {
		return nil, nil, "расход принадлежит другому пользователю", nil
	}
	existing, err := i.store.GetByExpense(data.ExpenseID)
	if err != nil {
		return nil, nil, "", err
	}
	if existing != nil {
		rec, err = i.store.GetByID(existing.ID)
		if err != nil {
			return nil, nil, "", err
		}
		return rec, nil, "", nil
	}
	var approverID *string
	if data.ApproverID != "" {
		approver, aErr := i.userStore.GetByID(data.ApproverID)
		if aErr != nil {
			return nil, nil, "", aErr
		}
		if approver == nil {
			return nil, nil, "согласующий не найден", nil
		}
		approverID = &approver.ID
	}
	plans, err := i.policy.PlanForAmount(expense.Amount)
	if err != nil {
		return nil, nil, "", err
	}
	now := time.Now()
	newRec := dbmodels.Approval{
		ExpenseID:   expense.ID,
		RequesterID: user.ID,
		ApproverID:  approverID,
		Status:      models.ApprovalStatusPending,
	}
	approvalID, err := i.store.Create(newRec)
	if err != nil {
		return nil, nil, "", err
	}
	var maxDue *time.Time
	for k, plan := range plans {
		dueAt := now.Add(time.Duration(plan.SlaHours) * time.Hour)
		step := dbmodels.ApprovalStep{
			ApprovalID: approvalID,
			StepOrder:  k + 1,
			Role:       plan.Role,
			Status:     models.ApprovalStatusPending,
			SlaDueAt:   &dueAt,
		}
		_, err = i.stepStore.Create(step)
		if err != nil {
			return nil, nil, "", err
		}
		if maxDue == nil || dueAt.After(*maxDue) {
			due := dueAt
			maxDue = &due
		}
	}
	// общий срок согласования - максимальный из сроков шагов
	err = i.store.Update(approvalID, map[string]interface{}{
		"SlaDueAt": maxDue,
	})
	if err != nil {
		return nil, nil, "", err
	}
	err = i.expenseStore.Update(expense.ID, map[string]interface{}{
		"ApprovalStatus": models.ApprovalStatusPending,
		"SubmittedAt":    now,
	})
	if err != nil {
		return nil, nil, "", err
	}
	err = i.recordAudit(approvalID, user.ID, models.AuditActionSubmitted, "")
	if err != nil {
		return nil, nil, "", err
	}
	notifyTo := user.ID
	if approverID != nil {
		notifyTo = *approverID
	}
	events = append(events, notifyEvent{
		userID: notifyTo,
		nType:  models.NotificationApprovalSubmit,
		title:  "Новый расход на согласовании",
		msg:    fmt.Sprintf("Расход на сумму %s %s отправлен на согласование", expense.Amount.StringFixed(2), expense.Currency),
		data:   eventData(approvalID, expense.ID),
	})
	rec, err = i.store.GetByID(approvalID)
	if err != nil {
		return nil, nil, "", err
	}
	return rec, events, "", nil
}

// decide - решение по текущему шагу согласования.
// Одобрение завершает согласование только когда решены все шаги,
// отклонение завершает его сразу, оставшиеся шаги не трогаются.
func (i impl) decide(actorEmail, companyScope, approvalID, notes string, decision models.ApprovalStatus) (rec *dbmodels.Approval, events []notifyEvent, hMsg string, err error) {
	user, err := i.userStore.GetByEmail(actorEmail)
	if err != nil {
		return nil, nil, "", err
	}
	if user == nil {
		return nil, nil, "пользователь не найден", nil
	}
	approval, err := i.store.GetByID(approvalID)
	if err != nil {
		return nil, nil, "", err
	}
	if approval == nil {
		return nil, nil, "согласование не найдено", nil
	}
	expense := approval.Expense
	if expense == nil {
		expense, err = i.expenseStore.GetByID(approval.ExpenseID)
		if err != nil {
			return nil, nil, "", err
		}
		if expense == nil {
			return nil, nil, "расход не найден", nil
		}
	}
	if hMsg = checkScope(*expense, companyScope); hMsg != "" {
		return nil, nil, hMsg, nil
	}
	now := time.Now()
	step := approval.NextActionableStep()
	if step == nil {
		// согласования без шагов решаются напрямую по агрегату
		events, err = i.decideLegacy(approval, expense, user, notes, decision, now)
		if err != nil {
			return nil, nil, "", err
		}
	} else {
		events, err = i.decideStep(approval, expense, step, user, notes, decision, now)
		if err != nil {
			return nil, nil, "", err
		}
	}
	rec, err = i.store.GetByID(approvalID)
	if err != nil {
		return nil, nil, "", err
	}
	return rec, events, "", nil
}

func (i impl) decideLegacy(approval *dbmodels.Approval, expense *dbmodels.Expense, actor *dbmodels.User, notes string, decision models.ApprovalStatus, now time.Time) (events []notifyEvent, err error) {
	updMap := map[string]interface{}{
		"Status": decision,
	}
	if approval.ApproverID == nil {
		updMap["ApproverID"] = actor.ID
	}
	err = i.store.Update(approval.ID, updMap)
	if err != nil {
		return nil, err
	}
	err = i.stampExpense(expense.ID, decision, now)
	if err != nil {
		return nil, err
	}
	action := models.AuditActionApproved
	if decision == models.ApprovalStatusRejected {
		action = models.AuditActionRejected
	}
	err = i.recordAudit(approval.ID, actor.ID, action, notes)
	if err != nil {
		return nil, err
	}
	events = append(events, i.decisionEvent(approval, expense, decision))
	return events, nil
}

func (i impl) decideStep(approval *dbmodels.Approval, expense *dbmodels.Expense, step *dbmodels.ApprovalStep, actor *dbmodels.User, notes string, decision models.ApprovalStatus, now time.Time) (events []notifyEvent, err error) {
	err = i.stepStore.Update(step.ID, map[string]interface{}{
		"ApproverID": actor.ID,
		"Status":     decision,
		"DecidedAt":  now,
		"Notes":      notes,
	})
	if err != nil {
		return nil, err
	}
	step.Status = decision
	action := models.AuditActionApproved
	if decision == models.ApprovalStatusRejected {
		action = models.AuditActionRejected
	}
	err = i.recordAudit(approval.ID, actor.ID, action, notes)
	if err != nil {
		return nil, err
	}
	if decision == models.ApprovalStatusRejected {
		// отклонение любого шага завершает согласование целиком
		err = i.store.Update(approval.ID, map[string]interface{}{
			"Status": models.ApprovalStatusRejected,
		})
		if err != nil {
			return nil, err
		}
		err = i.stampExpense(expense.ID, models.ApprovalStatusRejected, now)
		if err != nil {
			return nil, err
		}
		events = append(events, i.decisionEvent(approval, expense, models.ApprovalStatusRejected))
		return events, nil
	}
	if approval.AllStepsDecided() {
		err = i.store.Update(approval.ID, map[string]interface{}{
			"Status": models.ApprovalStatusApproved,
		})
		if err != nil {
			return nil, err
		}
		err = i.stampExpense(expense.ID, models.ApprovalStatusApproved, now)
		if err != nil {
			return nil, err
		}
		events = append(events, i.decisionEvent(approval, expense, models.ApprovalStatusApproved))
		return events, nil
	}
	events = append(events, notifyEvent{
		userID: approval.RequesterID,
		nType:  models.NotificationApprovalProgress,
		title:  "Согласование продвинулось",
		msg:    fmt.Sprintf("Очередной этап согласования расхода на сумму %s %s пройден", expense.Amount.StringFixed(2), expense.Currency),
		data:   eventData(approval.ID, expense.ID),
	})
	return events, nil
}

func (i impl) decisionEvent(approval *dbmodels.Approval, expense *dbmodels.Expense, decision models.ApprovalStatus) notifyEvent {
	title := "Расход согласован"
	if decision == models.ApprovalStatusRejected {
		title = "Расход отклонен"
	}
	return notifyEvent{
		userID: approval.RequesterID,
		nType:  models.NotificationApprovalDecision,
		title:  title,
		msg:    fmt.Sprintf("Расход на сумму %s %s: %s", expense.Amount.StringFixed(2), expense.Currency, decision.ToHuman()),
		data:   eventData(approval.ID, expense.ID),
	}
}

func (i impl) stampExpense(expenseID string, decision models.ApprovalStatus, now time.Time) error {
	updMap := map[string]interface{}{
		"ApprovalStatus": decision,
	}
	if decision == models.ApprovalStatusApproved {
		updMap["ApprovedAt"] = now
	}
	return i.expenseStore.Update(expenseID, updMap)
}

func (i impl) recordAudit(approvalID, actorID string, action models.AuditAction, notes string) error {
	_, err := i.auditStore.Create(dbmodels.ApprovalAudit{
		ApprovalID: approvalID,
		ActorID:    actorID,
		Action:     action,
		Notes:      notes,
	})
	return err
}

func (i impl) MyRequests(actorEmail string) (list []approvalapimodels.ApprovalView, hMsg string, err error) {
	user, err := i.userStore.GetByEmail(actorEmail)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "пользователь не найден", nil
	}
	recs, err := i.store.ListByRequester(user.ID)
	if err != nil {
		return nil, "", err
	}
	list = make([]approvalapimodels.ApprovalView, 0, len(recs))
	for _, rec := range recs {
		list = append(list, approvalapimodels.ApprovalConvert(rec))
	}
	return list, "", nil
}

func (i impl) ToApprove(actorEmail string) (list []approvalapimodels.ApprovalView, hMsg string, err error) {
	user, err := i.userStore.GetByEmail(actorEmail)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "пользователь не найден", nil
	}
	recs, err := i.store.ListByApprover(user.ID)
	if err != nil {
		return nil, "", err
	}
	list = make([]approvalapimodels.ApprovalView, 0, len(recs))
	for _, rec := range recs {
		list = append(list, approvalapimodels.ApprovalConvert(rec))
	}
	return list, "", nil
}

func (i impl) Audit(approvalID string) (list []approvalapimodels.AuditView, hMsg string, err error) {
	approval, err := i.store.GetByID(approvalID)
	if err != nil {
		return nil, "", err
	}
	if approval == nil {
		return nil, "согласование не найдено", nil
	}
	recs, err := i.auditStore.ListByApproval(approvalID)
	if err != nil {
		return nil, "", err
	}
	list = make([]approvalapimodels.AuditView, 0, len(recs))
	for _, rec := range recs {
		list = append(list, approvalapimodels.AuditConvert(rec))
	}
	return list, "", nil
}

func (i impl) Register(companyScope string) (list []dbmodels.Approval, err error) {
	return i.store.ListByCompany(companyScope)
}

// EscalatePendingPastSla - поиск просроченных согласований с публикацией
// уведомлений и записью эскалации в историю. Операция не идемпотентна,
// повторный запуск по неизменному состоянию эскалирует те же записи.
func (i impl) EscalatePendingPastSla() (count int, err error) {
	recs, err := i.store.ListPendingPastSla(time.Now())
	if err != nil {
		return 0, errors.Wrap(err, "ошибка поиска просроченных согласований")
	}
	for _, rec := range recs {
		logger := i.getLogger(rec.ID)
		err = i.recordAudit(rec.ID, rec.RequesterID, models.AuditActionEscalated, "SLA breached")
		if err != nil {
			logger.WithError(err).Error("ошибка записи эскалации в историю согласования")
			continue
		}
		events := []notifyEvent{}
		if rec.ApproverID != nil {
			events = append(events, notifyEvent{
				userID: *rec.ApproverID,
				nType:  models.NotificationApprovalEscalation,
				title:  "Нарушен срок согласования",
				msg:    "Согласование расхода просрочено и требует решения",
				data:   eventData(rec.ID, rec.ExpenseID),
			})
		}
		events = append(events, notifyEvent{
			userID: rec.RequesterID,
			nType:  models.NotificationApprovalEscalation,
			title:  "Нарушен срок согласования",
			msg:    "Срок согласования вашего расхода истек",
			data:   eventData(rec.ID, rec.ExpenseID),
		})
		i.publish(events)
		count++
	}
	return count, nil
}

// EscalatePendingStepsPastSla - та же проверка на уровне отдельных шагов
func (i impl) EscalatePendingStepsPastSla() (count int, err error) {
	steps, err := i.stepStore.ListPendingPastSla(time.Now())
	if err != nil {
		return 0, errors.Wrap(err, "ошибка поиска просроченных шагов согласования")
	}
	for _, step := range steps {
		approval := step.Approval
		if approval == nil {
			log.WithField("step_id", step.ID).Error("у шага согласования нет родительской записи")
			continue
		}
		logger := i.getLogger(approval.ID)
		err = i.recordAudit(approval.ID, approval.RequesterID, models.AuditActionEscalated, "Step SLA breached")
		if err != nil {
			logger.WithError(err).Error("ошибка записи эскалации в историю согласования")
			continue
		}
		events := []notifyEvent{}
		if step.ApproverID != nil {
			events = append(events, notifyEvent{
				userID: *step.ApproverID,
				nType:  models.NotificationApprovalStepEscalation,
				title:  "Нарушен срок этапа согласования",
				msg:    fmt.Sprintf("Этап %d согласования просрочен и требует решения", step.StepOrder),
				data:   eventData(approval.ID, approval.ExpenseID),
			})
		}
		events = append(events, notifyEvent{
			userID: approval.RequesterID,
			nType:  models.NotificationApprovalStepEscalation,
			title:  "Нарушен срок этапа согласования",
			msg:    fmt.Sprintf("Срок этапа %d согласования вашего расхода истек", step.StepOrder),
			data:   eventData(approval.ID, approval.ExpenseID),
		})
		i.publish(events)
		count++
	}
	return count, nil
}
