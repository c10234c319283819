package slaworker

import (
	"context"
	"time"

	"expense-app-backend/config"
	approvalhandler "expense-app-backend/lib/approval"
	baseworker "expense-app-backend/lib/utils/base-worker"
	"expense-app-backend/lib/utils/helpers"
)

// StartWorker - периодический обход просроченных согласований и шагов
func StartWorker(ctx context.Context) {
	runInterval := time.Duration(config.Conf.Sla.SweepIntervalInMin) * time.Minute
	i := &impl{
		BaseImpl: *baseworker.NewInstance("ApprovalSlaWorker", 15*time.Second, runInterval),
		handler:  approvalhandler.Instance,
	}
	go i.Run(ctx, i.handle)
}

type impl struct {
	baseworker.BaseImpl
	handler approvalhandler.Provider
}

func (i impl) handle(ctx context.Context) {
	logger := i.GetLogger()
	count, err := i.handler.EscalatePendingPastSla()
	if err != nil {
		logger.WithError(err).Error("Ошибка эскалации просроченных согласований")
	} else if count > 0 {
		logger.WithField("escalated", count).Info("Эскалированы просроченные согласования")
	}
	if helpers.IsContextDone(ctx) {
		return
	}
	count, err = i.handler.EscalatePendingStepsPastSla()
	if err != nil {
		logger.WithError(err).Error("Ошибка эскалации просроченных шагов согласования")
	} else if count > 0 {
		logger.WithField("escalated", count).Info("Эскалированы просроченные шаги согласования")
	}
}
