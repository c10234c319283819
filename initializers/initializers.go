package initializers

import (
	"context"

	"expense-app-backend/config"
	"expense-app-backend/fiberlog"
	approvalhandler "expense-app-backend/lib/approval"
	approvalpolicyhandler "expense-app-backend/lib/approval-policy"
	slaworker "expense-app-backend/lib/approval/sla-worker"
	authhandler "expense-app-backend/lib/auth"
	xlsexport "expense-app-backend/lib/export/xls"
	notificationhandler "expense-app-backend/lib/notification/handler"
)

var LoggerConfig *fiberlog.Config

func InitAllServices(ctx context.Context) {
	LoggerConfig = InitLogger()
	config.InitConfig()
	InitDBConnection()
	InitSmtp()
	authhandler.NewHandler()
	notificationhandler.NewHandler()
	approvalpolicyhandler.NewHandler()
	approvalhandler.NewHandler()
	xlsexport.NewHandler()
	go initWorkers(ctx)
}

func initWorkers(ctx context.Context) {
	if *config.Conf.Sla.WorkerEnabled {
		// Задача эскалации согласований с нарушенным сроком SLA
		slaworker.StartWorker(ctx)
	}
}
