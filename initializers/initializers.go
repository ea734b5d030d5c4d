package initializers

import (
	"context"

	"approvals-backend/config"
	"approvals-backend/fiberlog"
	approvalhandler "approvals-backend/lib/approval"
	"approvals-backend/lib/approval/notifier"
	authhandler "approvals-backend/lib/auth"
	xlsexport "approvals-backend/lib/export/xls"
)

var LoggerConfig *fiberlog.Config

func InitAllServices(ctx context.Context) {
	LoggerConfig = InitLogger()
	config.InitConfig()
	InitDBConnection()
	InitTelemetry(ctx)
	InitSmtp()
	xlsexport.NewHandler()
	notifier.NewProvider(config.Conf.Approvals.ExternalURL)
	authhandler.NewHandler()
	approvalhandler.NewHandler()
}
