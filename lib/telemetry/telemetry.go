package telemetry

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	OperationTypeKey = attribute.Key("approval.operation_type")
	OperationStatus  = attribute.Key("approval.operation_status")
	ActivityTypeKey  = attribute.Key("user.activity_type")
	ErrorTypeKey     = attribute.Key("error.type")
	ComponentKey     = attribute.Key("error.component")
	SeverityKey      = attribute.Key("error.severity")
)

const (
	StatusSuccess = "success"
	StatusFail    = "fail"

	SeverityError = "error"

	ComponentApprovals = "approvals"
	ComponentUsers     = "users"
)

// Provider отправляет операционные метрики, сбои отправки не влияют на
// результат бизнес-операции
type Provider interface {
	TrackApprovalOperation(operationType, status string, duration time.Duration)
	TrackUserActivity(activityType, status string)
	TrackError(errorType, component, severity string)
}

var Instance Provider = noopImpl{}

func NewHandler() {
	meter := otel.Meter("approvals-backend")
	instance := &impl{}
	var err error
	instance.operations, err = meter.Int64Counter("approvals.operations.total",
		metric.WithDescription("Количество операций над заявками"))
	if err != nil {
		log.WithError(err).Error("ошибка создания счетчика операций")
		return
	}
	instance.processingTime, err = meter.Float64Histogram("approvals.processing.duration",
		metric.WithDescription("Длительность обработки заявки"),
		metric.WithUnit("s"))
	if err != nil {
		log.WithError(err).Error("ошибка создания гистограммы длительности обработки")
		return
	}
	instance.activities, err = meter.Int64Counter("users.activities.total",
		metric.WithDescription("Количество действий пользователей"))
	if err != nil {
		log.WithError(err).Error("ошибка создания счетчика действий пользователей")
		return
	}
	instance.errorCounter, err = meter.Int64Counter("errors.total",
		metric.WithDescription("Количество ошибок по компонентам"))
	if err != nil {
		log.WithError(err).Error("ошибка создания счетчика ошибок")
		return
	}
	Instance = instance
}

type impl struct {
	operations     metric.Int64Counter
	processingTime metric.Float64Histogram
	activities     metric.Int64Counter
	errorCounter   metric.Int64Counter
}

func (i *impl) TrackApprovalOperation(operationType, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		OperationTypeKey.String(operationType),
		OperationStatus.String(status),
	)
	i.operations.Add(context.Background(), 1, attrs)
	i.processingTime.Record(context.Background(), duration.Seconds(), attrs)
}

func (i *impl) TrackUserActivity(activityType, status string) {
	i.activities.Add(context.Background(), 1, metric.WithAttributes(
		ActivityTypeKey.String(activityType),
		OperationStatus.String(status),
	))
}

func (i *impl) TrackError(errorType, component, severity string) {
	i.errorCounter.Add(context.Background(), 1, metric.WithAttributes(
		ErrorTypeKey.String(errorType),
		ComponentKey.String(component),
		SeverityKey.String(severity),
	))
}

type noopImpl struct{}

func (noopImpl) TrackApprovalOperation(operationType, status string, duration time.Duration) {}
func (noopImpl) TrackUserActivity(activityType, status string)                               {}
func (noopImpl) TrackError(errorType, component, severity string)                            {}
