package initializers

import (
	"context"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"approvals-backend/config"
	"approvals-backend/lib/telemetry"
)

func InitTelemetry(ctx context.Context) {
	if *config.Conf.Telemetry.Enabled {
		exporter, err := otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpoint(config.Conf.Telemetry.OTLPEndpoint),
			otlpmetrichttp.WithInsecure(),
		)
		if err != nil {
			log.WithError(err).Error("ошибка инициализации экспорта метрик")
		} else {
			provider := sdkmetric.NewMeterProvider(
				sdkmetric.WithResource(resource.NewWithAttributes(
					semconv.SchemaURL,
					semconv.ServiceName("approvals-backend"),
				)),
				sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
			)
			otel.SetMeterProvider(provider)
			go func() {
				<-ctx.Done()
				if err := provider.Shutdown(context.Background()); err != nil {
					log.WithError(err).Warn("ошибка остановки экспорта метрик")
				}
			}()
		}
	}
	telemetry.NewHandler()
}
