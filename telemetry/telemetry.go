// Package telemetry настраивает OpenTelemetry и счетчики бота.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// ScopeName имя трейсера и метра бота
const ScopeName = "github.com/awhatson15/nutrition-bot"

// Config настройки экспорта телеметрии
type Config struct {
	// При пустом Endpoint экспорт выключен и остаются no-op провайдеры
	Endpoint       string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName    string `env:"OTEL_SERVICE_NAME,default=nutrition-bot"`
	ServiceVersion string `env:"OTEL_SERVICE_VERSION,default=0.1.0"`
}

// Shutdown сбрасывает и останавливает экспортеры
type Shutdown func(ctx context.Context) error

// Init регистрирует глобальные провайдеры с OTLP gRPC экспортерами.
// Адрес и заголовки экспортеры берут из стандартных переменных OTEL_EXPORTER_OTLP_*.
func Init(ctx context.Context, cfg Config) (Shutdown, error) {
	if cfg.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания ресурса телеметрии: %w", err)
	}

	traceExporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient())
	if err != nil {
		return nil, fmt.Errorf("ошибка создания экспортера трейсов: %w", err)
	}

	metricExporter, err := otlpmetricgrpc.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания экспортера метрик: %w", err)
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	return func(ctx context.Context) error {
		return errors.Join(
			tracerProvider.Shutdown(ctx),
			meterProvider.Shutdown(ctx),
		)
	}, nil
}

// Tracer трейсер бота из глобального провайдера
func Tracer() trace.Tracer {
	return otel.Tracer(ScopeName)
}

// Instruments счетчики, которые пишут обработчики команд
type Instruments struct {
	eventsLogged     metric.Int64Counter
	externalFailures metric.Int64Counter
	dialogsCompleted metric.Int64Counter
}

// NewInstruments создает счетчики на переданном метре
func NewInstruments(meter metric.Meter) (*Instruments, error) {
	eventsLogged, err := meter.Int64Counter("events_logged_total",
		metric.WithDescription("Записи в журналах воды, еды и тренировок"))
	if err != nil {
		return nil, err
	}
	externalFailures, err := meter.Int64Counter("external_failures_total",
		metric.WithDescription("Ошибки внешних сервисов"))
	if err != nil {
		return nil, err
	}
	dialogsCompleted, err := meter.Int64Counter("dialogs_completed_total",
		metric.WithDescription("Успешно завершенные диалоги"))
	if err != nil {
		return nil, err
	}

	return &Instruments{
		eventsLogged:     eventsLogged,
		externalFailures: externalFailures,
		dialogsCompleted: dialogsCompleted,
	}, nil
}

// NewGlobalInstruments счетчики на глобальном метре
func NewGlobalInstruments() (*Instruments, error) {
	return NewInstruments(otel.Meter(ScopeName))
}

// EventLogged kind: water, food, workout
func (i *Instruments) EventLogged(ctx context.Context, kind string) {
	i.eventsLogged.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// ExternalFailure dependency: weather, food_search, store
func (i *Instruments) ExternalFailure(ctx context.Context, dependency string) {
	i.externalFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("dependency", dependency)))
}

// DialogCompleted kind: profile, food
func (i *Instruments) DialogCompleted(ctx context.Context, kind string) {
	i.dialogsCompleted.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
