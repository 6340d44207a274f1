package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// ServiceVersion is reported on every exported resource
const ServiceVersion = "1.0.0"

// flushBudget bounds how long a pipeline may spend draining on shutdown
const flushBudget = 10 * time.Second

// newResource describes this process to the collector. All three signals
// share it so traces, metrics and logs join on service.name.
func newResource(serviceName string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}
	return res, nil
}

// pipeline is the lifecycle shared by the trace, metric and log providers.
// A zero pipeline (nil stop) belongs to a disabled signal.
type pipeline struct {
	signal string
	logger *zap.Logger
	stop   func(context.Context) error
}

func (p *pipeline) running() bool {
	return p.stop != nil
}

func (p *pipeline) started(endpoint, serviceName string, fields ...zap.Field) {
	p.logger.Info("Telemetry pipeline started", append([]zap.Field{
		zap.String("signal", p.signal),
		zap.String("collector_endpoint", endpoint),
		zap.String("service_name", serviceName),
	}, fields...)...)
}

func (p *pipeline) disabled() {
	p.logger.Info("Telemetry pipeline disabled", zap.String("signal", p.signal))
}

// shutdown drains pending data within flushBudget.
func (p *pipeline) shutdown(ctx context.Context) error {
	if !p.running() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, flushBudget)
	defer cancel()

	if err := p.stop(ctx); err != nil {
		p.logger.Error("Telemetry pipeline shutdown failed", zap.String("signal", p.signal), zap.Error(err))
		return fmt.Errorf("telemetry: shutdown %s pipeline: %w", p.signal, err)
	}
	p.logger.Info("Telemetry pipeline stopped", zap.String("signal", p.signal))
	return nil
}
