package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogsConfig configures OTLP log export.
type LogsConfig struct {
	Enabled           bool
	CollectorEndpoint string
	ServiceName       string
	Insecure          bool
}

// LoggerProvider owns the OTLP log pipeline that zap entries are bridged into.
type LoggerProvider struct {
	pipeline
	provider    *sdklog.LoggerProvider
	serviceName string
}

// NewLoggerProvider batches log records to the collector. When disabled,
// ZapCore returns a core that drops everything.
func NewLoggerProvider(ctx context.Context, cfg LogsConfig, logger *zap.Logger) (*LoggerProvider, error) {
	lp := &LoggerProvider{
		pipeline:    pipeline{signal: "logs", logger: logger},
		serviceName: cfg.ServiceName,
	}
	if !cfg.Enabled {
		lp.disabled()
		return lp, nil
	}

	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: log exporter: %w", err)
	}
	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	lp.provider = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	lp.stop = lp.provider.Shutdown
	global.SetLoggerProvider(lp.provider)

	lp.started(cfg.CollectorEndpoint, cfg.ServiceName)
	return lp, nil
}

// Shutdown flushes batched records.
func (lp *LoggerProvider) Shutdown(ctx context.Context) error {
	if lp == nil {
		return nil
	}
	return lp.shutdown(ctx)
}

// IsEnabled is safe on a nil provider.
func (lp *LoggerProvider) IsEnabled() bool {
	return lp != nil && lp.running()
}

// ZapCore bridges zap entries at or above minLevel into the OTLP pipeline.
// Pass it to logger.New as an extra core.
func (lp *LoggerProvider) ZapCore(minLevel zapcore.Level) zapcore.Core {
	if !lp.IsEnabled() {
		return zapcore.NewNopCore()
	}
	return atLeast(otelzap.NewCore(lp.serviceName, otelzap.WithLoggerProvider(lp.provider)), minLevel)
}

// atLeast raises core's minimum level to lvl. A core that is already
// stricter than lvl is returned unchanged.
func atLeast(core zapcore.Core, lvl zapcore.Level) zapcore.Core {
	raised, err := zapcore.NewIncreaseLevelCore(core, lvl)
	if err != nil {
		return core
	}
	return raised
}
