package logger

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Context keys whose values are attached to every log line when present.
type ctxKey string

const (
	CtxTraceID    ctxKey = "trace_id"
	CtxOrderKey   ctxKey = "order_key"
	CtxActionType ctxKey = "action_type"
	CtxWorkerID   ctxKey = "worker_id"
)

// Logger is the logging interface shared by both binaries.
type Logger interface {
	Debugf(ctx context.Context, format string, args ...interface{})
	Infof(ctx context.Context, format string, args ...interface{})
	Warnf(ctx context.Context, format string, args ...interface{})
	Errorf(ctx context.Context, format string, args ...interface{})
	Sync() error
}

// ZapLogger implements Logger on top of zap.
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger builds a JSON zap logger at the given level.
func NewZapLogger(level string) (Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return &ZapLogger{logger: l}, nil
}

func (l *ZapLogger) extractFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 4)

	if traceID, ok := ctx.Value(CtxTraceID).(string); ok && traceID != "" {
		fields = append(fields, zap.String("trace_id", traceID))
	}
	if orderKey, ok := ctx.Value(CtxOrderKey).(string); ok && orderKey != "" {
		fields = append(fields, zap.String("order_key", orderKey))
	}
	if actionType, ok := ctx.Value(CtxActionType).(string); ok && actionType != "" {
		fields = append(fields, zap.String("action_type", actionType))
	}
	if workerID, ok := ctx.Value(CtxWorkerID).(int); ok {
		fields = append(fields, zap.Int("worker_id", workerID))
	}

	return fields
}

func (l *ZapLogger) Debugf(ctx context.Context, format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...), l.extractFields(ctx)...)
}

func (l *ZapLogger) Infof(ctx context.Context, format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...), l.extractFields(ctx)...)
}

func (l *ZapLogger) Warnf(ctx context.Context, format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...), l.extractFields(ctx)...)
}

func (l *ZapLogger) Errorf(ctx context.Context, format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...), l.extractFields(ctx)...)
}

func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}

// NopLogger discards everything. Used in tests.
type NopLogger struct{}

func (NopLogger) Debugf(context.Context, string, ...interface{}) {}
func (NopLogger) Infof(context.Context, string, ...interface{})  {}
func (NopLogger) Warnf(context.Context, string, ...interface{})  {}
func (NopLogger) Errorf(context.Context, string, ...interface{}) {}
func (NopLogger) Sync() error                                    { return nil }
