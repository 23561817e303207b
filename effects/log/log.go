package log

import (
	"context"

	"github.com/on-the-ground/effect_ive_flow/effects/internal/handlers"
	"github.com/on-the-ground/effect_ive_flow/effects/internal/helper"
	effectmodel "github.com/on-the-ground/effect_ive_flow/effects/internal/model"
	"go.uber.org/zap"
)

// LogLevel defines the severity level for log messages.
type LogLevel string

const (
	// LogInfo is used for general informational messages.
	LogInfo LogLevel = "info"

	// LogWarn is used for potentially harmful situations.
	LogWarn LogLevel = "warn"

	// LogError is used for error events that might still allow the application to continue running.
	LogError LogLevel = "error"

	// LogDebug is used for debugging messages with detailed internal information.
	LogDebug LogLevel = "debug"
)

// LogPayload is the payload structure for logging effect.
// It contains the log level, message string, and optional structured fields.
type LogPayload struct {
	Level   LogLevel
	Message string
	Fields  map[string]interface{}
}

// WithZapEffectHandler registers a fire-and-forget log handler backed by logger.
// The returned context carries the handler; stores and test stores created from it
// log their lifecycle through it.
// The teardown function flushes buffered entries, syncs the logger
// and returns the context the handler was installed on.
func WithZapEffectHandler(
	ctx context.Context,
	bufferSize int,
	logger *zap.Logger,
) (context.Context, func() context.Context) {
	handler := handlers.NewFireAndForgetHandler(
		ctx,
		effectmodel.NewEffectScopeConfig(bufferSize).BufferSize,
		func(ctx context.Context, payload LogPayload) {
			write(logger, payload)
		},
		func() {
			// stdout/stderr sync fails on some platforms; nothing to do about it
			_ = logger.Sync()
		},
	)
	ctxWith := context.WithValue(ctx, effectmodel.EffectLog, handler)
	logger.Debug("created log effect handler", zap.String("effectId", handler.EffectId))

	return ctxWith, func() context.Context {
		handler.Close()
		return ctx
	}
}

// Eff performs a fire-and-forget log effect using the handler found in ctx.
// Without a handler the entry is dropped.
func Eff(ctx context.Context, level LogLevel, msg string, fields map[string]interface{}) {
	handler, err := helper.GetTypedValueOf[handlers.FireAndForgetHandler[LogPayload]](func() (any, error) {
		return helper.GetHandler(ctx, effectmodel.EffectLog)
	})
	if err != nil {
		return
	}
	handler.FireAndForgetEffect(ctx, LogPayload{
		Level:   level,
		Message: msg,
		Fields:  fields,
	})
}

func write(logger *zap.Logger, payload LogPayload) {
	fields := make([]zap.Field, 0, len(payload.Fields))
	for k, v := range payload.Fields {
		fields = append(fields, zap.Any(k, v))
	}

	switch payload.Level {
	case LogInfo:
		logger.Info(payload.Message, fields...)
	case LogWarn:
		logger.Warn(payload.Message, fields...)
	case LogError:
		logger.Error(payload.Message, fields...)
	case LogDebug:
		logger.Debug(payload.Message, fields...)
	default:
		logger.Info(payload.Message, fields...)
	}
}
