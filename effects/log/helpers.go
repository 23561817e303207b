package log

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TestHandlerOption adjusts the handler installed by WithTestEffectHandler.
type TestHandlerOption func(*testHandler)

type testHandler struct {
	level zapcore.Level
	tees  []zapcore.Core
}

// AtLevel drops console entries below level. The default is debug.
func AtLevel(level zapcore.Level) TestHandlerOption {
	return func(h *testHandler) { h.level = level }
}

// Tee also writes every entry to core, usually an observer core the test asserts on.
func Tee(core zapcore.Core) TestHandlerOption {
	return func(h *testHandler) { h.tees = append(h.tees, core) }
}

// WithTestEffectHandler installs a console logger on stdout, unbuffered so entries
// show up next to the test output that caused them.
func WithTestEffectHandler(
	ctx context.Context,
	opts ...TestHandlerOption,
) (context.Context, func() context.Context) {
	h := testHandler{level: zap.DebugLevel}
	for _, opt := range opts {
		opt(&h)
	}
	cores := append([]zapcore.Core{zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stdout),
		h.level,
	)}, h.tees...)
	return WithZapEffectHandler(
		ctx,
		1,
		zap.New(zapcore.NewTee(cores...)),
	)
}
