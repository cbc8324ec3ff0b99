package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log é o logger global. Até Init ser chamado descarta tudo, o que mantém
// os pacotes silenciosos em testes.
var Log = zap.NewNop()

type ctxKey struct{}

func Init(level string, development bool) error {
	var config zap.Config

	if development {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.OutputPaths = []string{"stdout"}
		config.ErrorOutputPaths = []string{"stderr"}
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(lvl)

	l, err := config.Build()
	if err != nil {
		return err
	}

	Replace(l)
	return nil
}

// Replace troca o logger global e devolve uma função que restaura o anterior.
func Replace(l *zap.Logger) func() {
	prev := Log
	Log = l
	return func() {
		Log = prev
	}
}

// ContextWithRequestID anexa o id da requisição ao contexto.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

// WithContext devolve o logger global com o request_id do contexto, se houver.
func WithContext(ctx context.Context) *zap.Logger {
	if requestID, ok := ctx.Value(ctxKey{}).(string); ok && requestID != "" {
		return Log.With(zap.String("request_id", requestID))
	}
	return Log
}

func Close() {
	_ = Log.Sync()
}

// Fatal registra e encerra o processo com status 1.
func Fatal(msg string, fields ...zap.Field) {
	Log.Fatal(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Log.Error(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Log.Warn(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	Log.Info(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	Log.Debug(msg, fields...)
}
