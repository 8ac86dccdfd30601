package logger

import (
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the application logger. When a Sentry DSN is provided, warnings
// and errors are forwarded to Sentry on top of regular logging.
func New(sentryDSN string) (*zap.SugaredLogger, error) {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	if sentryDSN != "" {
		option, err := sentryOption(sentryDSN)
		if err != nil {
			return nil, err
		}

		zapLogger = zapLogger.WithOptions(option)
	}

	return zapLogger.Sugar(), nil
}

// Flush drains buffered Sentry events. Call before exit.
func Flush() {
	sentry.Flush(10 * time.Second)
}

func sentryOption(dsn string) (zap.Option, error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn: dsn,
	})
	if err != nil {
		return nil, err
	}

	return zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.RegisterHooks(core, func(entry zapcore.Entry) error {
			if entry.Level >= zapcore.WarnLevel {
				sentry.CaptureEvent(&sentry.Event{
					Timestamp: entry.Time,
					Logger:    entry.LoggerName,
					Message:   entry.Message,
					Extra: map[string]any{
						"Stack":  entry.Stack,
						"Caller": entry.Caller.String(),
					},
					Level: sentryLevel(entry.Level),
				})
			}

			return nil
		})
	}), nil
}

func sentryLevel(level zapcore.Level) sentry.Level {
	switch level {
	case zapcore.DebugLevel:
		return sentry.LevelDebug
	case zapcore.InfoLevel:
		return sentry.LevelInfo
	case zapcore.WarnLevel:
		return sentry.LevelWarning
	case zapcore.ErrorLevel:
		return sentry.LevelError
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return sentry.LevelFatal
	default:
		return sentry.LevelError
	}
}
