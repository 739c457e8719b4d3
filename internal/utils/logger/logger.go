package logger

import (
	"io"
	"os"

	"golang.org/x/exp/slog"
	"gopkg.in/natefinch/lumberjack.v2"

	"sampark/internal/config"
)

// New создает логгер для окружения: local - цветной вывод в консоль,
// dev - JSON c уровнем debug, prod - JSON c уровнем info.
func New(env string) *slog.Logger {
	return newLogger(config.NormalizeEnv(env), os.Stdout)
}

// NewWithFile пишет логи в ротируемый файл, если путь задан.
// Локальное окружение дополнительно дублирует вывод в консоль.
func NewWithFile(env, path string) *slog.Logger {
	if path == "" {
		return New(env)
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}

	env = config.NormalizeEnv(env)
	if env == config.EnvLocal {
		return newLogger(env, io.MultiWriter(os.Stdout, rotator))
	}
	return newLogger(env, rotator)
}

func newLogger(env string, out io.Writer) *slog.Logger {
	switch env {
	case config.EnvProd:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case config.EnvDev:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return setupPrettySlogTo(out)
	}
}

func setupPrettySlog() *slog.Logger {
	return setupPrettySlogTo(os.Stdout)
}

func setupPrettySlogTo(out io.Writer) *slog.Logger {
	opts := PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	return slog.New(opts.NewPrettyHandler(out))
}
