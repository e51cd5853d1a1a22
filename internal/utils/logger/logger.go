package logger

import (
	"io"
	"os"
	"strings"

	"golang.org/x/exp/slog"
	"gopkg.in/natefinch/lumberjack.v2"

	"storysync/internal/app/server/config"
)

type options struct {
	level string
	file  string
	out   io.Writer
}

type Option func(*options)

// WithLevel переопределяет уровень, выбранный по окружению ("debug", "info", "warn", "error")
func WithLevel(level string) Option {
	return func(o *options) { o.level = level }
}

// WithFile дублирует вывод в файл с ротацией
func WithFile(path string) Option {
	return func(o *options) { o.file = path }
}

// WithOutput заменяет stdout
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// New создает логгер для окружения: local - цветной вывод, dev - JSON с debug, prod - JSON с info
func New(env string, opts ...Option) *slog.Logger {
	o := options{out: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	out := o.out
	if o.file != "" {
		out = io.MultiWriter(out, &lumberjack.Logger{
			Filename:   o.file,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		})
	}

	var (
		log   *slog.Logger
		level slog.Level
	)
	switch env {
	case config.EnvProd:
		level = slog.LevelInfo
	default:
		level = slog.LevelDebug
	}
	if o.level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(o.level))); err != nil {
			level = slog.LevelInfo
		}
	}

	switch env {
	case config.EnvLocal:
		log = setupPrettySlog(out, level)
	default:
		log = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
	}

	return log
}

func setupPrettySlog(out io.Writer, level slog.Level) *slog.Logger {
	opts := PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{Level: level},
	}
	return slog.New(opts.NewPrettyHandler(out))
}
