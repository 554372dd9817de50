package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls the process-wide log level and the optional rotating log
// file written alongside stdout.
type Options struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	outMu  sync.RWMutex
	out    io.Writer = os.Stdout
	rotate *lumberjack.Logger
)

// Configure applies opts globally. Loggers created afterwards write to the
// configured outputs. It returns a function closing the rotating file.
func Configure(opts Options) (func() error, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		lvl, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, err
		}
		level = lvl
	}
	zerolog.SetGlobalLevel(level)

	outMu.Lock()
	defer outMu.Unlock()
	if rotate != nil {
		_ = rotate.Close()
		rotate = nil
	}
	out = os.Stdout
	if opts.File == "" {
		return func() error { return nil }, nil
	}
	lj := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
	}
	rotate = lj
	out = zerolog.MultiLevelWriter(os.Stdout, lj)
	return lj.Close, nil
}

func output() io.Writer {
	outMu.RLock()
	defer outMu.RUnlock()
	return out
}

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a ZerologLogger using the APP_ENV environment variable
// to determine the output format. All logs include the provided component field.
func NewZerologLogger(component string) Logger {
	return newZerolog(component, output())
}

func newZerolog(component string, w io.Writer) *ZerologLogger {
	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	z := zerolog.New(w).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	l.log.Debug().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
