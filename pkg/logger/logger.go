package logger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Loggers bundles the log channels used across the service. It is passed
// explicitly to every component; there is no package level instance.
type Loggers struct {
	Error    *zap.Logger
	Audit    *zap.Logger
	Request  *zap.Logger
	Security *zap.Logger
	System   *zap.Logger
}

func encoderConfig() zapcore.EncoderConfig {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return encoderCfg
}

func newLogger(ws zapcore.WriteSyncer, level zapcore.Level, channel string) *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		ws,
		level,
	)
	return zap.New(core).With(zap.String("channel", channel))
}

func newFileLogger(dir, name string, level zapcore.Level) (*zap.Logger, error) {
	file, err := os.OpenFile(filepath.Join(dir, name+".log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return newLogger(zapcore.AddSync(file), level, name), nil
}

// New creates the log channels. With a non-empty dir every channel gets its
// own JSON file (errors.log, audit.log, ...); with an empty dir all channels
// write to stdout.
func New(dir string) (*Loggers, error) {
	if dir == "" {
		ws := zapcore.Lock(os.Stdout)
		return &Loggers{
			Error:    newLogger(ws, zapcore.ErrorLevel, "errors"),
			Audit:    newLogger(ws, zapcore.InfoLevel, "audit"),
			Request:  newLogger(ws, zapcore.InfoLevel, "request"),
			Security: newLogger(ws, zapcore.WarnLevel, "security"),
			System:   newLogger(ws, zapcore.InfoLevel, "system"),
		}, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	channels := []struct {
		name  string
		level zapcore.Level
		dst   **zap.Logger
	}{
		{"errors", zapcore.ErrorLevel, nil},
		{"audit", zapcore.InfoLevel, nil},
		{"request", zapcore.InfoLevel, nil},
		{"security", zapcore.WarnLevel, nil},
		{"system", zapcore.InfoLevel, nil},
	}
	l := &Loggers{}
	channels[0].dst = &l.Error
	channels[1].dst = &l.Audit
	channels[2].dst = &l.Request
	channels[3].dst = &l.Security
	channels[4].dst = &l.System

	for _, ch := range channels {
		zl, err := newFileLogger(dir, ch.name, ch.level)
		if err != nil {
			return nil, fmt.Errorf("cannot create %s logger: %w", ch.name, err)
		}
		*ch.dst = zl
	}
	return l, nil
}

// Nop returns loggers that discard everything.
func Nop() *Loggers {
	nop := zap.NewNop()
	return &Loggers{Error: nop, Audit: nop, Request: nop, Security: nop, System: nop}
}

// Sync flushes every channel.
func (l *Loggers) Sync() error {
	var errs []error
	for _, zl := range []*zap.Logger{l.Error, l.Audit, l.Request, l.Security, l.System} {
		if err := zl.Sync(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
