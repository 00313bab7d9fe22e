// Package loggertest provides logger bundles for tests.
package loggertest

import (
	"testing"

	"task-management/pkg/logger"

	"go.uber.org/zap/zaptest"
)

// New routes every channel to the test log.
func New(t testing.TB) *logger.Loggers {
	zl := zaptest.NewLogger(t)
	return &logger.Loggers{
		Error:    zl.Named("errors"),
		Audit:    zl.Named("audit"),
		Request:  zl.Named("request"),
		Security: zl.Named("security"),
		System:   zl.Named("system"),
	}
}
