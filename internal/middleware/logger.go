package middleware

import (
	"fmt"
	"runtime/debug"
	"time"

	"task-management/internal/api/response"
	"task-management/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler logs every request and turns a panic into an opaque 500. An
// error returned down the chain is rendered here through the app's error
// handler, so the logged status is the one the client receives.
func ErrorHandler(log *logger.Loggers) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				log.Error.Error(fmt.Sprintf("Recovered from panic: %v", r), zap.String("stack", string(debug.Stack())))
				err = response.Fail(c, fiber.StatusInternalServerError, "Internal server error")
			}
		}()

		log.Request.Info("Incoming request",
			zap.String("method", c.Method()),
			zap.String("url", c.OriginalURL()),
		)
		if err = c.Next(); err != nil {
			if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
				log.Error.Error("Error handler failed", zap.Error(herr))
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
			err = nil
		}
		log.Request.Info("Request processed",
			zap.String("method", c.Method()),
			zap.String("url", c.OriginalURL()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		)
		return nil
	}
}
