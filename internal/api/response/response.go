// Package response writes the JSON error envelope shared by every endpoint:
// {"message": ..., "success": false, "status": ...}.
package response

import (
	"errors"

	"task-management/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

func Fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"success": false,
		"status":  status,
	})
}

// Error maps err to its HTTP status and public message.
func Error(c *fiber.Ctx, err error) error {
	return Fail(c, apperror.KindOf(err).HTTPStatus(), apperror.PublicMessage(err))
}

// ErrorHandler is the fiber.Config error handler. It keeps fiber's own
// errors (unknown route, upgrade required) in the same envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return Fail(c, fe.Code, fe.Message)
	}
	return Error(c, err)
}
