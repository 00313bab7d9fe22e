package validation

import (
	"errors"
	"fmt"
	"strings"

	"task-management/internal/models"

	"github.com/go-playground/validator/v10"
)

const weakPasswordMessage = "password too weak. It must contain at least one uppercase letter, one lowercase letter, and one number or special character"

// New returns a validator with the project's custom rules registered:
//   - password:    upper AND lower AND (digit OR non-word symbol)
//   - task_status: one of OPEN, IN_PROGRESS, DONE
func New() *validator.Validate {
	v := validator.New()
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("task_status", func(fl validator.FieldLevel) bool {
		return models.TaskStatus(fl.Field().String()).Valid()
	})
	return v
}

// StrongPassword applies the strength rule only, not the length bounds.
// A digit is not required on its own: any non-word character satisfies the
// third condition as well.
func StrongPassword(s string) bool {
	var upper, lower, digitOrSymbol bool
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r == '_':
			// word character, neither letter nor symbol
		default:
			digitOrSymbol = true
		}
	}
	return upper && lower && digitOrSymbol
}

// Message flattens validator errors into one human readable line.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s should not be empty", field)
	case "min":
		return fmt.Sprintf("%s must be longer than or equal to %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be shorter than or equal to %s characters", field, fe.Param())
	case "password":
		return weakPasswordMessage
	case "task_status":
		return fmt.Sprintf("%s must be one of the following values: %s, %s, %s", field,
			models.TaskStatusOpen, models.TaskStatusInProgress, models.TaskStatusDone)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
