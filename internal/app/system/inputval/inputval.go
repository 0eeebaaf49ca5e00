// internal/app/system/inputval/inputval.go

// Package inputval validates decoded request payloads using a shared
// validator instance. Struct fields carry `validate` tags; Check returns
// a single human-readable message suitable for a 400 response body.
package inputval

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/taskhubhq/taskhub/internal/domain/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// taskstatus accepts the task lifecycle values.
	_ = v.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
		return models.IsValidTaskStatus(models.TaskStatus(fl.Field().String()))
	})

	// resourcename accepts the permission resource identifiers.
	_ = v.RegisterValidation("resourcename", func(fl validator.FieldLevel) bool {
		return models.IsValidResource(models.ResourceName(fl.Field().String()))
	})

	return v
}

// Check validates s against its struct tags. It returns a message naming
// the first offending field, or "" when the payload is valid.
func Check(s any) string {
	err := validate.Struct(s)
	if err == nil {
		return ""
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", field)
		case "email":
			return fmt.Sprintf("%s must be a valid email address", field)
		case "max":
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		case "min":
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		case "taskstatus":
			return fmt.Sprintf("%s must be one of: backlog, todo, doing, done", field)
		case "resourcename":
			return fmt.Sprintf("%s is not a recognized resource", field)
		default:
			return fmt.Sprintf("%s is invalid", field)
		}
	}
	return "invalid request payload"
}
