package dto

import (
	"github.com/go-playground/validator/v10"

	apperrors "github.com/ticketflow/ticketflow/pkg/util"
)

var validate = validator.New()

// Validate runs struct tag validation and maps failures to a validation
// error with per-field details.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	details := map[string]any{}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
	}
	return apperrors.NewValidationError("invalid payload", details)
}
