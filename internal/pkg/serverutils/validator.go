package serverutils

import (
	"fmt"

	"dorm-assistant-be/internal/pkg/apperrors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest checks struct tags and maps the first failure onto the
// application's validation error type.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		first := errs[0]
		return apperrors.NewValidation(first.Field(), fmt.Sprintf("failed on the '%s' rule", first.Tag()))
	}
	return err
}
