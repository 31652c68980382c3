package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"ops-assistant-be/internal/pkg/apperrors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest checks a DTO against its `validate` struct tags and
// converts violations into a 400-class AppError.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return apperrors.NewBadRequest("invalid request body")
	}

	var parts []string
	for _, fe := range validationErrs {
		parts = append(parts, fmt.Sprintf("%s is %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return apperrors.NewBadRequest("validation failed: " + strings.Join(parts, ", "))
}
