package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/account-api/internal/api/shared"
	"github.com/phrazzld/account-api/internal/domain"
)

// decodeAndValidate reads a JSON body into v and validates it. Every failure
// is returned as a *domain.ValidationError.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) error {
	shared.LimitBody(w, r)

	if err := shared.DecodeJSON(r, v); err != nil {
		return decodeError(err)
	}
	if err := shared.ValidateRequest(v); err != nil {
		return validationError(err)
	}
	return nil
}

// requiredQuery returns a non-empty query parameter.
func requiredQuery(r *http.Request, name string) (string, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return "", domain.NewValidationError(name, "query parameter is required", nil)
	}
	return value, nil
}

func decodeError(err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.Is(err, io.EOF):
		return domain.NewValidationError("body", "is required", nil)
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return domain.NewValidationError("body", "is not valid JSON", nil)
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			return domain.NewValidationError("body", "must be a JSON object", nil)
		}
		return domain.NewValidationError(field, fmt.Sprintf("must be a %s", typeErr.Type.String()), nil)
	case errors.As(err, &maxBytesErr):
		return domain.NewValidationError("body", "is too large", nil)
	default:
		return domain.NewValidationError("body", "could not be read", nil)
	}
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.NewValidationError("", "Validation error", nil)
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fmt.Sprintf("%s %s", fe.Field(), validationTagMessage(fe.Tag())))
	}

	first := fieldErrs[0]
	if len(messages) == 1 {
		return domain.NewValidationError(first.Field(), validationTagMessage(first.Tag()), nil)
	}
	return domain.NewValidationError("", strings.Join(messages, "; "), nil)
}

// validationTagMessage maps validation tags to user-friendly error messages
func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "is required"
	default:
		return "is invalid"
	}
}
