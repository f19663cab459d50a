package signup

import (
	"errors"
	"strings"

	"branflu/internal/api"
)

// Server error codes the classifier recognizes on registration failures.
const (
	ErrCodeEmailExists  = "BRANFLU__ERROR-2004"
	ErrCodeWeakPassword = "BRANFLU__ERROR-2003"
)

// FieldError routes a server-reported registration failure to the form
// field it belongs to.
type FieldError struct {
	Field   string // FieldName, FieldEmail or FieldPassword
	Message string
}

// ClassifyRegisterError maps a registration failure onto a field-level
// error when the server response is recognizable. The second return is
// false for transport failures and for structured errors that match no
// known code, field key or message substring; those surface generically.
func ClassifyRegisterError(err error) (FieldError, bool) {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return FieldError{}, false
	}

	msg := strings.ToLower(apiErr.Message)

	switch apiErr.Code {
	case ErrCodeEmailExists:
		return FieldError{Field: FieldEmail, Message: "Email already exists"}, true
	case ErrCodeWeakPassword:
		return FieldError{Field: FieldPassword, Message: orDefault(apiErr.Message, "Password was rejected by the server")}, true
	}

	switch apiErr.Field {
	case "payPalEmail":
		return FieldError{Field: FieldEmail, Message: orDefault(apiErr.Message, "Email was rejected by the server")}, true
	case "name":
		return FieldError{Field: FieldName, Message: orDefault(apiErr.Message, "Name was rejected by the server")}, true
	}

	if strings.Contains(msg, "password") {
		return FieldError{Field: FieldPassword, Message: apiErr.Message}, true
	}
	if strings.Contains(msg, "email") {
		return FieldError{Field: FieldEmail, Message: apiErr.Message}, true
	}

	return FieldError{}, false
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
