package signup

import (
	"regexp"
	"strings"
	"unicode"
)

// Field identifiers for validation and server error routing.
const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
)

// PasswordSpecials is the fixed set of special characters a password must
// draw at least one character from.
const PasswordSpecials = "!@#$%^&*()-_+=[]{};:,.<>?"

const (
	passwordMinLen = 8
	passwordMaxLen = 64
	nameMinLen     = 3
)

// Keep this deliberately loose: local@domain.tld shape only. Anything
// stricter belongs to the server.
var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationErrors maps each required field to a message, or "" when valid.
type ValidationErrors struct {
	Name     string
	Email    string
	Password string
}

// OK reports whether every required field passed.
func (v ValidationErrors) OK() bool {
	return v.Name == "" && v.Email == "" && v.Password == ""
}

// ByField returns the message stored for a field identifier.
func (v ValidationErrors) ByField(field string) string {
	switch field {
	case FieldName:
		return v.Name
	case FieldEmail:
		return v.Email
	case FieldPassword:
		return v.Password
	}
	return ""
}

// ValidateField checks a single field value and returns a human-readable
// message, or "" when the value is acceptable. Unknown fields validate
// clean so optional inputs never block submission.
func ValidateField(field, value string) string {
	switch field {
	case FieldName:
		if len(strings.TrimSpace(value)) < nameMinLen {
			return "Name must be at least 3 characters"
		}
	case FieldEmail:
		if !emailShape.MatchString(strings.TrimSpace(value)) {
			return "Enter a valid email address"
		}
	case FieldPassword:
		return validatePassword(value)
	}
	return ""
}

func validatePassword(p string) string {
	if len(p) < passwordMinLen || len(p) > passwordMaxLen {
		return "Password must be 8-64 characters"
	}
	var upper, lower, digit, special bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(PasswordSpecials, r):
			special = true
		}
	}
	switch {
	case !upper:
		return "Password needs an uppercase letter"
	case !lower:
		return "Password needs a lowercase letter"
	case !digit:
		return "Password needs a digit"
	case !special:
		return "Password needs a special character (" + PasswordSpecials + ")"
	}
	return ""
}

// ValidateDraft runs all required-field validators and returns the full
// result set. Used as the gate before the first OTP send.
func ValidateDraft(d RegistrationDraft) ValidationErrors {
	return ValidationErrors{
		Name:     ValidateField(FieldName, d.Name),
		Email:    ValidateField(FieldEmail, d.Email),
		Password: ValidateField(FieldPassword, d.Password),
	}
}
