// Package signup holds the state and rules for the Branflu registration
// flow: the registration draft, field validation, the OTP session state
// machine, the six-cell code entry, and server error classification.
// Everything here is UI-free so the terminal frontend in cmd/branflu/auth
// stays a thin event loop over it.
package signup

import "branflu/internal/api"

// Role is the account type being registered, derived from the active tab.
type Role string

const (
	RoleInfluencer Role = "INFLUENCER"
	RoleBusiness   Role = "BUSINESS"
)

// RegistrationDraft collects the signup form fields for one signup session.
// It is owned exclusively by the auth controller and discarded afterwards.
type RegistrationDraft struct {
	Name       string
	Email      string
	Password   string
	Role       Role
	WebsiteURL string // optional
	Bio        string // optional
}

// ToRegisterRequest maps the draft onto the wire payload. The server keys
// the email field "payPalEmail".
func (d RegistrationDraft) ToRegisterRequest() api.RegisterRequest {
	return api.RegisterRequest{
		Name:        d.Name,
		PayPalEmail: d.Email,
		Password:    d.Password,
		Role:        string(d.Role),
		WebsiteURL:  d.WebsiteURL,
		Bio:         d.Bio,
	}
}
