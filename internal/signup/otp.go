package signup

import "strings"

// Stage is the linear state of an OTP session.
type Stage int

const (
	StageIdle Stage = iota
	StageSent
	// StageVerified is reserved: verification and registration currently run
	// as one step, so the flow jumps from StageSent to the registration
	// attempt without pausing here.
	StageVerified
)

// DefaultCooldown is the resend wait applied when the server does not
// return one.
const DefaultCooldown = 60

// DevBypassCode is accepted as valid when verification fails and the
// auth.dev_bypass config flag is on. DEV ONLY: this mirrors a documented
// development escape hatch in the signup flow and must stay disabled in
// any production-facing configuration.
const DevBypassCode = "123456"

// OtpSession is the transient state between "send code" succeeding and the
// registration attempt. Stage only advances idle -> sent; it never
// regresses except via Cancel.
type OtpSession struct {
	Stage       Stage
	MaskedEmail string
	Cooldown    int // seconds until resend is allowed
	Code        CodeEntry
}

// Begin moves the session to StageSent with the masked email and cooldown
// reported by the server (callers apply fallbacks before this).
func (s *OtpSession) Begin(maskedEmail string, cooldown int) {
	s.Stage = StageSent
	s.MaskedEmail = maskedEmail
	s.Cooldown = cooldown
	s.Code.Clear()
}

// Tick decrements the resend cooldown by one second, stopping at zero.
func (s *OtpSession) Tick() {
	if s.Cooldown > 0 {
		s.Cooldown--
	}
}

// CanResend reports whether the resend control is enabled.
func (s *OtpSession) CanResend() bool {
	return s.Stage == StageSent && s.Cooldown == 0
}

// Cancel resets the session to idle and clears the entered code.
func (s *OtpSession) Cancel() {
	*s = OtpSession{}
}

// MaskEmail obfuscates the middle of the local part of an email address
// for display, leaving the domain untouched: "jane@x.com" -> "j**e@x.com".
// Used as the local fallback when the server omits maskedEmail.
func MaskEmail(addr string) string {
	at := strings.LastIndex(addr, "@")
	if at <= 0 {
		return addr
	}
	local, domain := addr[:at], addr[at:]
	if len(local) <= 2 {
		return local[:1] + strings.Repeat("*", len(local)-1) + domain
	}
	return local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:] + domain
}
