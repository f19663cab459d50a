package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"branflu/cmd/branflu/ui"
	"branflu/internal/api"
	"branflu/internal/config"
	"branflu/internal/session"
	"branflu/internal/signup"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestModel(baseURL string) Model {
	cfg := config.Default()
	cfg.API.BaseURL = baseURL
	cfg.API.Timeout = "5s"
	return New(cfg, api.New(baseURL), nil, ui.DefaultStyles())
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func typeString(m Model, s string) Model {
	for _, r := range s {
		next, _ := m.Update(keyRune(r))
		m = next.(Model)
	}
	return m
}

// enterSignup fills the form with a valid draft and switches to signup mode
// on the brand tab.
func enterSignup(m Model) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlT}) // brand tab
	m = next.(Model)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlN}) // signup mode
	m = next.(Model)
	m.inputs[inputName].SetValue("Jane Doe")
	m.inputs[inputEmail].SetValue("jane@x.com")
	m.inputs[inputPassword].SetValue("Abcdef1!")
	return m
}

func TestErrorsAppearOnlyAfterFirstSubmit(t *testing.T) {
	m := newTestModel("http://unused")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	m = next.(Model)

	// Typing an invalid name before any submit shows nothing.
	m = typeString(m, "Jo")
	if !m.fieldErrs.OK() {
		t.Fatalf("no errors should show before the first submit, got %+v", m.fieldErrs)
	}

	// First submit with an invalid form surfaces all three field errors
	// and sends nothing.
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd != nil {
		t.Fatal("invalid submit must not start a network call")
	}
	if m.fieldErrs.Name == "" || m.fieldErrs.Email == "" || m.fieldErrs.Password == "" {
		t.Fatalf("expected all fields flagged, got %+v", m.fieldErrs)
	}
	if m.sendingOtp {
		t.Fatal("busy flag must stay clear on a validation failure")
	}
}

func TestLiveValidationAfterSubmit(t *testing.T) {
	m := newTestModel("http://unused")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	m = next.(Model)
	m.inputs[inputName].SetValue("Jo")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if m.fieldErrs.Name == "" {
		t.Fatal("short name should be flagged on submit")
	}

	// One more character fixes the name; the error clears as it is typed.
	m = typeString(m, "e")
	if m.fieldErrs.Name != "" {
		t.Fatalf("name error should clear live, got %q", m.fieldErrs.Name)
	}
}

func TestSubmitIsGatedWhileSending(t *testing.T) {
	m := enterSignup(newTestModel("http://unused"))

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd == nil || !m.sendingOtp {
		t.Fatal("valid submit should start the send")
	}

	// Enter again while the first send is in flight: no second command.
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("second submit while sending must be a no-op")
	}
}

func TestOtpSentStartsCodeEntry(t *testing.T) {
	m := enterSignup(newTestModel("http://unused"))
	m.sendingOtp = true

	next, _ := m.Update(otpSentMsg{maskedEmail: "j**e@x.com", cooldown: 60})
	m = next.(Model)

	if m.sendingOtp {
		t.Fatal("send busy flag should clear")
	}
	if m.otp.Stage != signup.StageSent || m.otp.MaskedEmail != "j**e@x.com" || m.otp.Cooldown != 60 {
		t.Fatalf("unexpected otp state: %+v", m.otp)
	}
}

func TestCooldownCountsDownAndUnlocksResend(t *testing.T) {
	m := enterSignup(newTestModel("http://unused"))
	next, _ := m.Update(otpSentMsg{maskedEmail: "j**e@x.com", cooldown: 2})
	m = next.(Model)

	// Resend during the cooldown is a no-op.
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if cmd != nil || m.sendingOtp {
		t.Fatal("resend must be blocked while the cooldown runs")
	}

	next, cmd = m.Update(cooldownTickMsg{})
	m = next.(Model)
	if m.otp.Cooldown != 1 || cmd == nil {
		t.Fatalf("cooldown = %d, want 1 with a follow-up tick", m.otp.Cooldown)
	}
	next, cmd = m.Update(cooldownTickMsg{})
	m = next.(Model)
	if m.otp.Cooldown != 0 || cmd != nil {
		t.Fatalf("cooldown = %d, want 0 and no further tick", m.otp.Cooldown)
	}

	// Now resend goes through and clears any entered digits.
	m.otp.Code.Paste("123")
	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	m = next.(Model)
	if cmd == nil || !m.sendingOtp {
		t.Fatal("resend should fire once the cooldown hits zero")
	}
	if m.otp.Code.Code() != "" {
		t.Fatalf("resend must clear the code, got %q", m.otp.Code.Code())
	}
}

func TestOtpKeyHandling(t *testing.T) {
	m := enterSignup(newTestModel("http://unused"))
	next, _ := m.Update(otpSentMsg{maskedEmail: "j**e@x.com", cooldown: 60})
	m = next.(Model)

	m = typeString(m, "12x3")
	if got := m.otp.Code.Code(); got != "123" {
		t.Fatalf("code = %q, want 123 with the non-digit dropped", got)
	}
	if m.otp.Code.Focus() != 3 {
		t.Fatalf("focus = %d, want 3", m.otp.Code.Focus())
	}

	// Backspace on the empty focused cell retreats.
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m = next.(Model)
	if m.otp.Code.Focus() != 2 {
		t.Fatalf("focus = %d, want 2", m.otp.Code.Focus())
	}

	// A multi-rune key message is treated as a paste.
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("987654"), Paste: true})
	m = next.(Model)
	if m.otp.Code.Code() != "987654" {
		t.Fatalf("code = %q, want 987654", m.otp.Code.Code())
	}
	if m.otp.Code.Focus() != 2 {
		t.Fatal("paste must not move focus")
	}
}

func TestIncompleteCodeAbortsLocally(t *testing.T) {
	m := enterSignup(newTestModel("http://unused"))
	next, _ := m.Update(otpSentMsg{maskedEmail: "j**e@x.com", cooldown: 60})
	m = next.(Model)
	m = typeString(m, "123")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd != nil || m.verifyingOtp {
		t.Fatal("incomplete code must not reach the network")
	}
	if m.otpErr == "" {
		t.Fatal("expected a local incomplete-code message")
	}
}

func TestVerifyFailureKeepsCodeEditable(t *testing.T) {
	m := enterSignup(newTestModel("http://unused"))
	next, _ := m.Update(otpSentMsg{maskedEmail: "j**e@x.com", cooldown: 60})
	m = next.(Model)
	m = typeString(m, "123456")
	m.verifyingOtp = true

	next, _ = m.Update(otpVerifyErrMsg{err: &api.Error{Status: 401, Message: "Invalid code"}})
	m = next.(Model)

	if m.verifyingOtp {
		t.Fatal("verify busy flag should clear")
	}
	if m.otp.Stage != signup.StageSent {
		t.Fatal("a failed verify must stay on the code entry")
	}
	if m.otpErr != "Invalid code" {
		t.Fatalf("otpErr = %q", m.otpErr)
	}
	if m.otp.Code.Code() != "123456" {
		t.Fatal("the entered code must survive a failed verify")
	}
}

func TestVerifiedChainsIntoRegister(t *testing.T) {
	m := enterSignup(newTestModel("http://unused"))
	next, cmd := m.Update(otpVerifiedMsg{})
	m = next.(Model)
	if !m.registering || cmd == nil {
		t.Fatal("a verified code should start the registration immediately")
	}
}

func TestRegisterErrorRoutesToField(t *testing.T) {
	m := enterSignup(newTestModel("http://unused"))
	m.registering = true

	next, _ := m.Update(registerErrMsg{err: &api.Error{Status: 409, Code: "BRANFLU__ERROR-2004"}})
	m = next.(Model)

	if m.registering {
		t.Fatal("register busy flag should clear")
	}
	if m.fieldErrs.Email != "Email already exists" {
		t.Fatalf("email error = %q", m.fieldErrs.Email)
	}
	if m.fieldErrs.Name != "" || m.fieldErrs.Password != "" {
		t.Fatalf("only the email field should be flagged, got %+v", m.fieldErrs)
	}
}

func TestRegisterErrorUnrecognizedShowsNotice(t *testing.T) {
	m := enterSignup(newTestModel("http://unused"))
	m.registering = true

	next, _ := m.Update(registerErrMsg{err: &api.Error{Status: 500, Message: "boom"}})
	m = next.(Model)

	if !m.fieldErrs.OK() {
		t.Fatalf("no field should be flagged for an unclassified error, got %+v", m.fieldErrs)
	}
	if m.notif.kind != noticeError {
		t.Fatal("expected a generic error notice")
	}
}

func TestRegisterSuccessNavigates(t *testing.T) {
	m := enterSignup(newTestModel("http://unused"))
	m.registering = true

	next, cmd := m.Update(registerDoneMsg{})
	m = next.(Model)
	if cmd == nil || m.successText == "" {
		t.Fatal("success should set the confirmation and schedule navigation")
	}

	next, _ = m.Update(navigateMsg{})
	m = next.(Model)
	if m.viewMode != SuccessView {
		t.Fatal("navigateMsg should land on the success view")
	}
}

func TestCancelKeepsSignupForm(t *testing.T) {
	m := enterSignup(newTestModel("http://unused"))
	next, _ := m.Update(otpSentMsg{maskedEmail: "j**e@x.com", cooldown: 60})
	m = next.(Model)
	m = typeString(m, "12")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)

	if m.otp.Stage != signup.StageIdle {
		t.Fatal("esc should cancel the otp session")
	}
	if !m.signupMode {
		t.Fatal("cancel must return to the signup form, not login")
	}
	if m.inputs[inputName].Value() != "Jane Doe" || m.inputs[inputEmail].Value() != "jane@x.com" {
		t.Fatal("cancel must keep the entered form values")
	}
}

func TestTabSwitchLeavesSignupMode(t *testing.T) {
	m := newTestModel("http://unused")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	m = next.(Model)
	if !m.signupMode {
		t.Fatal("ctrl+n should enter signup mode")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	m = next.(Model)
	if m.tab != TabBrand || m.signupMode {
		t.Fatalf("ctrl+t should switch tab and drop to login, got tab=%v signup=%v", m.tab, m.signupMode)
	}
}

func TestDraftRoleFollowsTab(t *testing.T) {
	m := newTestModel("http://unused")
	if m.draft().Role != signup.RoleInfluencer {
		t.Fatal("default tab is influencer")
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	m = next.(Model)
	if m.draft().Role != signup.RoleBusiness {
		t.Fatal("brand tab should tag the draft BUSINESS")
	}
}

func TestNoticeExpirySequenceGuard(t *testing.T) {
	m := newTestModel("http://unused")
	_ = m.showNotice(noticeInfo, "first")
	stale := m.notifSeq
	_ = m.showNotice(noticeError, "second")

	next, _ := m.Update(noticeExpireMsg{seq: stale})
	m = next.(Model)
	if m.notif.text != "second" {
		t.Fatal("a stale expiry must not clear a newer notice")
	}

	next, _ = m.Update(noticeExpireMsg{seq: m.notifSeq})
	m = next.(Model)
	if m.notif.kind != noticeNone {
		t.Fatal("the matching expiry should clear the notice")
	}
}

func TestSendCodeCmdAppliesFallbacks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`)) // server omits both fields
	}))
	defer server.Close()

	m := enterSignup(newTestModel(server.URL))
	msg := m.sendCodeCmd("jane@x.com")()
	sent, ok := msg.(otpSentMsg)
	if !ok {
		t.Fatalf("expected otpSentMsg, got %T", msg)
	}
	if sent.maskedEmail != "j**e@x.com" {
		t.Fatalf("maskedEmail = %q, want local fallback", sent.maskedEmail)
	}
	if sent.cooldown != signup.DefaultCooldown {
		t.Fatalf("cooldown = %d, want %d", sent.cooldown, signup.DefaultCooldown)
	}
}

func TestVerifyCmdDevBypass(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	// Bypass disabled: the failure comes through.
	m := enterSignup(newTestModel(server.URL))
	msg := m.verifyCmd("jane@x.com", signup.DevBypassCode)()
	if _, ok := msg.(otpVerifyErrMsg); !ok {
		t.Fatalf("expected otpVerifyErrMsg with bypass off, got %T", msg)
	}

	// Bypass enabled: the fixed code is accepted despite the 401.
	m.cfg.Auth.DevBypass = true
	msg = m.verifyCmd("jane@x.com", signup.DevBypassCode)()
	verified, ok := msg.(otpVerifiedMsg)
	if !ok || !verified.bypassed {
		t.Fatalf("expected a bypassed otpVerifiedMsg, got %#v", msg)
	}

	// A different code never bypasses.
	msg = m.verifyCmd("jane@x.com", "654321")()
	if _, ok := msg.(otpVerifyErrMsg); !ok {
		t.Fatalf("wrong code must still fail, got %T", msg)
	}
}

func TestLoginCmdPersistsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"redirect":"/dashboard?token=tok-1"}`))
	}))
	defer server.Close()

	store := session.NewStoreAt(t.TempDir() + "/session.json")
	cfg := config.Default()
	cfg.API.BaseURL = server.URL
	m := New(cfg, api.New(server.URL), store, ui.DefaultStyles())
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	m = next.(Model)

	msg := m.loginCmd("jane@x.com", "Abcdef1!")()
	done, ok := msg.(loginDoneMsg)
	if !ok {
		t.Fatalf("expected loginDoneMsg, got %T", msg)
	}
	if done.result.Token != "tok-1" {
		t.Fatalf("token = %q", done.result.Token)
	}

	sess := store.Current()
	if sess == nil || sess.Token != "tok-1" || sess.Role != "BUSINESS" {
		t.Fatalf("persisted session = %+v", sess)
	}
}

func TestViewShowsFieldErrors(t *testing.T) {
	m := enterSignup(newTestModel("http://unused"))
	m.inputs[inputName].SetValue("Jo")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	out := m.View()
	if !strings.Contains(out, "Name must be at least 3 characters") {
		t.Fatal("view should render the name field error")
	}
}

func TestViewOtpEntry(t *testing.T) {
	m := enterSignup(newTestModel("http://unused"))
	next, _ := m.Update(otpSentMsg{maskedEmail: "j**e@x.com", cooldown: 30})
	m = next.(Model)

	out := m.View()
	if !strings.Contains(out, "j**e@x.com") {
		t.Fatal("view should show the masked email")
	}
	if !strings.Contains(out, "Resend available in 30s") {
		t.Fatal("view should show the resend cooldown")
	}
}

func TestLoginRequiresBothFields(t *testing.T) {
	m := newTestModel("http://unused")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	m = next.(Model)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if m.loggingIn {
		t.Fatal("empty login must not start a request")
	}
	if cmd == nil || m.notif.kind != noticeError {
		t.Fatal("expected an error notice for the empty login")
	}
}
