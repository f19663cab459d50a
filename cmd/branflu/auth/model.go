// Package auth provides the interactive login/signup TUI for the Branflu
// terminal client. The flow is split across files:
//   - model.go: Types, Init, Update loop (this file)
//   - commands.go: Network calls and timers as tea commands
//   - view.go: Rendering functions
package auth

import (
	"errors"
	"strings"
	"time"

	"branflu/cmd/branflu/ui"
	"branflu/internal/api"
	"branflu/internal/config"
	"branflu/internal/session"
	"branflu/internal/signup"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Tab selects which audience the surface addresses, and with it the role a
// signup is tagged with.
type Tab int

const (
	TabInfluencer Tab = iota
	TabBrand
)

func (t Tab) Role() signup.Role {
	if t == TabBrand {
		return signup.RoleBusiness
	}
	return signup.RoleInfluencer
}

// ViewMode determines which screen is active.
type ViewMode int

const (
	AuthView ViewMode = iota
	SuccessView
)

// Indexes into the signup input slice.
const (
	inputName = iota
	inputEmail
	inputPassword
	inputWebsite
	inputBio
	signupInputCount
)

// Indexes into the login input slice.
const (
	loginEmail = iota
	loginPassword
	loginInputCount
)

// postRegisterDelay is how long the success confirmation stays on screen
// before navigating away.
const postRegisterDelay = 800 * time.Millisecond

// noticeTTL is how long transient notifications stay visible.
const noticeTTL = 4 * time.Second

type noticeKind int

const (
	noticeNone noticeKind = iota
	noticeInfo
	noticeSuccess
	noticeError
)

type notice struct {
	kind noticeKind
	text string
}

// Messages for tea updates.
type (
	// otpSentMsg carries the (fallback-applied) masked email and cooldown
	// after a successful send.
	otpSentMsg struct {
		maskedEmail string
		cooldown    int
	}
	otpSendErrMsg struct{ err error }

	// otpVerifiedMsg reports the code passed verification. bypassed marks
	// the dev-only escape hatch.
	otpVerifiedMsg struct{ bypassed bool }
	otpVerifyErrMsg struct{ err error }

	registerDoneMsg struct{}
	registerErrMsg  struct{ err error }

	loginDoneMsg struct{ result *api.LoginResult }
	loginErrMsg  struct{ err error }

	cooldownTickMsg struct{}
	noticeExpireMsg struct{ seq int }
	navigateMsg     struct{}
)

// Model is the bubbletea model for the auth surface. It exclusively owns
// the RegistrationDraft and OtpSession for the lifetime of the program; no
// other component reads them.
type Model struct {
	cfg      *config.Config
	client   *api.Client
	sessions *session.Store
	styles   ui.Styles
	spinner  spinner.Model

	viewMode   ViewMode
	tab        Tab
	signupMode bool

	// Signup form
	inputs          []textinput.Model
	focusIndex      int
	fieldErrs       signup.ValidationErrors
	submitAttempted bool

	// OTP stage
	otp    signup.OtpSession
	otpErr string

	// Login form
	loginInputs []textinput.Model
	loginFocus  int

	// Busy flags: each network transition is gated so it cannot run twice
	// concurrently.
	sendingOtp   bool
	verifyingOtp bool
	registering  bool
	loggingIn    bool

	notif    notice
	notifSeq int

	successText string

	width  int
	height int
}

// New builds the auth model. All collaborators are injected; nothing is
// looked up ambiently.
func New(cfg *config.Config, client *api.Client, sessions *session.Store, styles ui.Styles) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	inputs := make([]textinput.Model, signupInputCount)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].CharLimit = 128
		inputs[i].Width = 36
	}
	inputs[inputName].Placeholder = "Full Name"
	inputs[inputEmail].Placeholder = "PayPal Email"
	inputs[inputPassword].Placeholder = "Create Password"
	inputs[inputPassword].EchoMode = textinput.EchoPassword
	inputs[inputWebsite].Placeholder = "Website URL (optional)"
	inputs[inputBio].Placeholder = "Bio (optional)"
	inputs[inputName].Focus()

	loginInputs := make([]textinput.Model, loginInputCount)
	for i := range loginInputs {
		loginInputs[i] = textinput.New()
		loginInputs[i].CharLimit = 128
		loginInputs[i].Width = 36
	}
	loginInputs[loginEmail].Placeholder = "you@company.com"
	loginInputs[loginPassword].Placeholder = "Password"
	loginInputs[loginPassword].EchoMode = textinput.EchoPassword
	loginInputs[loginEmail].Focus()

	return Model{
		cfg:         cfg,
		client:      client,
		sessions:    sessions,
		styles:      styles,
		spinner:     sp,
		tab:         TabInfluencer,
		inputs:      inputs,
		loginInputs: loginInputs,
	}
}

// Init starts the cursor blink and spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case otpSentMsg:
		m.sendingOtp = false
		m.otp.Begin(msg.maskedEmail, msg.cooldown)
		m.otpErr = ""
		cmds := []tea.Cmd{m.cooldownTick()}
		cmds = append(cmds, m.showNotice(noticeInfo, "Verification code sent to "+msg.maskedEmail))
		return m, tea.Batch(cmds...)

	case otpSendErrMsg:
		m.sendingOtp = false
		cmd := m.showNotice(noticeError, failureText(msg.err, "Could not send the verification code"))
		return m, cmd

	case otpVerifiedMsg:
		m.verifyingOtp = false
		m.registering = true
		return m, tea.Batch(m.spinner.Tick, m.registerCmd(m.draft()))

	case otpVerifyErrMsg:
		// Stage stays sent; the code remains visible and editable.
		m.verifyingOtp = false
		m.otpErr = failureText(msg.err, "Verification failed")
		return m, nil

	case registerDoneMsg:
		m.registering = false
		m.successText = "Account created. Welcome to Branflu!"
		cmd := m.showNotice(noticeSuccess, "Registration successful")
		return m, tea.Batch(
			cmd,
			tea.Tick(postRegisterDelay, func(time.Time) tea.Msg { return navigateMsg{} }),
		)

	case registerErrMsg:
		m.registering = false
		if fieldErr, ok := signup.ClassifyRegisterError(msg.err); ok {
			m.setFieldError(fieldErr)
			cmd := m.showNotice(noticeError, fieldErr.Message)
			return m, cmd
		}
		cmd := m.showNotice(noticeError, failureText(msg.err, "Registration failed"))
		return m, cmd

	case loginDoneMsg:
		m.loggingIn = false
		m.successText = "Login successful, redirecting to dashboard..."
		if msg.result.Redirect != "" {
			m.successText = "Login successful, continue at " + msg.result.Redirect
		}
		cmd := m.showNotice(noticeSuccess, "Logged in")
		return m, tea.Batch(
			cmd,
			tea.Tick(postRegisterDelay, func(time.Time) tea.Msg { return navigateMsg{} }),
		)

	case loginErrMsg:
		m.loggingIn = false
		cmd := m.showNotice(noticeError, failureText(msg.err, "Login failed"))
		return m, cmd

	case cooldownTickMsg:
		if m.otp.Stage == signup.StageSent && m.otp.Cooldown > 0 {
			m.otp.Tick()
			if m.otp.Cooldown > 0 {
				return m, m.cooldownTick()
			}
		}
		return m, nil

	case noticeExpireMsg:
		if msg.seq == m.notifSeq {
			m.notif = notice{}
		}
		return m, nil

	case navigateMsg:
		m.viewMode = SuccessView
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	if m.viewMode == SuccessView {
		switch msg.String() {
		case "q", "enter", "esc":
			return m, tea.Quit
		}
		return m, nil
	}

	// OTP stage captures the keyboard for code entry.
	if m.signupMode && m.otp.Stage == signup.StageSent {
		return m.handleOtpKey(msg)
	}

	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "ctrl+t":
		// Switching audience drops back to the login form, like the web
		// tabs do.
		if m.tab == TabInfluencer {
			m.tab = TabBrand
		} else {
			m.tab = TabInfluencer
		}
		m.signupMode = false
		return m, nil
	case "ctrl+n":
		m.signupMode = !m.signupMode
		return m, nil
	}

	if m.signupMode {
		return m.handleSignupKey(msg)
	}
	return m.handleLoginKey(msg)
}

func (m Model) handleSignupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		m.setSignupFocus((m.focusIndex + 1) % signupInputCount)
		return m, nil
	case tea.KeyShiftTab, tea.KeyUp:
		m.setSignupFocus((m.focusIndex + signupInputCount - 1) % signupInputCount)
		return m, nil
	case tea.KeyEnter:
		return m.submitSignup()
	}

	var cmd tea.Cmd
	m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)

	// Errors appear only after the first submit attempt, then live-update
	// for the field being edited.
	if m.submitAttempted {
		m.revalidateFocused()
	}
	return m, cmd
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.tab == TabInfluencer {
		// Influencer login runs through the social providers in a browser;
		// only signup is interactive here.
		return m, nil
	}

	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		m.setLoginFocus((m.loginFocus + 1) % loginInputCount)
		return m, nil
	case tea.KeyShiftTab, tea.KeyUp:
		m.setLoginFocus((m.loginFocus + loginInputCount - 1) % loginInputCount)
		return m, nil
	case tea.KeyEnter:
		return m.submitLogin()
	}

	var cmd tea.Cmd
	m.loginInputs[m.loginFocus], cmd = m.loginInputs[m.loginFocus].Update(msg)
	return m, cmd
}

func (m Model) handleOtpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		// Cancel: back to the editable signup form, code discarded.
		m.otp.Cancel()
		m.otpErr = ""
		return m, nil
	case tea.KeyBackspace:
		m.otp.Code.Backspace()
		return m, nil
	case tea.KeyLeft:
		m.otp.Code.MoveLeft()
		return m, nil
	case tea.KeyRight:
		m.otp.Code.MoveRight()
		return m, nil
	case tea.KeyEnter:
		return m.verifyAndRegister()
	case tea.KeyRunes:
		if msg.Paste || len(msg.Runes) > 1 {
			m.otp.Code.Paste(string(msg.Runes))
			return m, nil
		}
		m.otp.Code.TypeDigit(msg.Runes[0])
		return m, nil
	}

	if msg.String() == "ctrl+r" {
		return m.resend()
	}
	return m, nil
}

// submitSignup is the validateAll gate in front of the first network call.
func (m Model) submitSignup() (tea.Model, tea.Cmd) {
	m.submitAttempted = true
	m.fieldErrs = signup.ValidateDraft(m.draft())
	if !m.fieldErrs.OK() {
		return m, nil
	}
	if m.sendingOtp {
		return m, nil
	}
	m.sendingOtp = true
	return m, tea.Batch(m.spinner.Tick, m.sendCodeCmd(m.draft().Email))
}

func (m Model) resend() (tea.Model, tea.Cmd) {
	if !m.otp.CanResend() || m.sendingOtp {
		return m, nil
	}
	m.otp.Code.Clear()
	m.otpErr = ""
	m.sendingOtp = true
	return m, tea.Batch(m.spinner.Tick, m.sendCodeCmd(m.draft().Email))
}

func (m Model) verifyAndRegister() (tea.Model, tea.Cmd) {
	if m.verifyingOtp || m.registering {
		return m, nil
	}
	if !m.otp.Code.Complete() {
		m.otpErr = "Enter the full 6-digit code"
		return m, nil
	}
	m.otpErr = ""
	m.verifyingOtp = true
	return m, tea.Batch(m.spinner.Tick, m.verifyCmd(m.draft().Email, m.otp.Code.Code()))
}

func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	email := strings.TrimSpace(m.loginInputs[loginEmail].Value())
	password := m.loginInputs[loginPassword].Value()
	if email == "" || password == "" {
		cmd := m.showNotice(noticeError, "Enter your email and password")
		return m, cmd
	}
	if m.loggingIn {
		return m, nil
	}
	m.loggingIn = true
	return m, tea.Batch(m.spinner.Tick, m.loginCmd(email, password))
}

// draft assembles the RegistrationDraft from the inputs, tagging the role
// from the active tab.
func (m Model) draft() signup.RegistrationDraft {
	return signup.RegistrationDraft{
		Name:       strings.TrimSpace(m.inputs[inputName].Value()),
		Email:      strings.TrimSpace(m.inputs[inputEmail].Value()),
		Password:   m.inputs[inputPassword].Value(),
		Role:       m.tab.Role(),
		WebsiteURL: strings.TrimSpace(m.inputs[inputWebsite].Value()),
		Bio:        strings.TrimSpace(m.inputs[inputBio].Value()),
	}
}

func (m *Model) revalidateFocused() {
	switch m.focusIndex {
	case inputName:
		m.fieldErrs.Name = signup.ValidateField(signup.FieldName, m.inputs[inputName].Value())
	case inputEmail:
		m.fieldErrs.Email = signup.ValidateField(signup.FieldEmail, m.inputs[inputEmail].Value())
	case inputPassword:
		m.fieldErrs.Password = signup.ValidateField(signup.FieldPassword, m.inputs[inputPassword].Value())
	}
}

func (m *Model) setFieldError(fe signup.FieldError) {
	switch fe.Field {
	case signup.FieldName:
		m.fieldErrs.Name = fe.Message
	case signup.FieldEmail:
		m.fieldErrs.Email = fe.Message
	case signup.FieldPassword:
		m.fieldErrs.Password = fe.Message
	}
}

func (m *Model) setSignupFocus(i int) {
	m.inputs[m.focusIndex].Blur()
	m.focusIndex = i
	m.inputs[m.focusIndex].Focus()
}

func (m *Model) setLoginFocus(i int) {
	m.loginInputs[m.loginFocus].Blur()
	m.loginFocus = i
	m.loginInputs[m.loginFocus].Focus()
}

func (m Model) busy() bool {
	return m.sendingOtp || m.verifyingOtp || m.registering || m.loggingIn
}

// showNotice replaces the current transient notification and schedules its
// expiry. The sequence number keeps stale expiries from clearing a newer
// notice.
func (m *Model) showNotice(kind noticeKind, text string) tea.Cmd {
	m.notifSeq++
	m.notif = notice{kind: kind, text: text}
	seq := m.notifSeq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg { return noticeExpireMsg{seq: seq} })
}

// failureText prefers the server-provided message over the fallback.
// Transport failures (no server response) always get the generic text.
func failureText(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Run starts the auth TUI.
func Run(cfg *config.Config, client *api.Client, sessions *session.Store) error {
	model := New(cfg, client, sessions, ui.DefaultStyles())
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
