// View rendering for the auth TUI.
package auth

import (
	"fmt"
	"strings"

	"branflu/internal/signup"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.viewMode == SuccessView {
		return m.renderSuccess()
	}

	header := m.renderHeader()
	tabs := m.renderTabs()

	var card string
	switch {
	case m.signupMode && m.otp.Stage == signup.StageSent:
		card = m.renderOtpEntry()
	case m.signupMode:
		card = m.renderSignupForm()
	default:
		card = m.renderLoginForm()
	}

	sections := []string{header, tabs, m.styles.Card.Render(card)}
	if m.notif.kind != noticeNone {
		sections = append(sections, m.renderNotice())
	}
	sections = append(sections, m.renderFooter())

	return m.styles.Content.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) renderHeader() string {
	title := m.styles.Header.Render(" Branflu ")
	tagline := m.styles.Subtitle.Render("Where creators and brands meet")

	status := m.styles.Success.Render("Ready")
	if m.busy() {
		label := "Working..."
		switch {
		case m.sendingOtp:
			label = "Sending code..."
		case m.verifyingOtp:
			label = "Verifying code..."
		case m.registering:
			label = "Creating account..."
		case m.loggingIn:
			label = "Logging in..."
		}
		status = lipgloss.JoinHorizontal(lipgloss.Center, m.spinner.View(), " ", m.styles.Badge.Render(label))
	}

	line := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", status)
	return lipgloss.JoinVertical(lipgloss.Left, line, tagline, "")
}

func (m Model) renderTabs() string {
	influencer := m.styles.Tab.Render("Influencer")
	brand := m.styles.Tab.Render("Brand")
	if m.tab == TabInfluencer {
		influencer = m.styles.TabActive.Render("Influencer")
	} else {
		brand = m.styles.TabActive.Render("Brand")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, influencer, brand) + "\n"
}

func (m Model) renderSignupForm() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render(fmt.Sprintf("Sign up as %s", m.tab.Role())))
	sb.WriteString("\n")

	fields := []struct {
		idx int
		err string
	}{
		{inputName, m.fieldErrs.Name},
		{inputEmail, m.fieldErrs.Email},
		{inputPassword, m.fieldErrs.Password},
		{inputWebsite, ""},
		{inputBio, ""},
	}
	for _, f := range fields {
		sb.WriteString(m.inputs[f.idx].View())
		sb.WriteString("\n")
		if f.err != "" {
			sb.WriteString(m.styles.FieldError.Render("  " + f.err))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.Help.Render("Enter: send verification code  •  Ctrl+N: back to login"))
	return sb.String()
}

func (m Model) renderOtpEntry() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Check your inbox"))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Body.Render("We sent a 6-digit code to " + m.styles.Bold.Render(m.otp.MaskedEmail)))
	sb.WriteString("\n\n")

	cells := make([]string, signup.CodeLength)
	for i := 0; i < signup.CodeLength; i++ {
		digit := m.otp.Code.Cell(i)
		if digit == "" {
			digit = " "
		}
		style := m.styles.CodeCell
		if i == m.otp.Code.Focus() {
			style = m.styles.CodeCellFocused
		}
		cells[i] = style.Render(digit)
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	sb.WriteString("\n")

	if m.otpErr != "" {
		sb.WriteString(m.styles.Error.Render(m.otpErr))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	if m.otp.Cooldown > 0 {
		sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("Resend available in %ds", m.otp.Cooldown)))
	} else {
		sb.WriteString(m.styles.Info.Render("Ctrl+R: resend code"))
	}
	sb.WriteString("\n")
	sb.WriteString(m.styles.Help.Render("Enter: verify & create account  •  Esc: back to the form"))
	return sb.String()
}

func (m Model) renderLoginForm() string {
	var sb strings.Builder

	if m.tab == TabInfluencer {
		sb.WriteString(m.styles.Title.Render("Influencer login"))
		sb.WriteString("\n")
		sb.WriteString(m.styles.Body.Render("Influencer login runs through your social account in a browser:"))
		sb.WriteString("\n\n")
		sb.WriteString(m.styles.Info.Render("  Facebook / Instagram"))
		sb.WriteString("\n")
		sb.WriteString(m.styles.Info.Render("  YouTube"))
		sb.WriteString("\n\n")
		sb.WriteString(m.styles.Muted.Render("Open " + m.cfg.API.BaseURL + " in a browser to continue."))
		sb.WriteString("\n\n")
		sb.WriteString(m.styles.Help.Render("Ctrl+N: sign up instead"))
		return sb.String()
	}

	sb.WriteString(m.styles.Title.Render("Brand login"))
	sb.WriteString("\n")
	for _, in := range m.loginInputs {
		sb.WriteString(in.View())
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.styles.Help.Render("Enter: login  •  Ctrl+N: sign up instead"))
	return sb.String()
}

func (m Model) renderNotice() string {
	switch m.notif.kind {
	case noticeSuccess:
		return m.styles.Success.Render(m.notif.text)
	case noticeError:
		return m.styles.Error.Render(m.notif.text)
	default:
		return m.styles.Info.Render(m.notif.text)
	}
}

func (m Model) renderSuccess() string {
	content := lipgloss.JoinVertical(
		lipgloss.Center,
		m.styles.Title.Render("Branflu"),
		m.styles.Success.Render(m.successText),
		"",
		m.styles.Help.Render("Press q to exit"),
	)
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}

func (m Model) renderFooter() string {
	return m.styles.Footer.Render("Ctrl+T: switch tab  •  Ctrl+C: quit")
}
