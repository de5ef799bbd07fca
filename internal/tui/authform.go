package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"lifequest/internal/auth"
	"lifequest/internal/storage"
	"lifequest/internal/ui"
)

const (
	fieldUsername = iota
	fieldFirstName
	fieldLastName
	fieldPassword
	fieldConfirm
	fieldCount
)

// authForm is the login/signup screen shown until the gate opens.
type authForm struct {
	signup bool
	inputs []textinput.Model
	focus  int
	busy   bool
}

type authDoneMsg struct {
	account *storage.Account
	signup  bool
	err     error
}

func newAuthForm() authForm {
	inputs := make([]textinput.Model, fieldCount)
	placeholders := []string{"e.g. user@gmail.com", "First Name", "Last Name", "Password", "Confirm Password"}
	for i := range inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 128
		if i == fieldPassword || i == fieldConfirm {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		inputs[i] = ti
	}
	f := authForm{signup: true, inputs: inputs}
	f.inputs[fieldUsername].Focus()
	return f
}

// fields lists the visible inputs for the current mode.
func (f authForm) fields() []int {
	if f.signup {
		return []int{fieldUsername, fieldFirstName, fieldLastName, fieldPassword, fieldConfirm}
	}
	return []int{fieldUsername, fieldPassword}
}

func (f *authForm) setFocus(pos int) tea.Cmd {
	fields := f.fields()
	if pos < 0 {
		pos = len(fields) - 1
	}
	if pos >= len(fields) {
		pos = 0
	}
	f.focus = pos
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	return f.inputs[fields[pos]].Focus()
}

func (f *authForm) toggleMode() tea.Cmd {
	f.signup = !f.signup
	return f.setFocus(0)
}

func (f authForm) input() auth.SignupInput {
	return auth.SignupInput{
		Username:        strings.TrimSpace(f.inputs[fieldUsername].Value()),
		FirstName:       f.inputs[fieldFirstName].Value(),
		LastName:        f.inputs[fieldLastName].Value(),
		Password:        f.inputs[fieldPassword].Value(),
		ConfirmPassword: f.inputs[fieldConfirm].Value(),
	}
}

func (f *authForm) reset() {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
	f.busy = false
	f.setFocus(0)
}

func (f authForm) View() string {
	title := "Sign Up"
	if !f.signup {
		title = "Login"
	}
	labels := []string{"Username (Gmail)", "First Name", "Last Name", "Password", "Confirm Password"}

	var b strings.Builder
	b.WriteString(ui.Heading(ui.IconLock, title) + "\n\n")
	for _, idx := range f.fields() {
		b.WriteString(ui.Key.Render(labels[idx]) + "\n")
		b.WriteString(f.inputs[idx].View() + "\n\n")
	}
	if f.busy {
		b.WriteString(ui.Muted.Render("Checking…") + "\n")
	}
	b.WriteString(ui.Muted.Render("tab/↓: next field • enter: submit • ctrl+t: switch Sign Up/Login • esc: quit"))
	return b.String()
}
