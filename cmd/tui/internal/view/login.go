package view

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/ebill/internal/auth"
	"github.com/MrJamesThe3rd/ebill/internal/user"
)

// LoggedInMsg carries the identity of a successful login.
type LoggedInMsg struct {
	Identity auth.Identity
}

type loginFields struct {
	username string
	password string
}

type LoginModel struct {
	users  *user.Service
	form   *huh.Form
	fields *loginFields
	err    error
}

func NewLoginModel(users *user.Service) LoginModel {
	fields := &loginFields{}

	return LoginModel{
		users:  users,
		fields: fields,
		form:   buildLoginForm(fields),
	}
}

func buildLoginForm(fields *loginFields) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("username").
				Title("Username").
				Value(&fields.username),
			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&fields.password),
		),
	).WithWidth(40).WithShowHelp(false)
}

func (m LoginModel) Title() string     { return "Login" }
func (m LoginModel) ShortHelp() string { return "Enter: next | ctrl+c: quit" }

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(loginResultMsg); ok {
		if result.err != nil {
			m.err = result.err
			m.fields.password = ""
			m.form = buildLoginForm(m.fields)

			return m, m.form.Init()
		}

		return m, func() tea.Msg { return LoggedInMsg{Identity: result.identity} }
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.loginCmd(m.fields.username, m.fields.password)
}

func (m LoginModel) View() string {
	header := lipgloss.NewStyle().Bold(true).Render("Electricity Billing - Sign in")

	body := lipgloss.JoinVertical(lipgloss.Left, header, "", m.form.View())
	if m.err != nil {
		body += "\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	return lipgloss.NewStyle().Padding(2).Render(body)
}

type loginResultMsg struct {
	identity auth.Identity
	err      error
}

func (m LoginModel) loginCmd(username, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		u, err := m.users.Authenticate(ctx, username, password)
		if err != nil {
			return loginResultMsg{err: err}
		}

		return loginResultMsg{identity: auth.Identity{Username: u.Username, Role: u.Role}}
	}
}
