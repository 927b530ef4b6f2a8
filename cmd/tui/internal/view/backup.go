package view

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/ebill/internal/backup"
)

const (
	backupActionSave    = "backup"
	backupActionRestore = "restore"

	backupTimeout = time.Minute
)

type backupFields struct {
	action  string
	path    string
	confirm bool
}

type BackupModel struct {
	backups *backup.Service

	form   *huh.Form
	fields *backupFields

	done   bool
	status string
	err    error
}

func NewBackupModel(backups *backup.Service) BackupModel {
	fields := &backupFields{
		action: backupActionSave,
		path:   fmt.Sprintf("ebill_backup_%s.json", time.Now().Format("20060102_150405")),
	}

	return BackupModel{
		backups: backups,
		fields:  fields,
		form:    buildBackupForm(fields),
	}
}

func buildBackupForm(fields *backupFields) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Action").
				Options(
					huh.NewOption("Back up to file", backupActionSave),
					huh.NewOption("Restore from file", backupActionRestore),
				).
				Value(&fields.action),
			huh.NewInput().
				Title("File").
				Value(&fields.path).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("file is required")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Restoring replaces every user and bill. Continue?").
				Value(&fields.confirm),
		).WithHideFunc(func() bool { return fields.action != backupActionRestore }),
	).WithWidth(60).WithShowHelp(false)
}

func (m BackupModel) Title() string { return "Backup & Restore" }

func (m BackupModel) ShortHelp() string {
	if m.done {
		return "Enter: again | Esc: back"
	}

	return "Enter: next | Esc: back"
}

func (m BackupModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m BackupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case backupDoneMsg:
		m.done = true
		m.err = msg.err
		m.status = msg.status

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.done {
			if msg.Type == tea.KeyEnter {
				next := NewBackupModel(m.backups)
				return next, next.Init()
			}

			return m, nil
		}
	}

	if m.done {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	fields := *m.fields
	if fields.action == backupActionRestore && !fields.confirm {
		m.done = true
		m.status = "Restore cancelled"

		return m, nil
	}

	return m, m.runCmd(fields)
}

func (m BackupModel) View() string {
	if !m.done {
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	}

	body := successStyle.Render(m.status)
	if m.err != nil {
		body = errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	return lipgloss.NewStyle().Padding(1).Render(panelStyle.Render(body))
}

type backupDoneMsg struct {
	status string
	err    error
}

func (m BackupModel) runCmd(fields backupFields) tea.Cmd {
	path := strings.TrimSpace(fields.path)

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
		defer cancel()

		if fields.action == backupActionRestore {
			f, err := os.Open(path)
			if err != nil {
				return backupDoneMsg{err: fmt.Errorf("opening backup: %w", err)}
			}
			defer f.Close()

			stats, err := m.backups.Restore(ctx, f)
			if err != nil {
				return backupDoneMsg{err: err}
			}

			return backupDoneMsg{status: fmt.Sprintf("Restored %d users and %d bills from %s", stats.Users, stats.Bills, path)}
		}

		f, err := os.Create(path)
		if err != nil {
			return backupDoneMsg{err: fmt.Errorf("creating backup: %w", err)}
		}

		if err := m.backups.Backup(ctx, f); err != nil {
			f.Close()
			return backupDoneMsg{err: err}
		}

		if err := f.Close(); err != nil {
			return backupDoneMsg{err: err}
		}

		return backupDoneMsg{status: "Saved backup to " + path}
	}
}
