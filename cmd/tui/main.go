package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/ebill/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/ebill/internal/backup"
	backupStore "github.com/MrJamesThe3rd/ebill/internal/backup/store"
	"github.com/MrJamesThe3rd/ebill/internal/bill"
	billStore "github.com/MrJamesThe3rd/ebill/internal/bill/store"
	"github.com/MrJamesThe3rd/ebill/internal/config"
	"github.com/MrJamesThe3rd/ebill/internal/database"
	"github.com/MrJamesThe3rd/ebill/internal/export"
	"github.com/MrJamesThe3rd/ebill/internal/importer"
	"github.com/MrJamesThe3rd/ebill/internal/report"
	"github.com/MrJamesThe3rd/ebill/internal/user"
	userStore "github.com/MrJamesThe3rd/ebill/internal/user/store"
)

type services struct {
	users   *user.Service
	bills   *bill.Service
	reports *report.Service
	imports *importer.Service
	backups *backup.Service
}

type model struct {
	svc     services
	session view.CommonModel

	currentView View
	active      view.View
}

type View int

const (
	ViewLogin View = iota
	ViewMenu
	ViewGenerate
	ViewBills
	ViewReport
	ViewImport
	ViewBackup
)

func initialModel() model {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	export.Issuer = cfg.App.Name

	billSvc := bill.NewService(billStore.New(db))
	userSvc := user.NewService(userStore.New(db))

	if err := userSvc.EnsureAdmin(ctx, cfg.App.AdminPassword); err != nil {
		slog.Error("failed to seed admin", "error", err)
		os.Exit(1)
	}

	svc := services{
		users:   userSvc,
		bills:   billSvc,
		reports: report.NewService(billSvc),
		imports: importer.NewService(billSvc),
		backups: backup.NewService(backupStore.New(db)),
	}

	return model{
		svc:         svc,
		currentView: ViewLogin,
		active:      view.NewLoginModel(svc.users),
	}
}

func (m model) Init() tea.Cmd {
	return m.active.Init()
}

// open switches to v, building a fresh screen so no state leaks between visits.
func (m model) open(v View) (tea.Model, tea.Cmd) {
	var next view.View

	switch v {
	case ViewGenerate:
		next = view.NewGenerateModel(m.svc.bills)
	case ViewBills:
		next = view.NewBillsModel(m.svc.bills, m.session)
	case ViewReport:
		next = view.NewReportModel(m.svc.reports)
	case ViewImport:
		next = view.NewImportModel(m.svc.imports)
	case ViewBackup:
		if !m.session.Session.IsAdmin() {
			return m, nil
		}

		next = view.NewBackupModel(m.svc.backups)
	default:
		return m, nil
	}

	m.currentView = v
	m.active = next

	return m, next.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "l":
				m.session = view.CommonModel{}
				m.currentView = ViewLogin
				m.active = view.NewLoginModel(m.svc.users)

				return m, m.active.Init()
			case "1":
				return m.open(ViewGenerate)
			case "2":
				return m.open(ViewBills)
			case "3":
				return m.open(ViewReport)
			case "4":
				return m.open(ViewImport)
			case "5":
				return m.open(ViewBackup)
			}

			return m, nil
		}

	case view.LoggedInMsg:
		m.session = view.CommonModel{Session: msg.Identity}
		m.currentView = ViewMenu
		m.active = nil

		return m, nil

	case view.BackMsg:
		m.currentView = ViewMenu
		m.active = nil

		return m, nil
	}

	if m.active == nil {
		return m, nil
	}

	newModel, cmd := m.active.Update(msg)
	if v, ok := newModel.(view.View); ok {
		m.active = v
	}

	return m, cmd
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

func (m model) View() string {
	if m.currentView == ViewMenu || m.active == nil {
		return m.menuView()
	}

	if m.currentView == ViewLogin {
		return m.active.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingLeft(1).Render(titleStyle.Render(m.active.Title())),
		m.active.View(),
		lipgloss.NewStyle().PaddingLeft(1).Render(helpStyle.Render(m.active.ShortHelp())),
	)
}

func (m model) menuView() string {
	s := m.session.Session

	menu := titleStyle.Render("Electricity Billing") + "\n" +
		helpStyle.Render(fmt.Sprintf("Signed in as %s (%s)", s.Username, s.Role)) + "\n\n" +
		"1. Generate Bill\n" +
		"2. Bills\n" +
		"3. Revenue Report\n" +
		"4. Import Readings\n"

	if s.IsAdmin() {
		menu += "5. Backup & Restore\n"
	}

	menu += "\nl. Log out\nq. Quit"

	return lipgloss.NewStyle().Padding(2).Render(menu)
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
