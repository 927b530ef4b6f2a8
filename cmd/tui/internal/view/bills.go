package view

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/ebill/internal/bill"
	"github.com/MrJamesThe3rd/ebill/internal/export"
	"github.com/MrJamesThe3rd/ebill/internal/tariff"
)

var (
	typeFilters   = []string{"All", string(tariff.Domestic), string(tariff.Commercial)}
	statusFilters = []string{"All", string(bill.StatusUnpaid), string(bill.StatusPaid)}
	dateFilters   = []Timeframe{TimeframeAll, TimeframeToday, TimeframeThisMonth, TimeframeLastMonth}
)

type BillsModel struct {
	CommonModel
	bills *bill.Service

	table table.Model
	rows  []*bill.Bill

	typeIdx   int
	statusIdx int
	dateIdx   int

	loading bool
	err     error
	status  string
}

func NewBillsModel(bills *bill.Service, common CommonModel) BillsModel {
	columns := []table.Column{
		{Title: "Bill No", Width: 11},
		{Title: "Date", Width: 12},
		{Title: "Customer", Width: 24},
		{Title: "Type", Width: 11},
		{Title: "Units", Width: 9},
		{Title: "Total", Width: 14},
		{Title: "Status", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return BillsModel{
		CommonModel: common,
		bills:       bills,
		table:       t,
		loading:     true,
	}
}

func (m BillsModel) Title() string { return "Bills" }

func (m BillsModel) ShortHelp() string {
	help := "Esc: back | c: type | s: status | d: date | p: save PDF | e: export CSV | r: refresh"
	if m.Session.IsAdmin() {
		help += " | x: toggle paid"
	}

	return help
}

func (m BillsModel) Init() tea.Cmd {
	return m.loadCmd()
}

// Filter returns the ledger query for the current filter selection.
func (m BillsModel) Filter() bill.ListFilter {
	filter := bill.ListFilter{}

	if m.typeIdx > 0 {
		filter.CustomerType = new(tariff.CustomerType(typeFilters[m.typeIdx]))
	}

	if m.statusIdx > 0 {
		filter.Status = new(bill.Status(statusFilters[m.statusIdx]))
	}

	filter.From, filter.To = dateFilters[m.dateIdx].Range(time.Now())

	return filter
}

func (m BillsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadBillsMsg:
		m.loading = false
		m.err = msg.err
		m.rows = msg.bills
		m.refreshTable()

		return m, nil

	case statusUpdatedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error updating status: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("%s marked %s", msg.number, msg.to)

		return m, m.loadCmd()

	case fileSavedMsg:
		m.status = msg.String()
		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "c":
			m.typeIdx = (m.typeIdx + 1) % len(typeFilters)
			return m, m.loadCmd()
		case "s":
			m.statusIdx = (m.statusIdx + 1) % len(statusFilters)
			return m, m.loadCmd()
		case "d":
			m.dateIdx = (m.dateIdx + 1) % len(dateFilters)
			return m, m.loadCmd()
		case "p":
			if b := m.selected(); b != nil {
				return m, savePDFCmd(b)
			}

			return m, nil
		case "e":
			return m, saveCSVCmd(m.rows)
		case "x":
			if !m.Session.IsAdmin() {
				m.status = "Only admins can change payment status"
				return m, nil
			}

			if b := m.selected(); b != nil {
				return m, m.toggleStatusCmd(b)
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m BillsModel) selected() *bill.Bill {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return nil
	}

	return m.rows[idx]
}

func (m BillsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading bills...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	header := fmt.Sprintf(
		"Filter: [c] Type: %s | [s] Status: %s | [d] Date: %s | %d bills",
		activeStyle(typeFilters[m.typeIdx]),
		activeStyle(statusFilters[m.statusIdx]),
		activeStyle(dateFilters[m.dateIdx].String()),
		len(m.rows),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *BillsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.rows))
	for _, b := range m.rows {
		rows = append(rows, table.Row{
			b.Number,
			FormatDate(b.CreatedAt),
			b.CustomerName,
			string(b.CustomerType),
			fmt.Sprintf("%.2f", b.Units),
			FormatMoney(b.Total),
			string(b.Status),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadBillsMsg struct {
	bills []*bill.Bill
	err   error
}

func (m BillsModel) loadCmd() tea.Cmd {
	filter := m.Filter()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		bills, err := m.bills.List(ctx, filter)

		return loadBillsMsg{bills: bills, err: err}
	}
}

type statusUpdatedMsg struct {
	number string
	to     bill.Status
	err    error
}

func (m BillsModel) toggleStatusCmd(b *bill.Bill) tea.Cmd {
	to := bill.StatusPaid
	if b.IsPaid() {
		to = bill.StatusUnpaid
	}

	number := b.Number

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return statusUpdatedMsg{number: number, to: to, err: m.bills.UpdateStatus(ctx, number, to)}
	}
}

func saveCSVCmd(bills []*bill.Bill) tea.Cmd {
	return func() tea.Msg {
		path := fmt.Sprintf("bills_%s.csv", time.Now().Format("20060102_150405"))

		f, err := os.Create(path)
		if err != nil {
			return fileSavedMsg{err: err}
		}

		if err := export.BillCSV(f, bills...); err != nil {
			f.Close()
			return fileSavedMsg{err: err}
		}

		return fileSavedMsg{path: path, err: f.Close()}
	}
}
