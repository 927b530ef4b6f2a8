package view

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/ebill/internal/bill"
	"github.com/MrJamesThe3rd/ebill/internal/export"
	"github.com/MrJamesThe3rd/ebill/internal/report"
	"github.com/MrJamesThe3rd/ebill/internal/tariff"
)

type reportState int

const (
	reportStatePick reportState = iota
	reportStateLoading
	reportStateResult
)

type ReportModel struct {
	reports *report.Service

	state   reportState
	picker  TimeframePicker
	spinner spinner.Model

	label   string
	summary report.Summary
	bills   []*bill.Bill
	status  string
	err     error
}

func NewReportModel(reports *report.Service) ReportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return ReportModel{
		reports: reports,
		picker:  NewTimeframePicker(TimeframeThisMonth),
		spinner: s,
	}
}

func (m ReportModel) Title() string { return "Revenue Report" }

func (m ReportModel) ShortHelp() string {
	if m.state == reportStateResult {
		return "x: save XLSX | c: save CSV | t: change timeframe | Esc: back"
	}

	return "Up/Down: choose | Enter: select | Esc: back"
}

func (m ReportModel) Init() tea.Cmd {
	return nil
}

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.state = reportStateLoading
		m.label = msg.Label
		m.status = ""

		return m, tea.Batch(m.spinner.Tick, m.buildCmd(msg.Apply(bill.ListFilter{})))

	case reportBuiltMsg:
		m.err = msg.err
		m.summary = msg.summary
		m.bills = msg.bills
		m.state = reportStateResult

		return m, nil

	case fileSavedMsg:
		m.status = msg.String()
		return m, nil

	case spinner.TickMsg:
		if m.state != reportStateLoading {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.KeyMsg:
		switch m.state {
		case reportStateResult:
			return m.updateResult(msg)
		case reportStatePick:
			if msg.Type == tea.KeyEsc && m.picker.IsSelecting() {
				return m, Back
			}
		case reportStateLoading:
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	return m, cmd
}

func (m ReportModel) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, Back
	case "t":
		m.state = reportStatePick
		m.picker.Reset()

		return m, nil
	case "x":
		if m.err == nil {
			return m, saveXLSXCmd(m.summary, m.bills)
		}
	case "c":
		if m.err == nil {
			return m, saveCSVCmd(m.bills)
		}
	}

	return m, nil
}

func (m ReportModel) View() string {
	switch m.state {
	case reportStateLoading:
		return lipgloss.NewStyle().Padding(2).Render(m.spinner.View() + " Building report...")
	case reportStateResult:
		return lipgloss.NewStyle().Padding(1).Render(m.viewSummary())
	}

	return lipgloss.NewStyle().Padding(1).Render(m.picker.View())
}

func (m ReportModel) viewSummary() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	s := m.summary

	lines := []string{
		successStyle.Render("Report: " + m.label),
		"",
		fmt.Sprintf("Bills:          %d", s.TotalBills),
		fmt.Sprintf("Revenue:        %s", activeStyle(FormatMoney(s.TotalRevenue))),
		fmt.Sprintf("Average units:  %.2f", s.AverageUnits),
	}

	if len(s.ByType) > 0 {
		types := make([]tariff.CustomerType, 0, len(s.ByType))
		for t := range s.ByType {
			types = append(types, t)
		}

		slices.Sort(types)

		lines = append(lines, "", "By customer type:")
		for _, t := range types {
			totals := s.ByType[t]
			lines = append(lines, fmt.Sprintf("  %-12s %5d bills  %s", t, totals.Bills, FormatMoney(totals.Revenue)))
		}
	}

	if len(s.Daily) > 0 {
		lines = append(lines, "", "Daily:")
		for _, d := range s.Daily {
			lines = append(lines, fmt.Sprintf("  %s %5d bills  %s", FormatDate(d.Date), d.Bills, FormatMoney(d.Revenue)))
		}
	}

	content := panelStyle.Render(strings.Join(lines, "\n"))
	if m.status != "" {
		content += "\n" + lipgloss.NewStyle().Faint(true).Render(m.status)
	}

	return content
}

type reportBuiltMsg struct {
	summary report.Summary
	bills   []*bill.Bill
	err     error
}

func (m ReportModel) buildCmd(filter bill.ListFilter) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		summary, bills, err := m.reports.Build(ctx, filter)

		return reportBuiltMsg{summary: summary, bills: bills, err: err}
	}
}

func saveXLSXCmd(summary report.Summary, bills []*bill.Bill) tea.Cmd {
	return func() tea.Msg {
		data, err := export.ReportXLSX(summary, bills)
		if err != nil {
			return fileSavedMsg{err: err}
		}

		path := fmt.Sprintf("report_%s.xlsx", time.Now().Format("20060102_150405"))

		return fileSavedMsg{path: path, err: os.WriteFile(path, data, 0o644)}
	}
}
