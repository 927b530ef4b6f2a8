package view

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/ebill/internal/bill"
	"github.com/MrJamesThe3rd/ebill/internal/export"
	"github.com/MrJamesThe3rd/ebill/internal/tariff"
)

type generateState int

const (
	generateStateForm generateState = iota
	generateStateResult
)

type generateFields struct {
	name         string
	customerType string
	units        string
	status       string
}

type GenerateModel struct {
	bills *bill.Service

	state  generateState
	form   *huh.Form
	fields *generateFields

	bill   *bill.Bill
	slabs  []tariff.SlabLine
	status string
	err    error
}

func NewGenerateModel(bills *bill.Service) GenerateModel {
	fields := &generateFields{
		customerType: string(tariff.Domestic),
		status:       string(bill.StatusUnpaid),
	}

	return GenerateModel{
		bills:  bills,
		fields: fields,
		form:   buildGenerateForm(fields),
	}
}

func validateUnits(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
		return errors.New("units must be a number")
	}

	return nil
}

func buildGenerateForm(fields *generateFields) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Customer Name").
				Value(&fields.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return bill.ErrMissingCustomerName
					}
					return nil
				}),
			huh.NewSelect[string]().
				Key("type").
				Title("Customer Type").
				Options(
					huh.NewOption("Domestic", string(tariff.Domestic)),
					huh.NewOption("Commercial", string(tariff.Commercial)),
				).
				Value(&fields.customerType),
			huh.NewInput().
				Key("units").
				Title("Units Consumed").
				Placeholder("0").
				Value(&fields.units).
				Validate(validateUnits),
			huh.NewSelect[string]().
				Key("status").
				Title("Payment Status").
				Options(
					huh.NewOption("Unpaid", string(bill.StatusUnpaid)),
					huh.NewOption("Paid", string(bill.StatusPaid)),
				).
				Value(&fields.status),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m GenerateModel) Title() string { return "Generate Bill" }

func (m GenerateModel) ShortHelp() string {
	if m.state == generateStateResult {
		return "p: save PDF | n: new bill | Esc: back"
	}

	return "Enter: next | Esc: back"
}

func (m GenerateModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m GenerateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case generateResultMsg:
		if msg.err != nil {
			m.err = msg.err
			m.form = buildGenerateForm(m.fields)

			return m, m.form.Init()
		}

		m.err = nil
		m.bill = msg.bill
		m.slabs = msg.slabs
		m.state = generateStateResult

		return m, nil

	case fileSavedMsg:
		m.status = msg.String()
		return m, nil
	}

	if m.state == generateStateResult {
		return m.updateResult(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.generateCmd(*m.fields)
}

func (m GenerateModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "n":
		next := NewGenerateModel(m.bills)
		return next, next.Init()
	case "p":
		return m, savePDFCmd(m.bill)
	}

	return m, nil
}

func (m GenerateModel) View() string {
	if m.state == generateStateResult && m.bill != nil {
		return lipgloss.NewStyle().Padding(1).Render(m.viewBill())
	}

	body := m.form.View()
	if m.err != nil {
		body = errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + body
	}

	return lipgloss.NewStyle().Padding(1).Render(body)
}

func (m GenerateModel) viewBill() string {
	b := m.bill

	lines := []string{
		successStyle.Render("Bill generated: " + b.Number),
		"",
		fmt.Sprintf("Customer:       %s (%s)", b.CustomerName, b.CustomerType),
		fmt.Sprintf("Units:          %.2f", b.Units),
		fmt.Sprintf("Energy charge:  %s", FormatMoney(b.EnergyCharge)),
		fmt.Sprintf("Fixed charge:   %s", FormatMoney(b.FixedCharge)),
		fmt.Sprintf("GST:            %s", FormatMoney(b.GST)),
		fmt.Sprintf("Total:          %s", activeStyle(FormatMoney(b.Total))),
		fmt.Sprintf("Status:         %s", b.Status),
	}

	if len(m.slabs) > 0 {
		lines = append(lines, "", "Slabs:")
		for _, s := range m.slabs {
			lines = append(lines, fmt.Sprintf("  #%-3d %8.2f units @ %.2f = %s", s.Slab, s.Units, s.Rate, FormatMoney(s.Amount)))
		}
	}

	content := panelStyle.Render(strings.Join(lines, "\n"))
	if m.status != "" {
		content += "\n" + lipgloss.NewStyle().Faint(true).Render(m.status)
	}

	return content
}

type generateResultMsg struct {
	bill  *bill.Bill
	slabs []tariff.SlabLine
	err   error
}

// parseUnits follows the upload rule: blank or unparsable input is 0.
func parseUnits(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}

	return tariff.NormalizeUnits(v)
}

func (m GenerateModel) generateCmd(fields generateFields) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		b, err := m.bills.Generate(ctx, bill.GenerateParams{
			CustomerName: fields.name,
			CustomerType: tariff.ParseCustomerType(fields.customerType),
			Units:        parseUnits(fields.units),
			Status:       bill.Status(fields.status),
		})
		if err != nil {
			return generateResultMsg{err: err}
		}

		slabs, err := tariff.Breakdown(b.Units, b.CustomerType)

		return generateResultMsg{bill: b, slabs: slabs, err: err}
	}
}

type fileSavedMsg struct {
	path string
	err  error
}

func (msg fileSavedMsg) String() string {
	if msg.err != nil {
		return fmt.Sprintf("Error saving file: %v", msg.err)
	}

	return "Saved " + msg.path
}

func savePDFCmd(b *bill.Bill) tea.Cmd {
	return func() tea.Msg {
		data, err := export.BillPDF(b)
		if err != nil {
			return fileSavedMsg{err: err}
		}

		path := b.Number + ".pdf"

		return fileSavedMsg{path: path, err: os.WriteFile(path, data, 0o644)}
	}
}
