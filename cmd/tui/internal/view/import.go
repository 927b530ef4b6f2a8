package view

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/ebill/internal/importer"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStateResult
)

type ImportModel struct {
	importer *importer.Service

	state      importState
	filePicker filepicker.Model

	path   string
	result *importer.Result
	err    error
}

func NewImportModel(imp *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		importer:   imp,
		filePicker: fp,
	}
}

func (m ImportModel) Title() string { return "Import Readings" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateResult {
		return "Esc: pick another file"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

	case importResultMsg:
		m.state = importStateResult
		m.result = msg.result
		m.err = msg.err

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.path = path

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateResult:
		m.state = importStateFilePick
		m.result = nil
		m.err = nil

		return m, nil
	case importStateImporting:
		return m, nil
	}

	return m, Back
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Importing from %s...", m.path))
	case importStateResult:
		return lipgloss.NewStyle().Padding(1).Render(m.viewResult())
	}

	return lipgloss.NewStyle().Padding(1).Render("Pick a meter readings CSV:\n\n" + m.filePicker.View())
}

func (m ImportModel) viewResult() string {
	var lines []string

	if m.err != nil {
		lines = append(lines, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if m.result != nil {
		lines = append(lines, successStyle.Render(fmt.Sprintf("Generated %d bills.", len(m.result.Created))))

		for _, b := range m.result.Created {
			lines = append(lines, fmt.Sprintf("  %s  %-24s %s", b.Number, b.CustomerName, FormatMoney(b.Total)))
		}

		if len(m.result.Rejected) > 0 {
			lines = append(lines, "", errorStyle.Render(fmt.Sprintf("Rejected %d readings:", len(m.result.Rejected))))

			for _, r := range m.result.Rejected {
				lines = append(lines, fmt.Sprintf("  line %d  %s: %s", r.Line, r.CustomerName, r.Reason))
			}
		}
	}

	return panelStyle.Render(strings.Join(lines, "\n"))
}

type importResultMsg struct {
	result *importer.Result
	err    error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: fmt.Errorf("opening file: %w", err)}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.importer.Import(ctx, f)

		return importResultMsg{result: result, err: err}
	}
}
