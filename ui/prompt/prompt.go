// Package prompt is a centered single-line input dialog, used for cell
// edits and for naming things. The caller checks Result after every
// update and reads Value on submit.
package prompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pgtui/gridq/ui/theme"
)

// Result represents the prompt outcome
type Result int

const (
	ResultNone Result = iota
	ResultSubmit
	ResultCancel
)

const maxInputWidth = 60

// Model represents the input prompt
type Model struct {
	title   string
	context string
	input   textinput.Model

	visible bool
	result  Result

	width  int
	height int
}

// New creates a hidden prompt.
func New() Model {
	ti := textinput.New()
	ti.Placeholder = "Enter new value..."
	ti.CharLimit = 1000
	ti.Width = maxInputWidth

	return Model{input: ti}
}

// Show displays the prompt with a title, a context line and the initial
// input value.
func (m *Model) Show(title, context, initial string) {
	m.title = title
	m.context = context
	m.input.SetValue(initial)
	m.input.CursorEnd()
	m.input.Focus()
	m.visible = true
	m.result = ResultNone
}

// Hide hides the prompt
func (m *Model) Hide() {
	m.visible = false
	m.input.Blur()
}

// Visible returns whether the prompt is visible
func (m Model) Visible() bool {
	return m.visible
}

// Result returns the prompt result
func (m Model) Result() Result {
	return m.result
}

// Value returns the entered value
func (m Model) Value() string {
	return strings.TrimSpace(m.input.Value())
}

// SetSize sets the terminal size for centering
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = min(width-8, maxInputWidth)
}

// Update handles input
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			m.result = ResultSubmit
			m.visible = false
			return m, nil
		case "esc":
			m.result = ResultCancel
			m.visible = false
			return m, nil
		default:
			m.input, cmd = m.input.Update(msg)
		}
	}
	return m, cmd
}

// View renders the prompt as a centered dialog.
func (m Model) View() string {
	if !m.visible {
		return ""
	}

	t := theme.Current

	titleStyle := lipgloss.NewStyle().
		Foreground(t.Colors.Primary).
		Bold(true)

	contextStyle := lipgloss.NewStyle().
		Foreground(t.Colors.ForegroundDim)

	helpStyle := lipgloss.NewStyle().
		Foreground(t.Colors.ForegroundDim).
		Padding(1, 0, 0, 0)

	dialogContent := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(m.title),
		contextStyle.Render(m.context),
		"",
		m.input.View(),
		helpStyle.Render("Enter: Confirm | Esc: Cancel"),
	)

	dialogStyle := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(t.Colors.Primary).
		Padding(1, 3)

	dialog := dialogStyle.Render(dialogContent)

	dialogWidth := lipgloss.Width(dialog)
	dialogHeight := lipgloss.Height(dialog)

	padLeft := max((m.width-dialogWidth)/2, 0)
	padTop := max((m.height-dialogHeight)/2, 0)

	var lines []string
	for i := 0; i < padTop; i++ {
		lines = append(lines, "")
	}
	leftPadding := strings.Repeat(" ", padLeft)
	for _, line := range strings.Split(dialog, "\n") {
		lines = append(lines, leftPadding+line)
	}
	for len(lines) < m.height {
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
