// Package modal is a centered yes/no confirmation dialog. The caller
// shows it with a title and message, forwards key input, and reads
// Result once the dialog hides itself.
package modal

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pgtui/gridq/ui/theme"
)

// Result represents the confirmation outcome
type Result int

const (
	ResultNone Result = iota
	ResultYes
	ResultNo
)

// Model represents the confirmation dialog
type Model struct {
	title   string
	message string

	visible bool
	yes     bool
	result  Result

	width  int
	height int
}

// New creates a hidden dialog.
func New() Model {
	return Model{}
}

// Show displays the dialog. No starts selected so a stray enter is a
// safe answer for destructive confirmations.
func (m *Model) Show(title, message string) {
	m.title = title
	m.message = message
	m.visible = true
	m.yes = false
	m.result = ResultNone
}

// Hide hides the dialog
func (m *Model) Hide() {
	m.visible = false
}

// Visible returns whether the dialog is visible
func (m Model) Visible() bool {
	return m.visible
}

// Result returns the confirmation result
func (m Model) Result() Result {
	return m.result
}

// SetSize sets the terminal size for centering
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles input
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "left", "h", "tab", "right", "l", "shift+tab":
			m.yes = !m.yes
		case "y", "Y":
			m.result = ResultYes
			m.visible = false
		case "n", "N", "esc":
			m.result = ResultNo
			m.visible = false
		case "enter":
			if m.yes {
				m.result = ResultYes
			} else {
				m.result = ResultNo
			}
			m.visible = false
		}
	}

	return m, nil
}

// View renders the dialog centered on a full-size canvas.
func (m Model) View() string {
	if !m.visible {
		return ""
	}

	t := theme.Current

	titleStyle := lipgloss.NewStyle().
		Foreground(t.Colors.Primary).
		Bold(true).
		Align(lipgloss.Center)

	messageStyle := lipgloss.NewStyle().
		Foreground(t.Colors.Foreground).
		Align(lipgloss.Center).
		Padding(1, 0)

	activeStyle := lipgloss.NewStyle().
		Foreground(t.Colors.Foreground).
		Background(t.Colors.Primary).
		Padding(0, 2).
		Bold(true)

	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.Colors.ForegroundDim).
		Background(t.Colors.SelectionBg).
		Padding(0, 2)

	yesButton := inactiveStyle.Render(" Yes ")
	noButton := activeStyle.Render("[ No ]")
	if m.yes {
		yesButton = activeStyle.Render("[ Yes ]")
		noButton = inactiveStyle.Render(" No ")
	}
	buttons := lipgloss.NewStyle().Width(40).Align(lipgloss.Center).
		Render(lipgloss.JoinHorizontal(lipgloss.Center, yesButton, "   ", noButton))

	helpStyle := lipgloss.NewStyle().
		Foreground(t.Colors.ForegroundDim).
		Align(lipgloss.Center).
		Padding(1, 0, 0, 0)

	dialogContent := lipgloss.JoinVertical(
		lipgloss.Center,
		titleStyle.Render(m.title),
		messageStyle.Render(m.message),
		buttons,
		helpStyle.Render("←→: select | Enter: confirm | Y/N | Esc: cancel"),
	)

	dialogStyle := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(t.Colors.Primary).
		Padding(1, 3).
		Align(lipgloss.Center)

	dialog := dialogStyle.Render(dialogContent)

	padLeft := max((m.width-lipgloss.Width(dialog))/2, 0)
	padTop := max((m.height-lipgloss.Height(dialog))/2, 0)

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
