// Package toast is a transient notification dialog for operation
// outcomes. It stays up until dismissed with enter, esc or q.
package toast

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pgtui/gridq/ui/theme"
)

// Kind selects the notification styling
type Kind int

const (
	KindSuccess Kind = iota
	KindWarning
	KindError
)

// Model represents the notification popup
type Model struct {
	message string
	kind    Kind
	visible bool

	width  int
	height int
}

// New creates a hidden toast.
func New() Model {
	return Model{width: 80, height: 30}
}

// SetSize sets the terminal size for positioning
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShowError displays an error notification
func (m *Model) ShowError(message string) {
	m.show(message, KindError)
}

// ShowSuccess displays a success notification
func (m *Model) ShowSuccess(message string) {
	m.show(message, KindSuccess)
}

// ShowWarning displays a warning notification
func (m *Model) ShowWarning(message string) {
	m.show(message, KindWarning)
}

func (m *Model) show(message string, kind Kind) {
	m.message = message
	m.kind = kind
	m.visible = true
}

// Visible returns whether the toast is visible
func (m Model) Visible() bool {
	return m.visible
}

// Update handles input
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "esc", "q":
			m.visible = false
		}
	}
	return m, nil
}

// View renders the toast in the upper third of a full-size canvas.
func (m Model) View() string {
	if !m.visible {
		return ""
	}

	t := theme.Current

	var color lipgloss.Color
	var icon string
	switch m.kind {
	case KindError:
		color, icon = t.Colors.Error, "✘"
	case KindWarning:
		color, icon = t.Colors.Warning, "⚠"
	default:
		color, icon = t.Colors.Success, "✔"
	}

	dialogWidth := min(max(m.width-6, 30), 70)

	messageStyle := lipgloss.NewStyle().
		Foreground(color).
		Width(dialogWidth - 8)
	iconStyle := lipgloss.NewStyle().
		Foreground(color).
		Bold(true)
	helpStyle := lipgloss.NewStyle().
		Foreground(t.Colors.ForegroundDim)

	dialogContent := lipgloss.JoinVertical(
		lipgloss.Center,
		lipgloss.JoinHorizontal(lipgloss.Top, iconStyle.Render(icon+" "), messageStyle.Render(m.message)),
		"",
		helpStyle.Render("Enter/Esc/Q to close"),
	)

	dialogStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(1, 2).
		Width(dialogWidth)

	dialog := dialogStyle.Render(dialogContent)

	padLeft := max((m.width-lipgloss.Width(dialog))/2, 0)
	padTop := max((m.height-lipgloss.Height(dialog))/3, 0)

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
