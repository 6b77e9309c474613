// Package help is the keyboard shortcut overlay.
package help

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pgtui/gridq/ui/theme"
)

// Section groups keymaps under a tab title
type Section struct {
	Title   string
	Keymaps []Keymap
}

// Keymap represents a single key mapping
type Keymap struct {
	Key         string
	Description string
}

// Model represents the help overlay
type Model struct {
	sections      []Section
	activeSection int
	scrollOffset  int
	visibleLines  int
	visible       bool

	width  int
	height int
}

// New creates a hidden help overlay with the default sections.
func New() Model {
	return Model{
		sections: []Section{
			{
				Title: "Navigation",
				Keymaps: []Keymap{
					{"j / ↓", "Move down one row"},
					{"k / ↑", "Move up one row"},
					{"h / ←", "Move left one column"},
					{"l / →", "Move right one column"},
					{"J", "Half page down"},
					{"K", "Half page up"},
					{"H", "Jump to first column"},
					{"L", "Jump to last column"},
					{"Home", "Jump to first row"},
					{"End", "Jump to last row"},
					{">", "Next page"},
					{"<", "Previous page"},
				},
			},
			{
				Title: "Editing",
				Keymaps: []Keymap{
					{"Enter / e", "Edit cell"},
					{"o", "Insert new row"},
					{"d", "Delete selected rows (or cursor row)"},
					{"D", "Delete all rows"},
					{"u", "Reload current page"},
				},
			},
			{
				Title: "Selection",
				Keymaps: []Keymap{
					{"v", "Toggle row selection"},
					{"V", "Select all rows"},
					{"Esc", "Clear selection"},
				},
			},
			{
				Title: "Sort & Filter",
				Keymaps: []Keymap{
					{"Space / s", "Sort by column (asc → desc → off)"},
					{"/", "Focus filter input"},
					{"C", "Clear filters"},
				},
			},
			{
				Title: "Columns",
				Keymaps: []Keymap{
					{"f", "Freeze/unfreeze column"},
					{"+ / -", "Widen/narrow column"},
					{"{ / }", "Move column left/right"},
				},
			},
			{
				Title: "Export",
				Keymaps: []Keymap{
					{"y", "Yank (copy) cell"},
					{"Y", "Copy selection as CSV"},
					{"E", "Copy page as CSV"},
				},
			},
			{
				Title: "Global",
				Keymaps: []Keymap{
					{"?", "Show this help"},
					{"T", "Cycle themes"},
					{"q / Ctrl+C", "Quit"},
				},
			},
		},
		visibleLines: 20,
	}
}

// Show displays the overlay from the first section.
func (m *Model) Show() {
	m.activeSection = 0
	m.scrollOffset = 0
	m.visible = true
}

// Hide hides the overlay
func (m *Model) Hide() {
	m.visible = false
}

// Visible returns whether the overlay is visible
func (m Model) Visible() bool {
	return m.visible
}

// SetSize sets the terminal size for centering
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.visibleLines = max(5, height/2-8)
}

// Update handles input
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q", "?":
			m.visible = false
		case "tab", "l", "right":
			m.activeSection = (m.activeSection + 1) % len(m.sections)
			m.scrollOffset = 0
		case "shift+tab", "h", "left":
			m.activeSection--
			if m.activeSection < 0 {
				m.activeSection = len(m.sections) - 1
			}
			m.scrollOffset = 0
		case "j", "down":
			maxOffset := max(0, len(m.sections[m.activeSection].Keymaps)-m.visibleLines)
			if m.scrollOffset < maxOffset {
				m.scrollOffset++
			}
		case "k", "up":
			if m.scrollOffset > 0 {
				m.scrollOffset--
			}
		case "1", "2", "3", "4", "5", "6", "7":
			idx := int(msg.String()[0] - '1')
			if idx < len(m.sections) {
				m.activeSection = idx
				m.scrollOffset = 0
			}
		}
	}
	return m, nil
}

// View renders the overlay as a centered dialog.
func (m Model) View() string {
	if !m.visible {
		return ""
	}

	t := theme.Current

	var tabs []string
	for i, section := range m.sections {
		tabStyle := lipgloss.NewStyle().Padding(0, 1)
		if i == m.activeSection {
			tabStyle = tabStyle.
				Foreground(t.Colors.Background).
				Background(t.Colors.Primary).
				Bold(true)
		} else {
			tabStyle = tabStyle.
				Foreground(t.Colors.ForegroundDim)
		}
		tabs = append(tabs, tabStyle.Render(section.Title))
	}
	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	section := m.sections[m.activeSection]

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Colors.Primary).
		Bold(true).
		Width(20)

	descStyle := lipgloss.NewStyle().
		Foreground(t.Colors.Foreground)

	endIdx := min(m.scrollOffset+m.visibleLines, len(section.Keymaps))

	var lines []string
	for i := m.scrollOffset; i < endIdx; i++ {
		km := section.Keymaps[i]
		lines = append(lines, keyStyle.Render(km.Key)+descStyle.Render(km.Description))
	}
	content := strings.Join(lines, "\n")

	scrollInfo := ""
	if len(section.Keymaps) > m.visibleLines {
		scrollInfo = lipgloss.NewStyle().
			Foreground(t.Colors.ForegroundDim).
			Render("\n↑↓ to scroll")
	}

	titleStyle := lipgloss.NewStyle().
		Foreground(t.Colors.Primary).
		Bold(true)

	helpStyle := lipgloss.NewStyle().
		Foreground(t.Colors.ForegroundDim).
		Padding(1, 0, 0, 0)
	footer := helpStyle.Render("←→/Tab: sections | 1-7: jump to section | Esc/q: close")

	dialogContent := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("Keyboard Shortcuts"),
		"",
		tabBar,
		"",
		content,
		scrollInfo,
		footer,
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

	var out []string
	for i := 0; i < padTop; i++ {
		out = append(out, "")
	}
	leftPadding := strings.Repeat(" ", padLeft)
	for _, line := range strings.Split(dialog, "\n") {
		out = append(out, leftPadding+line)
	}
	for len(out) < m.height {
		out = append(out, "")
	}

	return strings.Join(out, "\n")
}
