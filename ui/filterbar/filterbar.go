// Package filterbar is the filter entry line. Input is parsed into a
// structured filter (column, operator, value) before it goes anywhere
// near SQL; raw predicate text is never passed through.
package filterbar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pgtui/gridq/query"
	"github.com/pgtui/gridq/ui/theme"
)

type MapKeyMsg struct {
	Key string
}

// operators maps the text a user types to a builder operator.
var operators = map[string]query.Operator{
	"=":      query.OpEqual,
	"!=":     query.OpNotEqual,
	"<>":     query.OpNotEqual,
	">":      query.OpGreater,
	">=":     query.OpGreaterEqual,
	"<":      query.OpLess,
	"<=":     query.OpLessEqual,
	"like":   query.OpLike,
	"ilike":  query.OpILike,
	"!like":  query.OpNotLike,
	"!ilike": query.OpNotILike,
	"in":     query.OpIn,
	"is":     query.OpIs,
}

// Model represents the filter input component
type Model struct {
	columns []string
	input   textinput.Model

	width  int
	active bool

	current  *query.Filter
	parseErr string
}

// New creates a new filter bar over the given column names.
func New(columns []string) Model {
	ti := textinput.New()
	ti.Placeholder = "column op value   e.g. status = pending"
	ti.CharLimit = 200
	ti.Width = 50
	ti.Blur()

	sorted := make([]string, len(columns))
	copy(sorted, columns)
	sort.Strings(sorted)

	return Model{
		columns: sorted,
		input:   ti,
	}
}

// SetColumns updates the available columns
func (m *Model) SetColumns(columns []string) {
	sorted := make([]string, len(columns))
	copy(sorted, columns)
	sort.Strings(sorted)
	m.columns = sorted
}

// SetWidth sets the component width
func (m *Model) SetWidth(width int) {
	m.width = width
	if width > 60 {
		m.input.Width = 50
	} else {
		m.input.Width = 30
	}
}

// Focus focuses the filter input
func (m *Model) Focus() {
	m.input.Focus()
}

// Blur blurs the filter input
func (m *Model) Blur() {
	m.input.Blur()
}

// Focused returns true if the filter input is focused
func (m Model) Focused() bool {
	return m.input.Focused()
}

// Active returns whether a filter is active
func (m Model) Active() bool {
	return m.active && m.current != nil
}

// Filter returns the active filter, or nil.
func (m Model) Filter() *query.Filter {
	if m.active {
		return m.current
	}
	return nil
}

// Clear clears the current filter
func (m *Model) Clear() {
	m.input.SetValue("")
	m.current = nil
	m.active = false
	m.parseErr = ""
}

// SetFilter shows an existing filter (a restored one) in the bar.
func (m *Model) SetFilter(f *query.Filter) {
	if f == nil {
		m.Clear()
		return
	}
	m.current = f
	m.active = true
	m.parseErr = ""
	if len(f.Columns) == 1 {
		m.input.SetValue(fmt.Sprintf("%s %s %v", f.Columns[0], opText(f.Operator), f.Value))
	}
}

// Apply parses the input into a structured filter.
func (m *Model) Apply() {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		m.active = false
		m.current = nil
		m.parseErr = ""
		return
	}

	f, err := Parse(text, m.columns)
	if err != nil {
		m.parseErr = err.Error()
		m.active = false
		m.current = nil
		return
	}
	m.current = &f
	m.active = true
	m.parseErr = ""
}

// Parse turns "column op value" into a filter. The value keeps its raw
// text shape; coercion happens in the row service where column kinds are
// known.
func Parse(text string, columns []string) (query.Filter, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return query.Filter{}, fmt.Errorf("expected: column op value")
	}

	column := fields[0]
	if !containsString(columns, column) {
		return query.Filter{}, fmt.Errorf("unknown column %q", column)
	}

	op, ok := operators[strings.ToLower(fields[1])]
	if !ok {
		return query.Filter{}, fmt.Errorf("unknown operator %q", fields[1])
	}

	value := strings.TrimSpace(strings.Join(fields[2:], " "))
	value = strings.Trim(value, `'"`)
	if value == "" {
		if op != query.OpIs {
			return query.Filter{}, fmt.Errorf("operator %q needs a value", fields[1])
		}
		// A bare "is" means a null check.
		value = "null"
	}

	return query.Filter{Columns: []string{column}, Operator: op, Value: value}, nil
}

// Update handles input
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()

		if key == "enter" {
			m.Apply()
			m.Blur()
			return m, func() tea.Msg {
				return MapKeyMsg{Key: key}
			}
		}

		if key == "esc" {
			m.Blur()
			return m, func() tea.Msg {
				return MapKeyMsg{Key: key}
			}
		}

		if key == "ctrl+c" {
			m.Clear()
			return m, func() tea.Msg {
				return MapKeyMsg{Key: key}
			}
		}

		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, cmd
}

// View renders the filter bar
func (m Model) View() string {
	t := theme.Current

	labelStyle := lipgloss.NewStyle().
		Foreground(t.Colors.ForegroundDim)

	inputStyle := lipgloss.NewStyle().
		Foreground(t.Colors.Foreground).
		Background(t.Colors.SelectionBg).
		Padding(0, 1)

	titleStyle := lipgloss.NewStyle().
		Foreground(t.Colors.Primary).
		Bold(true)
	title := titleStyle.Render("Filter:")
	whereLabel := labelStyle.Render(" WHERE ")

	inputField := inputStyle.Render(m.input.View())

	var status string
	if m.active {
		status = lipgloss.NewStyle().
			Foreground(t.Colors.Success).
			Render(" [ACTIVE]")
	}
	if m.parseErr != "" {
		status = lipgloss.NewStyle().
			Foreground(t.Colors.Error).
			Render(" " + m.parseErr)
	}

	line := title + whereLabel + inputField + status

	containerStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(m.width-4).
		Padding(0, 1)

	if m.input.Focused() {
		containerStyle = containerStyle.BorderForeground(t.Colors.BorderFocused)
	} else {
		containerStyle = containerStyle.BorderForeground(t.Colors.BorderUnfocused)
	}

	return containerStyle.Render(line)
}

func opText(op query.Operator) string {
	for text, candidate := range operators {
		if candidate == op && text != "<>" {
			return text
		}
	}
	return string(op)
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
