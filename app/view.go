package app

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pgtui/gridq/grid"
	"github.com/pgtui/gridq/ui/theme"
)

// View renders the main application view
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.Confirm.Visible() {
		return m.Confirm.View()
	}
	if m.Prompt.Visible() {
		return m.Prompt.View()
	}
	if m.Help.Visible() {
		return m.Help.View()
	}
	if m.Toast.Visible() {
		return m.Toast.View()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.FilterBar.View(),
		m.Grid.View(),
		m.Preview.View(),
	)
}

func (m Model) renderHeader() string {
	t := theme.Current

	titleStyle := lipgloss.NewStyle().
		Foreground(t.Colors.Primary).
		Bold(true).
		Padding(0, 1)
	infoStyle := lipgloss.NewStyle().
		Foreground(t.Colors.ForegroundDim)

	title := titleStyle.Render(m.table.Info.Schema + "." + m.table.Info.Name)

	parts := []string{"page " + strconv.Itoa(m.state.Page)}
	if m.state.TotalRows != grid.TotalRowsUnknown {
		lastPage := (m.state.TotalRows + int64(m.state.RowsPerPage) - 1) / int64(m.state.RowsPerPage)
		if lastPage < 1 {
			lastPage = 1
		}
		parts[0] += "/" + strconv.FormatInt(lastPage, 10)
		parts = append(parts, strconv.FormatInt(m.state.TotalRows, 10)+" rows")
	} else {
		parts = append(parts, "counting...")
	}
	if n := m.state.SelectionCount(); n > 0 {
		parts = append(parts, strconv.FormatInt(n, 10)+" selected")
	}
	if m.table.ReadOnly {
		parts = append(parts, "read-only")
	}
	info := infoStyle.Render(strings.Join(parts, " · "))

	var saving string
	switch {
	case m.saving:
		saving = lipgloss.NewStyle().
			Foreground(t.Colors.Warning).
			Bold(true).
			Render("● saving")
	case m.justSaved:
		saving = lipgloss.NewStyle().
			Foreground(t.Colors.Success).
			Render("✓ saved")
	}

	left := title + " " + info
	spacing := max(m.width-lipgloss.Width(left)-lipgloss.Width(saving)-1, 1)
	return left + strings.Repeat(" ", spacing) + saving
}
