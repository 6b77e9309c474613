// Package gridview renders the grid state as a scrollable table with a
// cell cursor. It is a pure view over grid.State: every mutation the user
// triggers here is surfaced as a cursor position for the app to turn into
// a dispatched action.
package gridview

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pgtui/gridq/export"
	"github.com/pgtui/gridq/grid"
	"github.com/pgtui/gridq/rows"
	"github.com/pgtui/gridq/ui/theme"
)

// Model represents the grid viewport with vertical and horizontal
// scrolling and a cell cursor.
type Model struct {
	state grid.State

	width  int
	height int

	colOffset int
	rowOffset int
	cursorRow int
	cursorCol int

	focused bool
}

// New creates an empty grid view.
func New() Model {
	return Model{focused: true}
}

// SetState replaces the rendered state and clamps the cursor.
func (m *Model) SetState(s grid.State) {
	m.state = s
	if m.cursorRow >= len(s.Records) {
		m.cursorRow = max(0, len(s.Records)-1)
	}
	if m.cursorCol >= len(s.Columns) {
		m.cursorCol = max(0, len(s.Columns)-1)
	}
	if m.rowOffset > m.maxRowOffset() {
		m.rowOffset = m.maxRowOffset()
	}
}

// SetSize sets the viewport dimensions
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetFocused sets whether the grid is focused
func (m *Model) SetFocused(focused bool) {
	m.focused = focused
}

// Focused returns whether the grid is focused
func (m Model) Focused() bool {
	return m.focused
}

// Cursor returns the cursor position as row and column indexes into the
// rendered state.
func (m Model) Cursor() (row, col int) {
	return m.cursorRow, m.cursorCol
}

// CursorRecord returns the record under the cursor.
func (m Model) CursorRecord() (rows.Record, bool) {
	if m.cursorRow >= 0 && m.cursorRow < len(m.state.Records) {
		return m.state.Records[m.cursorRow], true
	}
	return rows.Record{}, false
}

// CursorColumn returns the column under the cursor.
func (m Model) CursorColumn() (grid.Column, bool) {
	if m.cursorCol >= 0 && m.cursorCol < len(m.state.Columns) {
		return m.state.Columns[m.cursorCol], true
	}
	return grid.Column{}, false
}

// CursorCell returns the serialized value under the cursor.
func (m Model) CursorCell() string {
	rec, ok := m.CursorRecord()
	if !ok {
		return ""
	}
	col, ok := m.CursorColumn()
	if !ok {
		return ""
	}
	return export.CellString(rec.Data[col.Key])
}

// visibleRows returns the number of rows that can be displayed
func (m Model) visibleRows() int {
	return max(0, m.height-3)
}

// visibleCols calculates how many columns fit in the current width
func (m Model) visibleCols() int {
	if len(m.state.Columns) == 0 {
		return 0
	}

	usedWidth := gutterWidth
	count := 0

	for i := m.colOffset; i < len(m.state.Columns); i++ {
		colWidth := cellWidth(m.state.Columns[i]) + 3
		if usedWidth+colWidth > m.width {
			break
		}
		usedWidth += colWidth
		count++
	}

	return max(1, count)
}

func (m Model) maxRowOffset() int {
	visible := m.visibleRows()
	if len(m.state.Records) <= visible {
		return 0
	}
	return len(m.state.Records) - visible
}

// Update handles cursor and scroll input.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursorRow > 0 {
				m.cursorRow--
				if m.cursorRow < m.rowOffset {
					m.rowOffset = m.cursorRow
				}
			}
		case "down", "j":
			if m.cursorRow < len(m.state.Records)-1 {
				m.cursorRow++
				if m.cursorRow >= m.rowOffset+m.visibleRows() {
					m.rowOffset = m.cursorRow - m.visibleRows() + 1
				}
			}
		case "K":
			m.cursorRow = max(0, m.cursorRow-m.visibleRows())
			m.rowOffset = max(0, m.rowOffset-m.visibleRows())
		case "J":
			m.cursorRow = min(len(m.state.Records)-1, m.cursorRow+m.visibleRows())
			m.rowOffset = min(m.maxRowOffset(), m.rowOffset+m.visibleRows())
		case "home":
			m.cursorRow = 0
			m.rowOffset = 0
		case "end":
			m.cursorRow = max(0, len(m.state.Records)-1)
			m.rowOffset = m.maxRowOffset()

		case "left", "h":
			if m.cursorCol > 0 {
				m.cursorCol--
				if m.cursorCol < m.colOffset {
					m.colOffset = m.cursorCol
				}
			}
		case "right", "l":
			if m.cursorCol < len(m.state.Columns)-1 {
				m.cursorCol++
				visibleCols := m.visibleCols()
				if m.cursorCol >= m.colOffset+visibleCols {
					m.colOffset = m.cursorCol - visibleCols + 1
				}
			}
		case "H":
			m.cursorCol = 0
			m.colOffset = 0
		case "L":
			m.cursorCol = len(m.state.Columns) - 1
			visibleCols := m.visibleCols()
			if len(m.state.Columns) > visibleCols {
				m.colOffset = len(m.state.Columns) - visibleCols
			} else {
				m.colOffset = 0
			}
		}
	}

	return m, nil
}

// View renders the grid.
func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	var lines []string

	visibleColCount := m.visibleCols()
	endCol := min(m.colOffset+visibleColCount, len(m.state.Columns))

	lines = append(lines, m.renderHeaderLine(m.colOffset, endCol))
	lines = append(lines, m.renderSeparator(m.colOffset, endCol))

	visibleRowCount := m.visibleRows()
	endRow := min(m.rowOffset+visibleRowCount, len(m.state.Records))

	for i := m.rowOffset; i < endRow; i++ {
		lines = append(lines, m.renderDataRow(i, m.colOffset, endCol))
	}
	for i := endRow - m.rowOffset; i < visibleRowCount; i++ {
		lines = append(lines, m.renderEmptyRow(m.colOffset, endCol))
	}

	lines = append(lines, m.renderStatusBar())

	return strings.Join(lines, "\n")
}

const gutterWidth = 2

// headerTitle decorates a column key with its sort direction and frozen
// marker.
func (m Model) headerTitle(col grid.Column) string {
	title := col.Key
	for _, s := range m.state.Sorts {
		if s.Column != col.Key {
			continue
		}
		if s.Ascending {
			title += " ↑"
		} else {
			title += " ↓"
		}
		break
	}
	if col.Frozen {
		title = "✻" + title
	}
	return title
}

func (m Model) renderHeaderLine(startCol, endCol int) string {
	t := theme.Current
	cells := []string{t.TableHeader.Render(strings.Repeat(" ", gutterWidth))}

	for i := startCol; i < endCol; i++ {
		col := m.state.Columns[i]
		cellText := truncateOrPad(m.headerTitle(col), cellWidth(col))
		cells = append(cells, t.TableHeader.Render(" "+cellText+" "))
	}

	separatorStyle := lipgloss.NewStyle().Foreground(t.Colors.BorderUnfocused)
	return strings.Join(cells, separatorStyle.Render("│"))
}

func (m Model) renderSeparator(startCol, endCol int) string {
	t := theme.Current
	separatorStyle := lipgloss.NewStyle().Foreground(t.Colors.BorderUnfocused)

	parts := []string{strings.Repeat("─", gutterWidth)}
	for i := startCol; i < endCol; i++ {
		parts = append(parts, strings.Repeat("─", cellWidth(m.state.Columns[i])+2))
	}

	return separatorStyle.Render(strings.Join(parts, "┼"))
}

func (m Model) renderDataRow(rowIdx, startCol, endCol int) string {
	t := theme.Current
	record := m.state.Records[rowIdx]
	isCursorRow := rowIdx == m.cursorRow
	isSelected := m.state.AllSelected || m.state.Selected[record.Idx]

	gutter := "  "
	if isSelected {
		gutter = "✓ "
	}
	gutterStyle := lipgloss.NewStyle().Foreground(t.Colors.Accent)
	cells := []string{gutterStyle.Render(gutter)}

	for i := startCol; i < endCol; i++ {
		col := m.state.Columns[i]
		cellText := truncateOrPad(export.CellString(record.Data[col.Key]), cellWidth(col))

		var cell string
		switch {
		case isCursorRow && i == m.cursorCol && m.focused:
			cell = t.TableSelected.Render(" " + cellText + " ")
		case isSelected:
			cell = t.TableMarked.Render(" " + cellText + " ")
		default:
			cell = t.TableCell.Render(" " + cellText + " ")
		}
		cells = append(cells, cell)
	}

	separatorStyle := lipgloss.NewStyle().Foreground(t.Colors.BorderUnfocused)
	return strings.Join(cells, separatorStyle.Render("│"))
}

func (m Model) renderEmptyRow(startCol, endCol int) string {
	t := theme.Current
	cells := []string{t.TableCell.Render(strings.Repeat(" ", gutterWidth))}

	for i := startCol; i < endCol; i++ {
		cells = append(cells, t.TableCell.Render(" "+strings.Repeat(" ", cellWidth(m.state.Columns[i]))+" "))
	}

	separatorStyle := lipgloss.NewStyle().Foreground(t.Colors.BorderUnfocused)
	return strings.Join(cells, separatorStyle.Render("│"))
}

func (m Model) renderStatusBar() string {
	t := theme.Current

	leftInfo := t.StatusBar.Render("Row " + strconv.Itoa(m.cursorRow+1) + "/" + strconv.Itoa(len(m.state.Records)) +
		", Col " + strconv.Itoa(m.cursorCol+1) + "/" + strconv.Itoa(len(m.state.Columns)))
	rightInfo := t.StatusBar.Render("Cols " + strconv.Itoa(m.colOffset+1) + "-" +
		strconv.Itoa(min(m.colOffset+m.visibleCols(), len(m.state.Columns))) + "/" + strconv.Itoa(len(m.state.Columns)))

	spacing := max(m.width-lipgloss.Width(leftInfo)-lipgloss.Width(rightInfo), 1)

	return leftInfo + strings.Repeat(" ", spacing) + rightInfo
}

// cellWidth converts the stored layout width into terminal cells.
func cellWidth(col grid.Column) int {
	w := col.Width / 8
	if w < 6 {
		return 6
	}
	if w > 48 {
		return 48
	}
	return w
}

func truncateOrPad(s string, width int) string {
	currentWidth := lipgloss.Width(s)

	if currentWidth > width {
		runes := []rune(s)
		if width > 3 {
			truncated := ""
			w := 0
			for _, r := range runes {
				rw := lipgloss.Width(string(r))
				if w+rw > width-3 {
					break
				}
				truncated += string(r)
				w += rw
			}
			return truncated + "..."
		}
		return string(runes[:width])
	}

	return s + strings.Repeat(" ", width-currentWidth)
}
