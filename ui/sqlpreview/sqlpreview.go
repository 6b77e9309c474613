// Package sqlpreview is a read-only pane showing the statements the
// engine generated most recently, syntax highlighted. It exists so the
// user can always see exactly what SQL their grid actions turned into.
package sqlpreview

import (
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/charmbracelet/lipgloss"

	"github.com/pgtui/gridq/ui/theme"
)

const maxStatements = 20

// Model holds the rolling statement history and renders the newest
// entries that fit.
type Model struct {
	mu         sync.Mutex
	statements []string

	width  int
	height int
	lexer  chroma.Lexer
}

// New creates an empty preview pane.
func New() *Model {
	return &Model{
		lexer: lexers.Get("sql"),
	}
}

// SetSize sets the pane dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Push records one executed statement. Safe to call from the mutation
// queue's worker goroutine.
func (m *Model) Push(sqlText string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statements = append(m.statements, sqlText)
	if len(m.statements) > maxStatements {
		m.statements = m.statements[len(m.statements)-maxStatements:]
	}
}

// Latest returns the newest statement, or "".
func (m *Model) Latest() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.statements) == 0 {
		return ""
	}
	return m.statements[len(m.statements)-1]
}

// View renders the newest statements that fit the pane, newest last.
func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	t := theme.Current

	m.mu.Lock()
	statements := append([]string(nil), m.statements...)
	m.mu.Unlock()

	innerHeight := max(1, m.height-2)
	var lines []string
	for _, stmt := range statements {
		for _, line := range strings.Split(stmt, "\n") {
			lines = append(lines, m.highlight(truncate(line, m.width-4)))
		}
	}
	if len(lines) > innerHeight {
		lines = lines[len(lines)-innerHeight:]
	}
	for len(lines) < innerHeight {
		lines = append(lines, "")
	}

	containerStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Colors.BorderUnfocused).
		Width(m.width - 2).
		Padding(0, 1)

	return containerStyle.Render(strings.Join(lines, "\n"))
}

// highlight applies SQL token colors to one line.
func (m *Model) highlight(text string) string {
	if m.lexer == nil || text == "" {
		return text
	}
	t := theme.Current

	styleMap := map[chroma.TokenType]lipgloss.Style{
		chroma.Keyword:       lipgloss.NewStyle().Foreground(t.Colors.Primary).Bold(true),
		chroma.KeywordType:   lipgloss.NewStyle().Foreground(t.Colors.Primary),
		chroma.Literal:       lipgloss.NewStyle().Foreground(t.Colors.Success),
		chroma.LiteralString: lipgloss.NewStyle().Foreground(t.Colors.Success),
		chroma.LiteralNumber: lipgloss.NewStyle().Foreground(t.Colors.Warning),
		chroma.Comment:       lipgloss.NewStyle().Foreground(t.Colors.ForegroundDim).Italic(true),
		chroma.Name:          lipgloss.NewStyle().Foreground(t.Colors.Foreground),
		chroma.NameFunction:  lipgloss.NewStyle().Foreground(t.Colors.Primary),
		chroma.NameBuiltin:   lipgloss.NewStyle().Foreground(t.Colors.Primary),
		chroma.Operator:      lipgloss.NewStyle().Foreground(t.Colors.Warning),
		chroma.Punctuation:   lipgloss.NewStyle().Foreground(t.Colors.ForegroundDim),
	}

	iterator, err := m.lexer.Tokenise(nil, text)
	if err != nil {
		return text
	}

	var out strings.Builder
	for token := iterator(); token != chroma.EOF; token = iterator() {
		style, exists := styleMap[token.Type]
		if !exists {
			style = lipgloss.NewStyle().Foreground(t.Colors.Foreground)
		}
		out.WriteString(style.Render(token.Value))
	}
	return out.String()
}

func truncate(s string, width int) string {
	if width < 4 || len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}
