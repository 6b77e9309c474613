package toast

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestShowAndDismiss(t *testing.T) {
	m := New()
	if m.Visible() {
		t.Fatal("new toast must start hidden")
	}

	m.ShowError("permission denied")
	if !m.Visible() {
		t.Fatal("toast not visible after ShowError")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.Visible() {
		t.Error("esc should dismiss the toast")
	}
}

func TestOtherKeysDoNotDismiss(t *testing.T) {
	m := New()
	m.ShowSuccess("Cell copied")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if !m.Visible() {
		t.Error("unrelated key dismissed the toast")
	}
}
