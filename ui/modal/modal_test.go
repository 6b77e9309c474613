package modal

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestShowResetsResult(t *testing.T) {
	m := New()
	if m.Visible() {
		t.Fatal("new dialog must start hidden")
	}

	m.Show("Delete rows", "Delete 2 row(s)?")
	if !m.Visible() || m.Result() != ResultNone {
		t.Errorf("after Show: visible=%v result=%v", m.Visible(), m.Result())
	}

	m, _ = m.Update(key("y"))
	if m.Result() != ResultYes || m.Visible() {
		t.Errorf("after y: visible=%v result=%v", m.Visible(), m.Result())
	}

	m.Show("Delete rows", "Delete 2 row(s)?")
	if m.Result() != ResultNone {
		t.Error("Show must clear the previous result")
	}
}

func TestEnterDefaultsToNo(t *testing.T) {
	m := New()
	m.Show("Quit", "Quit and close the connection?")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.Result() != ResultNo {
		t.Errorf("result = %v, want ResultNo as the safe default", m.Result())
	}
}

func TestToggleThenConfirm(t *testing.T) {
	m := New()
	m.Show("Quit", "Quit and close the connection?")

	m, _ = m.Update(key("h"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.Result() != ResultYes {
		t.Errorf("result = %v, want ResultYes after toggling", m.Result())
	}
}

func TestEscCancels(t *testing.T) {
	m := New()
	m.Show("Quit", "Quit and close the connection?")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.Result() != ResultNo || m.Visible() {
		t.Errorf("after esc: visible=%v result=%v", m.Visible(), m.Result())
	}
}
