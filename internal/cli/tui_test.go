package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/boardstack/boardstack/pkg/vectorstore"
)

func testResults() []vectorstore.SearchResult {
	return []vectorstore.SearchResult{
		{ID: "a", Content: "first chunk", Score: 0.91},
		{ID: "b", Content: "second chunk", Score: 0.74},
		{ID: "c", Content: "third chunk", Score: 0.52},
	}
}

func keyMsg(s string) tea.KeyMsg {
	if len(s) == 1 {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{}
}

func TestResultListNavigation(t *testing.T) {
	m := NewResultListModel(testResults())

	next, _ := m.Update(keyMsg("down"))
	m = next.(ResultListModel)
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1", m.Cursor)
	}

	next, _ = m.Update(keyMsg("j"))
	m = next.(ResultListModel)
	if m.Cursor != 2 {
		t.Errorf("Cursor = %d, want 2", m.Cursor)
	}

	// Cursor stops at the last result.
	next, _ = m.Update(keyMsg("down"))
	m = next.(ResultListModel)
	if m.Cursor != 2 {
		t.Errorf("Cursor = %d, want 2 after overshoot", m.Cursor)
	}

	next, _ = m.Update(keyMsg("k"))
	m = next.(ResultListModel)
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1 after up", m.Cursor)
	}
}

func TestResultListSelect(t *testing.T) {
	m := NewResultListModel(testResults())

	next, _ := m.Update(keyMsg("down"))
	m = next.(ResultListModel)
	next, cmd := m.Update(keyMsg("enter"))
	m = next.(ResultListModel)

	if m.Selected == nil {
		t.Fatal("Selected is nil after enter")
	}
	if m.Selected.ID != "b" {
		t.Errorf("Selected.ID = %q, want %q", m.Selected.ID, "b")
	}
	if cmd == nil {
		t.Error("enter should quit the program")
	}
}

func TestResultListQuitWithoutSelection(t *testing.T) {
	m := NewResultListModel(testResults())

	next, cmd := m.Update(keyMsg("q"))
	m = next.(ResultListModel)

	if m.Selected != nil {
		t.Error("quit should not select a result")
	}
	if cmd == nil {
		t.Error("q should quit the program")
	}
}

func TestResultListView(t *testing.T) {
	m := NewResultListModel(testResults())
	view := m.View()

	if !strings.Contains(view, "Select Result") {
		t.Error("view missing title")
	}
	if !strings.Contains(view, "first chunk") {
		t.Error("view missing result content")
	}
	if !strings.Contains(view, "[1/3]") {
		t.Error("view missing position indicator")
	}
}

func TestSnippet(t *testing.T) {
	long := strings.Repeat("word ", 50)
	got := snippet(long, 40)
	if len(got) > 40+len("…") {
		t.Errorf("snippet too long: %d chars", len(got))
	}
	if got := snippet("short  text", 40); got != "short text" {
		t.Errorf("snippet = %q, want whitespace collapsed", got)
	}
}
