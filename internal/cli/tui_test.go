package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
)

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func runeKey(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

func update(t *testing.T, m PagerModel, msgs ...tea.Msg) PagerModel {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(PagerModel)
	}
	return m
}

func TestPagerNavigation(t *testing.T) {
	m := NewPagerModel("doc.txt", []string{"a1\na2", "b1", "c1\nc2\nc3"}, 0)
	if diff := cmp.Diff([]string{"a1", "a2"}, m.Lines()); diff != "" {
		t.Errorf("first page mismatch (-want +got):\n%s", diff)
	}

	tests := []struct {
		name string
		msg  tea.Msg
		page int
		want []string
	}{
		{"next", key(tea.KeyRight), 1, []string{"b1"}},
		{"next again", runeKey('l'), 2, []string{"c1", "c2", "c3"}},
		{"next at last is a no-op", key(tea.KeyRight), 2, []string{"c1", "c2", "c3"}},
		{"prev", key(tea.KeyLeft), 1, []string{"b1"}},
		{"home", key(tea.KeyHome), 0, []string{"a1", "a2"}},
		{"prev at first is a no-op", runeKey('h'), 0, []string{"a1", "a2"}},
		{"end", runeKey('G'), 2, []string{"c1", "c2", "c3"}},
	}
	for _, tt := range tests {
		m = update(t, m, tt.msg)
		if got := m.Session.State().Page; got != tt.page {
			t.Errorf("%s: page = %d, want %d", tt.name, got, tt.page)
		}
		if diff := cmp.Diff(tt.want, m.Lines()); diff != "" {
			t.Errorf("%s: lines mismatch (-want +got):\n%s", tt.name, diff)
		}
	}
}

func TestPagerStartPage(t *testing.T) {
	m := NewPagerModel("doc.txt", []string{"a", "b"}, 1)
	if got := m.Session.State().Page; got != 1 {
		t.Errorf("page = %d, want 1", got)
	}
	m = NewPagerModel("doc.txt", []string{"a", "b"}, 9)
	if got := m.Session.State().Page; got != 0 {
		t.Errorf("out-of-range start: page = %d, want 0", got)
	}
}

func TestPagerScroll(t *testing.T) {
	m := NewPagerModel("long.txt", []string{"1\n2\n3\n4\n5\n6"}, 0)
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 7}) // 3 text rows

	m = update(t, m, key(tea.KeyDown), key(tea.KeyDown), key(tea.KeyDown), key(tea.KeyDown))
	if view := m.View(); !strings.Contains(view, "6") || strings.Contains(view, "3\n") {
		t.Errorf("view after scrolling should show lines 4-6:\n%s", view)
	}
	if m.offset != 3 {
		t.Errorf("offset = %d, want 3 (clamped to the last screen)", m.offset)
	}

	m = update(t, m, runeKey('k'))
	if m.offset != 2 {
		t.Errorf("offset after up = %d, want 2", m.offset)
	}
}

func TestPagerViewAndOutline(t *testing.T) {
	m := NewPagerModel("notes.md", []string{"# Intro\nhello", "# Methods"}, 0)

	view := m.View()
	for _, want := range []string{"notes.md", "page 1/2", "hello"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	m = update(t, m, runeKey('t'))
	view = m.View()
	for _, want := range []string{"First line", "# Intro", "# Methods"} {
		if !strings.Contains(view, want) {
			t.Errorf("outline missing %q:\n%s", want, view)
		}
	}
}

func TestPagerEmptyDocument(t *testing.T) {
	m := NewPagerModel("empty.txt", nil, 0)
	m = update(t, m, key(tea.KeyRight), runeKey('G'))
	if !strings.Contains(m.View(), "(empty page)") {
		t.Errorf("view = %q", m.View())
	}
}

func TestPagerQuit(t *testing.T) {
	m := NewPagerModel("doc.txt", []string{"a"}, 0)
	for _, msg := range []tea.KeyMsg{runeKey('q'), key(tea.KeyEsc), key(tea.KeyCtrlC)} {
		if _, cmd := m.Update(msg); cmd == nil {
			t.Errorf("%s: no quit command", msg)
		}
	}
}

func TestPagerKeepsOnlyCurrentPageOps(t *testing.T) {
	m := NewPagerModel("doc.txt", []string{"a1\na2", "b1"}, 0)
	for range 50 {
		m = update(t, m, key(tea.KeyRight), key(tea.KeyLeft))
	}
	m = update(t, m, runeKey('G'))

	if got, want := len(m.rec.Ops()), 1+len(m.Lines()); got != want {
		t.Errorf("recorded ops = %d, want %d (one clear plus the page text)", got, want)
	}
	if diff := cmp.Diff([]string{"b1"}, m.Lines()); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}
