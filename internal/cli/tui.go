package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/whiteboard/pkg/board"
	"github.com/matzehuels/whiteboard/pkg/canvas"
)

// Pager styles
var (
	pagerHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	pagerTextStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	pagerDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	pagerMarkStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
)

// The recorder canvas only fixes coordinates; lines are never clipped.
const (
	pagerCanvasWidth  = 1280
	pagerCanvasHeight = 720
)

// =============================================================================
// PagerModel - terminal page viewer
// =============================================================================

// PagerModel pages through a document in the terminal. Navigation goes
// through a board session drawing onto a Recorder, so the lines shown are
// exactly the text the page renderer draws on the canvas.
type PagerModel struct {
	Title   string
	Session *board.Session

	rec     *canvas.Recorder
	height  int // text rows available for the page
	offset  int // first visible line of the page
	outline bool
}

// NewPagerModel loads pages into a fresh session and shows page start.
// An out-of-range start shows the first page.
func NewPagerModel(title string, pages []string, start int) PagerModel {
	rec := canvas.NewRecorder(pagerCanvasWidth, pagerCanvasHeight)
	s := board.NewSession(rec, board.NewViewport(pagerCanvasWidth, pagerCanvasHeight), board.WithPages(pages))
	if start > 0 {
		_ = s.ShowPage(start)
	}
	rec.Compact()
	return PagerModel{Title: title, Session: s, rec: rec, height: 20}
}

func (m PagerModel) Init() tea.Cmd {
	return nil
}

func (m PagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", "n", " ", "pgdown":
			if m.Session.NextPage() {
				m.turned()
			}
		case "left", "h", "p", "pgup":
			if m.Session.PrevPage() {
				m.turned()
			}
		case "home", "g":
			if m.Session.Pages().Len() > 0 && m.Session.ShowPage(0) == nil {
				m.turned()
			}
		case "end", "G":
			if n := m.Session.Pages().Len(); n > 0 && m.Session.ShowPage(n-1) == nil {
				m.turned()
			}
		case "down", "j":
			if m.offset+m.height < len(m.Lines()) {
				m.offset++
			}
		case "up", "k":
			if m.offset > 0 {
				m.offset--
			}
		case "t":
			m.outline = !m.outline
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-4, 3)
	}
	return m, nil
}

// turned scrolls back to the top after the page changed and drops the
// recorded drawing of the previous page.
func (m *PagerModel) turned() {
	m.offset = 0
	m.rec.Compact()
}

// Lines returns the text lines drawn for the current page.
func (m PagerModel) Lines() []string {
	return m.rec.Texts()
}

func (m PagerModel) View() string {
	var b strings.Builder

	st := m.Session.State()
	header := m.Title
	if st.PageCount > 0 {
		header = fmt.Sprintf("%s  page %d/%d", m.Title, st.Page+1, st.PageCount)
	}
	b.WriteString(pagerHeaderStyle.Render(header))
	b.WriteString("\n\n")

	if m.outline {
		b.WriteString(m.outlineView(st.Page))
	} else {
		lines := m.Lines()
		end := min(m.offset+m.height, len(lines))
		for _, line := range lines[min(m.offset, end):end] {
			b.WriteString(pagerTextStyle.Render(line))
			b.WriteString("\n")
		}
		if len(lines) == 0 {
			b.WriteString(pagerDimStyle.Render("(empty page)"))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(pagerDimStyle.Render("←/→ page  ↑/↓ scroll  t outline  q quit"))
	return b.String()
}

// outlineView renders a table of all pages with their first line.
func (m PagerModel) outlineView(current int) string {
	pages := m.Session.Pages().Pages()
	rows := make([][]string, 0, len(pages))
	for i, p := range pages {
		lines := strings.Split(p, "\n")
		mark := "  "
		if i == current {
			mark = "▸ "
		}
		rows = append(rows, []string{mark, fmt.Sprint(i + 1), fmt.Sprint(len(lines)), truncate(lines[0], 48)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Page", "Lines", "First line").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1: // header
				return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			case row == current:
				return pagerMarkStyle
			default:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
		})
	return t.Render() + "\n"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
