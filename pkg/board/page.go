package board

import (
	"errors"
	"strings"
)

// Page text layout.
const (
	PageMarginX   = 10
	PageTop       = 20
	LineHeight    = 20
	PageFontSize  = 14
	PageTextColor = "black"
)

// ErrPageOutOfRange is returned by Session.ShowPage for an index outside
// the loaded page set.
var ErrPageOutOfRange = errors.New("page index out of range")

// PageSet is an ordered list of page texts with a current index.
// The zero value holds no pages.
type PageSet struct {
	pages []string
	index int
}

// NewPageSet copies pages into a page set positioned at the first page.
func NewPageSet(pages []string) PageSet {
	return PageSet{pages: append([]string(nil), pages...)}
}

// Len returns the number of pages.
func (p PageSet) Len() int { return len(p.pages) }

// Index returns the current page index. It is meaningless when Len is 0.
func (p PageSet) Index() int { return p.index }

// Page returns the text of page i.
func (p PageSet) Page(i int) (string, bool) {
	if i < 0 || i >= len(p.pages) {
		return "", false
	}
	return p.pages[i], true
}

// Current returns the text of the current page.
func (p PageSet) Current() (string, bool) {
	return p.Page(p.index)
}

// HasNext reports whether a page follows the current one.
func (p PageSet) HasNext() bool { return p.index < len(p.pages)-1 }

// HasPrev reports whether a page precedes the current one.
func (p PageSet) HasPrev() bool { return p.index > 0 && len(p.pages) > 0 }

// Pages returns a copy of the page texts.
func (p PageSet) Pages() []string { return append([]string(nil), p.pages...) }

// PageRenderer draws page text onto a surface.
type PageRenderer struct {
	surface Surface
}

// NewPageRenderer returns a renderer drawing onto surface.
func NewPageRenderer(surface Surface) PageRenderer {
	return PageRenderer{surface: surface}
}

// Render clears the surface and draws text one line per row, left-aligned
// at x=PageMarginX starting at y=PageTop, LineHeight apart. Lines running
// past the surface edge are left to the surface to clip.
func (r PageRenderer) Render(text string) {
	r.surface.Clear()
	style := TextStyle{Color: PageTextColor, Size: PageFontSize}
	for i, line := range strings.Split(text, "\n") {
		r.surface.FillText(line, Point{X: PageMarginX, Y: float64(PageTop + i*LineHeight)}, style)
	}
}
