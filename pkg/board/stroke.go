package board

// PointerSession tracks a drag in progress. Anchor is the start of the next
// pen segment, or the fixed origin corner of a rectangle preview.
type PointerSession struct {
	Active bool  `json:"active"`
	Anchor Point `json:"anchor"`
}

// Begin starts a drag at p.
func (ps *PointerSession) Begin(p Point) {
	ps.Active = true
	ps.Anchor = p
}

// End stops the drag. The anchor is kept but unused until the next Begin.
func (ps *PointerSession) End() {
	ps.Active = false
}

// StrokeRenderer turns pointer-motion samples into drawing commands.
type StrokeRenderer struct {
	surface Surface
	redraw  func()
}

// NewStrokeRenderer returns a renderer drawing onto surface. redraw is
// called to restore the page underneath a rectangle preview.
func NewStrokeRenderer(surface Surface, redraw func()) StrokeRenderer {
	return StrokeRenderer{surface: surface, redraw: redraw}
}

// Render draws the effect of moving the pointer to p while dragging.
//
//   - Pen: a round-capped segment from the anchor to p; the anchor moves to p.
//   - Eraser: clears a square of side 2*thickness centered on p.
//   - Rectangle: clears the surface, redraws the page and outlines the
//     rectangle from the anchor to p. The anchor stays put.
//
// Inactive pointers and ToolNone draw nothing.
func (r StrokeRenderer) Render(tools ToolState, ptr *PointerSession, p Point) {
	if !ptr.Active {
		return
	}
	style := StrokeStyle{Color: tools.Color, Width: float64(tools.Thickness), Cap: CapRound}

	switch tools.Tool {
	case ToolPen:
		r.surface.StrokeLine(ptr.Anchor, p, style)
		ptr.Anchor = p
	case ToolEraser:
		r.surface.ClearRect(SquareAt(p, float64(2*tools.Thickness)))
	case ToolRectangle:
		r.surface.Clear()
		if r.redraw != nil {
			r.redraw()
		}
		r.surface.StrokeRect(RectFromCorners(ptr.Anchor, p), style)
	}
}
