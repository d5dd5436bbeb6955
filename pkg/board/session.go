package board

// Session is one drawing surface with its tool state, pointer drag and
// loaded pages. Create sessions with NewSession.
type Session struct {
	surface   Surface
	container Container

	tools   ToolState
	pointer PointerSession
	pages   PageSet

	strokes StrokeRenderer
	pager   PageRenderer
}

// Option configures a Session.
type Option func(*Session)

// WithToolState sets the initial tool state. Non-positive thickness falls
// back to DefaultThickness.
func WithToolState(ts ToolState) Option {
	return func(s *Session) {
		if ts.Thickness <= 0 {
			ts.Thickness = DefaultThickness
		}
		s.tools = ts
	}
}

// WithPages loads an initial page set.
func WithPages(pages []string) Option {
	return func(s *Session) { s.pages = NewPageSet(pages) }
}

// NewSession creates a session drawing onto surface and sized by container.
// The surface is resized to the container immediately, which also renders
// the first page if WithPages was given.
func NewSession(surface Surface, container Container, opts ...Option) *Session {
	s := &Session{
		surface:   surface,
		container: container,
		tools:     DefaultToolState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.strokes = NewStrokeRenderer(surface, s.Redraw)
	s.pager = NewPageRenderer(surface)
	s.Resize()
	return s
}

// Surface returns the surface the session draws onto.
func (s *Session) Surface() Surface { return s.surface }

// Tools returns the current tool state.
func (s *Session) Tools() ToolState { return s.tools }

// Pointer returns the pointer drag state.
func (s *Session) Pointer() PointerSession { return s.pointer }

// Pages returns the loaded page set.
func (s *Session) Pages() PageSet { return s.pages }

// =============================================================================
// Tool selection
// =============================================================================

// SelectTool makes t the active tool.
func (s *Session) SelectTool(t Tool) { s.tools.SelectTool(t) }

// SelectColor sets the stroke color and switches to the pen.
func (s *Session) SelectColor(color string) { s.tools.SelectColor(color) }

// SetThickness sets the stroke thickness; n < 1 is ignored.
func (s *Session) SetThickness(n int) { s.tools.SetThickness(n) }

// =============================================================================
// Pointer input
// =============================================================================

// OnPointerDown starts a drag at (x, y).
func (s *Session) OnPointerDown(x, y float64) {
	s.pointer.Begin(Point{X: x, Y: y})
}

// OnPointerMove feeds a motion sample to the stroke renderer. Moves while
// no drag is active are ignored.
func (s *Session) OnPointerMove(x, y float64) {
	s.strokes.Render(s.tools, &s.pointer, Point{X: x, Y: y})
}

// OnPointerUp ends the drag.
func (s *Session) OnPointerUp() { s.pointer.End() }

// OnPointerLeave ends the drag when the pointer leaves the surface.
func (s *Session) OnPointerLeave() { s.pointer.End() }

// OnPointerOut ends the drag when the pointer moves out of the surface.
func (s *Session) OnPointerOut() { s.pointer.End() }

// =============================================================================
// Pages
// =============================================================================

// SetPages replaces the page set and shows its first page. An empty page
// set clears the surface.
func (s *Session) SetPages(pages []string) {
	s.pages = NewPageSet(pages)
	if s.pages.Len() == 0 {
		s.surface.Clear()
		return
	}
	s.showPage(0)
}

// ShowPage renders page index and makes it current.
func (s *Session) ShowPage(index int) error {
	if _, ok := s.pages.Page(index); !ok {
		return ErrPageOutOfRange
	}
	s.showPage(index)
	return nil
}

// NextPage advances to the following page. At the last page it does
// nothing and returns false.
func (s *Session) NextPage() bool {
	if !s.pages.HasNext() {
		return false
	}
	s.showPage(s.pages.index + 1)
	return true
}

// PrevPage goes back one page. At the first page it does nothing and
// returns false.
func (s *Session) PrevPage() bool {
	if !s.pages.HasPrev() {
		return false
	}
	s.showPage(s.pages.index - 1)
	return true
}

// showPage assumes index is valid.
func (s *Session) showPage(index int) {
	s.pages.index = index
	s.pager.Render(s.pages.pages[index])
}

// =============================================================================
// Surface management
// =============================================================================

// Resize matches the surface to the container's current size and redraws.
// Everything previously drawn is lost; only the current page comes back.
func (s *Session) Resize() {
	w, h := s.container.Size()
	s.surface.Resize(max(w, 1), max(h, 1))
	s.Redraw()
}

// Redraw repaints what the session retains: the current page, if any.
func (s *Session) Redraw() {
	if text, ok := s.pages.Current(); ok {
		s.pager.Render(text)
	}
}

// Clear wipes the surface. Tool state and pages are kept.
func (s *Session) Clear() { s.surface.Clear() }

// =============================================================================
// State
// =============================================================================

// State is a serializable summary of a session.
type State struct {
	Tool      Tool   `json:"tool"`
	Color     string `json:"color"`
	Thickness int    `json:"thickness"`
	Dragging  bool   `json:"dragging"`
	Anchor    Point  `json:"anchor"`
	Page      int    `json:"page"`
	PageCount int    `json:"page_count"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// State returns a snapshot of the session. Page is -1 when no pages are loaded.
func (s *Session) State() State {
	page := -1
	if s.pages.Len() > 0 {
		page = s.pages.Index()
	}
	return State{
		Tool:      s.tools.Tool,
		Color:     s.tools.Color,
		Thickness: s.tools.Thickness,
		Dragging:  s.pointer.Active,
		Anchor:    s.pointer.Anchor,
		Page:      page,
		PageCount: s.pages.Len(),
		Width:     s.surface.Width(),
		Height:    s.surface.Height(),
	}
}
