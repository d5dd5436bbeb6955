package canvas

import "github.com/matzehuels/whiteboard/pkg/board"

// OpKind names a recorded drawing command.
type OpKind string

// Recorded command kinds.
const (
	OpResize    OpKind = "resize"
	OpClear     OpKind = "clear"
	OpClearRect OpKind = "clearRect"
	OpLine      OpKind = "line"
	OpRect      OpKind = "rect"
	OpText      OpKind = "text"
)

// Op is one recorded drawing command. Only the fields relevant to Kind are
// set.
type Op struct {
	Kind  OpKind
	From  board.Point // line start
	To    board.Point // line end
	Rect  board.Rect  // clearRect, rect
	At    board.Point // text baseline origin
	Text  string
	Color string
	Width float64 // stroke width
	Cap   board.LineCap
	Size  float64 // text size
	W, H  int     // surface size for resize
}

// Recorder is a Surface that records commands instead of rasterizing
// them. The terminal page viewer and tests use it to see what the board
// drew.
type Recorder struct {
	width, height int
	ops           []Op
}

// NewRecorder returns an empty recorder of the given size.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{width: width, height: height}
}

// Width implements board.Surface.
func (r *Recorder) Width() int { return r.width }

// Height implements board.Surface.
func (r *Recorder) Height() int { return r.height }

// Resize implements board.Surface.
func (r *Recorder) Resize(width, height int) {
	r.width, r.height = width, height
	r.ops = append(r.ops, Op{Kind: OpResize, W: width, H: height})
}

// Clear implements board.Surface.
func (r *Recorder) Clear() {
	r.ops = append(r.ops, Op{Kind: OpClear})
}

// ClearRect implements board.Surface.
func (r *Recorder) ClearRect(rect board.Rect) {
	r.ops = append(r.ops, Op{Kind: OpClearRect, Rect: rect})
}

// StrokeLine implements board.Surface.
func (r *Recorder) StrokeLine(from, to board.Point, style board.StrokeStyle) {
	r.ops = append(r.ops, Op{Kind: OpLine, From: from, To: to, Color: style.Color, Width: style.Width, Cap: style.Cap})
}

// StrokeRect implements board.Surface.
func (r *Recorder) StrokeRect(rect board.Rect, style board.StrokeStyle) {
	r.ops = append(r.ops, Op{Kind: OpRect, Rect: rect, Color: style.Color, Width: style.Width, Cap: style.Cap})
}

// FillText implements board.Surface.
func (r *Recorder) FillText(text string, at board.Point, style board.TextStyle) {
	r.ops = append(r.ops, Op{Kind: OpText, Text: text, At: at, Color: style.Color, Size: style.Size})
}

// Ops returns a copy of every command recorded since the last Reset.
func (r *Recorder) Ops() []Op {
	return append([]Op(nil), r.ops...)
}

// Visible returns the commands recorded after the most recent full clear
// or resize, which is what currently shows on the surface.
func (r *Recorder) Visible() []Op {
	for i := len(r.ops) - 1; i >= 0; i-- {
		if k := r.ops[i].Kind; k == OpClear || k == OpResize {
			return append([]Op(nil), r.ops[i+1:]...)
		}
	}
	return r.Ops()
}

// Texts returns the text of the visible text commands in drawing order.
func (r *Recorder) Texts() []string {
	var texts []string
	for _, op := range r.Visible() {
		if op.Kind == OpText {
			texts = append(texts, op.Text)
		}
	}
	return texts
}

// Compact drops the commands hidden by the most recent full clear or
// resize. Visible and Texts return the same result afterwards.
func (r *Recorder) Compact() {
	for i := len(r.ops) - 1; i > 0; i-- {
		if k := r.ops[i].Kind; k == OpClear || k == OpResize {
			r.ops = append(r.ops[:0], r.ops[i:]...)
			return
		}
	}
}

// Reset forgets all recorded commands.
func (r *Recorder) Reset() {
	r.ops = nil
}

var _ board.Surface = (*Recorder)(nil)
