package board

import "math"

// Point is a position in surface pixel coordinates, origin top-left.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle with non-negative extents.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// RectFromCorners returns the rectangle spanned by two opposite corners,
// in whatever order the corners are given.
func RectFromCorners(a, b Point) Rect {
	return Rect{
		X: math.Min(a.X, b.X),
		Y: math.Min(a.Y, b.Y),
		W: math.Abs(b.X - a.X),
		H: math.Abs(b.Y - a.Y),
	}
}

// SquareAt returns the square of the given side centered on p.
func SquareAt(p Point, side float64) Rect {
	return Rect{X: p.X - side/2, Y: p.Y - side/2, W: side, H: side}
}

// LineCap is the shape drawn at the ends of stroked lines.
type LineCap int

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

// StrokeStyle describes how lines and outlines are stroked.
type StrokeStyle struct {
	Color string
	Width float64
	Cap   LineCap
}

// TextStyle describes how text is filled. Size is in pixels.
type TextStyle struct {
	Color string
	Size  float64
}

// Surface is the raster the board draws onto. Color values are the board's
// color tokens; the surface resolves them.
//
// Resize is destructive: every implementation discards all content when
// resized. ClearRect is clipped to the surface bounds.
type Surface interface {
	Width() int
	Height() int
	Resize(width, height int)
	Clear()
	ClearRect(r Rect)
	StrokeLine(from, to Point, style StrokeStyle)
	StrokeRect(r Rect, style StrokeStyle)
	FillText(text string, at Point, style TextStyle)
}

// Container reports the layout box the surface must fill.
type Container interface {
	Size() (width, height int)
}

// Viewport is a Container whose size is set explicitly, typically from
// client-reported resize events.
type Viewport struct {
	width, height int
}

// NewViewport returns a viewport of the given size.
func NewViewport(width, height int) *Viewport {
	return &Viewport{width: width, height: height}
}

// Size implements Container.
func (v *Viewport) Size() (int, int) {
	return v.width, v.height
}

// SetSize changes the viewport size. It does not resize any surface;
// call Session.Resize afterwards.
func (v *Viewport) SetSize(width, height int) {
	v.width, v.height = width, height
}
