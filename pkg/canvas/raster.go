package canvas

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/whiteboard/pkg/board"
)

// Raster is a pixel Surface backed by an RGBA image. Cleared pixels are
// fully transparent.
//
// A Raster is not safe for concurrent use.
type Raster struct {
	img   *image.RGBA
	dc    *gg.Context
	faces map[float64]font.Face
}

// NewRaster returns a transparent raster of the given size. Sizes below 1
// are raised to 1.
func NewRaster(width, height int) *Raster {
	r := &Raster{faces: make(map[float64]font.Face)}
	r.Resize(width, height)
	return r
}

// Width implements board.Surface.
func (r *Raster) Width() int { return r.img.Bounds().Dx() }

// Height implements board.Surface.
func (r *Raster) Height() int { return r.img.Bounds().Dy() }

// Resize replaces the pixel buffer with a transparent one of the new size.
func (r *Raster) Resize(width, height int) {
	r.img = image.NewRGBA(image.Rect(0, 0, max(width, 1), max(height, 1)))
	r.dc = gg.NewContextForRGBA(r.img)
	r.dc.SetLineJoin(gg.LineJoinRound)
}

// Clear makes every pixel transparent.
func (r *Raster) Clear() {
	draw.Draw(r.img, r.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// ClearRect makes the pixels inside rect transparent. Edges are rounded to
// whole pixels and the area is clipped to the raster.
func (r *Raster) ClearRect(rect board.Rect) {
	area := image.Rect(
		int(math.Round(rect.X)), int(math.Round(rect.Y)),
		int(math.Round(rect.X+rect.W)), int(math.Round(rect.Y+rect.H)),
	).Intersect(r.img.Bounds())
	if area.Empty() {
		return
	}
	draw.Draw(r.img, area, image.Transparent, image.Point{}, draw.Src)
}

// StrokeLine strokes a straight segment.
func (r *Raster) StrokeLine(from, to board.Point, style board.StrokeStyle) {
	r.applyStroke(style)
	r.dc.DrawLine(from.X, from.Y, to.X, to.Y)
	r.dc.Stroke()
}

// StrokeRect strokes the outline of rect.
func (r *Raster) StrokeRect(rect board.Rect, style board.StrokeStyle) {
	r.applyStroke(style)
	r.dc.DrawRectangle(rect.X, rect.Y, rect.W, rect.H)
	r.dc.Stroke()
}

// FillText draws text with its baseline starting at at.
func (r *Raster) FillText(text string, at board.Point, style board.TextStyle) {
	r.dc.SetFontFace(r.face(style.Size))
	r.dc.SetColor(ParseColor(style.Color))
	r.dc.DrawString(text, at.X, at.Y)
}

func (r *Raster) applyStroke(style board.StrokeStyle) {
	r.dc.SetColor(ParseColor(style.Color))
	r.dc.SetLineWidth(style.Width)
	switch style.Cap {
	case board.CapRound:
		r.dc.SetLineCap(gg.LineCapRound)
	case board.CapSquare:
		r.dc.SetLineCap(gg.LineCapSquare)
	default:
		r.dc.SetLineCap(gg.LineCapButt)
	}
}

func (r *Raster) face(size float64) font.Face {
	if size <= 0 {
		size = board.PageFontSize
	}
	f, ok := r.faces[size]
	if !ok {
		f = newFace(size)
		r.faces[size] = f
	}
	return f
}

// Image returns the live pixel buffer. It is replaced on Resize.
func (r *Raster) Image() *image.RGBA { return r.img }

// Flatten composites the raster over an opaque white background, the way
// it looks on screen.
func (r *Raster) Flatten() image.Image {
	return r.flattened().Image()
}

func (r *Raster) flattened() *gg.Context {
	dc := gg.NewContext(r.Width(), r.Height())
	dc.SetColor(color.White)
	dc.Clear()
	dc.DrawImage(r.img, 0, 0)
	return dc
}

// EncodePNG writes the flattened raster as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	return r.flattened().EncodePNG(w)
}

// PNG returns the flattened raster as PNG bytes.
func (r *Raster) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var _ board.Surface = (*Raster)(nil)
