package canvas

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	regularFont    *truetype.Font
	regularFontErr error
	regularOnce    sync.Once
)

// newFace returns a Go Regular face at size pixels. Faces keep glyph caches
// and must not be shared between goroutines, so every Raster makes its own.
// If the embedded font cannot be parsed the fixed 7x13 bitmap face is used.
func newFace(size float64) font.Face {
	regularOnce.Do(func() {
		regularFont, regularFontErr = truetype.Parse(goregular.TTF)
	})
	if regularFontErr != nil {
		return basicfont.Face7x13
	}
	return truetype.NewFace(regularFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
