// Package canvas provides the surfaces the board draws onto.
//
// [Raster] rasterizes into an RGBA image using github.com/fogleman/gg, with
// page text set in Go Regular via github.com/golang/freetype. It is what
// the server keeps per session and what the visual assistant sees, exported
// with [Raster.PNG].
//
// [Recorder] keeps a log of drawing commands instead of pixels. It backs the
// terminal page viewer and makes board behavior easy to assert in tests.
//
// Color tokens are resolved with [ParseColor].
package canvas
