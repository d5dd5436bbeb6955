// Package board implements the drawing and page-rendering state machine of
// the whiteboard.
//
// A [Session] owns everything that has state on the canvas: the selected
// tool, color and thickness ([ToolState]), the pointer drag in progress
// ([PointerSession]), the uploaded document pages ([PageSet]) and the raster
// [Surface] they are drawn onto. Input arrives through a small set of
// explicit methods instead of windowing-system callbacks, so the whole state
// machine runs headlessly:
//
//	s := board.NewSession(canvas.NewRaster(800, 600), board.NewViewport(800, 600))
//	s.OnPointerDown(10, 10)
//	s.OnPointerMove(50, 40) // pen segment (10,10)-(50,40)
//	s.OnPointerUp()
//
// # Components
//
//   - Surface manager: [Session.Resize] matches the surface to its
//     [Container] and redraws. Resizing discards all raster content.
//   - Tool state: [ToolState]. Selecting a color always switches to the pen.
//   - Pointer session and stroke renderer: pen segments, square eraser and
//     live rectangle preview, gated on an active drag.
//   - Page renderer: [Session.ShowPage] draws one page of text line by line
//     at a fixed origin and line height.
//
// # Stroke retention
//
// Strokes are rasterized immediately and never stored. Whatever redraws the
// surface (a resize, a rectangle preview, a page change) keeps the current
// page text and drops earlier pen, eraser and rectangle marks.
//
// # Concurrency
//
// A Session is not safe for concurrent use. Hosts with more than one
// goroutine touching a session should route every call through a [Loop],
// which serializes them onto a single owning goroutine.
package board
