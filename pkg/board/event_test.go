package board_test

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/whiteboard/pkg/board"
	"github.com/matzehuels/whiteboard/pkg/canvas"
	"github.com/matzehuels/whiteboard/pkg/errors"
)

func TestEventValidate(t *testing.T) {
	tests := []struct {
		name    string
		event   board.Event
		wantErr bool
	}{
		{"pointer down", board.Event{Type: board.EventPointerDown, X: 1, Y: 2}, false},
		{"unknown tool name", board.Event{Type: board.EventTool, Tool: "lasso"}, false},
		{"color", board.Event{Type: board.EventColor, Color: "red"}, false},
		{"empty color", board.Event{Type: board.EventColor}, true},
		{"resize", board.Event{Type: board.EventResize, Width: 640, Height: 480}, false},
		{"resize zero", board.Event{Type: board.EventResize, Width: 0, Height: 480}, true},
		{"resize too large", board.Event{Type: board.EventResize, Width: 640, Height: board.MaxSurfaceSide + 1}, true},
		{"missing type", board.Event{}, true},
		{"unknown type", board.Event{Type: "scribble"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Validate() code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestApplyDispatches(t *testing.T) {
	s, rec, _ := newTestSession(t, board.WithPages([]string{"a", "b"}))

	events := []board.Event{
		{Type: board.EventColor, Color: "green"},
		{Type: board.EventThickness, Value: 500},
		{Type: board.EventPointerDown, X: 1, Y: 1},
		{Type: board.EventPointerMove, X: 2, Y: 2},
		{Type: board.EventPointerUp},
		{Type: board.EventNextPage},
		{Type: board.EventTool, Tool: "eraser"},
	}
	if err := s.ApplyAll(events); err != nil {
		t.Fatalf("ApplyAll() error: %v", err)
	}

	want := board.ToolState{Tool: board.ToolEraser, Color: "green", Thickness: board.MaxThickness}
	if got := s.Tools(); got != want {
		t.Errorf("Tools() = %+v, want %+v", got, want)
	}
	if s.Pointer().Active {
		t.Error("pointer still active after pointerup")
	}
	if diff := cmp.Diff([]string{"b"}, rec.Texts()); diff != "" {
		t.Errorf("texts mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyThicknessClamps(t *testing.T) {
	tests := []struct {
		value int
		want  int
	}{
		{-3, board.MinThickness},
		{0, board.MinThickness},
		{7, 7},
		{51, board.MaxThickness},
	}
	for _, tt := range tests {
		s, _, _ := newTestSession(t)
		if err := s.Apply(board.Event{Type: board.EventThickness, Value: tt.value}); err != nil {
			t.Fatalf("Apply(thickness %d) error: %v", tt.value, err)
		}
		if got := s.Tools().Thickness; got != tt.want {
			t.Errorf("thickness after %d = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestApplyResizeUpdatesViewport(t *testing.T) {
	s, rec, vp := newTestSession(t)

	if err := s.Apply(board.Event{Type: board.EventResize, Width: 320, Height: 240}); err != nil {
		t.Fatalf("Apply(resize) error: %v", err)
	}
	if w, h := vp.Size(); w != 320 || h != 240 {
		t.Errorf("viewport = %dx%d, want 320x240", w, h)
	}
	if rec.Width() != 320 || rec.Height() != 240 {
		t.Errorf("surface = %dx%d, want 320x240", rec.Width(), rec.Height())
	}
}

func TestApplyAllStopsAtInvalidEvent(t *testing.T) {
	s, _, _ := newTestSession(t)

	err := s.ApplyAll([]board.Event{
		{Type: board.EventTool, Tool: "rectangle"},
		{Type: "bogus"},
		{Type: board.EventTool, Tool: "eraser"},
	})
	if err == nil {
		t.Fatal("ApplyAll() error = nil, want error")
	}
	if got := errors.UserMessage(err); !strings.HasPrefix(got, "event 1: ") {
		t.Errorf("message = %q, want position prefix", got)
	}
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error code = %v, want invalid input", errors.GetCode(err))
	}
	if got := s.Tools().Tool; got != board.ToolRectangle {
		t.Errorf("tool = %v, want rectangle (events after the error must not apply)", got)
	}
}

func TestReadEvents(t *testing.T) {
	input := `[
		{"type": "tool", "tool": "rect"},
		{"type": "pointerdown", "x": 5, "y": 6},
		{"type": "resize", "width": 10, "height": 20}
	]`
	events, err := board.ReadEvents(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadEvents() error: %v", err)
	}

	want := []board.Event{
		{Type: board.EventTool, Tool: "rect"},
		{Type: board.EventPointerDown, X: 5, Y: 6},
		{Type: board.EventResize, Width: 10, Height: 20},
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestReadEventsInvalidJSON(t *testing.T) {
	_, err := board.ReadEvents(strings.NewReader(`{"type": "tool"}`))
	if err == nil {
		t.Fatal("ReadEvents() error = nil for a non-array document")
	}
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error code = %v, want invalid input", errors.GetCode(err))
	}
	var target *errors.Error
	if !stderrors.As(err, &target) {
		t.Errorf("error %T is not *errors.Error", err)
	}
}

func TestReplayRectangleDoesNotAccumulate(t *testing.T) {
	rec := canvas.NewRecorder(0, 0)
	s := board.NewSession(rec, board.NewViewport(100, 100))

	err := s.ApplyAll([]board.Event{
		{Type: board.EventTool, Tool: "rectangle"},
		{Type: board.EventPointerDown, X: 10, Y: 10},
		{Type: board.EventPointerMove, X: 20, Y: 20},
		{Type: board.EventPointerMove, X: 30, Y: 30},
		{Type: board.EventPointerMove, X: 40, Y: 40},
		{Type: board.EventPointerUp},
	})
	if err != nil {
		t.Fatalf("ApplyAll() error: %v", err)
	}

	var rects int
	for _, op := range rec.Visible() {
		if op.Kind == canvas.OpRect {
			rects++
		}
	}
	if rects != 1 {
		t.Errorf("visible rectangles = %d, want 1", rects)
	}
}
