package canvas

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/whiteboard/pkg/board"
)

func TestRecorderVisible(t *testing.T) {
	r := NewRecorder(10, 10)
	r.FillText("old", board.Point{}, board.TextStyle{})
	r.Clear()
	r.FillText("new", board.Point{X: 1, Y: 2}, board.TextStyle{Color: "black", Size: 14})
	r.ClearRect(board.Rect{W: 1, H: 1})

	want := []Op{
		{Kind: OpText, Text: "new", At: board.Point{X: 1, Y: 2}, Color: "black", Size: 14},
		{Kind: OpClearRect, Rect: board.Rect{W: 1, H: 1}},
	}
	if diff := cmp.Diff(want, r.Visible()); diff != "" {
		t.Errorf("Visible() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"new"}, r.Texts()); diff != "" {
		t.Errorf("Texts() mismatch (-want +got):\n%s", diff)
	}
	if got := len(r.Ops()); got != 4 {
		t.Errorf("len(Ops()) = %d, want 4", got)
	}
}

func TestRecorderCompact(t *testing.T) {
	r := NewRecorder(10, 10)
	r.Compact() // empty log
	for _, text := range []string{"p0", "p1", "p2"} {
		r.Clear()
		r.FillText(text, board.Point{X: 10, Y: 20}, board.TextStyle{})
	}
	r.StrokeLine(board.Point{}, board.Point{X: 1, Y: 1}, board.StrokeStyle{Width: 2})
	before := r.Visible()

	r.Compact()
	if got := len(r.Ops()); got != 3 {
		t.Errorf("len(Ops()) after Compact = %d, want 3", got)
	}
	if diff := cmp.Diff(before, r.Visible()); diff != "" {
		t.Errorf("Compact changed Visible() (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"p2"}, r.Texts()); diff != "" {
		t.Errorf("Texts() mismatch (-want +got):\n%s", diff)
	}
}

func TestRecorderResize(t *testing.T) {
	r := NewRecorder(0, 0)
	r.FillText("gone", board.Point{}, board.TextStyle{})
	r.Resize(3, 4)

	if r.Width() != 3 || r.Height() != 4 {
		t.Errorf("size = %dx%d, want 3x4", r.Width(), r.Height())
	}
	if v := r.Visible(); len(v) != 0 {
		t.Errorf("Visible() after resize = %+v", v)
	}
}

func TestRecorderOpsIsCopy(t *testing.T) {
	r := NewRecorder(1, 1)
	r.Clear()
	ops := r.Ops()
	ops[0].Kind = OpText

	if r.Ops()[0].Kind != OpClear {
		t.Error("Ops() exposed internal slice")
	}
	r.Reset()
	if len(r.Ops()) != 0 {
		t.Error("Reset() kept ops")
	}
}
