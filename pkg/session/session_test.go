package session

import (
	"bytes"
	"context"
	stderrors "errors"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/whiteboard/pkg/board"
	"github.com/matzehuels/whiteboard/pkg/errors"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestRegistry(t *testing.T, opts Options) (*Registry, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	opts.Now = clock.Now
	r := NewRegistry(opts)
	t.Cleanup(func() { r.Close(context.Background()) })
	return r, clock
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t, Options{})

	e, err := r.Create(ctx, 320, 200)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if e.ID == "" {
		t.Fatal("Create() returned an empty ID")
	}

	got, err := r.Get(e.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got != e {
		t.Error("Get() returned a different entry")
	}

	st, err := got.State(ctx)
	if err != nil {
		t.Fatalf("State() error: %v", err)
	}
	if st.Width != 320 || st.Height != 200 {
		t.Errorf("canvas = %dx%d, want 320x200", st.Width, st.Height)
	}
	if st.Tool != board.ToolPen || st.Page != -1 {
		t.Errorf("state = %+v, want a fresh pen session", st)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestCreateUsesToolDefaults(t *testing.T) {
	r, _ := newTestRegistry(t, Options{Tools: board.ToolState{Tool: board.ToolPen, Color: "blue", Thickness: 5}})

	e, err := r.Create(context.Background(), 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	st, err := e.State(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.Color != "blue" || st.Thickness != 5 {
		t.Errorf("state = %+v, want blue/5", st)
	}
}

func TestCreateRejectsBadSize(t *testing.T) {
	r, _ := newTestRegistry(t, Options{})
	for _, size := range [][2]int{{0, 10}, {10, -1}, {board.MaxSurfaceSide + 1, 10}} {
		_, err := r.Create(context.Background(), size[0], size[1])
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Create(%d, %d) error = %v, want invalid input", size[0], size[1], err)
		}
	}
}

func TestCreateLimit(t *testing.T) {
	r, _ := newTestRegistry(t, Options{Max: 2})
	for range 2 {
		if _, err := r.Create(context.Background(), 10, 10); err != nil {
			t.Fatal(err)
		}
	}

	_, err := r.Create(context.Background(), 10, 10)
	if !stderrors.Is(err, ErrLimit) {
		t.Errorf("Create() error = %v, want ErrLimit", err)
	}
	if !errors.Is(err, errors.ErrCodeRateLimited) {
		t.Errorf("Create() code = %v, want rate limited", errors.GetCode(err))
	}
}

func TestGetUnknown(t *testing.T) {
	r, _ := newTestRegistry(t, Options{})
	_, err := r.Get("missing")
	if !stderrors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("Get() code = %v, want session not found", errors.GetCode(err))
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t, Options{})
	e, _ := r.Create(ctx, 10, 10)

	if err := r.Delete(ctx, e.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := r.Get(e.ID); !stderrors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete error = %v", err)
	}
	if err := r.Delete(ctx, e.ID); !stderrors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v", err)
	}
	if err := e.Do(ctx, func(*board.Session) error { return nil }); err != board.ErrClosed {
		t.Errorf("Do() on deleted entry error = %v, want ErrClosed", err)
	}
}

func TestCleanupClosesIdleSessions(t *testing.T) {
	ctx := context.Background()
	r, clock := newTestRegistry(t, Options{IdleTTL: 10 * time.Minute})

	stale, _ := r.Create(ctx, 10, 10)
	fresh, _ := r.Create(ctx, 10, 10)

	clock.Advance(8 * time.Minute)
	if _, err := r.Get(fresh.ID); err != nil {
		t.Fatal(err)
	}
	clock.Advance(5 * time.Minute)

	if n := r.Cleanup(ctx); n != 1 {
		t.Errorf("Cleanup() = %d, want 1", n)
	}
	if _, err := r.Get(stale.ID); !stderrors.Is(err, ErrNotFound) {
		t.Error("idle session survived Cleanup")
	}
	if _, err := r.Get(fresh.ID); err != nil {
		t.Errorf("recently used session was closed: %v", err)
	}
}

func TestDoRefreshesLastSeen(t *testing.T) {
	ctx := context.Background()
	r, clock := newTestRegistry(t, Options{})
	e, _ := r.Create(ctx, 10, 10)

	clock.Advance(time.Minute)
	want := clock.Now()
	if err := e.Do(ctx, func(*board.Session) error { return nil }); err != nil {
		t.Fatal(err)
	}
	if got := e.LastSeen(); !got.Equal(want) {
		t.Errorf("LastSeen() = %v, want %v", got, want)
	}
}

func TestPNG(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t, Options{})
	e, _ := r.Create(ctx, 64, 48)

	err := e.Do(ctx, func(s *board.Session) error {
		s.SetPages([]string{"hello"})
		s.OnPointerDown(5, 40)
		s.OnPointerMove(60, 40)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	data, err := e.PNG(ctx)
	if err != nil {
		t.Fatalf("PNG() error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("image = %v, want 64x48", b)
	}
}

func TestCloseAndIDs(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t, Options{})
	a, _ := r.Create(ctx, 10, 10)
	b, _ := r.Create(ctx, 10, 10)

	ids := r.IDs()
	if len(ids) != 2 || (ids[0] != a.ID && ids[0] != b.ID) {
		t.Errorf("IDs() = %v", ids)
	}

	r.Close(ctx)
	if r.Len() != 0 {
		t.Errorf("Len() after Close = %d", r.Len())
	}
}

func TestSchedule(t *testing.T) {
	r, _ := newTestRegistry(t, Options{})

	c, err := Schedule(r, "", nil)
	if err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}
	defer c.Stop()
	if got := len(c.Entries()); got != 1 {
		t.Errorf("entries = %d, want 1", got)
	}

	if _, err := Schedule(r, "not a schedule", nil); err == nil {
		t.Error("Schedule() accepted an invalid spec")
	}
}
