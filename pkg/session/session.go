// Package session keeps the live board sessions of the HTTP server.
//
// Each [Entry] owns a [board.Session] drawing onto a [canvas.Raster]. The
// board session is confined to a [board.Loop]; callers reach it only through
// [Entry.Do], so concurrent requests for one session are applied one at a
// time in arrival order.
//
// Sessions that see no requests for the registry's idle TTL are closed by
// [Registry.Cleanup], which [Schedule] runs periodically on a cron schedule.
//
//	reg := session.NewRegistry(session.Options{IdleTTL: 30 * time.Minute})
//	c, err := session.Schedule(reg, "@every 5m", logger)
//	defer c.Stop()
//
//	e, err := reg.Create(ctx, 1280, 720)
//	err = e.Do(ctx, func(s *board.Session) error {
//	    s.SetPages(pages)
//	    return nil
//	})
package session

import (
	"context"
	stderrors "errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/whiteboard/pkg/board"
	"github.com/matzehuels/whiteboard/pkg/canvas"
	"github.com/matzehuels/whiteboard/pkg/errors"
	"github.com/matzehuels/whiteboard/pkg/observability"
)

// Sentinel errors. Registry methods wrap them in coded errors, so both
// errors.Is(err, ErrNotFound) and a pkg/errors code check work.
var (
	ErrNotFound = stderrors.New("session not found")
	ErrLimit    = stderrors.New("session limit reached")
)

// Close reasons reported to observability hooks.
const (
	ReasonDeleted  = "deleted"
	ReasonExpired  = "expired"
	ReasonShutdown = "shutdown"
)

// DefaultIdleTTL is used when Options.IdleTTL is zero.
const DefaultIdleTTL = 30 * time.Minute

// Entry is one live session.
type Entry struct {
	ID        string
	CreatedAt time.Time

	loop     *board.Loop
	raster   *canvas.Raster
	lastSeen atomic.Int64
	now      func() time.Time
}

// Do runs fn on the session's loop and marks the session as used.
func (e *Entry) Do(ctx context.Context, fn func(*board.Session) error) error {
	e.touch()
	return e.loop.Do(ctx, fn)
}

// State returns the session state.
func (e *Entry) State(ctx context.Context) (board.State, error) {
	var st board.State
	err := e.Do(ctx, func(s *board.Session) error {
		st = s.State()
		return nil
	})
	return st, err
}

// PNG captures the canvas as it looks on screen.
func (e *Entry) PNG(ctx context.Context) ([]byte, error) {
	var data []byte
	err := e.Do(ctx, func(*board.Session) error {
		var err error
		data, err = e.raster.PNG()
		return err
	})
	return data, err
}

// LastSeen returns when the session was last used.
func (e *Entry) LastSeen() time.Time {
	return time.Unix(0, e.lastSeen.Load())
}

func (e *Entry) touch() {
	e.lastSeen.Store(e.now().UnixNano())
}

// Options configures a Registry.
type Options struct {
	// IdleTTL is how long an unused session survives. Zero uses DefaultIdleTTL.
	IdleTTL time.Duration

	// Max caps the number of live sessions. Zero means no limit.
	Max int

	// Tools is the initial tool state of new sessions.
	Tools board.ToolState

	// Now replaces time.Now, for tests.
	Now func() time.Time
}

// Registry holds the live sessions.
type Registry struct {
	opts Options

	mu      sync.Mutex
	entries map[string]*Entry
}

// NewRegistry creates an empty registry.
func NewRegistry(opts Options) *Registry {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Tools == (board.ToolState{}) {
		opts.Tools = board.DefaultToolState()
	}
	return &Registry{opts: opts, entries: make(map[string]*Entry)}
}

// Create starts a session with a blank canvas of the given size.
func (r *Registry) Create(ctx context.Context, width, height int) (*Entry, error) {
	if width < 1 || height < 1 || width > board.MaxSurfaceSide || height > board.MaxSurfaceSide {
		return nil, errors.New(errors.ErrCodeInvalidInput, "canvas size %dx%d out of range (1..%d)", width, height, board.MaxSurfaceSide)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.opts.Max > 0 && len(r.entries) >= r.opts.Max {
		return nil, errors.Wrap(errors.ErrCodeRateLimited, ErrLimit, "%d sessions are open", len(r.entries))
	}

	raster := canvas.NewRaster(width, height)
	s := board.NewSession(raster, board.NewViewport(width, height), board.WithToolState(r.opts.Tools))
	e := &Entry{
		ID:        uuid.NewString(),
		CreatedAt: r.opts.Now(),
		loop:      board.NewLoop(s),
		raster:    raster,
		now:       r.opts.Now,
	}
	e.touch()
	r.entries[e.ID] = e

	observability.Session().OnSessionCreate(ctx, e.ID)
	return e, nil
}

// Get returns the session with the given ID.
func (r *Registry) Get(id string) (*Entry, error) {
	r.mu.Lock()
	e, ok := r.entries[id]
	r.mu.Unlock()
	if !ok {
		return nil, errors.Wrap(errors.ErrCodeSessionNotFound, ErrNotFound, "session %s", id)
	}
	e.touch()
	return e, nil
}

// Delete closes and removes a session.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()
	if !ok {
		return errors.Wrap(errors.ErrCodeSessionNotFound, ErrNotFound, "session %s", id)
	}
	r.close(ctx, e, ReasonDeleted)
	return nil
}

// Cleanup closes sessions idle for longer than the TTL and returns how many
// were closed.
func (r *Registry) Cleanup(ctx context.Context) int {
	cutoff := r.opts.Now().Add(-r.opts.IdleTTL)

	r.mu.Lock()
	var idle []*Entry
	for id, e := range r.entries {
		if e.LastSeen().Before(cutoff) {
			idle = append(idle, e)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	for _, e := range idle {
		r.close(ctx, e, ReasonExpired)
	}
	return len(idle)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// IDs returns the live session IDs in sorted order.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	sort.Strings(ids)
	return ids
}

// Close closes every session.
func (r *Registry) Close(ctx context.Context) {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*Entry)
	r.mu.Unlock()

	for _, e := range entries {
		r.close(ctx, e, ReasonShutdown)
	}
}

func (r *Registry) close(ctx context.Context, e *Entry, reason string) {
	e.loop.Close()
	observability.Session().OnSessionClose(ctx, e.ID, reason, r.opts.Now().Sub(e.CreatedAt))
}
