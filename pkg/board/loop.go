package board

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Loop.Do after the loop has been closed.
var ErrClosed = errors.New("board: loop closed")

// Loop owns a Session on a dedicated goroutine. All access goes through
// Do, so callers on any goroutine see the session one operation at a time.
type Loop struct {
	ops  chan func(*Session)
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

// NewLoop starts a loop owning s. The caller must not use s directly
// afterwards.
func NewLoop(s *Session) *Loop {
	l := &Loop{
		ops:  make(chan func(*Session)),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go l.run(s)
	return l
}

func (l *Loop) run(s *Session) {
	defer close(l.done)
	for {
		select {
		case <-l.quit:
			return
		case op := <-l.ops:
			op(s)
		}
	}
}

// Do runs fn on the loop goroutine and returns its error. It returns
// ctx.Err() if ctx ends before fn is scheduled, and ErrClosed if the loop
// has been closed. Once scheduled, fn always runs to completion.
func (l *Loop) Do(ctx context.Context, fn func(*Session) error) error {
	errc := make(chan error, 1)
	op := func(s *Session) { errc <- fn(s) }

	select {
	case <-l.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case l.ops <- op:
	}
	return <-errc
}

// Close stops the loop and waits for the operation in flight, if any.
// It is safe to call more than once.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.quit) })
	<-l.done
}
