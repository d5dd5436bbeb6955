// Package snapshot archives the board images sent to the visual assistant.
//
// Every analyze request captures the session canvas as PNG and saves it with
// the prompt that came with it. Backends:
//
//   - [MongoStore]: one document per snapshot in a MongoDB collection
//   - [SQLiteStore]: a local SQLite file, for single-host deployments
//   - [NullStore]: discards snapshots
//
// Saving is best effort from the caller's point of view: a failed save is
// logged and never fails the analyze request.
package snapshot

import (
	"context"
	"time"
)

// TimeFormat is the layout of stored timestamps.
const TimeFormat = "2006-01-02 15:04:05"

// Snapshot is one archived board image.
type Snapshot struct {
	ID        string
	SessionID string
	PNG       []byte
	Metadata  map[string]string
	CreatedAt time.Time
}

// Store persists snapshots.
type Store interface {
	// Save stores s and returns its backend-assigned ID. A zero CreatedAt
	// is set to the current time.
	Save(ctx context.Context, s Snapshot) (string, error)
	Close(ctx context.Context) error
}

// NullStore discards snapshots.
type NullStore struct{}

// Save implements Store. It returns an empty ID.
func (NullStore) Save(context.Context, Snapshot) (string, error) { return "", nil }

// Close implements Store.
func (NullStore) Close(context.Context) error { return nil }

func stamp(s Snapshot) Snapshot {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	s.CreatedAt = s.CreatedAt.UTC()
	return s
}

var _ Store = NullStore{}
