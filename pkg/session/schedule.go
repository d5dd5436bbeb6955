package session

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
)

// DefaultCleanupSpec runs Cleanup every five minutes.
const DefaultCleanupSpec = "@every 5m"

// Schedule starts a cron scheduler running r.Cleanup on spec, which uses
// the standard five-field syntax or a descriptor such as "@every 5m".
// Stop the returned scheduler on shutdown.
func Schedule(r *Registry, spec string, logger *log.Logger) (*cron.Cron, error) {
	if spec == "" {
		spec = DefaultCleanupSpec
	}
	if logger == nil {
		logger = log.Default()
	}
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if n := r.Cleanup(context.Background()); n > 0 {
			logger.Info("Closed idle sessions", "count", n, "open", r.Len())
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
