package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/whiteboard/pkg/observability"
)

// logHooks reports observability events to the server log. Lifecycle
// events log at info, per-request events at debug.
type logHooks struct {
	logger *log.Logger
}

func installLogHooks(logger *log.Logger) {
	h := logHooks{logger: logger}
	observability.SetSessionHooks(h)
	observability.SetAssistantHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h logHooks) OnSessionCreate(_ context.Context, id string) {
	h.logger.Info("Session opened", "session", id)
}

func (h logHooks) OnSessionClose(_ context.Context, id, reason string, age time.Duration) {
	h.logger.Info("Session closed", "session", id, "reason", reason, "age", age.Round(time.Second))
}

func (h logHooks) OnPagesLoaded(_ context.Context, id string, pages int) {
	h.logger.Debug("Pages loaded", "session", id, "pages", pages)
}

func (h logHooks) OnRequestStart(_ context.Context, kind, model string) {
	h.logger.Debug("Model request", "kind", kind, "model", model)
}

func (h logHooks) OnRequestComplete(_ context.Context, kind, model string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("Model request failed", "kind", kind, "model", model, "duration", d.Round(time.Millisecond), "err", err)
		return
	}
	h.logger.Debug("Model answered", "kind", kind, "model", model, "duration", d.Round(time.Millisecond))
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("Cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("Cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("Cache set", "type", keyType, "bytes", size)
}

func (h logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("HTTP request", "method", method, "host", host, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("HTTP response", "method", method, "host", host, "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (h logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Warn("HTTP error", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ observability.SessionHooks   = logHooks{}
	_ observability.AssistantHooks = logHooks{}
	_ observability.CacheHooks     = logHooks{}
	_ observability.HTTPHooks      = logHooks{}
)
