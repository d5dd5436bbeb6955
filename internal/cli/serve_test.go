package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/whiteboard/pkg/config"
	"github.com/matzehuels/whiteboard/pkg/observability"
)

func TestServeShutsDownOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Backend = config.BackendNone
	cfg.Snapshots.Backend = config.BackendNone

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	base := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(withLogger(context.Background(), log.New(io.Discard)))
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, ln) }()

	var resp *http.Response
	for deadline := time.Now().Add(3 * time.Second); time.Now().Before(deadline); time.Sleep(20 * time.Millisecond) {
		if resp, err = http.Get(base + "/healthz"); err == nil {
			break
		}
	}
	if err != nil {
		t.Fatalf("server did not come up: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}

	resp, err = http.Post(base+"/sessions", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("create session status = %d, want 201", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}

	if _, err := http.Get(base + "/healthz"); err == nil {
		t.Error("server still accepting connections after shutdown")
	}
	if _, ok := observability.Session().(observability.NoopSessionHooks); !ok {
		t.Error("observability hooks not reset after serve")
	}
}

func TestServeRejectsBadCleanupSpec(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Backend = config.BackendNone
	cfg.Sessions.Cleanup = "every now and then"

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx := withLogger(context.Background(), log.New(io.Discard))
	if err := serve(ctx, cfg, ln); err == nil {
		t.Fatal("serve() with invalid cleanup spec: error = nil")
	}
	// serve owns the listener and must have closed it.
	if _, err := ln.Accept(); !errors.Is(err, net.ErrClosed) {
		t.Errorf("listener not closed: Accept() error = %v", err)
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := logHooks{logger: log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})}
	ctx := context.Background()

	h.OnSessionCreate(ctx, "s1")
	h.OnSessionClose(ctx, "s1", "expired", time.Minute)
	h.OnRequestComplete(ctx, "chat", "m", time.Second, errors.New("boom"))
	h.OnCacheHit(ctx, "doc")

	out := buf.String()
	for _, want := range []string{"Session opened", "reason=expired", "Model request failed", "err=boom", "Cache hit"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
