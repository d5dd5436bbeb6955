package cli

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/whiteboard/internal/api"
	"github.com/matzehuels/whiteboard/pkg/board"
	"github.com/matzehuels/whiteboard/pkg/config"
	"github.com/matzehuels/whiteboard/pkg/document"
	"github.com/matzehuels/whiteboard/pkg/errors"
	"github.com/matzehuels/whiteboard/pkg/observability"
	"github.com/matzehuels/whiteboard/pkg/session"
)

// shutdownTimeout bounds the drain of in-flight requests on shutdown.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the whiteboard HTTP API",
		Long: `Run the whiteboard HTTP API.

The server keeps board sessions in memory, closes idle ones on the
sessions.cleanup schedule and shuts down gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ln, err := net.Listen("tcp", cfg.Server.Addr)
			if err != nil {
				return errors.Wrap(errors.ErrCodeNetwork, err, "listen on %s", cfg.Server.Addr)
			}
			return serve(cmd.Context(), cfg, ln)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

// serve runs the API on ln until ctx is done, then drains requests, stops
// the cleanup schedule and closes every session. It takes ownership of ln.
func serve(ctx context.Context, cfg config.Config, ln net.Listener) error {
	logger := loggerFromContext(ctx)
	installLogHooks(logger)
	defer observability.Reset()

	store, err := newCache(ctx, cfg.Cache)
	if err != nil {
		ln.Close()
		return err
	}
	defer store.Close()
	keyer := newKeyer(cfg.Cache)

	snaps, err := newSnapshotStore(ctx, cfg.Snapshots)
	if err != nil {
		ln.Close()
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := snaps.Close(closeCtx); err != nil {
			logger.Warn("Close snapshot store", "err", err)
		}
	}()

	sessions := session.NewRegistry(session.Options{
		IdleTTL: cfg.Sessions.IdleTTL.Duration,
		Max:     cfg.Sessions.Max,
		Tools: board.ToolState{
			Tool:      board.ToolPen,
			Color:     cfg.Canvas.Color,
			Thickness: cfg.Canvas.Thickness,
		},
	})
	cleanup, err := session.Schedule(sessions, cfg.Sessions.Cleanup, logger)
	if err != nil {
		ln.Close()
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "sessions.cleanup")
	}

	chat := newAssistant(cfg.Chat).WithCache(store, keyer, cfg.Cache.ChatTTL.Duration)
	vision := newAssistant(cfg.Vision)
	for _, m := range []config.Model{cfg.Chat, cfg.Vision} {
		if m.APIKey() == "" {
			logger.Warn("No API key set; requests to this model will fail", "model", m.Model, "env", m.APIKeyEnv)
		}
	}

	handler := api.New(api.Config{
		Sessions:       sessions,
		Documents:      document.NewLoader(store, keyer, cfg.Cache.DocumentTTL.Duration),
		Chat:           chat,
		Vision:         vision,
		Snapshots:      snaps,
		Logger:         logger,
		MaxUploadBytes: int64(cfg.Server.MaxUploadMB) << 20,
		DefaultWidth:   cfg.Canvas.Width,
		DefaultHeight:  cfg.Canvas.Height,
	})
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout.Duration,
		WriteTimeout:      cfg.Server.WriteTimeout.Duration,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Listening", "addr", ln.Addr().String(), "chat", chat, "vision", vision,
			"cache", cfg.Cache.Backend, "snapshots", cfg.Snapshots.Backend)
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(errors.ErrCodeNetwork, err, "serve")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", "sessions", sessions.Len())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		<-cleanup.Stop().Done()
		sessions.Close(shutdownCtx)
		return err
	})

	return g.Wait()
}
