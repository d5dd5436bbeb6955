// Package api implements the whiteboard HTTP API.
//
// The legacy routes serve the single-page client: /upload_pdf, /chat and
// /analyze_screen. The /sessions routes expose board sessions that live on
// the server, so a client can stream its input events and fetch the canvas.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/whiteboard/pkg/session"
	"github.com/matzehuels/whiteboard/pkg/snapshot"
)

// Chatter answers text questions.
type Chatter interface {
	Chat(ctx context.Context, query string) (string, error)
}

// Analyzer answers questions about a PNG image of the board.
type Analyzer interface {
	Analyze(ctx context.Context, query string, png []byte) (string, error)
}

// PageLoader turns an uploaded file into page texts.
type PageLoader interface {
	Load(ctx context.Context, filename string, data []byte) ([]string, error)
}

// Config wires a Server. Sessions, Documents, Chat and Vision are required.
type Config struct {
	Sessions  *session.Registry
	Documents PageLoader
	Chat      Chatter
	Vision    Analyzer
	Snapshots snapshot.Store
	Logger    *log.Logger

	// MaxUploadBytes bounds request bodies of uploads. Zero uses 16 MiB.
	MaxUploadBytes int64

	// DefaultWidth and DefaultHeight size sessions created without a size.
	DefaultWidth, DefaultHeight int
}

// Server serves the API.
type Server struct {
	cfg    Config
	router chi.Router
}

// New builds a Server and its routes.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Snapshots == nil {
		cfg.Snapshots = snapshot.NullStore{}
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 16 << 20
	}
	if cfg.DefaultWidth <= 0 || cfg.DefaultHeight <= 0 {
		cfg.DefaultWidth, cfg.DefaultHeight = 1280, 720
	}

	s := &Server{cfg: cfg}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Post("/upload_pdf", s.handleUpload)
	r.Post("/chat", s.handleChat)
	r.Post("/analyze_screen", s.handleAnalyze)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/events", s.handleEvents)
			r.Put("/pages", s.handleSetPages)
			r.Get("/canvas.png", s.handleCanvas)
		})
	})
	return r
}

// logRequests logs one line per request at info level, or warn for 5xx.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		logf := s.cfg.Logger.Info
		if status >= 500 {
			logf = s.cfg.Logger.Warn
		}
		logf("Request", "method", r.Method, "path", r.URL.Path, "status", status,
			"bytes", ww.BytesWritten(), "duration", time.Since(start).Round(time.Microsecond),
			"id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.cfg.Sessions.Len(),
	})
}
