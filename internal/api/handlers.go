package api

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/whiteboard/pkg/board"
	"github.com/matzehuels/whiteboard/pkg/errors"
	"github.com/matzehuels/whiteboard/pkg/observability"
	"github.com/matzehuels/whiteboard/pkg/session"
	"github.com/matzehuels/whiteboard/pkg/snapshot"
)

type queryRequest struct {
	Query   string `json:"query"`
	Session string `json:"session,omitempty"`
}

type answerResponse struct {
	Response string `json:"response"`
}

type sessionResponse struct {
	ID    string      `json:"id"`
	State board.State `json:"state"`
}

type uploadResponse struct {
	Success bool             `json:"success"`
	Content []string         `json:"content"`
	Session *sessionResponse `json:"session,omitempty"`
}

type createSessionRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type pagesRequest struct {
	Content []string `json:"content"`
}

// =============================================================================
// Upload, chat and visual assistant
// =============================================================================

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	var entry *session.Entry
	if id := r.URL.Query().Get("session"); id != "" {
		e, err := s.cfg.Sessions.Get(id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		entry = e
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, uploadError(r, err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, uploadError(r, err))
		return
	}

	pages, err := s.cfg.Documents.Load(r.Context(), header.Filename, data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := uploadResponse{Success: true, Content: pages}
	if entry != nil {
		st, err := s.setPages(r.Context(), entry, pages)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Session = &sessionResponse{ID: entry.ID, State: st}
	}
	writeJSON(w, http.StatusOK, resp)
}

// uploadError maps multipart failures to client errors. A "file" part
// without a filename is parsed as a plain form value, which is how an
// empty file input arrives.
func uploadError(r *http.Request, err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		return errors.New(errors.ErrCodeInvalidInput, "file too large (max %d MB)", tooLarge.Limit>>20)
	case stderrors.Is(err, http.ErrMissingFile):
		if r.MultipartForm != nil {
			if _, ok := r.MultipartForm.Value["file"]; ok {
				return errors.New(errors.ErrCodeInvalidInput, "No file selected")
			}
		}
		return errors.New(errors.ErrCodeInvalidInput, "No file provided")
	default:
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "No file provided")
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := errors.ValidateQuery(req.Query); err != nil {
		s.writeError(w, r, err)
		return
	}

	answer, err := s.cfg.Chat.Chat(r.Context(), req.Query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{Response: answer})
}

// handleAnalyze captures the session canvas, archives it with the prompt
// and asks the vision model about it.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := errors.ValidateQuery(req.Query); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Session == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "No session provided"))
		return
	}

	entry, err := s.cfg.Sessions.Get(req.Session)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	png, err := entry.PNG(r.Context())
	if err != nil {
		s.writeError(w, r, sessionError(entry, err))
		return
	}

	id, err := s.cfg.Snapshots.Save(r.Context(), snapshot.Snapshot{
		SessionID: entry.ID,
		PNG:       png,
		Metadata:  map[string]string{"prompt": req.Query},
	})
	if err != nil {
		s.cfg.Logger.Warn("Snapshot not saved", "session", entry.ID, "err", err)
	} else if id != "" {
		s.cfg.Logger.Debug("Snapshot saved", "session", entry.ID, "snapshot", id, "bytes", len(png))
	}

	answer, err := s.cfg.Vision.Analyze(r.Context(), req.Query, png)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{Response: answer})
}

// =============================================================================
// Sessions
// =============================================================================

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil && !isEmptyBody(err) {
			s.writeError(w, r, err)
			return
		}
	}
	if req.Width == 0 && req.Height == 0 {
		req.Width, req.Height = s.cfg.DefaultWidth, s.cfg.DefaultHeight
	}

	entry, err := s.cfg.Sessions.Create(r.Context(), req.Width, req.Height)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	st, err := entry.State(r.Context())
	if err != nil {
		s.writeError(w, r, sessionError(entry, err))
		return
	}
	w.Header().Set("Location", "/sessions/"+entry.ID)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: entry.ID, State: st})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookup(w, r)
	if !ok {
		return
	}
	st, err := entry.State(r.Context())
	if err != nil {
		s.writeError(w, r, sessionError(entry, err))
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: entry.ID, State: st})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.cfg.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleEvents applies a batch of input events in order.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookup(w, r)
	if !ok {
		return
	}
	events, err := board.ReadEvents(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var st board.State
	err = entry.Do(r.Context(), func(b *board.Session) error {
		if err := b.ApplyAll(events); err != nil {
			return err
		}
		st = b.State()
		return nil
	})
	if err != nil {
		s.writeError(w, r, sessionError(entry, err))
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: entry.ID, State: st})
}

func (s *Server) handleSetPages(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req pagesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	st, err := s.setPages(r.Context(), entry, req.Content)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: entry.ID, State: st})
}

func (s *Server) handleCanvas(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookup(w, r)
	if !ok {
		return
	}
	png, err := entry.PNG(r.Context())
	if err != nil {
		s.writeError(w, r, sessionError(entry, err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Entry, bool) {
	entry, err := s.cfg.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return entry, true
}

func (s *Server) setPages(ctx context.Context, entry *session.Entry, pages []string) (board.State, error) {
	var st board.State
	err := entry.Do(ctx, func(b *board.Session) error {
		b.SetPages(pages)
		st = b.State()
		return nil
	})
	if err != nil {
		return board.State{}, sessionError(entry, err)
	}
	observability.Session().OnPagesLoaded(ctx, entry.ID, len(pages))
	return st, nil
}

// sessionError maps loop errors: a closed loop means the session was
// deleted or expired while the request waited.
func sessionError(entry *session.Entry, err error) error {
	switch {
	case stderrors.Is(err, board.ErrClosed):
		return errors.Wrap(errors.ErrCodeSessionNotFound, session.ErrNotFound, "session %s", entry.ID)
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(errors.ErrCodeTimeout, err, "session %s busy", entry.ID)
	}
	return err
}

func isEmptyBody(err error) bool {
	return errors.UserMessage(err) == "empty request body"
}
