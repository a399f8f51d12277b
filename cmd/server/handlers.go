package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/himanishpuri/SimilarityRater/internal/sessions"
	"github.com/himanishpuri/SimilarityRater/pkg/logger"
	"github.com/himanishpuri/SimilarityRater/pkg/models"
	"github.com/himanishpuri/SimilarityRater/pkg/rater"
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	registry *sessions.Registry
	config   *ServerConfig
	log      rater.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	DBPath         string
	MaxUploadBytes int64
	AllowedOrigins []string
	ExportFile     string
}

// NewServer creates a new server instance
func NewServer(registry *sessions.Registry, config *ServerConfig) *Server {
	return &Server{
		registry: registry,
		config:   config,
		log:      logger.GetLogger(),
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// statusFor maps rater errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, sessions.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, rater.ErrMalformedJudgments), errors.Is(err, rater.ErrScoreOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, rater.ErrNoCurrentPair), errors.Is(err, rater.ErrResetNotArmed),
		errors.Is(err, rater.ErrTooFewItems):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondErr(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.log.Errorf("Request failed: %v", err)
	}
	s.respondError(w, code, err.Error())
}

// entry resolves the {id} URL parameter.
func (s *Server) entry(w http.ResponseWriter, r *http.Request) (*sessions.Entry, bool) {
	id := chi.URLParam(r, "id")
	e, err := s.registry.Get(id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Session %s not found", id))
		return nil, false
	}
	return e, true
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "SimilarityRater API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":        "GET /health",
			"createSession": "POST /api/sessions",
			"getSession":    "GET /api/sessions/{id}",
			"deleteSession": "DELETE /api/sessions/{id}",
			"uploadItems":   "POST /api/sessions/{id}/items",
			"listItems":     "GET /api/sessions/{id}/items",
			"getItem":       "GET /api/sessions/{id}/items/{name}",
			"currentPair":   "GET /api/sessions/{id}/pair",
			"submit":        "POST /api/sessions/{id}/judgments",
			"export":        "GET /api/sessions/{id}/export",
			"reset":         "POST /api/sessions/{id}/reset",
			"confirmReset":  "POST /api/sessions/{id}/reset/confirm",
			"cancelReset":   "DELETE /api/sessions/{id}/reset",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"time":     time.Now().Format(time.RFC3339),
		"sessions": s.registry.Len(),
	})
}

// handleCreateSession handles POST /api/sessions
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	e := s.registry.Create()

	var snap rater.Snapshot
	e.Do(func(sess *rater.Session, _ *sessions.Items) error {
		snap = sess.Snapshot()
		return nil
	})

	s.log.Infof("Created session %s", e.ID())
	s.respondJSON(w, http.StatusCreated, CreateSessionResponse{
		ID:      e.ID(),
		Session: newSessionResponse(snap),
	})
}

// handleGetSession handles GET /api/sessions/{id}
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}

	var snap rater.Snapshot
	e.Do(func(sess *rater.Session, _ *sessions.Items) error {
		snap = sess.Snapshot()
		return nil
	})
	s.respondJSON(w, http.StatusOK, newSessionResponse(snap))
}

// handleDeleteSession handles DELETE /api/sessions/{id}
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.registry.Delete(id); err != nil {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Session %s not found", id))
		return
	}

	s.log.Infof("Deleted session %s", id)
	s.respondJSON(w, http.StatusOK, DeleteSessionResponse{
		Message: "Session deleted successfully",
		ID:      id,
	})
}

// handleUploadItems handles POST /api/sessions/{id}/items (multipart upload).
// The queue is rebuilt only when the uploaded name set differs from the
// current one, so re-posting the same files keeps the rater's place.
func (s *Server) handleUploadItems(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.log.Errorf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["audio"]
	if len(headers) == 0 {
		s.respondError(w, http.StatusBadRequest, "at least one audio file is required")
		return
	}

	files := make(map[string][]byte, len(headers))
	names := make([]string, 0, len(headers))
	for _, fh := range headers {
		name := filepath.Base(fh.Filename)
		data, err := readPart(fh)
		if err != nil {
			s.log.Errorf("Failed to read %s: %v", name, err)
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to read %s", name))
			return
		}
		if _, dup := files[name]; !dup {
			names = append(names, name)
		}
		files[name] = data
	}

	var warnings []string
	var prior []models.Judgment
	if fhs := r.MultipartForm.File["judgments"]; len(fhs) > 0 {
		data, err := readPart(fhs[0])
		if err == nil {
			prior, err = rater.ParseJudgments(data)
		}
		if err != nil {
			s.log.Warnf("Session %s: ignoring prior judgments: %v", e.ID(), err)
			warnings = append(warnings, fmt.Sprintf("could not load previous ratings: %v", err))
			prior = nil
		}
	}

	var resp UploadItemsResponse
	err := e.Do(func(sess *rater.Session, items *sessions.Items) error {
		if items.SameNames(names) && sess.State() != rater.StateEmpty {
			resp.SessionResponse = newSessionResponse(sess.Snapshot())
			return nil
		}

		items.Replace(files)
		snap, err := sess.Load(names, prior)
		if errors.Is(err, rater.ErrTooFewItems) {
			warnings = append(warnings, "upload at least two audio files to start rating")
			err = nil
		}
		if err != nil {
			return err
		}
		resp.SessionResponse = newSessionResponse(snap)
		resp.Reactivated = true
		return nil
	})
	if err != nil {
		s.respondErr(w, err)
		return
	}

	resp.Warnings = warnings
	s.respondJSON(w, http.StatusOK, resp)
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// handleListItems handles GET /api/sessions/{id}/items
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}

	var resp ListItemsResponse
	e.Do(func(_ *rater.Session, items *sessions.Items) error {
		resp.Items = items.Infos()
		resp.Count = len(resp.Items)
		return nil
	})
	s.respondJSON(w, http.StatusOK, resp)
}

// handleGetItem handles GET /api/sessions/{id}/items/{name} and streams the
// uploaded audio back for playback.
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	// chi matches on RawPath when it is set, and only then is the param
	// still escaped.
	name := chi.URLParam(r, "name")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(name)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid item name")
			return
		}
		name = unescaped
	}

	var data []byte
	var found bool
	e.Do(func(_ *rater.Session, items *sessions.Items) error {
		data, found = items.Data(name)
		return nil
	})
	if !found {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Item %s not found", name))
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleCurrentPair handles GET /api/sessions/{id}/pair
func (s *Server) handleCurrentPair(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}

	var resp PairResponse
	err := e.Do(func(sess *rater.Session, _ *sessions.Items) error {
		pair, ok := sess.Current()
		if !ok {
			return rater.ErrNoCurrentPair
		}
		snap := sess.Snapshot()
		resp = PairResponse{
			Pair:     pair,
			Progress: snap.Progress,
			MinScore: snap.MinScore,
			MaxScore: snap.MaxScore,
		}
		return nil
	})
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleSubmitJudgment handles POST /api/sessions/{id}/judgments
func (s *Server) handleSubmitJudgment(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}

	var req SubmitJudgmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Errorf("Failed to decode request: %v", err)
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	score, err := req.Validate()
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var resp SubmitJudgmentResponse
	err = e.Do(func(sess *rater.Session, _ *sessions.Items) error {
		j, snap, err := sess.Submit(score)
		if err != nil {
			return err
		}
		resp = SubmitJudgmentResponse{Judgment: j, Session: newSessionResponse(snap)}
		return nil
	})
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, resp)
}

// handleExport handles GET /api/sessions/{id}/export
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}

	var js []models.Judgment
	e.Do(func(sess *rater.Session, _ *sessions.Items) error {
		js = sess.Judgments()
		return nil
	})

	data, err := rater.MarshalJudgments(js)
	if err != nil {
		s.respondErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(s.config.ExportFile)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleRequestReset handles POST /api/sessions/{id}/reset
func (s *Server) handleRequestReset(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}

	var snap rater.Snapshot
	e.Do(func(sess *rater.Session, _ *sessions.Items) error {
		snap = sess.RequestReset()
		return nil
	})
	s.respondJSON(w, http.StatusOK, ResetResponse{
		Message: fmt.Sprintf("Confirm to discard %d judgments", snap.Judgments),
		Session: newSessionResponse(snap),
	})
}

// handleCancelReset handles DELETE /api/sessions/{id}/reset
func (s *Server) handleCancelReset(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}

	var snap rater.Snapshot
	e.Do(func(sess *rater.Session, _ *sessions.Items) error {
		snap = sess.CancelReset()
		return nil
	})
	s.respondJSON(w, http.StatusOK, ResetResponse{
		Message: "Reset cancelled",
		Session: newSessionResponse(snap),
	})
}

// handleConfirmReset handles POST /api/sessions/{id}/reset/confirm
func (s *Server) handleConfirmReset(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}

	var snap rater.Snapshot
	err := e.Do(func(sess *rater.Session, items *sessions.Items) error {
		var err error
		snap, err = sess.ConfirmReset()
		if err == nil {
			items.Clear()
		}
		return err
	})
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, ResetResponse{
		Message: "Session reset",
		Session: newSessionResponse(snap),
	})
}
