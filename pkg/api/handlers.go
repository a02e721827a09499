package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gowebpki/jcs"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/session"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/wizard"
)

const maxBodyBytes = 1 << 20

// DatabaseHeader names the host database the reporting server should query.
const DatabaseHeader = "X-Database"

// Server serves the wizard operations.
type Server struct {
	wiz      *wizard.Wizard
	sessions *session.Manager
	limiter  *RateLimiter
	logger   *slog.Logger
}

// NewServer creates a server. A nil limiter disables rate limiting.
func NewServer(wiz *wizard.Wizard, sessions *session.Manager, limiter *RateLimiter) *Server {
	return &Server{
		wiz:      wiz,
		sessions: sessions,
		limiter:  limiter,
		logger:   slog.Default().With("component", "api"),
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /v1/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /v1/sessions/{id}/reports/{service}/defaults", s.handleDefaults)
	mux.HandleFunc("GET /v1/sessions/{id}/reports/{service}/view", s.handleView)
	mux.HandleFunc("POST /v1/sessions/{id}/reports/{service}/print", s.handlePrint)

	if s.limiter == nil {
		return mux
	}
	return s.limiter.Middleware(mux)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func wizardRequest(r *http.Request) wizard.Request {
	req := wizard.Request{
		SessionID:   r.PathValue("id"),
		ServiceName: r.PathValue("service"),
		DB:          r.Header.Get(DatabaseHeader),
	}
	req.Login, req.Password, _ = r.BasicAuth()
	return req
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.sessions.Len()})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": s.sessions.Create()})
}

func (s *Server) handleDefaults(w http.ResponseWriter, r *http.Request) {
	d, err := s.wiz.DefaultGet(r.Context(), wizardRequest(r))
	if err != nil {
		WriteReportError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	view, err := s.wiz.FieldsView(r.Context(), wizardRequest(r))
	if err != nil {
		WriteReportError(w, r, err)
		return
	}

	raw, err := json.Marshal(view)
	if err != nil {
		WriteInternal(w, err)
		return
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		WriteInternal(w, err)
		return
	}
	sum := sha256.Sum256(canonical)
	etag := `"` + hex.EncodeToString(sum[:]) + `"`

	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(canonical)
}

type printContext struct {
	ActiveIDs   []int64 `json:"active_ids"`
	ActiveModel string  `json:"active_model"`
}

func (s *Server) handlePrint(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", "Submission body is too large")
			return
		}
		WriteBadRequest(w, "Unable to read request body")
		return
	}

	var pc printContext
	if err := json.Unmarshal(body, &pc); err != nil {
		WriteBadRequest(w, "Invalid JSON body")
		return
	}

	req := wizardRequest(r)
	req.ActiveIDs = pc.ActiveIDs
	req.ActiveModel = pc.ActiveModel

	action, err := s.wiz.CheckReportJSON(r.Context(), req, body)
	if err != nil {
		WriteReportError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, action)
}
