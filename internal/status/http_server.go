package status

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ecosim/optimization-core/pkg/logger"
)

// HTTPServer serves progress snapshots and improvement history
type HTTPServer struct {
	mux   *http.ServeMux
	store *Store
}

// NewHTTPServer creates the server over one run's store
func NewHTTPServer(store *Store) *HTTPServer {
	s := &HTTPServer{
		mux:   http.NewServeMux(),
		store: store,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/progress", s.handleProgress)
	s.mux.HandleFunc("/v1/improvements", s.handleImprovements)

	return s
}

// Handler returns the route handler
func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *HTTPServer) handleProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *HTTPServer) handleImprovements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	records := s.store.Improvements(limit)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"improvements": records,
		"count":        len(records),
	})
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, map[string]string{"error": msg})
}
