package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/vbonduro/menuboard/internal/photostore"
	"github.com/vbonduro/menuboard/internal/service"
)

type Server struct {
	service    *service.MenuService
	photoStore photostore.PhotoStore
	mux        *http.ServeMux
	logger     *slog.Logger
}

func NewServer(svc *service.MenuService, ps photostore.PhotoStore, logger *slog.Logger) *Server {
	s := &Server{
		service:    svc,
		photoStore: ps,
		mux:        http.NewServeMux(),
		logger:     logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/menu", http.StatusSeeOther)
	})
	s.mux.HandleFunc("GET /menu", s.handleMenu)
	s.mux.HandleFunc("GET /dishes/{id}", s.handleGetDish)
	s.mux.HandleFunc("POST /dishes/{id}/pay", s.handlePay)

	s.mux.HandleFunc("GET /owner", s.handleOwnerState)
	s.mux.HandleFunc("POST /owner/refresh", s.handleOwnerRefresh)
	s.mux.HandleFunc("PUT /owner/draft", s.handleUpdateDraft)
	s.mux.HandleFunc("POST /owner/new", s.handleNewDish)
	s.mux.HandleFunc("POST /owner/edit/{index}", s.handleStartEdit)
	s.mux.HandleFunc("POST /owner/cancel", s.handleCancelEdit)
	s.mux.HandleFunc("POST /owner/submit", s.handleSubmit)
	s.mux.HandleFunc("DELETE /owner/dishes/{index}", s.handleDeleteDish)
	s.mux.HandleFunc("POST /owner/photo", s.handleUploadPhoto)

	s.mux.HandleFunc("GET /photos/{key}", s.handleGetPhoto)
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; img-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

// writeJSON encodes v as the response body with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response failed", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// parseIndex extracts the {index} path variable.
func parseIndex(r *http.Request) (int, error) {
	return strconv.Atoi(r.PathValue("index"))
}
