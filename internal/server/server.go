// Package server exposes the clipboard service over a local HTTP API and
// streams notifications to websocket clients.
package server

import (
	"clipboard-history/internal/service"
	"clipboard-history/internal/storage"
	"clipboard-history/pkg/types"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Service is the command surface the API serves.
type Service interface {
	ListHistory(ctx context.Context, limit int) ([]types.Entry, error)
	GetEntry(ctx context.Context, id uint64) (types.Entry, error)
	Delete(ctx context.Context, id uint64) error
	TogglePin(ctx context.Context, id uint64) error
	ClearHistory(ctx context.Context) error
	GetConfig(ctx context.Context) (types.AppConfig, error)
	UpdateConfig(ctx context.Context, cfg types.AppConfig) error
	CopyToClipboard(ctx context.Context, content string, kind types.Kind) error
	CopyEntry(ctx context.Context, id uint64) error
	Hotkey() (string, bool)
	BackendName() string
	RegisterHandler(handler service.NotificationHandler)
}

type Server struct {
	svc    Service
	hub    *Hub
	srv    *http.Server
	config Config
	addr   string
	cancel context.CancelFunc
}

type Config struct {
	Host string
	Port int
}

// DefaultPort is the API port used when none is configured.
const DefaultPort = 54321

// New builds a server and subscribes its websocket hub to svc.
func New(svc Service, config Config) *Server {
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.Host == "" {
		config.Host = "localhost"
	}
	s := &Server{
		svc:    svc,
		hub:    newHub(),
		config: config,
	}
	svc.RegisterHandler(s.hub)
	return s
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(slogFormatter{}))
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.serveWs)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(10 * time.Second))

		r.Get("/status", s.handleStatus)
		r.Route("/api", func(r chi.Router) {
			r.Route("/entries", func(r chi.Router) {
				r.Get("/", s.handleListEntries)
				r.Delete("/", s.handleClearEntries)
				r.Get("/{id}", s.handleGetEntry)
				r.Delete("/{id}", s.handleDeleteEntry)
				r.Post("/{id}/pin", s.handlePinEntry)
				r.Post("/{id}/copy", s.handleCopyEntry)
			})
			r.Get("/config", s.handleGetConfig)
			r.Put("/config", s.handleUpdateConfig)
			r.Post("/clipboard", s.handleWriteClipboard)
		})
	})

	return r
}

// Start listens on the configured port and serves in the background. Like
// localhost, 127.0.0.1 is tried as a fallback.
func (s *Server) Start(ctx context.Context) error {
	addresses := []string{
		net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port)),
		net.JoinHostPort("127.0.0.1", strconv.Itoa(s.config.Port)),
	}

	var ln net.Listener
	var lastErr error
	for _, addr := range addresses {
		l, err := net.Listen("tcp", addr)
		if err != nil {
			slog.Warn("failed to listen", "addr", addr, "err", err)
			lastErr = err
			continue
		}
		ln = l
		break
	}
	if ln == nil {
		return fmt.Errorf("failed to start server on any address: %w", lastErr)
	}

	hubCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	go s.hub.run(hubCtx)

	s.addr = ln.Addr().String()
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "addr", s.addr, "err", err)
		}
	}()

	slog.Info("http server started", "addr", s.addr)
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string { return s.addr }

func (s *Server) Stop() error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

type clipboardRequest struct {
	Content string     `json:"content"`
	Kind    types.Kind `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("failed to write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var cfgErr *types.ConfigError
	var ioErr *types.ClipboardIOError
	var storeErr *types.StorageError

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &cfgErr):
		if cfgErr.Op == types.ConfigOpRegister {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.As(err, &ioErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &storeErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func entryID(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid entry id %q", service.ErrInvalidArgument, chi.URLParam(r, "id"))
	}
	return id, nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	hk, active := s.svc.Hotkey()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"time":          time.Now().Format(time.RFC3339),
		"addr":          s.addr,
		"backend":       s.svc.BackendName(),
		"hotkey":        hk,
		"hotkey_active": active,
	})
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	limit := 0 // the retention cap
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 0 {
			writeError(w, fmt.Errorf("%w: invalid limit %q", service.ErrInvalidArgument, l))
			return
		}
		limit = parsed
	}

	entries, err := s.svc.ListHistory(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	entry, err := s.svc.GetEntry(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePinEntry(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.svc.TogglePin(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCopyEntry(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.svc.CopyEntry(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearEntries(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.ClearHistory(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.svc.GetConfig(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// handleUpdateConfig overlays the request body on the stored config, so
// omitted fields keep their values.
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.svc.GetConfig(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, fmt.Errorf("%w: %v", service.ErrInvalidArgument, err))
		return
	}

	if err := s.svc.UpdateConfig(r.Context(), cfg); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleWriteClipboard(w http.ResponseWriter, r *http.Request) {
	var req clipboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", service.ErrInvalidArgument, err))
		return
	}

	if err := s.svc.CopyToClipboard(r.Context(), req.Content, req.Kind); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
