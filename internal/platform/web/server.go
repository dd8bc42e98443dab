// Package web serves the studio over HTTP: chat sessions, a server-sent
// event stream of each session's resolved game code, the saved-game gallery
// and share QR codes.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vovakirdan/arcade-studio/internal/registry"
	"github.com/vovakirdan/arcade-studio/internal/spec"
	"github.com/vovakirdan/arcade-studio/internal/storage"
	"github.com/vovakirdan/arcade-studio/internal/studio"
)

// Request limits.
const (
	requestTimeout = 30 * time.Second
	messageTimeout = 3 * time.Minute // one chat line, assistant retries included
	maxBodyBytes   = 64 << 10
)

// Options configures a Server.
type Options struct {
	Manager   *studio.Manager
	Store     *storage.Store // optional; without it the game routes answer 503
	PublicURL string         // base of share links; defaults to the request host
	Logger    *log.Logger
}

// Server handles HTTP requests.
type Server struct {
	manager   *studio.Manager
	store     *storage.Store
	publicURL string
	logger    *log.Logger
	startTime time.Time
}

// NewServer creates a new API server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{
		manager:   opts.Manager,
		store:     opts.Store,
		publicURL: strings.TrimRight(opts.PublicURL, "/"),
		logger:    logger.WithPrefix("http"),
		startTime: time.Now(),
	}
}

// Routes sets up the HTTP routes.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		// Event streams stay open, so only the rest get a deadline.
		r.Get("/sessions/{id}/events", s.handleEvents)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(messageTimeout))
			r.Post("/sessions/{id}/messages", s.handlePostMessage)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))

			r.Get("/genres", s.handleGenres)

			r.Post("/sessions", s.handleCreateSession)
			r.Get("/sessions/{id}", s.handleGetSession)
			r.Delete("/sessions/{id}", s.handleDeleteSession)
			r.Get("/sessions/{id}/messages", s.handleMessages)
			r.Get("/sessions/{id}/code", s.handleSessionCode)

			r.Get("/games", s.handleListGames)
			r.Get("/games/{id}", s.handleGetGame)
			r.Get("/games/{id}/code", s.handleGameCode)
			r.Get("/games/{id}/scores", s.handleGameScores)
			r.Get("/games/{id}/qr.png", s.handleGameQR)
		})
	})

	return r
}

// logRequests logs one line per request with its status and duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Sessions int    `json:"sessions"`
	Storage  bool   `json:"storage"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "healthy",
		Uptime:  time.Since(s.startTime).Round(time.Second).String(),
		Storage: s.store != nil,
	}
	if s.manager != nil {
		resp.Sessions = s.manager.Count()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// GenreResponse is one entry of GET /api/v1/genres.
type GenreResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (s *Server) handleGenres(w http.ResponseWriter, r *http.Request) {
	genres := make([]GenreResponse, 0, len(spec.Templates()))
	for _, g := range registry.List() {
		if spec.Template(g.ID).Known() {
			genres = append(genres, GenreResponse{ID: g.ID, Title: g.Title})
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"genres": genres})
}

// ShareURL is the link a QR code for a saved game points at.
func ShareURL(base, gameID string) string {
	return strings.TrimRight(base, "/") + "/api/v1/games/" + gameID
}

func (s *Server) baseURL(r *http.Request) string {
	if s.publicURL != "" {
		return s.publicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

// ListenAndServe serves on addr until ctx is done, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
