package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"

	"github.com/vovakirdan/arcade-studio/internal/spec"
	"github.com/vovakirdan/arcade-studio/internal/storage"
)

// Gallery limits.
const (
	defaultGameLimit = 20
	maxGameLimit     = 100
	qrSize           = 256
)

// GameResponse is a saved game as served by the API.
type GameResponse struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Creator   string         `json:"creator,omitempty"`
	Template  spec.Template  `json:"template"`
	Thumbnail string         `json:"thumbnail,omitempty"`
	Plays     int            `json:"plays"`
	CreatedAt time.Time      `json:"created_at"`
	ShareURL  string         `json:"share_url,omitempty"`
	Spec      *spec.GameSpec `json:"spec,omitempty"`
}

// ScoreResponse is one high score.
type ScoreResponse struct {
	Rank      int       `json:"rank"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

func gameResponse(g storage.Game, base string, withSpec bool) GameResponse {
	resp := GameResponse{
		ID:        g.ID,
		Title:     g.Title,
		Creator:   g.Creator,
		Template:  g.Template,
		Thumbnail: g.Thumbnail,
		Plays:     g.Plays,
		CreatedAt: g.CreatedAt,
	}
	if base != "" {
		resp.ShareURL = ShareURL(base, g.ID)
	}
	if withSpec {
		sp := g.Spec
		resp.Spec = &sp
	}
	return resp
}

func (s *Server) requireStore(w http.ResponseWriter, r *http.Request) bool {
	if s.store == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, ErrTypeUnavailable, "game storage is disabled")
		return false
	}
	return true
}

func (s *Server) game(w http.ResponseWriter, r *http.Request) (storage.Game, bool) {
	if !s.requireStore(w, r) {
		return storage.Game{}, false
	}
	g, err := s.store.GetGame(chi.URLParam(r, "id"))
	if err != nil {
		s.handleError(w, r, err)
		return storage.Game{}, false
	}
	return g, true
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultGameLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.New("limit must be a positive integer")
	}
	return min(n, maxGameLimit), nil
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, err.Error())
		return
	}

	games, err := s.store.ListGames(limit)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	base := s.baseURL(r)
	out := make([]GameResponse, 0, len(games))
	for _, g := range games {
		out = append(out, gameResponse(g, base, false))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"games": out})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, ok := s.game(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, gameResponse(g, s.baseURL(r), true))
}

// handleGameCode serves a saved game's resolved code and counts a play.
func (s *Server) handleGameCode(w http.ResponseWriter, r *http.Request) {
	g, ok := s.game(w, r)
	if !ok {
		return
	}
	if _, err := s.store.IncrementPlays(g.ID); err != nil {
		s.handleError(w, r, err)
		return
	}
	writeCode(w, g.Code)
}

func (s *Server) handleGameScores(w http.ResponseWriter, r *http.Request) {
	g, ok := s.game(w, r)
	if !ok {
		return
	}
	scores, err := s.store.TopScores(g.ID, 10)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	out := make([]ScoreResponse, len(scores))
	for i, sc := range scores {
		out[i] = ScoreResponse{Rank: i + 1, Score: sc.Score, CreatedAt: sc.CreatedAt}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"scores": out})
}

func (s *Server) handleGameQR(w http.ResponseWriter, r *http.Request) {
	g, ok := s.game(w, r)
	if !ok {
		return
	}
	png, err := qrcode.Encode(ShareURL(s.baseURL(r), g.ID), qrcode.Medium, qrSize)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // The client may have gone away
	w.Write(png)
}
