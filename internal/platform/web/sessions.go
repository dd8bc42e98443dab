package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vovakirdan/arcade-studio/internal/assets"
	"github.com/vovakirdan/arcade-studio/internal/round"
	"github.com/vovakirdan/arcade-studio/internal/spec"
	"github.com/vovakirdan/arcade-studio/internal/studio"
)

// heartbeat keeps idle event streams open through proxies.
const heartbeat = 15 * time.Second

// CreateSessionRequest is the body of POST /api/v1/sessions. An id resumes
// a stored transcript.
type CreateSessionRequest struct {
	ID      string `json:"id,omitempty"`
	Creator string `json:"creator,omitempty"`
}

// SessionResponse describes a studio session.
type SessionResponse struct {
	ID       string          `json:"id"`
	Round    string          `json:"round,omitempty"`
	Genre    spec.Template   `json:"genre,omitempty"`
	Complete bool            `json:"complete"`
	Style    string          `json:"style,omitempty"`
	Assets   []AssetResponse `json:"assets,omitempty"`
	Messages int             `json:"messages"`
	Spec     *spec.GameSpec  `json:"spec,omitempty"`
}

// AssetResponse is the state of one image slot in the current round.
type AssetResponse struct {
	Slot   assets.Slot `json:"slot"`
	Status string      `json:"status"`
	URL    string      `json:"url,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// MessageRequest is the body of POST /api/v1/sessions/{id}/messages.
type MessageRequest struct {
	Content string `json:"content"`
}

// MessageResponse is the outcome of one chat line.
type MessageResponse struct {
	Intent  string        `json:"intent"`
	Message spec.Message  `json:"message"`
	Round   string        `json:"round,omitempty"`
	Game    *GameResponse `json:"game,omitempty"`
}

// CodeEvent is the data of one "code" server-sent event.
type CodeEvent struct {
	Round    string        `json:"round"`
	Genre    spec.Template `json:"genre"`
	Complete bool          `json:"complete"`
	Code     string        `json:"code"`
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*studio.Session, bool) {
	if s.manager == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, ErrTypeUnavailable, "studio sessions are disabled")
		return nil, false
	}
	id := chi.URLParam(r, "id")
	sess, ok := s.manager.Get(id)
	if !ok {
		s.writeError(w, r, http.StatusNotFound, ErrTypeNotFound, fmt.Sprintf("session %s not found", id))
		return nil, false
	}
	return sess, true
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if s.manager == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, ErrTypeUnavailable, "studio sessions are disabled")
		return
	}

	var req CreateSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "invalid JSON body: "+err.Error())
			return
		}
	}

	sess, err := s.manager.Create(req.ID, req.Creator)
	if err != nil {
		s.writeError(w, r, http.StatusConflict, ErrTypeConflict, err.Error())
		return
	}
	s.logger.Info("session opened", "session", sess.ID(), "creator", req.Creator)
	s.writeJSON(w, http.StatusCreated, describe(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, describe(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.manager.Remove(sess.ID())
	w.WriteHeader(http.StatusNoContent)
}

func describe(sess *studio.Session) SessionResponse {
	resp := SessionResponse{
		ID:       sess.ID(),
		Complete: sess.Complete(),
		Style:    sess.Style(),
		Messages: len(sess.Transcript()),
	}
	if rd, ok := sess.Round(); ok {
		resp.Round = rd.ID
		resp.Genre = rd.Spec.Template
	}
	if g, ok := sess.Spec(); ok {
		resp.Spec = &g
	}
	set := sess.Assets()
	for _, slot := range assets.Slots() {
		res, ok := set[slot]
		if !ok {
			continue
		}
		resp.Assets = append(resp.Assets, AssetResponse{
			Slot:   slot,
			Status: res.Status.String(),
			URL:    res.URL,
			Error:  res.Err,
		})
	}
	return resp
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"messages": sess.Transcript()})
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req MessageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "invalid JSON body: "+err.Error())
		return
	}

	res, err := sess.Send(r.Context(), req.Content)
	if err != nil {
		status, errType := classify(err)
		e := APIError{Type: errType, Message: err.Error()}
		if res.Reply.ID != "" {
			e.Reply = &res.Reply
		}
		s.writeAPIError(w, r, status, e)
		return
	}

	resp := MessageResponse{
		Intent:  res.Intent.Kind.String(),
		Message: res.Reply,
		Round:   res.Round,
	}
	if res.Game != nil {
		g := gameResponse(*res.Game, s.baseURL(r), false)
		resp.Game = &g
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessionCode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	code := sess.Code()
	if code == "" {
		s.handleError(w, r, studio.ErrNoGame)
		return
	}
	writeCode(w, code)
}

func writeCode(w http.ResponseWriter, code string) {
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // The client may have gone away
	w.Write([]byte(code))
}

// handleEvents streams the resolved code of the session's current round.
// Superseded rounds never reach the stream.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		s.logger.Warn("event stream without flush support", "error", err)
		return
	}

	sub := sess.Subscribe()
	defer sess.Unsubscribe(sub)
	s.logger.Debug("event stream opened", "session", sess.ID())

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("event stream closed", "session", sess.ID())
			return
		case <-sub.Done():
			fmt.Fprint(w, "event: closed\ndata: {}\n\n")
			//nolint:errcheck // Stream ends either way
			rc.Flush()
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
		case u := <-sub.Updates():
			if err := writeCodeEvent(w, u); err != nil {
				s.logger.Error("cannot encode event", "session", sess.ID(), "error", err)
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeCodeEvent(w http.ResponseWriter, u round.Update) error {
	data, err := json.Marshal(CodeEvent{
		Round:    u.RoundID,
		Genre:    u.Genre,
		Complete: u.Complete,
		Code:     u.Code,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: code\nid: %s\ndata: %s\n\n", u.RoundID, data)
	return err
}
