package web

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/arcade-studio/internal/assembler"
	"github.com/vovakirdan/arcade-studio/internal/executor"
	_ "github.com/vovakirdan/arcade-studio/internal/games/all"
	"github.com/vovakirdan/arcade-studio/internal/orchestrator"
	"github.com/vovakirdan/arcade-studio/internal/spec"
	"github.com/vovakirdan/arcade-studio/internal/storage"
	"github.com/vovakirdan/arcade-studio/internal/studio"
)

const kartReply = `{
  "reply": "A kart race it is!",
  "updatedSpec": {
    "template": "racing",
    "playerSprite": {"name": "Red Kart", "url": null, "scale": 0.5},
    "obstacleSprite": {"name": "Rock", "url": null, "scale": 0.5},
    "imagePrompts": {"player": "red kart", "obstacle": "grey rock"}
  },
  "triggerAllImages": true
}`

type staticChat string

func (c staticChat) Complete(context.Context, []orchestrator.ChatMessage) (string, error) {
	return string(c), nil
}

type echoImages struct{}

func (echoImages) Generate(_ context.Context, prompt string) (string, error) {
	return orchestrator.DataURI("image/png", base64.StdEncoding.EncodeToString([]byte(prompt))), nil
}

type env struct {
	srv     *httptest.Server
	manager *studio.Manager
	store   *storage.Store
}

func newEnv(t *testing.T, withStore bool) env {
	t.Helper()

	ex := executor.New(executor.Options{})
	t.Cleanup(ex.Close)

	base := studio.Options{Assembler: assembler.DefaultOptions()}
	var store *storage.Store
	if withStore {
		var err error
		store, err = storage.Open(filepath.Join(t.TempDir(), "studio.db"))
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		t.Cleanup(func() { store.Close() })
		base.Store = store
	}

	newOrch := func() *orchestrator.Orchestrator {
		return orchestrator.New(orchestrator.Options{Chat: staticChat(kartReply), Images: echoImages{}})
	}
	m := studio.NewManager(studio.ManagerConfig{}, base, newOrch, ex)
	t.Cleanup(m.Stop)

	s := NewServer(Options{Manager: m, Store: store, PublicURL: "http://arcade.test/"})
	srv := httptest.NewServer(s.Routes())
	t.Cleanup(srv.Close)
	return env{srv: srv, manager: m, store: store}
}

func (e env) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

// openSession creates a session, sends one chat line and waits for its
// images.
func (e env) openSession(t *testing.T) (string, MessageResponse) {
	t.Helper()
	resp, data := e.do(t, http.MethodPost, "/api/v1/sessions", CreateSessionRequest{Creator: "alice"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session: %d %s", resp.StatusCode, data)
	}
	id := decode[SessionResponse](t, data).ID

	resp, data = e.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/messages", MessageRequest{Content: "make a kart racer"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("post message: %d %s", resp.StatusCode, data)
	}
	msg := decode[MessageResponse](t, data)

	sess, ok := e.manager.Get(id)
	if !ok {
		t.Fatalf("session %s not registered", id)
	}
	sess.Wait()
	return id, msg
}

func TestHealthAndGenres(t *testing.T) {
	e := newEnv(t, false)

	resp, data := e.do(t, http.MethodGet, "/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health: %d", resp.StatusCode)
	}
	if h := decode[HealthResponse](t, data); h.Status != "healthy" || h.Storage {
		t.Errorf("health = %+v", h)
	}

	_, data = e.do(t, http.MethodGet, "/api/v1/genres", nil)
	genres := decode[map[string][]GenreResponse](t, data)["genres"]
	if len(genres) != len(spec.Templates()) {
		t.Errorf("genres = %+v, want one per template", genres)
	}
}

func TestChatCreatesRound(t *testing.T) {
	e := newEnv(t, false)
	id, msg := e.openSession(t)

	if msg.Intent != "chat" || msg.Round == "" {
		t.Errorf("message response = %+v", msg)
	}
	if msg.Message.Role != spec.RoleAI || msg.Message.Content != "A kart race it is!" {
		t.Errorf("reply = %+v", msg.Message)
	}

	resp, data := e.do(t, http.MethodGet, "/api/v1/sessions/"+id, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get session: %d", resp.StatusCode)
	}
	sess := decode[SessionResponse](t, data)
	if sess.Round != msg.Round || sess.Genre != spec.Racing || !sess.Complete {
		t.Errorf("session = %+v", sess)
	}
	if len(sess.Assets) != 2 {
		t.Errorf("assets = %+v, want player and obstacle", sess.Assets)
	}
	if sess.Messages != 2 {
		t.Errorf("messages = %d, want 2", sess.Messages)
	}

	resp, data = e.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/code", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("code: %d", resp.StatusCode)
	}
	code := string(data)
	if !strings.Contains(code, "genre: racing") {
		t.Errorf("code is not a racing scene:\n%s", code)
	}
	if want := base64.StdEncoding.EncodeToString([]byte("red kart")); !strings.Contains(code, want) {
		t.Error("code should carry the generated player image")
	}
	if strings.Contains(code, "[[") {
		t.Error("resolved code must not contain placeholder tokens")
	}
}

func TestMessageErrors(t *testing.T) {
	e := newEnv(t, false)
	resp, data := e.do(t, http.MethodPost, "/api/v1/sessions", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session: %d %s", resp.StatusCode, data)
	}
	id := decode[SessionResponse](t, data).ID

	tests := []struct {
		name    string
		content string
		status  int
		errType string
		reply   bool
	}{
		{"empty", "   ", http.StatusBadRequest, ErrTypeValidation, false},
		{"unknown command", "/bogus", http.StatusBadRequest, ErrTypeValidation, true},
		{"no game to scale", "/scale player 2", http.StatusConflict, ErrTypeConflict, true},
		{"no store to save", "/save mine", http.StatusServiceUnavailable, ErrTypeUnavailable, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := e.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/messages", MessageRequest{Content: tt.content})
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d (%s)", resp.StatusCode, tt.status, data)
			}
			apiErr := decode[APIError](t, data)
			if apiErr.Type != tt.errType || apiErr.RequestID == "" {
				t.Errorf("error = %+v", apiErr)
			}
			if (apiErr.Reply != nil) != tt.reply {
				t.Errorf("reply = %+v, want present=%v", apiErr.Reply, tt.reply)
			}
		})
	}

	resp, data = e.do(t, http.MethodPost, "/api/v1/sessions/nope/messages", MessageRequest{Content: "hi"})
	if resp.StatusCode != http.StatusNotFound || decode[APIError](t, data).Type != ErrTypeNotFound {
		t.Errorf("unknown session: %d %s", resp.StatusCode, data)
	}

	resp, _ = e.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/code", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("code before any game: %d, want 409", resp.StatusCode)
	}
}

func TestEventStreamSendsCurrentRound(t *testing.T) {
	e := newEnv(t, false)
	id, _ := e.openSession(t)

	// A second line supersedes the first round.
	resp, data := e.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/messages", MessageRequest{Content: "/scale player 1.5"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("scale: %d %s", resp.StatusCode, data)
	}
	latest := decode[MessageResponse](t, data).Round

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.srv.URL+"/api/v1/sessions/"+id+"/events", nil)
	if err != nil {
		t.Fatal(err)
	}
	stream, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer stream.Body.Close()
	if ct := stream.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	var event string
	scanner := bufio.NewScanner(stream.Body)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			event = name
			continue
		}
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok || event != "code" {
			continue
		}
		ev := decode[CodeEvent](t, []byte(data))
		if ev.Round != latest {
			t.Errorf("event round = %s, want the current round %s", ev.Round, latest)
		}
		if ev.Genre != spec.Racing || !strings.Contains(ev.Code, "genre: racing") {
			t.Errorf("event = %+v", ev)
		}
		return
	}
	t.Fatalf("no code event received: %v", scanner.Err())
}

func TestSaveAndShareGame(t *testing.T) {
	e := newEnv(t, true)
	id, _ := e.openSession(t)

	resp, data := e.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/messages", MessageRequest{Content: "/save Kart Dash"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save: %d %s", resp.StatusCode, data)
	}
	saved := decode[MessageResponse](t, data).Game
	if saved == nil || saved.Title != "Kart Dash" || saved.Creator != "alice" {
		t.Fatalf("saved game = %+v", saved)
	}
	if want := "http://arcade.test/api/v1/games/" + saved.ID; saved.ShareURL != want {
		t.Errorf("share url = %q, want %q", saved.ShareURL, want)
	}

	_, data = e.do(t, http.MethodGet, "/api/v1/games", nil)
	games := decode[map[string][]GameResponse](t, data)["games"]
	if len(games) != 1 || games[0].ID != saved.ID || games[0].Spec != nil {
		t.Errorf("games = %+v", games)
	}

	resp, data = e.do(t, http.MethodGet, "/api/v1/games/"+saved.ID+"/code", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(data), "genre: racing") {
		t.Errorf("game code: %d %s", resp.StatusCode, data)
	}

	_, data = e.do(t, http.MethodGet, "/api/v1/games/"+saved.ID, nil)
	got := decode[GameResponse](t, data)
	if got.Plays != 1 || got.Spec == nil || got.Spec.Template != spec.Racing {
		t.Errorf("game = %+v", got)
	}

	resp, data = e.do(t, http.MethodGet, "/api/v1/games/"+saved.ID+"/qr.png", nil)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("qr: %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("qr body is not a PNG")
	}

	if _, err := e.store.SaveScore(saved.ID, 42); err != nil {
		t.Fatal(err)
	}
	_, data = e.do(t, http.MethodGet, "/api/v1/games/"+saved.ID+"/scores", nil)
	scores := decode[map[string][]ScoreResponse](t, data)["scores"]
	if len(scores) != 1 || scores[0].Score != 42 || scores[0].Rank != 1 {
		t.Errorf("scores = %+v", scores)
	}

	resp, _ = e.do(t, http.MethodGet, "/api/v1/games/missing", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing game: %d, want 404", resp.StatusCode)
	}
}

func TestGamesWithoutStore(t *testing.T) {
	e := newEnv(t, false)
	resp, data := e.do(t, http.MethodGet, "/api/v1/games", nil)
	if resp.StatusCode != http.StatusServiceUnavailable || decode[APIError](t, data).Type != ErrTypeUnavailable {
		t.Errorf("games without store: %d %s", resp.StatusCode, data)
	}
}

func TestDeleteSession(t *testing.T) {
	e := newEnv(t, false)
	_, data := e.do(t, http.MethodPost, "/api/v1/sessions", CreateSessionRequest{ID: "fixed"})
	if id := decode[SessionResponse](t, data).ID; id != "fixed" {
		t.Fatalf("id = %q", id)
	}

	resp, _ := e.do(t, http.MethodPost, "/api/v1/sessions", CreateSessionRequest{ID: "fixed"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate session: %d, want 409", resp.StatusCode)
	}

	resp, _ = e.do(t, http.MethodDelete, "/api/v1/sessions/fixed", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete: %d", resp.StatusCode)
	}
	if e.manager.Count() != 0 {
		t.Errorf("sessions = %d after delete", e.manager.Count())
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"", defaultGameLimit, false},
		{"5", 5, false},
		{"1000", maxGameLimit, false},
		{"0", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := parseLimit(tt.raw)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseLimit(%q) = %d, %v", tt.raw, got, err)
		}
	}
}
