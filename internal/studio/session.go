// Package studio runs chat sessions: each user line is classified, turned
// into a new generation round when the game changes, and the round's
// resolved code is pushed to the preview container and to subscribers.
package studio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/arcade-studio/internal/assembler"
	"github.com/vovakirdan/arcade-studio/internal/assets"
	"github.com/vovakirdan/arcade-studio/internal/executor"
	"github.com/vovakirdan/arcade-studio/internal/intent"
	"github.com/vovakirdan/arcade-studio/internal/orchestrator"
	"github.com/vovakirdan/arcade-studio/internal/round"
	"github.com/vovakirdan/arcade-studio/internal/spec"
	"github.com/vovakirdan/arcade-studio/internal/storage"
)

var (
	// ErrNoGame is returned by commands that need a game when none exists yet.
	ErrNoGame = errors.New("studio: no game yet, describe one first")
	// ErrNoStore is returned by /save when persistence is disabled.
	ErrNoStore = errors.New("studio: saving is not available")
	// ErrPending is returned by /save while assets are still generating.
	ErrPending = errors.New("studio: assets are still generating")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("studio: session closed")
)

// Options configures a Session.
type Options struct {
	ID           string // empty means a fresh uuid
	Creator      string
	Orchestrator *orchestrator.Orchestrator
	Store        *storage.Store      // optional; enables /save and transcript persistence
	Container    *executor.Container // optional preview container
	Assembler    assembler.Options
	Logger       *log.Logger
}

// Result is the outcome of one chat line.
type Result struct {
	Intent intent.Intent
	Reply  spec.Message
	Round  string        // id of the round this line started, if any
	Game   *storage.Game // set by /save
}

// Session is one studio conversation and its current game.
type Session struct {
	id        string
	creator   string
	orch      *orchestrator.Orchestrator
	store     *storage.Store
	container *executor.Container
	logger    *log.Logger
	pipeline  *round.Pipeline

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	starting    sync.Mutex // orders Begin with the round context swap
	cancelRound context.CancelFunc

	sending sync.Mutex // one line at a time

	mu         sync.Mutex
	transcript *spec.Transcript
	subs       map[*Subscription]struct{}
	lastActive time.Time
	closed     bool
}

// New creates a session. With a store, an existing transcript for the id
// is loaded.
func New(opts Options) (*Session, error) {
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger = logger.With("session", opts.ID)
	if opts.Orchestrator == nil {
		opts.Orchestrator = orchestrator.New(orchestrator.Options{Logger: logger})
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:         opts.ID,
		creator:    opts.Creator,
		orch:       opts.Orchestrator,
		store:      opts.Store,
		container:  opts.Container,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		transcript: spec.NewTranscript(),
		subs:       make(map[*Subscription]struct{}),
		lastActive: time.Now(),
	}
	s.pipeline = round.New(opts.Assembler, logger, s.observe)

	if s.store != nil {
		msgs, err := s.store.Messages(s.id)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("studio: cannot load transcript: %w", err)
		}
		s.transcript = spec.NewTranscript(msgs...)
	}
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// observe runs for every update of the current round, in order.
func (s *Session) observe(u round.Update) {
	if s.container != nil {
		// Failures are logged by the container and leave it empty.
		_ = s.container.Load(u.RoundID, u.Code)
	}

	s.mu.Lock()
	subs := make([]*Subscription, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.send(u)
	}
}

// Send handles one line of chat input.
func (s *Session) Send(ctx context.Context, input string) (Result, error) {
	s.sending.Lock()
	defer s.sending.Unlock()

	if s.isClosed() {
		return Result{}, ErrClosed
	}
	s.touch()

	it, err := intent.Parse(input)
	if errors.Is(err, intent.ErrEmpty) {
		return Result{}, err
	}
	s.record(spec.RoleUser, strings.TrimSpace(input))
	if err != nil {
		return Result{Reply: s.record(spec.RoleSystem, err.Error())}, err
	}

	res := Result{Intent: it}
	role := spec.RoleSystem
	var reply string

	switch it.Kind {
	case intent.KindHelp:
		reply = "Commands:\n" + intent.Help()

	case intent.KindStyle:
		s.orch.SetStyle(it.Text)
		reply = fmt.Sprintf("Art style set to %q. New images will use it.", it.Text)

	case intent.KindScale:
		g, ok := s.pipeline.Spec()
		if !ok {
			err = ErrNoGame
			break
		}
		res.Round = s.Start(g.WithScale(it.Slot, it.Scale)).ID
		reply = fmt.Sprintf("Scaled the %s to %g.", it.Slot, it.Scale)

	case intent.KindRegen:
		g, ok := s.pipeline.Spec()
		if !ok {
			err = ErrNoGame
			break
		}
		if strings.TrimSpace(g.Prompt(it.Slot)) == "" {
			err = fmt.Errorf("studio: no %s prompt to regenerate from", it.Slot)
			break
		}
		res.Round = s.Start(g.WithURL(it.Slot, "")).ID
		reply = fmt.Sprintf("Regenerating the %s image.", it.Slot)

	case intent.KindSave:
		var game storage.Game
		game, err = s.save(it.Text)
		if err == nil {
			res.Game = &game
			reply = fmt.Sprintf("Saved %q as %s.", game.Title, game.ID)
		}

	case intent.KindTemplate:
		forced := it.Template
		res.Round, reply, err = s.generate(ctx, it.Text, &forced)
		role = spec.RoleAI

	case intent.KindChat:
		res.Round, reply, err = s.generate(ctx, it.Text, nil)
		role = spec.RoleAI
	}

	if err != nil {
		s.logger.Warn("chat line failed", "intent", it.Kind, "error", err)
		res.Reply = s.record(spec.RoleSystem, errorReply(err))
		return res, err
	}
	res.Reply = s.record(role, reply)
	return res, nil
}

// generate asks the assistant for an updated spec and starts a round when
// the game changed. forced pins the template.
func (s *Session) generate(ctx context.Context, text string, forced *spec.Template) (string, string, error) {
	current, hasGame := s.pipeline.Spec()
	if forced != nil {
		if !hasGame {
			current = spec.ForGenre(*forced)
		}
		current.Template = *forced
		if text == "" {
			r := s.Start(current)
			return r.ID, fmt.Sprintf("Switched to %s.", *forced), nil
		}
	}

	reply, err := s.orch.Generate(ctx, s.Transcript(), current)
	if err != nil {
		return "", "", err
	}
	next := reply.Spec
	if forced != nil {
		next.Template = *forced
	}
	if !reply.Assets {
		next = carryURLs(next, current)
	}

	if hasGame && !reply.Assets && sameSpec(next, current) {
		return "", reply.Message, nil
	}
	return s.Start(next).ID, reply.Message, nil
}

// Start begins a round for g and generates every slot that has no URL yet.
// Generation still running for the superseded round is cancelled.
func (s *Session) Start(g spec.GameSpec) round.Round {
	s.starting.Lock()
	defer s.starting.Unlock()

	if s.cancelRound != nil {
		s.cancelRound()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancelRound = cancel
	r := s.pipeline.Begin(g)

	pending := false
	for _, slot := range r.Expected {
		if !r.Spec.Asset(slot).HasURL() {
			pending = true
		}
	}
	if !pending {
		return r
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.orch.GenerateAssets(ctx, r, s.deliver)
	}()
	return r
}

func (s *Session) deliver(roundID string, slot assets.Slot, o round.Outcome) {
	if _, err := s.pipeline.Resolve(roundID, slot, o); err != nil && !errors.Is(err, round.ErrStaleRound) {
		s.logger.Warn("cannot record asset", "round", roundID, "slot", slot, "error", err)
	}
}

func (s *Session) save(title string) (storage.Game, error) {
	if s.store == nil {
		return storage.Game{}, ErrNoStore
	}
	g, ok := s.pipeline.Spec()
	if !ok {
		return storage.Game{}, ErrNoGame
	}
	if !s.pipeline.Complete() {
		return storage.Game{}, ErrPending
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = fmt.Sprintf("%s %s", g.PlayerSprite.NameOr("Untitled"), g.Template)
	}

	thumb := ""
	for _, slot := range []assets.Slot{assets.SlotBackground, assets.SlotPlayer} {
		if ref := g.Asset(slot); ref.HasURL() {
			thumb = *ref.URL
			break
		}
	}

	game, err := s.store.SaveGame(storage.Game{
		Title:     title,
		Creator:   s.creator,
		Thumbnail: thumb,
		Spec:      g,
		Code:      s.pipeline.Code(),
	})
	if err != nil {
		return storage.Game{}, err
	}
	s.logger.Info("game saved", "game", game.ID, "title", game.Title)
	return game, nil
}

func (s *Session) record(role spec.Role, content string) spec.Message {
	m := spec.NewMessage(role, content)
	s.mu.Lock()
	s.transcript.Append(m)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.AppendMessage(s.id, m); err != nil {
			s.logger.Error("cannot persist message", "error", err)
		}
	}
	return m
}

// Transcript returns a copy of the conversation so far.
func (s *Session) Transcript() []spec.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Messages()
}

// Code returns the current resolved code, or "" before the first round.
func (s *Session) Code() string {
	return s.pipeline.Code()
}

// Spec returns the current spec with resolved URLs.
func (s *Session) Spec() (spec.GameSpec, bool) {
	return s.pipeline.Spec()
}

// Round returns the current round.
func (s *Session) Round() (round.Round, bool) {
	return s.pipeline.Current()
}

// Assets returns the asset status of the current round.
func (s *Session) Assets() assets.Set {
	return s.pipeline.Assets()
}

// Complete reports whether every asset of the current round has settled.
func (s *Session) Complete() bool {
	return s.pipeline.Complete()
}

// Style returns the art style used for image prompts.
func (s *Session) Style() string {
	return s.orch.Style()
}

// Container returns the preview container, which may be nil.
func (s *Session) Container() *executor.Container {
	return s.container
}

// Subscribe registers for updates of the current round. The latest update,
// if any, is delivered first, and no update is missed or repeated between
// it and the ones that follow. On a closed session the subscription is
// already done.
func (s *Session) Subscribe() *Subscription {
	sub := newSubscription(8)
	s.pipeline.Snapshot(func(u round.Update, ok bool) {
		s.mu.Lock()
		closed := s.closed
		if !closed {
			s.subs[sub] = struct{}{}
		}
		s.mu.Unlock()

		if closed {
			sub.close()
			return
		}
		if ok {
			sub.send(u)
		}
	})
	return sub
}

// Unsubscribe ends a subscription.
func (s *Session) Unsubscribe(sub *Subscription) {
	s.mu.Lock()
	delete(s.subs, sub)
	s.mu.Unlock()
	sub.close()
}

// Wait blocks until every asset generation started so far has finished.
func (s *Session) Wait() {
	s.wg.Wait()
}

// LastActive returns the time of the last chat line.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close cancels asset generation and ends every subscription.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := s.subs
	s.subs = make(map[*Subscription]struct{})
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	for sub := range subs {
		sub.close()
	}
}

// carryURLs keeps the resolved images of cur for slots next leaves empty.
func carryURLs(next, cur spec.GameSpec) spec.GameSpec {
	for _, slot := range assets.Slots() {
		if next.Asset(slot).HasURL() || !cur.Asset(slot).HasURL() || !next.Expects(slot) {
			continue
		}
		next = next.WithURL(slot, *cur.Asset(slot).URL)
	}
	return next
}

func sameSpec(a, b spec.GameSpec) bool {
	ja, errA := json.Marshal(a.Normalize())
	jb, errB := json.Marshal(b.Normalize())
	return errA == nil && errB == nil && string(ja) == string(jb)
}

// errorReply is the transcript text shown for a failed line.
func errorReply(err error) string {
	switch {
	case errors.Is(err, orchestrator.ErrNotConfigured):
		return "The AI service is not configured. Set AZURE_OAI_ENDPOINT and a key, or run `studio auth set-key chat`."
	case errors.Is(err, orchestrator.ErrAttemptsExhausted):
		return "Sorry, the assistant did not answer. Please try again."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Request cancelled."
	default:
		return err.Error()
	}
}
