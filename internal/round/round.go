// Package round tracks generation rounds. A round starts from a game spec,
// assembles the raw code once, and re-substitutes it every time one of its
// asset slots settles. Outcomes addressed to any round but the current one
// are discarded.
package round

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/arcade-studio/internal/assembler"
	"github.com/vovakirdan/arcade-studio/internal/assets"
	"github.com/vovakirdan/arcade-studio/internal/spec"
)

var (
	// ErrStaleRound is returned for outcomes of a superseded round.
	ErrStaleRound = errors.New("round: stale round")
	// ErrNoRound is returned before the first round begins.
	ErrNoRound = errors.New("round: no round in progress")
)

// Outcome is the result of generating one asset.
type Outcome struct {
	URL string
	Err error
}

// Resolved is a successful outcome.
func Resolved(url string) Outcome {
	return Outcome{URL: url}
}

// Failed is a failed outcome; the slot falls back to its default.
func Failed(err error) Outcome {
	if err == nil {
		err = errors.New("asset generation failed")
	}
	return Outcome{Err: err}
}

// Round is one generation round.
type Round struct {
	ID        string
	Spec      spec.GameSpec
	Raw       string
	Expected  []assets.Slot
	StartedAt time.Time
}

// Update is published whenever the resolved code of the current round changes.
type Update struct {
	RoundID  string
	Genre    spec.Template
	Code     string
	Assets   assets.Set
	Complete bool
}

// Observer receives updates in order. It must not call Begin or Resolve.
type Observer func(Update)

// Pipeline owns the current round.
type Pipeline struct {
	opt      assembler.Options
	logger   *log.Logger
	observer Observer

	notify sync.Mutex // serializes compute + publish
	mu     sync.Mutex
	cur    *Round
	set    assets.Set
	code   string
	newID  func() string
}

// New creates a pipeline. observer and logger may be nil.
func New(opt assembler.Options, logger *log.Logger, observer Observer) *Pipeline {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Pipeline{
		opt:      opt,
		logger:   logger,
		observer: observer,
		newID:    uuid.NewString,
	}
}

// Begin starts a new round for g, superseding any round in progress.
// Slots whose ref already carries a URL start resolved.
func (p *Pipeline) Begin(g spec.GameSpec) Round {
	p.notify.Lock()
	defer p.notify.Unlock()

	g = g.Normalize()
	r := &Round{
		ID:        p.newID(),
		Spec:      g.Clone(),
		Raw:       assembler.Code(g, p.opt),
		StartedAt: time.Now(),
	}

	set := make(assets.Set)
	for _, slot := range assets.Slots() {
		if !g.Expects(slot) {
			continue
		}
		r.Expected = append(r.Expected, slot)
		if ref := g.Asset(slot); ref.HasURL() {
			set[slot] = assets.Resolution{Status: assets.Resolved, URL: *ref.URL}
		} else {
			set[slot] = assets.Resolution{Status: assets.Pending}
		}
	}

	p.mu.Lock()
	prev := p.cur
	p.cur = r
	p.set = set
	u := p.refresh()
	p.mu.Unlock()

	if prev != nil {
		p.logger.Debug("round superseded", "round", prev.ID, "by", r.ID)
	}
	p.logger.Info("round started", "round", r.ID, "template", g.Template, "expected", len(r.Expected))
	p.publish(u)
	return *r
}

// Resolve records the outcome of one slot. Outcomes for a superseded round
// return ErrStaleRound and change nothing.
func (p *Pipeline) Resolve(roundID string, slot assets.Slot, o Outcome) (Update, error) {
	p.notify.Lock()
	defer p.notify.Unlock()

	p.mu.Lock()
	if p.cur == nil {
		p.mu.Unlock()
		return Update{}, ErrNoRound
	}
	if p.cur.ID != roundID {
		cur := p.cur.ID
		p.mu.Unlock()
		p.logger.Debug("discarding stale outcome", "round", roundID, "current", cur, "slot", slot)
		return Update{}, fmt.Errorf("%w: %s (current %s)", ErrStaleRound, roundID, cur)
	}
	if _, ok := p.set[slot]; !ok {
		p.mu.Unlock()
		return Update{}, fmt.Errorf("round: slot %s is not expected in round %s", slot, roundID)
	}

	if o.Err != nil {
		p.set[slot] = assets.Resolution{Status: assets.Failed, Err: o.Err.Error()}
	} else {
		p.set[slot] = assets.Resolution{Status: assets.Resolved, URL: o.URL}
	}
	u := p.refresh()
	p.mu.Unlock()

	if o.Err != nil {
		p.logger.Warn("asset failed, using default", "round", roundID, "slot", slot, "error", o.Err)
	} else {
		p.logger.Debug("asset resolved", "round", roundID, "slot", slot)
	}
	p.publish(u)
	return u, nil
}

// refresh re-substitutes the raw code. Callers hold p.mu.
func (p *Pipeline) refresh() Update {
	p.code = assets.Substitute(p.cur.Raw, p.set, p.opt.Defaults)
	return p.latest()
}

// latest is the update last published. Callers hold p.mu.
func (p *Pipeline) latest() Update {
	return Update{
		RoundID:  p.cur.ID,
		Genre:    p.cur.Spec.Template,
		Code:     p.code,
		Assets:   p.set.Clone(),
		Complete: p.complete(),
	}
}

// Snapshot calls fn with the last published update, or ok=false before the
// first round. No update is published while fn runs, so an observer target
// registered inside fn sees every update after the snapshot and none
// before it. Like the observer, fn must not call Begin or Resolve.
func (p *Pipeline) Snapshot(fn func(u Update, ok bool)) {
	p.notify.Lock()
	defer p.notify.Unlock()

	p.mu.Lock()
	var u Update
	ok := p.cur != nil
	if ok {
		u = p.latest()
	}
	p.mu.Unlock()

	fn(u, ok)
}

func (p *Pipeline) complete() bool {
	for _, r := range p.set {
		if r.Status == assets.Pending {
			return false
		}
	}
	return true
}

func (p *Pipeline) publish(u Update) {
	if p.observer != nil {
		p.observer(u)
	}
}

// Current returns the round in progress.
func (p *Pipeline) Current() (Round, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cur == nil {
		return Round{}, false
	}
	return *p.cur, true
}

// Code returns the current resolved code, or "" before the first round.
func (p *Pipeline) Code() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.code
}

// Assets returns a copy of the current asset set.
func (p *Pipeline) Assets() assets.Set {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.set.Clone()
}

// Complete reports whether every expected slot has settled.
func (p *Pipeline) Complete() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cur != nil && p.complete()
}

// Spec returns the current round's spec with resolved URLs filled in.
// Failed and pending slots keep a nil URL.
func (p *Pipeline) Spec() (spec.GameSpec, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cur == nil {
		return spec.GameSpec{}, false
	}
	g := p.cur.Spec.Clone()
	for slot, r := range p.set {
		if r.Status == assets.Resolved {
			g = g.WithURL(slot, r.URL)
		}
	}
	return g, true
}
