package round

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/arcade-studio/internal/assembler"
	"github.com/vovakirdan/arcade-studio/internal/assets"
	"github.com/vovakirdan/arcade-studio/internal/core"
	"github.com/vovakirdan/arcade-studio/internal/executor"
	_ "github.com/vovakirdan/arcade-studio/internal/games/all"
	"github.com/vovakirdan/arcade-studio/internal/scene"
	"github.com/vovakirdan/arcade-studio/internal/spec"
)

const (
	catURL   = "data:image/png;base64,Y2F0"
	mouseURL = "data:image/png;base64,bW91c2U="
	skyURL   = "data:image/png;base64,c2t5"
)

func promptedRunner() spec.GameSpec {
	g := spec.ForGenre(spec.Runner)
	g.ImagePrompts = &spec.ImagePrompts{Player: "a cat", Obstacle: "a mouse"}
	return g
}

// recorder collects published updates.
type recorder struct {
	mu      sync.Mutex
	updates []Update
}

func (r *recorder) observe(u Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
}

func (r *recorder) last() Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updates[len(r.updates)-1]
}

func TestBeginAssemblesOnce(t *testing.T) {
	var rec recorder
	p := New(assembler.DefaultOptions(), nil, rec.observe)

	r := p.Begin(promptedRunner())
	if r.ID == "" {
		t.Fatal("round id missing")
	}
	if !strings.Contains(r.Raw, assets.SlotPlayer.Token()) || !strings.Contains(r.Raw, assets.SlotObstacle.Token()) {
		t.Fatalf("raw code should carry placeholders:\n%s", r.Raw)
	}
	if len(r.Expected) != 2 {
		t.Errorf("expected slots = %v", r.Expected)
	}
	if assets.ContainsToken(p.Code()) {
		t.Error("resolved code must never contain a token")
	}
	if p.Complete() {
		t.Error("round with pending slots is not complete")
	}
	if len(rec.updates) != 1 || rec.last().RoundID != r.ID {
		t.Errorf("Begin should publish one update, got %d", len(rec.updates))
	}
}

func TestResolveSubstitutesIncrementally(t *testing.T) {
	var rec recorder
	p := New(assembler.DefaultOptions(), nil, rec.observe)
	r := p.Begin(promptedRunner())

	u, err := p.Resolve(r.ID, assets.SlotPlayer, Resolved(catURL))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(u.Code, catURL) || u.Complete {
		t.Errorf("after player: complete=%v code has player=%v", u.Complete, strings.Contains(u.Code, catURL))
	}

	u, err = p.Resolve(r.ID, assets.SlotObstacle, Resolved(mouseURL))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(u.Code, mouseURL) || !u.Complete {
		t.Error("both slots resolved should complete the round")
	}

	// The raw form is retained untouched.
	cur, _ := p.Current()
	if cur.Raw != r.Raw {
		t.Error("raw code changed during resolution")
	}
	if len(rec.updates) != 3 {
		t.Errorf("published %d updates, expected 3", len(rec.updates))
	}
}

func TestResolutionOrderDoesNotMatter(t *testing.T) {
	a := New(assembler.DefaultOptions(), nil, nil)
	b := New(assembler.DefaultOptions(), nil, nil)
	ra, rb := a.Begin(promptedRunner()), b.Begin(promptedRunner())

	a.Resolve(ra.ID, assets.SlotPlayer, Resolved(catURL))
	a.Resolve(ra.ID, assets.SlotObstacle, Resolved(mouseURL))
	b.Resolve(rb.ID, assets.SlotObstacle, Resolved(mouseURL))
	b.Resolve(rb.ID, assets.SlotPlayer, Resolved(catURL))

	if a.Code() != b.Code() {
		t.Error("resolution order changed the resolved code")
	}
}

func TestFailedSlotUsesDefault(t *testing.T) {
	var buf bytes.Buffer
	opt := assembler.DefaultOptions()
	p := New(opt, log.New(&buf), nil)
	r := p.Begin(promptedRunner())

	u, err := p.Resolve(r.ID, assets.SlotObstacle, Failed(errors.New("quota")))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(u.Code, opt.Defaults.Obstacle) {
		t.Errorf("failed obstacle should use %s", opt.Defaults.Obstacle)
	}
	if u.Assets[assets.SlotObstacle].Status != assets.Failed {
		t.Errorf("status = %v", u.Assets[assets.SlotObstacle].Status)
	}
	if !strings.Contains(buf.String(), "quota") {
		t.Errorf("failure not logged: %s", buf.String())
	}
}

func TestStaleRoundIsDiscarded(t *testing.T) {
	var rec recorder
	p := New(assembler.DefaultOptions(), nil, rec.observe)

	a := p.Begin(promptedRunner())
	b := p.Begin(spec.ForGenre(spec.Racing))
	before := p.Code()
	published := len(rec.updates)

	_, err := p.Resolve(a.ID, assets.SlotPlayer, Resolved(catURL))
	if !errors.Is(err, ErrStaleRound) {
		t.Fatalf("expected ErrStaleRound, got %v", err)
	}
	if p.Code() != before || strings.Contains(p.Code(), catURL) {
		t.Error("a stale outcome changed the current code")
	}
	if len(rec.updates) != published {
		t.Error("a stale outcome was published")
	}
	if cur, _ := p.Current(); cur.ID != b.ID {
		t.Errorf("current round = %s, expected %s", cur.ID, b.ID)
	}
}

func TestSnapshotHoldsBackUpdates(t *testing.T) {
	var (
		mu       sync.Mutex
		attached bool
		seen     []Update
	)
	p := New(assembler.DefaultOptions(), nil, func(u Update) {
		mu.Lock()
		defer mu.Unlock()
		if attached {
			seen = append(seen, u)
		}
	})

	p.Snapshot(func(_ Update, ok bool) {
		if ok {
			t.Error("snapshot before the first round should report ok=false")
		}
	})
	r := p.Begin(promptedRunner())

	resolved := make(chan struct{})
	var snap Update
	p.Snapshot(func(u Update, ok bool) {
		if !ok {
			t.Error("snapshot missing after Begin")
		}
		snap = u
		go func() {
			if _, err := p.Resolve(r.ID, assets.SlotPlayer, Resolved(catURL)); err != nil {
				t.Error(err)
			}
			close(resolved)
		}()
		select {
		case <-resolved:
			t.Error("an update was published while the snapshot was held")
		case <-time.After(20 * time.Millisecond):
		}
		mu.Lock()
		attached = true
		mu.Unlock()
	})
	<-resolved

	if snap.RoundID != r.ID || snap.Complete {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.Assets[assets.SlotPlayer].Status != assets.Pending {
		t.Errorf("snapshot player = %v, want pending", snap.Assets[assets.SlotPlayer].Status)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 {
		t.Fatalf("observer saw %d updates after the snapshot, want 1", len(seen))
	}
	if seen[0].Assets[assets.SlotPlayer].Status != assets.Resolved {
		t.Errorf("update after snapshot should carry the resolved player")
	}
}

func TestResolveErrors(t *testing.T) {
	p := New(assembler.DefaultOptions(), nil, nil)
	if _, err := p.Resolve("nope", assets.SlotPlayer, Resolved(catURL)); !errors.Is(err, ErrNoRound) {
		t.Errorf("before Begin: %v", err)
	}

	r := p.Begin(promptedRunner())
	if _, err := p.Resolve(r.ID, assets.SlotBackground, Resolved(skyURL)); err == nil {
		t.Error("resolving a slot the round does not expect should fail")
	}
}

func TestSpecCarriesResolvedURLs(t *testing.T) {
	p := New(assembler.DefaultOptions(), nil, nil)
	r := p.Begin(promptedRunner())
	p.Resolve(r.ID, assets.SlotPlayer, Resolved(catURL))
	p.Resolve(r.ID, assets.SlotObstacle, Failed(nil))

	g, ok := p.Spec()
	if !ok {
		t.Fatal("no spec")
	}
	if !g.PlayerSprite.HasURL() || *g.PlayerSprite.URL != catURL {
		t.Error("player URL should be carried over")
	}
	if g.ObstacleSprite.HasURL() {
		t.Error("a failed slot must not carry a URL")
	}

	// A follow-up round with a new scale starts with the player resolved.
	next := p.Begin(g.WithScale(assets.SlotPlayer, 1.5))
	if p.Assets()[assets.SlotPlayer].Status != assets.Resolved {
		t.Error("player should start resolved")
	}
	if next.ID == r.ID {
		t.Error("every round gets a fresh id")
	}
	if !strings.Contains(p.Code(), catURL) || !strings.Contains(p.Code(), "scale: 1.5") {
		t.Errorf("rescaled round code:\n%s", p.Code())
	}
}

func TestExecutorFollowsCurrentRound(t *testing.T) {
	var buf bytes.Buffer
	ex := executor.New(executor.Options{Runtime: core.DefaultConfig(), Logger: log.New(&buf)})
	c := ex.Container("preview")

	p := New(assembler.DefaultOptions(), nil, func(u Update) {
		c.Load(u.RoundID, u.Code)
	})

	roundA := p.Begin(promptedRunner())
	roundB := p.Begin(promptedRunner())

	// Round A's asset arrives late.
	p.Resolve(roundA.ID, assets.SlotPlayer, Resolved(catURL))
	if c.Round() != roundB.ID || strings.Contains(c.Code(), catURL) {
		t.Fatal("container picked up a superseded round")
	}

	p.Resolve(roundB.ID, assets.SlotPlayer, Resolved(mouseURL))
	if c.Round() != roundB.ID || c.Code() != p.Code() || !c.Live() {
		t.Error("container should run round B's latest code")
	}
}

func TestAwkwardURLsStillRun(t *testing.T) {
	urls := []string{
		"https://cdn.example.com/o'brien.png",
		`https://cdn.example.com/"quoted".png`,
		"https://cdn.example.com/cat.png#frame=2 # x",
		"https://cdn.example.com/line\nbreak.png",
	}

	for _, url := range urls {
		t.Run(url, func(t *testing.T) {
			var buf bytes.Buffer
			ex := executor.New(executor.Options{Runtime: core.DefaultConfig(), Logger: log.New(&buf)})
			defer ex.Close()
			c := ex.Container("preview")

			p := New(assembler.DefaultOptions(), nil, nil)
			r := p.Begin(promptedRunner())
			u, err := p.Resolve(r.ID, assets.SlotPlayer, Resolved(url))
			if err != nil {
				t.Fatal(err)
			}

			if err := c.Load(u.RoundID, u.Code); err != nil {
				t.Fatalf("Load: %v\n%s", err, u.Code)
			}
			if !c.Live() {
				t.Error("container should be live")
			}

			sc, err := scene.Decode(u.Code)
			if err != nil {
				t.Fatal(err)
			}
			var got string
			for _, a := range sc.Assets {
				if a.Key == "player_sprite" {
					got = a.URL
				}
			}
			if got != url {
				t.Errorf("player url = %q, expected %q", got, url)
			}
		})
	}
}
