package bomberman

import (
	"strings"
	"testing"

	"github.com/vovakirdan/arcade-studio/internal/assembler"
	"github.com/vovakirdan/arcade-studio/internal/core"
	"github.com/vovakirdan/arcade-studio/internal/spec"
)

func newGame(t *testing.T) *Game {
	t.Helper()
	s := assembler.Scene(spec.ForGenre(spec.Bomberman), assembler.DefaultOptions())
	g := New(s)
	g.Reset(core.RuntimeConfig{Seed: 1, ScreenW: 80, ScreenH: 24, TickRate: 60})
	return g
}

func steps(g *Game, n int, actions ...core.Action) {
	for i := 0; i < n; i++ {
		g.Step(core.InputOf(actions...))
	}
}

func TestSpawnIsSafe(t *testing.T) {
	g := newGame(t)
	steps(g, 30)
	snap := g.Snapshot()
	if snap.GameOver {
		t.Fatal("standing on the spawn tile should be safe")
	}
	if snap.X != 60 || snap.Y != 60 {
		t.Errorf("spawn = (%v, %v), expected (60, 60)", snap.X, snap.Y)
	}
}

func TestCorridorWalk(t *testing.T) {
	g := newGame(t)
	steps(g, 200, core.ActionRight)
	snap := g.Snapshot()
	if snap.GameOver {
		t.Fatalf("row 1 is an open corridor, got game over at x=%v", snap.X)
	}
	if snap.X <= 500 {
		t.Errorf("x = %v, expected the player to have walked right", snap.X)
	}
}

func TestWallIsTerminal(t *testing.T) {
	g := newGame(t)
	steps(g, 6, core.ActionUp)
	if !g.State().GameOver {
		t.Errorf("walking into the border wall should end the game, y=%v", g.Snapshot().Y)
	}
}

func TestDirectionPriority(t *testing.T) {
	g := newGame(t)
	g.Step(core.InputOf(core.ActionRight, core.ActionDown))
	snap := g.Snapshot()
	if snap.X <= 60 || snap.Y != 60 {
		t.Errorf("right should win over down: (%v, %v)", snap.X, snap.Y)
	}
}

func TestBombArmsAfterLeaving(t *testing.T) {
	g := newGame(t)

	g.Step(core.InputOf(core.ActionFire))
	snap := g.Snapshot()
	if snap.Bombs != 1 || snap.Armed != 0 || snap.Score != 1 {
		t.Fatalf("expected one unarmed bomb, got %+v", snap)
	}

	steps(g, 10, core.ActionRight)
	snap = g.Snapshot()
	if snap.Armed != 1 || snap.GameOver {
		t.Fatalf("bomb should arm once the player steps off it: %+v", snap)
	}

	steps(g, 10, core.ActionLeft)
	if !g.State().GameOver {
		t.Error("walking back into an armed bomb should end the game")
	}
}

func TestBombCooldownAndFuse(t *testing.T) {
	g := newGame(t)

	g.Step(core.InputOf(core.ActionFire)) // tick 1
	steps(g, 30, core.ActionFire)         // ticks 2..31, cooling down
	if g.Snapshot().Score != 1 {
		t.Fatalf("placed %d bombs during the cooldown", g.Snapshot().Score)
	}

	steps(g, 29)                          // ticks 32..60
	g.Step(core.InputOf(core.ActionFire)) // tick 61, 1000 ms after the first
	if g.Snapshot().Score != 2 {
		t.Fatalf("expected a second bomb after the cooldown, score %d", g.Snapshot().Score)
	}

	steps(g, 119) // tick 180: first bomb still alive
	if g.Snapshot().Bombs != 2 {
		t.Fatalf("bombs = %d at tick 180, expected 2", g.Snapshot().Bombs)
	}
	g.Step(core.NewInputFrame()) // tick 181: 3000 ms after placement
	if g.Snapshot().Bombs != 1 {
		t.Errorf("first bomb should vanish after its fuse, bombs = %d", g.Snapshot().Bombs)
	}
}

func TestRestartAfterDelay(t *testing.T) {
	g := newGame(t)
	steps(g, 6, core.ActionUp)
	if !g.State().GameOver {
		t.Fatal("expected game over")
	}
	steps(g, 120)
	snap := g.Snapshot()
	if snap.GameOver || snap.X != 60 || snap.Y != 60 || snap.Score != 0 {
		t.Errorf("expected a full restart, got %+v", snap)
	}
}

func TestRender(t *testing.T) {
	g := newGame(t)
	screen := core.NewScreen(80, 24)
	g.Render(screen)
	out := screen.String()
	if !strings.ContainsRune(out, '█') || !strings.ContainsRune(out, '@') {
		t.Errorf("walls or player missing:\n%s", out)
	}
}
