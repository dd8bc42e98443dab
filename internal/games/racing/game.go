// Package racing implements the racing genre: a top-down car steered by
// angular velocity and pushed along its heading, among static obstacles
// placed at random when the scene starts.
package racing

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/vovakirdan/arcade-studio/internal/core"
	"github.com/vovakirdan/arcade-studio/internal/games/stage"
	"github.com/vovakirdan/arcade-studio/internal/registry"
	"github.com/vovakirdan/arcade-studio/internal/scene"
)

// Game implements the racing genre over a scene descriptor.
type Game struct {
	sc       scene.Scene
	rules    scene.RacingRules
	playerA  scene.Actor
	obstacle scene.Actor

	pos       core.Vec   // Car center
	rotation  float64    // Radians; 0 faces up
	obstacles []core.Vec // Obstacle centers
	tick      uint64
	gameOver  bool
	paused    bool
	restart   stage.Restart
	runtime   core.RuntimeConfig
	rng       *rand.Rand
}

// New creates a racing game for the given scene.
func New(s scene.Scene) *Game {
	g := &Game{sc: s}
	if s.Rules.Racing != nil {
		g.rules = *s.Rules.Racing
	}
	g.playerA, _ = s.Actor("player")
	g.obstacle, _ = s.Actor("obstacle")
	return g
}

// ID returns the genre identifier.
func (g *Game) ID() string {
	return "racing"
}

// Title returns the scene title.
func (g *Game) Title() string {
	return g.sc.Title
}

// Reset seeds the RNG and restores the initial conditions.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	g.runtime = runtime
	g.rng = rand.New(rand.NewSource(runtime.Seed))
	g.paused = false
	g.restartScene()
}

// restartScene rebuilds the track, rolling fresh obstacle positions.
func (g *Game) restartScene() {
	g.pos = core.V(g.playerA.X, g.playerA.Y)
	g.rotation = 0
	g.tick = 0
	g.gameOver = false
	g.restart.Clear()

	g.obstacles = g.obstacles[:0]
	for i := 0; i < g.rules.Obstacles; i++ {
		g.obstacles = append(g.obstacles, core.V(
			g.between(g.rules.SpawnX),
			g.between(g.rules.SpawnY),
		))
	}
}

func (g *Game) between(r scene.Range) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + g.rng.Float64()*(r.Max-r.Min)
}

func (g *Game) carBody() core.Box {
	return stage.Body(g.playerA, g.pos)
}

// heading is the direction of travel: the rotation turned a quarter back,
// so rotation 0 drives up the screen.
func (g *Game) heading() float64 {
	return g.rotation - math.Pi/2
}

// Step advances the simulation by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if g.gameOver {
		if g.restart.Tick() {
			g.restartScene()
		}
		return core.StepResult{State: g.State()}
	}

	// Handle pause toggle
	if in.Has(core.ActionPause) {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	g.tick++
	dt := g.runtime.Dt()

	// Steering: angular velocity in degrees per second
	angular := 0.0
	if in.Has(core.ActionLeft) {
		angular = -g.rules.AngularVelocity
	} else if in.Has(core.ActionRight) {
		angular = g.rules.AngularVelocity
	}
	g.rotation += angular * math.Pi / 180 * dt

	// Thrust: velocity is zero unless driving
	var vel core.Vec
	if in.Has(core.ActionUp) {
		vel = core.FromAngle(g.heading(), g.rules.Thrust)
	} else if in.Has(core.ActionDown) {
		vel = core.FromAngle(g.heading(), -g.rules.Thrust)
	}
	g.pos = g.pos.Add(vel.Scale(dt))

	w, h := float64(g.sc.Canvas.Width), float64(g.sc.Canvas.Height)
	g.pos = g.carBody().ClampInto(w, h).Center

	car := g.carBody()
	for _, o := range g.obstacles {
		if car.Overlaps(stage.Body(g.obstacle, o)) {
			g.gameOver = true
			g.restart.Trigger(stage.DelayTicks(g.sc.GameOver, g.runtime))
			break
		}
	}

	return core.StepResult{State: g.State()}
}

// score is whole seconds survived.
func (g *Game) score() int {
	rate := g.runtime.TickRate
	if rate <= 0 {
		rate = 60
	}
	return int(g.tick) / rate
}

// carGlyph returns an arrow pointing along the heading.
func (g *Game) carGlyph() rune {
	arrows := []rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}
	a := math.Mod(g.heading(), 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	idx := int(math.Round(a/(math.Pi/4))) % len(arrows)
	return arrows[idx]
}

// Render draws the current game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	vp := stage.Viewport(g.sc, dst)

	stage.DrawTexts(dst, vp, g.sc.Texts)
	for _, o := range g.obstacles {
		stage.DrawSprite(dst, vp, g.obstacle, stage.Body(g.obstacle, o))
	}

	car := g.playerA
	car.Glyph = string(g.carGlyph())
	if g.gameOver {
		car.Color = "#FF0000"
	}
	stage.DrawSprite(dst, vp, car, g.carBody())

	stage.DrawHUD(dst, g.sc.Title, g.score())
	dst.DrawText(1, dst.Height()-1, fmt.Sprintf("Obstacles: %d", len(g.obstacles)))
	stage.DrawOverlays(dst, g.State(), g.sc.GameOver, g.restart.Automatic())
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    g.score(),
		GameOver: g.gameOver,
		Paused:   g.paused,
	}
}

// Register the genre with the registry
func init() {
	registry.Register("racing", "Racing", func(s scene.Scene) registry.Game {
		return New(s)
	})
}
