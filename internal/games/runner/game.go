// Package runner implements the runner genre: the player jumps over a single
// obstacle that scrolls in from the right at a randomized speed.
package runner

import (
	"math/rand"

	"github.com/vovakirdan/arcade-studio/internal/core"
	"github.com/vovakirdan/arcade-studio/internal/games/stage"
	"github.com/vovakirdan/arcade-studio/internal/registry"
	"github.com/vovakirdan/arcade-studio/internal/scene"
)

// GroundChar is the rune of the ground line.
const GroundChar = '═'

// Game implements the runner genre over a scene descriptor.
type Game struct {
	sc       scene.Scene
	rules    scene.RunnerRules
	playerA  scene.Actor
	obstacle scene.Actor

	player   core.Vec // Player center in world units
	playerVY float64  // Player vertical velocity (units/s, negative = up)
	grounded bool     // Whether player stands on the ground
	obstPos  core.Vec // Obstacle center
	obstVX   float64  // Obstacle horizontal velocity (negative = leftwards)
	score    int      // Obstacles passed
	tick     uint64
	gameOver bool
	paused   bool
	restart  stage.Restart
	runtime  core.RuntimeConfig
	rng      *rand.Rand
}

// New creates a runner for the given scene.
func New(s scene.Scene) *Game {
	g := &Game{sc: s}
	if s.Rules.Runner != nil {
		g.rules = *s.Rules.Runner
	}
	g.playerA, _ = s.Actor("player")
	g.obstacle, _ = s.Actor("obstacle")
	return g
}

// ID returns the genre identifier.
func (g *Game) ID() string {
	return "runner"
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

// restartScene restores initial conditions without re-seeding, as the
// automatic restart after a game over does.
func (g *Game) restartScene() {
	g.player = core.V(g.playerA.X, g.playerA.Y)
	g.playerVY = 0
	g.grounded = false
	g.obstPos = core.V(g.obstacle.X, g.obstacle.Y)
	g.obstVX = -g.rules.ObstacleSpeed
	g.score = 0
	g.tick = 0
	g.gameOver = false
	g.restart.Clear()
	g.restOnGround()
}

// restOnGround stands the obstacle on the ground whatever its scale.
func (g *Game) restOnGround() {
	if g.rules.GroundY > 0 {
		g.obstPos.Y = g.rules.GroundY - g.obstacleBody().H/2
	}
}

func (g *Game) playerBody() core.Box {
	return stage.Body(g.playerA, g.player)
}

func (g *Game) obstacleBody() core.Box {
	return stage.Body(g.obstacle, g.obstPos)
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

	// Jump only from the ground
	if in.Has(core.ActionUp) && g.grounded {
		g.playerVY = g.rules.JumpVelocity
		g.grounded = false
	}

	// Apply gravity and land on the ground
	if !g.grounded {
		g.playerVY += g.sc.Physics.Gravity * dt
		g.player.Y += g.playerVY * dt
	}
	half := g.playerBody().H / 2
	if g.player.Y+half >= g.rules.GroundY {
		g.player.Y = g.rules.GroundY - half
		g.playerVY = 0
		g.grounded = true
	}
	if g.player.Y-half < 0 {
		g.player.Y = half
		g.playerVY = 0
	}

	// Scroll the obstacle and respawn it off-screen right
	g.obstPos.X += g.obstVX * dt
	if g.obstPos.X < g.rules.DespawnX {
		g.obstPos.X = g.rules.RespawnX
		g.obstVX = -g.between(g.rules.RespawnSpeed)
		g.score++
	}

	if g.playerBody().Overlaps(g.obstacleBody()) {
		g.gameOver = true
		g.restart.Trigger(stage.DelayTicks(g.sc.GameOver, g.runtime))
	}

	return core.StepResult{State: g.State()}
}

// between returns a uniform value in r.
func (g *Game) between(r scene.Range) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + g.rng.Float64()*(r.Max-r.Min)
}

// Render draws the current game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	vp := stage.Viewport(g.sc, dst)

	_, groundRow := vp.Project(core.V(0, g.rules.GroundY))
	dst.DrawHLine(0, groundRow, dst.Width(), GroundChar)

	stage.DrawTexts(dst, vp, g.sc.Texts)
	stage.DrawSprite(dst, vp, g.obstacle, g.obstacleBody())

	player := g.playerA
	if g.gameOver {
		player.Color = "#FF0000"
	}
	stage.DrawSprite(dst, vp, player, g.playerBody())

	stage.DrawHUD(dst, g.sc.Title, g.score)
	stage.DrawOverlays(dst, g.State(), g.sc.GameOver, g.restart.Automatic())
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    g.score,
		GameOver: g.gameOver,
		Paused:   g.paused,
	}
}

// Register the genre with the registry
func init() {
	registry.Register("runner", "Runner", func(s scene.Scene) registry.Game {
		return New(s)
	})
}
