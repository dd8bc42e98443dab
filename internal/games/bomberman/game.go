// Package bomberman implements the bomberman genre: a player walking a tile
// maze and dropping timed bombs. Touching a wall or an armed bomb ends the run.
package bomberman

import (
	"math"

	"github.com/vovakirdan/arcade-studio/internal/core"
	"github.com/vovakirdan/arcade-studio/internal/games/stage"
	"github.com/vovakirdan/arcade-studio/internal/registry"
	"github.com/vovakirdan/arcade-studio/internal/scene"
)

// MaxBody caps the side of the player and bomb bodies so they fit a corridor.
const MaxBody = 32.0

// Bomb is a placed bomb.
type Bomb struct {
	Pos     core.Vec
	Expires uint64 // Tick at which the bomb vanishes
	Armed   bool   // Set once the player has stepped off it
}

// Game implements the bomberman genre over a scene descriptor.
type Game struct {
	sc      scene.Scene
	rules   scene.BombermanRules
	playerA scene.Actor
	bombA   scene.Actor
	wallA   scene.Actor

	pos        core.Vec
	bombs      []Bomb
	placed     int    // Bombs placed this run
	lastPlaced uint64 // Tick of the last placement
	hasPlaced  bool
	tick       uint64
	gameOver   bool
	paused     bool
	restart    stage.Restart
	runtime    core.RuntimeConfig
	cooldown   int // Ticks between placements
	fuse       int // Ticks a bomb lives
}

// New creates a bomberman game for the given scene.
func New(s scene.Scene) *Game {
	g := &Game{sc: s}
	if s.Rules.Bomberman != nil {
		g.rules = *s.Rules.Bomberman
	}
	g.playerA, _ = s.Actor("player")
	g.bombA, _ = s.Actor("bomb")
	g.wallA, _ = s.Actor("wall")
	return g
}

// ID returns the genre identifier.
func (g *Game) ID() string {
	return "bomberman"
}

// Title returns the scene title.
func (g *Game) Title() string {
	return g.sc.Title
}

// Reset restores the initial conditions.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	g.runtime = runtime
	g.cooldown = runtime.TicksFor(g.rules.BombCooldownMS)
	g.fuse = runtime.TicksFor(g.rules.BombFuseMS)
	g.paused = false
	g.restartScene()
}

func (g *Game) restartScene() {
	g.pos = core.V(g.playerA.X, g.playerA.Y)
	g.bombs = g.bombs[:0]
	g.placed = 0
	g.lastPlaced = 0
	g.hasPlaced = false
	g.tick = 0
	g.gameOver = false
	g.restart.Clear()
}

// bodySide is 32*scale, capped at MaxBody.
func bodySide(a scene.Actor) float64 {
	scale := a.Scale
	if scale <= 0 {
		scale = 1
	}
	return math.Min(MaxBody*scale, MaxBody)
}

func (g *Game) playerBody() core.Box {
	side := bodySide(g.playerA)
	return core.Box{Center: g.pos, W: side, H: side}
}

func (g *Game) bombBody(b Bomb) core.Box {
	side := bodySide(g.bombA)
	return core.Box{Center: b.Pos, W: side, H: side}
}

func (g *Game) tileBox(col, row int) core.Box {
	t := float64(g.rules.Tile)
	return core.Box{Center: core.V((float64(col)+0.5)*t, (float64(row)+0.5)*t), W: t, H: t}
}

// tileCenter returns the center of the tile containing p.
func (g *Game) tileCenter(p core.Vec) core.Vec {
	t := float64(g.rules.Tile)
	return core.V(math.Floor(p.X/t)*t+t/2, math.Floor(p.Y/t)*t+t/2)
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
	step := g.rules.Speed * g.runtime.Dt()

	// One direction at a time, left first
	switch {
	case in.Has(core.ActionLeft):
		g.pos.X -= step
	case in.Has(core.ActionRight):
		g.pos.X += step
	case in.Has(core.ActionUp):
		g.pos.Y -= step
	case in.Has(core.ActionDown):
		g.pos.Y += step
	}

	if in.Has(core.ActionFire) && g.canPlace() {
		g.bombs = append(g.bombs, Bomb{
			Pos:     g.tileCenter(g.pos),
			Expires: g.tick + uint64(g.fuse),
		})
		g.placed++
		g.lastPlaced = g.tick
		g.hasPlaced = true
	}

	g.updateBombs()

	if g.hitsWall() || g.hitsArmedBomb() {
		g.gameOver = true
		g.restart.Trigger(stage.DelayTicks(g.sc.GameOver, g.runtime))
	}

	return core.StepResult{State: g.State()}
}

func (g *Game) canPlace() bool {
	return !g.hasPlaced || g.tick-g.lastPlaced >= uint64(g.cooldown)
}

// updateBombs drops expired bombs and arms the ones the player has left.
func (g *Game) updateBombs() {
	player := g.playerBody()
	kept := g.bombs[:0]
	for _, b := range g.bombs {
		if g.tick >= b.Expires {
			continue
		}
		if !b.Armed && !player.Overlaps(g.bombBody(b)) {
			b.Armed = true
		}
		kept = append(kept, b)
	}
	g.bombs = kept
}

func (g *Game) hitsWall() bool {
	body := g.playerBody()
	t := float64(g.rules.Tile)
	c0, c1 := int(math.Floor(body.Left()/t)), int(math.Floor(body.Right()/t))
	r0, r1 := int(math.Floor(body.Top()/t)), int(math.Floor(body.Bottom()/t))
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			if g.rules.Wall(c, r) && body.Overlaps(g.tileBox(c, r)) {
				return true
			}
		}
	}
	return false
}

func (g *Game) hitsArmedBomb() bool {
	body := g.playerBody()
	for _, b := range g.bombs {
		if b.Armed && body.Overlaps(g.bombBody(b)) {
			return true
		}
	}
	return false
}

// Render draws the current game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	vp := stage.Viewport(g.sc, dst)

	for r, row := range g.rules.Layout {
		for c := range row {
			if g.rules.Wall(c, r) {
				stage.DrawSprite(dst, vp, g.wallA, g.tileBox(c, r))
			}
		}
	}
	for _, b := range g.bombs {
		bomb := g.bombA
		if !b.Armed {
			bomb.Glyph = "○"
		}
		stage.DrawSprite(dst, vp, bomb, g.bombBody(b))
	}

	player := g.playerA
	if g.gameOver {
		player.Color = "#FF0000"
	}
	stage.DrawSprite(dst, vp, player, g.playerBody())

	stage.DrawHUD(dst, g.sc.Title, g.placed)
	stage.DrawOverlays(dst, g.State(), g.sc.GameOver, g.restart.Automatic())
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    g.placed,
		GameOver: g.gameOver,
		Paused:   g.paused,
	}
}

// Register the genre with the registry
func init() {
	registry.Register("bomberman", "Bomberman", func(s scene.Scene) registry.Game {
		return New(s)
	})
}
