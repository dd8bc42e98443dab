// Package unsupported renders the placeholder scene shown for genres the
// studio cannot build. It never ends and ignores every input but pause.
package unsupported

import (
	"github.com/vovakirdan/arcade-studio/internal/core"
	"github.com/vovakirdan/arcade-studio/internal/games/stage"
	"github.com/vovakirdan/arcade-studio/internal/registry"
	"github.com/vovakirdan/arcade-studio/internal/scene"
)

// Game draws the scene's static texts.
type Game struct {
	sc     scene.Scene
	tick   uint64
	paused bool
}

// New creates the placeholder game for the given scene.
func New(s scene.Scene) *Game {
	return &Game{sc: s}
}

// ID returns the genre identifier.
func (g *Game) ID() string {
	return scene.Unsupported
}

// Title returns the scene title.
func (g *Game) Title() string {
	return g.sc.Title
}

// Reset restores the initial state.
func (g *Game) Reset(core.RuntimeConfig) {
	g.tick = 0
	g.paused = false
}

// Step counts ticks; nothing else moves.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if in.Has(core.ActionPause) {
		g.paused = !g.paused
	}
	if !g.paused {
		g.tick++
	}
	return core.StepResult{State: g.State()}
}

// Render draws the background and the scene texts.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	vp := stage.Viewport(g.sc, dst)
	stage.DrawTexts(dst, vp, g.sc.Texts)
	dst.DrawText(1, 0, g.sc.Title)
	stage.DrawOverlays(dst, g.State(), nil, false)
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{Paused: g.paused}
}

// Register the genre with the registry
func init() {
	registry.Register(scene.Unsupported, "Unsupported game", func(s scene.Scene) registry.Game {
		return New(s)
	})
}
