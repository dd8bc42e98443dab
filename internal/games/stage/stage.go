// Package stage holds the pieces every sprite-based interpreter shares:
// projecting the 800x600 world onto the terminal, sprite bodies, static
// texts, and the terminal pause-then-restart timer.
package stage

import (
	"fmt"

	"github.com/vovakirdan/arcade-studio/internal/core"
	"github.com/vovakirdan/arcade-studio/internal/scene"
)

// SpriteSize is the base side length of a sprite body in world units.
// Images are never decoded, so every sprite is a square of SpriteSize*scale.
const SpriteSize = 64.0

// Body returns the collision box of an actor centered at p.
func Body(a scene.Actor, p core.Vec) core.Box {
	scale := a.Scale
	if scale <= 0 {
		scale = 1
	}
	return core.Box{Center: p, W: SpriteSize * scale, H: SpriteSize * scale}
}

// Glyph returns the rune an actor is drawn with.
func Glyph(a scene.Actor) rune {
	for _, r := range a.Glyph {
		return r
	}
	return '#'
}

// Color returns the palette color of an actor.
func Color(a scene.Actor) core.Color {
	if a.Color == "" {
		return core.ColorDefault
	}
	return core.ParseHexColor(a.Color)
}

// Viewport maps the scene canvas onto the screen, leaving row 0 for the HUD.
func Viewport(s scene.Scene, dst *core.Screen) core.Viewport {
	h := dst.Height() - 1
	if h < 1 {
		h = 1
	}
	return core.Viewport{
		WorldW: float64(s.Canvas.Width),
		WorldH: float64(s.Canvas.Height),
		Dst:    core.NewRect(0, 1, dst.Width(), h),
	}
}

// DrawSprite fills the projected body of an actor.
func DrawSprite(dst *core.Screen, vp core.Viewport, a scene.Actor, body core.Box) {
	dst.DrawRect(vp.ProjectBox(body), Glyph(a), Color(a))
}

// DrawTexts draws the scene's static labels centered on their anchor.
func DrawTexts(dst *core.Screen, vp core.Viewport, texts []scene.Text) {
	for _, t := range texts {
		x, y := vp.Project(core.V(t.X, t.Y))
		n := len([]rune(t.Content))
		c := core.ColorDefault
		if t.Color != "" {
			c = core.ParseHexColor(t.Color)
		}
		dst.DrawTextColored(x-n/2, y, t.Content, c)
	}
}

// DrawHUD draws the title and score on row 0.
func DrawHUD(dst *core.Screen, title string, score int) {
	dst.DrawText(1, 0, title)
	text := fmt.Sprintf(" Score: %d ", score)
	dst.DrawText(dst.Width()-len(text)-1, 0, text)
}

// DrawOverlays draws the pause and game-over boxes.
func DrawOverlays(dst *core.Screen, st core.GameState, over *scene.GameOver, restarting bool) {
	if st.Paused {
		dst.DrawMessage("PAUSED", "Press P to resume")
	}
	if st.GameOver {
		title := "GAME OVER"
		if over != nil && over.Text != "" {
			title = over.Text
		}
		sub := fmt.Sprintf("Score: %d  |  Press R to restart", st.Score)
		if restarting {
			sub = fmt.Sprintf("Score: %d  |  Restarting...", st.Score)
		}
		dst.DrawMessage(title, sub)
	}
}

// Restart counts down the terminal pause before a full restart.
type Restart struct {
	remaining int
	active    bool
}

// Trigger starts the countdown. Zero ticks means "wait for the player".
func (r *Restart) Trigger(ticks int) {
	r.active = true
	r.remaining = ticks
}

// Active reports whether the game is in its terminal pause.
func (r *Restart) Active() bool {
	return r.active
}

// Automatic reports whether the pause ends by itself.
func (r *Restart) Automatic() bool {
	return r.active && r.remaining > 0
}

// Tick advances the countdown and reports whether it just expired.
func (r *Restart) Tick() bool {
	if !r.active || r.remaining <= 0 {
		return false
	}
	r.remaining--
	if r.remaining == 0 {
		r.active = false
		return true
	}
	return false
}

// Clear cancels any countdown.
func (r *Restart) Clear() {
	r.active = false
	r.remaining = 0
}

// DelayTicks converts a scene's restart delay to ticks.
func DelayTicks(over *scene.GameOver, cfg core.RuntimeConfig) int {
	if over == nil {
		return 0
	}
	return cfg.TicksFor(over.RestartDelayMS)
}
