package assembler

import (
	"fmt"

	"github.com/vovakirdan/arcade-studio/internal/assets"
	"github.com/vovakirdan/arcade-studio/internal/scene"
	"github.com/vovakirdan/arcade-studio/internal/spec"
)

// Asset keys shared by the sprite genres.
const (
	keyBackground = "background_sprite"
	keyPlayer     = "player_sprite"
	keyObstacle   = "obstacle_sprite"
	keyBomb       = "bomb_sprite"
	keyWall       = "wall_sprite"
)

// Canvas background colors.
const (
	colorWithBackground = "#FFFFFF"
	colorSpace          = "#000020"
	colorSky            = "#87CEEB"
	colorGrass          = "#006400"
	colorUnsupported    = "#111111"
)

const (
	gameOverText = "GAME OVER"
	textColor    = "#FFFFFF"
	helpColor    = "#DDDDDD"
)

// slotURL is the URL field for a slot: its token when an asset is coming,
// otherwise the local default. The assembler never reads resolved URLs.
func slotURL(g spec.GameSpec, slot assets.Slot, opt Options) string {
	if g.Expects(slot) {
		return slot.Token()
	}
	return opt.Defaults.For(slot)
}

// spriteName is the display name of a sprite. Names are user text, so any
// placeholder token in them is dropped; tokens only ever fill URL fields.
func spriteName(ref *spec.AssetRef, fallback string) string {
	return assets.StripTokens(ref.NameOr(fallback))
}

// backgroundColor derives the canvas color from the background slot and theme.
func backgroundColor(g spec.GameSpec) string {
	if g.Expects(assets.SlotBackground) {
		return colorWithBackground
	}
	if g.Theme == spec.ThemeSpace {
		return colorSpace
	}
	return colorSky
}

// backgroundAssets returns the background asset entry, only when one is expected.
func backgroundAssets(g spec.GameSpec) []scene.Asset {
	if !g.Expects(assets.SlotBackground) {
		return nil
	}
	return []scene.Asset{{Key: keyBackground, URL: assets.SlotBackground.Token()}}
}

func canvas(opt Options, color string) scene.Canvas {
	return scene.Canvas{Width: opt.Canvas.Width, Height: opt.Canvas.Height, Background: color}
}

func gameOver(opt Options) *scene.GameOver {
	return &scene.GameOver{Text: gameOverText, RestartDelayMS: opt.Genres.GameOverDelayMS}
}

// helpText renders the controls line. Pointer schemes are mapped onto the
// keyboard in the terminal, so they are mentioned but not required.
func helpText(c spec.Control, keys string) string {
	switch c {
	case spec.ControlMouse, spec.ControlTouch:
		return fmt.Sprintf("(Controls: %s; %s input maps to the keyboard)", keys, c)
	default:
		return fmt.Sprintf("(Controls: %s)", keys)
	}
}

func centerX(opt Options) float64 {
	return float64(opt.Canvas.Width) / 2
}

func centerY(opt Options) float64 {
	return float64(opt.Canvas.Height) / 2
}
