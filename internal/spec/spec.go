// Package spec defines the declarative game specification the assistant
// builds up during a chat, and the chat transcript itself.
package spec

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/arcade-studio/internal/assets"
)

// Template selects the genre of a game.
type Template string

const (
	Runner    Template = "runner"
	Racing    Template = "racing"
	Bomberman Template = "bomberman"
	Sudoku    Template = "sudoku"
	Tetris    Template = "tetris"
)

// Templates returns every known template in display order.
func Templates() []Template {
	return []Template{Runner, Racing, Bomberman, Sudoku, Tetris}
}

// Known reports whether t is one of the supported templates.
func (t Template) Known() bool {
	for _, k := range Templates() {
		if t == k {
			return true
		}
	}
	return false
}

// Theme is a cosmetic tag; it picks the fallback background color.
type Theme string

const (
	ThemeFantasy Theme = "fantasy"
	ThemeSpace   Theme = "space"
	ThemeDesert  Theme = "desert"
	ThemeLogic   Theme = "logic"
	ThemeClassic Theme = "classic"
	ThemeArcade  Theme = "arcade"
)

// Control is the input scheme tag. It only feeds help text.
type Control string

const (
	ControlKeyboard Control = "keyboard"
	ControlMouse    Control = "mouse"
	ControlTouch    Control = "touch"
)

// AssetRef describes one image slot of a spec.
type AssetRef struct {
	Name  string  `json:"name" yaml:"name"`
	URL   *string `json:"url" yaml:"url,omitempty"`
	Scale float64 `json:"scale,omitempty" yaml:"scale,omitempty"`
}

// ScaleOrDefault returns the scale, or 1.0 when unset or not positive.
func (a *AssetRef) ScaleOrDefault() float64 {
	if a == nil || a.Scale <= 0 {
		return 1.0
	}
	return a.Scale
}

// NameOr returns the label, or fallback when the ref is missing or unnamed.
func (a *AssetRef) NameOr(fallback string) string {
	if a == nil || strings.TrimSpace(a.Name) == "" {
		return fallback
	}
	return a.Name
}

// HasURL reports whether a URL is already attached.
func (a *AssetRef) HasURL() bool {
	return a != nil && a.URL != nil && *a.URL != ""
}

// ImagePrompts are the image-generation prompts per slot.
type ImagePrompts struct {
	Player     string `json:"player,omitempty" yaml:"player,omitempty"`
	Obstacle   string `json:"obstacle,omitempty" yaml:"obstacle,omitempty"`
	Background string `json:"background,omitempty" yaml:"background,omitempty"`
}

// GameSpec is the declarative description of a requested game.
type GameSpec struct {
	Template        Template      `json:"template" yaml:"template"`
	PlayerSprite    *AssetRef     `json:"playerSprite,omitempty" yaml:"player_sprite,omitempty"`
	ObstacleSprite  *AssetRef     `json:"obstacleSprite,omitempty" yaml:"obstacle_sprite,omitempty"`
	BackgroundImage *AssetRef     `json:"backgroundImage,omitempty" yaml:"background_image,omitempty"`
	Control         Control       `json:"control,omitempty" yaml:"control,omitempty"`
	Theme           Theme         `json:"theme,omitempty" yaml:"theme,omitempty"`
	ImagePrompts    *ImagePrompts `json:"imagePrompts,omitempty" yaml:"image_prompts,omitempty"`
}

// Asset returns the ref stored in a slot, or nil.
func (g GameSpec) Asset(slot assets.Slot) *AssetRef {
	switch slot {
	case assets.SlotPlayer:
		return g.PlayerSprite
	case assets.SlotObstacle:
		return g.ObstacleSprite
	case assets.SlotBackground:
		return g.BackgroundImage
	}
	return nil
}

// Prompt returns the image prompt of a slot, or "".
func (g GameSpec) Prompt(slot assets.Slot) string {
	if g.ImagePrompts == nil {
		return ""
	}
	switch slot {
	case assets.SlotPlayer:
		return g.ImagePrompts.Player
	case assets.SlotObstacle:
		return g.ImagePrompts.Obstacle
	case assets.SlotBackground:
		return g.ImagePrompts.Background
	}
	return ""
}

// Expects reports whether an asset is coming for the slot, either because a
// URL is already attached or because there is a prompt to generate one.
// Slots that expect nothing get a local default instead of a placeholder.
func (g GameSpec) Expects(slot assets.Slot) bool {
	return g.Asset(slot).HasURL() || strings.TrimSpace(g.Prompt(slot)) != ""
}

// Clone returns a deep copy, so a round can own its spec.
func (g GameSpec) Clone() GameSpec {
	out := g
	out.PlayerSprite = cloneRef(g.PlayerSprite)
	out.ObstacleSprite = cloneRef(g.ObstacleSprite)
	out.BackgroundImage = cloneRef(g.BackgroundImage)
	if g.ImagePrompts != nil {
		p := *g.ImagePrompts
		out.ImagePrompts = &p
	}
	return out
}

func cloneRef(a *AssetRef) *AssetRef {
	if a == nil {
		return nil
	}
	c := *a
	if a.URL != nil {
		u := *a.URL
		c.URL = &u
	}
	return &c
}

// WithScale returns a copy with the slot's scale replaced.
func (g GameSpec) WithScale(slot assets.Slot, scale float64) GameSpec {
	out := g.Clone()
	ref := out.Asset(slot)
	if ref == nil {
		ref = &AssetRef{Name: string(slot)}
		out.setAsset(slot, ref)
	}
	ref.Scale = scale
	return out
}

// WithURL returns a copy with the slot's URL replaced. An empty url clears it.
func (g GameSpec) WithURL(slot assets.Slot, url string) GameSpec {
	out := g.Clone()
	ref := out.Asset(slot)
	if ref == nil {
		ref = &AssetRef{Name: string(slot)}
		out.setAsset(slot, ref)
	}
	if url == "" {
		ref.URL = nil
	} else {
		ref.URL = &url
	}
	return out
}

func (g *GameSpec) setAsset(slot assets.Slot, ref *AssetRef) {
	switch slot {
	case assets.SlotPlayer:
		g.PlayerSprite = ref
	case assets.SlotObstacle:
		g.ObstacleSprite = ref
	case assets.SlotBackground:
		g.BackgroundImage = ref
	}
}

// Normalize lowercases enum fields. An unknown template is kept as-is; it
// degrades to the unsupported scene later.
func (g GameSpec) Normalize() GameSpec {
	out := g.Clone()
	out.Template = Template(strings.ToLower(strings.TrimSpace(string(g.Template))))
	out.Theme = Theme(strings.ToLower(strings.TrimSpace(string(g.Theme))))
	out.Control = Control(strings.ToLower(strings.TrimSpace(string(g.Control))))
	return out
}

// ParseJSON decodes a spec from the assistant's JSON form.
func ParseJSON(data []byte) (GameSpec, error) {
	var g GameSpec
	if err := json.Unmarshal(data, &g); err != nil {
		return g, fmt.Errorf("spec: cannot decode json: %w", err)
	}
	return g.Normalize(), nil
}

// Parse decodes a spec from YAML.
func Parse(data []byte) (GameSpec, error) {
	var g GameSpec
	if err := yaml.Unmarshal(data, &g); err != nil {
		return g, fmt.Errorf("spec: cannot decode yaml: %w", err)
	}
	return g.Normalize(), nil
}

// Load reads a spec file: JSON for a .json extension, YAML otherwise.
func Load(path string) (GameSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GameSpec{}, fmt.Errorf("spec: cannot read %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(data)
	}
	return Parse(data)
}

// ForGenre returns a minimal spec for a template, as used by `studio play <genre>`.
func ForGenre(t Template) GameSpec {
	return GameSpec{
		Template:       t,
		PlayerSprite:   &AssetRef{Name: "player", Scale: 0.5},
		ObstacleSprite: &AssetRef{Name: "obstacle", Scale: 0.5},
		Control:        ControlKeyboard,
		Theme:          ThemeArcade,
	}
}
