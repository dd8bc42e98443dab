// Package assets owns the asset slots, their placeholder tokens and the
// substitution of resolved URLs into generated scene text.
package assets

import (
	"strings"
)

// Slot is a named position in a game where an image reference belongs.
type Slot string

const (
	SlotPlayer     Slot = "player"
	SlotObstacle   Slot = "obstacle"
	SlotBackground Slot = "background"
)

// Slots returns every slot in a stable order.
func Slots() []Slot {
	return []Slot{SlotPlayer, SlotObstacle, SlotBackground}
}

// ParseSlot converts user text to a slot.
func ParseSlot(s string) (Slot, bool) {
	switch Slot(strings.ToLower(strings.TrimSpace(s))) {
	case SlotPlayer:
		return SlotPlayer, true
	case SlotObstacle:
		return SlotObstacle, true
	case SlotBackground, "bg":
		return SlotBackground, true
	}
	return "", false
}

// Double square brackets are not valid unescaped URL characters and never
// appear in base64 data URIs, so a token cannot collide with a real URL.
const (
	TokenPlayer     = "[[PLAYER_IMG_URL]]"
	TokenObstacle   = "[[OBSTACLE_IMG_URL]]"
	TokenBackground = "[[BACKGROUND_IMG_URL]]"
)

// Token returns the placeholder token of a slot.
func (s Slot) Token() string {
	switch s {
	case SlotPlayer:
		return TokenPlayer
	case SlotObstacle:
		return TokenObstacle
	case SlotBackground:
		return TokenBackground
	}
	return ""
}

// Defaults are the local asset URLs used when a slot has no asset coming,
// or when generating it failed.
type Defaults struct {
	Player     string `yaml:"player"`
	Obstacle   string `yaml:"obstacle"`
	Background string `yaml:"background"`
}

// DefaultLocal returns the bundled local asset URLs. There is no bundled
// background; an empty background URL means "draw the theme color".
func DefaultLocal() Defaults {
	return Defaults{
		Player:   "/images/player.png",
		Obstacle: "/images/obstacle.png",
	}
}

// For returns the default URL of a slot.
func (d Defaults) For(s Slot) string {
	switch s {
	case SlotPlayer:
		return d.Player
	case SlotObstacle:
		return d.Obstacle
	case SlotBackground:
		return d.Background
	}
	return ""
}
