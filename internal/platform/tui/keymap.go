package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/arcade-studio/internal/core"
)

// holdTicks is how long a direction key stays active after a press.
// Terminals deliver key presses and auto-repeat, not key state.
const holdTicks = 8

// KeyMapper translates Bubble Tea key messages to game actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// MapKey translates a key message to a game action.
// Returns the action (may be ActionNone) and whether it's a quit request.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (action core.Action, isQuit bool) {
	key := msg.String()

	switch key {
	case "ctrl+c", "q":
		return core.ActionQuit, true
	}

	switch key {
	case "w", "up":
		return core.ActionUp, false
	case "s", "down":
		return core.ActionDown, false
	case "a", "left":
		return core.ActionLeft, false
	case "d", "right":
		return core.ActionRight, false
	case " ":
		return core.ActionFire, false
	case "enter":
		return core.ActionCheck, false
	case "backspace", "delete", "0":
		return core.ActionClear, false
	case "p":
		return core.ActionPause, false
	case "r":
		return core.ActionRestart, false
	}
	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		return core.DigitAction(int(key[0] - '0')), false
	}

	return core.ActionNone, false
}

// held reports whether an action is a direction that should stay active
// between key repeats.
func held(a core.Action) bool {
	switch a {
	case core.ActionUp, core.ActionDown, core.ActionLeft, core.ActionRight:
		return true
	}
	return false
}

// HeldInput builds input frames from key presses. Directions stay active
// for a few ticks; everything else lasts one tick.
type HeldInput struct {
	once  core.InputFrame
	hold  map[core.Action]int
	ticks int
}

// NewHeldInput creates an input tracker. ticks <= 0 uses the default window.
func NewHeldInput(ticks int) *HeldInput {
	if ticks <= 0 {
		ticks = holdTicks
	}
	return &HeldInput{
		once:  core.NewInputFrame(),
		hold:  make(map[core.Action]int),
		ticks: ticks,
	}
}

// Press records a key press.
func (h *HeldInput) Press(a core.Action) {
	if a == core.ActionNone {
		return
	}
	if held(a) {
		// Opposite directions cancel each other.
		switch a {
		case core.ActionLeft:
			delete(h.hold, core.ActionRight)
		case core.ActionRight:
			delete(h.hold, core.ActionLeft)
		case core.ActionUp:
			delete(h.hold, core.ActionDown)
		case core.ActionDown:
			delete(h.hold, core.ActionUp)
		}
		h.hold[a] = h.ticks
	}
	h.once.Set(a)
}

// Frame returns the input for the next tick and ages held keys.
func (h *HeldInput) Frame() core.InputFrame {
	f := h.once.Clone()
	for a, left := range h.hold {
		f.Set(a)
		if left <= 1 {
			delete(h.hold, a)
		} else {
			h.hold[a] = left - 1
		}
	}
	h.once.Clear()
	return f
}

// Reset drops every pending key.
func (h *HeldInput) Reset() {
	h.once.Clear()
	for a := range h.hold {
		delete(h.hold, a)
	}
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionQuit
	MenuActionScoreboard
	MenuActionNew
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	key := msg.String()

	switch key {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	case "tab":
		return MenuActionScoreboard
	case "n":
		return MenuActionNew
	}

	return MenuActionNone
}
