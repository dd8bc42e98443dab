package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/arcade-studio/internal/core"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestMapKey(t *testing.T) {
	km := NewKeyMapper()
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want core.Action
		quit bool
	}{
		{"up arrow", tea.KeyMsg{Type: tea.KeyUp}, core.ActionUp, false},
		{"a", runeKey('a'), core.ActionLeft, false},
		{"space", tea.KeyMsg{Type: tea.KeySpace}, core.ActionFire, false},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, core.ActionCheck, false},
		{"backspace", tea.KeyMsg{Type: tea.KeyBackspace}, core.ActionClear, false},
		{"zero", runeKey('0'), core.ActionClear, false},
		{"seven", runeKey('7'), core.DigitAction(7), false},
		{"q", runeKey('q'), core.ActionQuit, true},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit, true},
		{"x", runeKey('x'), core.ActionNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, quit := km.MapKey(tt.msg)
			if got != tt.want || quit != tt.quit {
				t.Errorf("MapKey = %v, %v; want %v, %v", got, quit, tt.want, tt.quit)
			}
		})
	}
}

func TestHeldInputKeepsDirections(t *testing.T) {
	h := NewHeldInput(3)
	h.Press(core.ActionLeft)
	h.Press(core.ActionFire)

	f := h.Frame()
	if !f.Has(core.ActionLeft) || !f.Has(core.ActionFire) {
		t.Fatal("first frame should carry both actions")
	}
	for i := 0; i < 2; i++ {
		f = h.Frame()
		if !f.Has(core.ActionLeft) || f.Has(core.ActionFire) {
			t.Errorf("frame %d: left=%v fire=%v", i+2, f.Has(core.ActionLeft), f.Has(core.ActionFire))
		}
	}
	if h.Frame().Has(core.ActionLeft) {
		t.Error("left should expire after the hold window")
	}
}

func TestHeldInputOppositeCancels(t *testing.T) {
	h := NewHeldInput(5)
	h.Press(core.ActionLeft)
	h.Frame()
	h.Press(core.ActionRight)

	h.Frame()
	f := h.Frame()
	if f.Has(core.ActionLeft) || !f.Has(core.ActionRight) {
		t.Errorf("left=%v right=%v", f.Has(core.ActionLeft), f.Has(core.ActionRight))
	}
}
