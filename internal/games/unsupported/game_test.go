package unsupported

import (
	"strings"
	"testing"

	"github.com/vovakirdan/arcade-studio/internal/assembler"
	"github.com/vovakirdan/arcade-studio/internal/core"
	"github.com/vovakirdan/arcade-studio/internal/spec"
)

func TestNeverEnds(t *testing.T) {
	s := assembler.Scene(spec.GameSpec{Template: "platformer"}, assembler.DefaultOptions())
	g := New(s)
	g.Reset(core.DefaultConfig())

	inputs := []core.Action{core.ActionFire, core.ActionUp, core.ActionRestart, core.ActionCheck}
	for i := 0; i < 500; i++ {
		res := g.Step(core.InputOf(inputs[i%len(inputs)]))
		if res.State.GameOver || res.State.Score != 0 {
			t.Fatalf("tick %d: unexpected state %+v", i, res.State)
		}
	}
}

func TestRendersMessage(t *testing.T) {
	s := assembler.Scene(spec.GameSpec{Template: "platformer"}, assembler.DefaultOptions())
	g := New(s)
	g.Reset(core.DefaultConfig())

	screen := core.NewScreen(80, 24)
	g.Render(screen)
	if !strings.Contains(screen.String(), "unsupported game") {
		t.Errorf("placeholder text missing:\n%s", screen.String())
	}
}
