package registry

import (
	"testing"

	"github.com/vovakirdan/arcade-studio/internal/core"
	"github.com/vovakirdan/arcade-studio/internal/scene"
)

type stubGame struct{ id string }

func (g *stubGame) ID() string                           { return g.id }
func (g *stubGame) Title() string                        { return g.id }
func (g *stubGame) Reset(core.RuntimeConfig)             {}
func (g *stubGame) Step(core.InputFrame) core.StepResult { return core.StepResult{} }
func (g *stubGame) Render(*core.Screen)                  {}
func (g *stubGame) State() core.GameState                { return core.GameState{} }

func TestRegisterCreateAndFallback(t *testing.T) {
	Register("stub-test", "Stub", func(s scene.Scene) Game { return &stubGame{id: "stub-test"} })

	g, err := Create(scene.Scene{Genre: "stub-test"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if g.ID() != "stub-test" {
		t.Errorf("ID() = %q", g.ID())
	}

	found := false
	for _, info := range List() {
		if info.ID == "stub-test" && info.Title == "Stub" {
			found = true
		}
	}
	if !found {
		t.Error("List() should include the registered genre")
	}

	Register(scene.Unsupported, "Unsupported", func(s scene.Scene) Game { return &stubGame{id: scene.Unsupported} })
	g, err = Create(scene.Scene{Genre: "platformer"})
	if err != nil {
		t.Fatalf("fallback Create error: %v", err)
	}
	if g.ID() != scene.Unsupported {
		t.Errorf("unknown genre should fall back, got %q", g.ID())
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("stub-dup", "Dup", func(s scene.Scene) Game { return &stubGame{} })
	defer func() {
		if recover() == nil {
			t.Error("duplicate Register should panic")
		}
	}()
	Register("stub-dup", "Dup", func(s scene.Scene) Game { return &stubGame{} })
}
