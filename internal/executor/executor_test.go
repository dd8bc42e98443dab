package executor

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/arcade-studio/internal/assembler"
	"github.com/vovakirdan/arcade-studio/internal/assets"
	"github.com/vovakirdan/arcade-studio/internal/core"
	_ "github.com/vovakirdan/arcade-studio/internal/games/all"
	"github.com/vovakirdan/arcade-studio/internal/registry"
	"github.com/vovakirdan/arcade-studio/internal/scene"
	"github.com/vovakirdan/arcade-studio/internal/spec"
)

// panicGame blows up in the phase named by its scene title.
type panicGame struct {
	phase string
}

func (g *panicGame) ID() string    { return "boom" }
func (g *panicGame) Title() string { return "Boom" }
func (g *panicGame) Reset(core.RuntimeConfig) {
	if g.phase == "reset" {
		panic("reset exploded")
	}
}
func (g *panicGame) Step(core.InputFrame) core.StepResult {
	if g.phase == "step" {
		panic("step exploded")
	}
	return core.StepResult{}
}
func (g *panicGame) Render(*core.Screen) {
	if g.phase == "render" {
		panic("render exploded")
	}
}
func (g *panicGame) State() core.GameState { return core.GameState{} }

func factory(s scene.Scene) (registry.Game, error) {
	if s.Genre == "boom" {
		return &panicGame{phase: s.Title}, nil
	}
	return registry.Create(s)
}

func boomCode(phase string) string {
	return "genre: boom\ntitle: " + phase + "\ncanvas:\n  width: 800\n  height: 600\n  background: '#000000'\n"
}

func resolved(t spec.Template) string {
	raw := assembler.Code(spec.ForGenre(t), assembler.DefaultOptions())
	return assets.Substitute(raw, nil, assets.DefaultLocal())
}

func newExecutor(buf *bytes.Buffer) *Executor {
	return New(Options{
		Runtime: core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 1},
		Logger:  log.New(buf),
		Factory: factory,
	})
}

func TestSequentialLoadsKeepOneInstance(t *testing.T) {
	var buf bytes.Buffer
	c := newExecutor(&buf).Container("preview")

	templates := spec.Templates()
	for i, tpl := range templates {
		if err := c.Load("round-"+string(tpl), resolved(tpl)); err != nil {
			t.Fatalf("load %d (%s): %v", i, tpl, err)
		}
		if c.Genre() != string(tpl) {
			t.Fatalf("live genre = %q, expected %q", c.Genre(), tpl)
		}
	}

	st := c.Stats()
	n := len(templates)
	if st.Creates != n || st.Teardowns != n-1 {
		t.Errorf("after %d loads: creates %d teardowns %d", n, st.Creates, st.Teardowns)
	}
	if !c.Live() {
		t.Error("last instance should be live")
	}
}

func TestSameCodeIsNoop(t *testing.T) {
	var buf bytes.Buffer
	c := newExecutor(&buf).Container("preview")
	code := resolved(spec.Runner)

	for i := 0; i < 3; i++ {
		if err := c.Load("r1", code); err != nil {
			t.Fatal(err)
		}
	}
	if st := c.Stats(); st.Creates != 1 || st.Teardowns != 0 {
		t.Errorf("reloading identical code restarted the engine: %+v", st)
	}
}

func TestScaleChangeRecreates(t *testing.T) {
	var buf bytes.Buffer
	c := newExecutor(&buf).Container("preview")
	g := spec.ForGenre(spec.Runner)
	opt := assembler.DefaultOptions()

	first := assets.Substitute(assembler.Code(g, opt), nil, opt.Defaults)
	second := assets.Substitute(assembler.Code(g.WithScale(assets.SlotPlayer, 1.5), opt), nil, opt.Defaults)
	if first == second {
		t.Fatal("scale change should change the code")
	}

	if err := c.Load("r1", first); err != nil {
		t.Fatal(err)
	}
	if err := c.Load("r2", second); err != nil {
		t.Fatal(err)
	}
	if st := c.Stats(); st.Creates != 2 || st.Teardowns != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func TestMalformedCodeLeavesContainerEmpty(t *testing.T) {
	var buf bytes.Buffer
	c := newExecutor(&buf).Container("preview")

	if err := c.Load("r1", resolved(spec.Racing)); err != nil {
		t.Fatal(err)
	}

	err := c.Load("r2", "genre: [unterminated")
	var runErr *RunError
	if !errors.As(err, &runErr) || runErr.Phase != PhaseDecode || runErr.Round != "r2" {
		t.Fatalf("expected a decode RunError, got %v", err)
	}
	if c.Live() {
		t.Error("container should be empty after a failure")
	}
	if _, err := c.Step(core.NewInputFrame()); !errors.Is(err, ErrEmpty) {
		t.Errorf("Step on empty container: %v", err)
	}
	screen := core.NewScreen(20, 5)
	screen.Fill('x', core.ColorDefault)
	if err := c.Render(screen); !errors.Is(err, ErrEmpty) {
		t.Errorf("Render on empty container: %v", err)
	}
	if strings.ContainsRune(screen.String(), 'x') {
		t.Error("empty container should leave a blank surface")
	}
	if !strings.Contains(buf.String(), "engine failed") {
		t.Errorf("failure was not logged: %s", buf.String())
	}

	// The next code change recovers.
	if err := c.Load("r3", resolved(spec.Tetris)); err != nil {
		t.Fatal(err)
	}
	st := c.Stats()
	if !c.Live() || st.Creates != 2 || st.Teardowns != 1 || st.Failures != 1 {
		t.Errorf("stats after recovery = %+v", st)
	}
}

func TestPanicsAreContained(t *testing.T) {
	tests := []struct {
		phase string
		want  Phase
	}{
		{"reset", PhaseCreate},
		{"step", PhaseStep},
		{"render", PhaseRender},
	}

	for _, tt := range tests {
		t.Run(tt.phase, func(t *testing.T) {
			var buf bytes.Buffer
			c := newExecutor(&buf).Container("preview")

			err := c.Load("r1", boomCode(tt.phase))
			if err == nil {
				_, err = c.Step(core.NewInputFrame())
			}
			if err == nil {
				err = c.Render(core.NewScreen(10, 5))
			}

			var runErr *RunError
			if !errors.As(err, &runErr) || runErr.Phase != tt.want {
				t.Fatalf("expected %s RunError, got %v", tt.want, err)
			}
			if c.Live() {
				t.Error("container should be empty after a panic")
			}
			if !errors.Is(c.Err(), runErr.Err) {
				t.Errorf("Err() = %v", c.Err())
			}

			// Same code again stays empty; new code recovers.
			if err := c.Load("r1", boomCode(tt.phase)); err == nil {
				t.Error("reloading the failed code should report the failure")
			}
			if err := c.Load("r2", resolved(spec.Sudoku)); err != nil || !c.Live() {
				t.Errorf("recovery failed: %v", err)
			}
		})
	}
}

func TestStepAndRenderLiveInstance(t *testing.T) {
	var buf bytes.Buffer
	c := newExecutor(&buf).Container("preview")
	if err := c.Load("r1", resolved(spec.Bomberman)); err != nil {
		t.Fatal(err)
	}

	res, err := c.Step(core.InputOf(core.ActionFire))
	if err != nil {
		t.Fatal(err)
	}
	if res.State.Score != 1 || c.State().Score != 1 {
		t.Errorf("score = %d, expected 1", res.State.Score)
	}

	screen := core.NewScreen(80, 24)
	if err := c.Render(screen); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(screen.String(), "Bomberman") {
		t.Errorf("title missing from render:\n%s", screen.String())
	}
}

func TestExecutorClose(t *testing.T) {
	var buf bytes.Buffer
	e := newExecutor(&buf)
	a, b := e.Container("a"), e.Container("b")
	if e.Container("a") != a {
		t.Fatal("containers should be reused by id")
	}
	if err := a.Load("r", resolved(spec.Runner)); err != nil {
		t.Fatal(err)
	}
	if err := b.Load("r", resolved(spec.Racing)); err != nil {
		t.Fatal(err)
	}
	if ids := e.IDs(); len(ids) != 2 || ids[0] != "a" {
		t.Errorf("IDs() = %v", ids)
	}

	e.Close()
	if a.Live() || b.Live() {
		t.Error("Close should tear every container down")
	}
	if a.Stats().Teardowns != 1 || b.Stats().Teardowns != 1 {
		t.Error("each container should record one teardown")
	}
}
