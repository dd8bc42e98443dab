package sudoku

import (
	"strings"
	"testing"

	"github.com/vovakirdan/arcade-studio/internal/assembler"
	"github.com/vovakirdan/arcade-studio/internal/core"
	"github.com/vovakirdan/arcade-studio/internal/spec"
)

func newGame(t *testing.T) *Game {
	t.Helper()
	g := New(assembler.Scene(spec.ForGenre(spec.Sudoku), assembler.DefaultOptions()))
	g.Reset(core.DefaultConfig())
	return g
}

func solve(g *Game) {
	sol := parseGrid(assembler.SudokuSolution())
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			g.Fill(r, c, sol[r][c])
		}
	}
}

func TestSolvedBoardChecksOut(t *testing.T) {
	g := newGame(t)
	solve(g)

	if got := g.Check(); got != ResultSuccess {
		t.Fatalf("Check() = %v, expected success", got)
	}
	st := g.State()
	if !st.GameOver || st.Message != "Solved!" {
		t.Errorf("unexpected state after success: %+v", st)
	}
}

func TestOneWrongCellFails(t *testing.T) {
	g := newGame(t)
	solve(g)

	// (0,2) is empty in the puzzle; the solution has 4 there.
	if !g.Fill(0, 2, 9) {
		t.Fatal("filling an empty cell should succeed")
	}
	if got := g.Check(); got != ResultFailure {
		t.Fatalf("Check() = %v, expected failure", got)
	}
	if g.wrong != 1 {
		t.Errorf("wrong = %d, expected 1", g.wrong)
	}
	if g.State().GameOver {
		t.Error("a failed check must not end the game")
	}
}

func TestGivensAreImmutable(t *testing.T) {
	g := newGame(t)
	// (0,0) is a given 5.
	if g.Fill(0, 0, 1) || g.Fill(0, 0, 0) {
		t.Error("givens must not change")
	}
	if g.Cells()[0][0] != 5 {
		t.Errorf("given changed to %d", g.Cells()[0][0])
	}
}

func TestKeyboardEntry(t *testing.T) {
	g := newGame(t)

	// Move to (0,2), type 4, then clear it.
	g.Step(core.InputOf(core.ActionRight))
	g.Step(core.InputOf(core.ActionRight))
	g.Step(core.InputOf(core.ActionDigit4))
	if g.Cells()[0][2] != 4 {
		t.Fatalf("cell (0,2) = %d, expected 4", g.Cells()[0][2])
	}
	g.Step(core.InputOf(core.ActionClear))
	if g.Cells()[0][2] != 0 {
		t.Fatalf("clear left %d", g.Cells()[0][2])
	}

	// Cursor wraps around the edges.
	g.Step(core.InputOf(core.ActionUp))
	if g.curRow != 8 {
		t.Errorf("cursor row = %d, expected wrap to 8", g.curRow)
	}

	g.Step(core.InputOf(core.ActionCheck))
	if g.result != ResultFailure {
		t.Errorf("checking the bare puzzle should fail, got %v", g.result)
	}
	if !strings.Contains(g.State().Message, "wrong") {
		t.Errorf("message = %q", g.State().Message)
	}
}

func TestRender(t *testing.T) {
	g := newGame(t)
	screen := core.NewScreen(80, 24)
	g.Render(screen)
	out := screen.String()
	if !strings.Contains(out, "[5]") {
		t.Errorf("cursor on the first given should render as [5]:\n%s", out)
	}
}
