// Package sudoku implements the sudoku genre: a fixed puzzle with cursor
// selection, digit entry and a manual check against the stored solution.
package sudoku

import (
	"fmt"

	"github.com/vovakirdan/arcade-studio/internal/core"
	"github.com/vovakirdan/arcade-studio/internal/registry"
	"github.com/vovakirdan/arcade-studio/internal/scene"
)

// Size is the board dimension.
const Size = 9

// Grid is a 9x9 board of digits; 0 is empty.
type Grid [Size][Size]int

// Result is the outcome of the last check.
type Result int

const (
	ResultNone Result = iota
	ResultSuccess
	ResultFailure
)

// String returns a human-readable name for the result.
func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultFailure:
		return "failure"
	default:
		return "none"
	}
}

// Game implements the sudoku genre over a scene descriptor.
type Game struct {
	sc       scene.Scene
	puzzle   Grid
	solution Grid

	cells   Grid
	given   [Size][Size]bool
	curRow  int
	curCol  int
	result  Result
	wrong   int // Wrong or empty cells at the last check
	checks  int
	paused  bool
	runtime core.RuntimeConfig
}

// New creates a sudoku game for the given scene.
func New(s scene.Scene) *Game {
	g := &Game{sc: s}
	if r := s.Rules.Sudoku; r != nil {
		g.puzzle = parseGrid(r.Puzzle)
		g.solution = parseGrid(r.Solution)
	}
	return g
}

// parseGrid reads rows of digits; anything malformed reads as empty.
func parseGrid(rows []string) Grid {
	var grid Grid
	for r := 0; r < Size && r < len(rows); r++ {
		for c := 0; c < Size && c < len(rows[r]); c++ {
			if d := rows[r][c]; d >= '1' && d <= '9' {
				grid[r][c] = int(d - '0')
			}
		}
	}
	return grid
}

// ID returns the genre identifier.
func (g *Game) ID() string {
	return "sudoku"
}

// Title returns the scene title.
func (g *Game) Title() string {
	return g.sc.Title
}

// Reset restores the puzzle.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	g.runtime = runtime
	g.cells = g.puzzle
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			g.given[r][c] = g.puzzle[r][c] != 0
		}
	}
	g.curRow, g.curCol = 0, 0
	g.result = ResultNone
	g.wrong = 0
	g.checks = 0
	g.paused = false
}

// Step applies one tick of input.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if in.Has(core.ActionPause) {
		g.paused = !g.paused
	}
	if g.paused || g.result == ResultSuccess {
		return core.StepResult{State: g.State()}
	}

	switch {
	case in.Has(core.ActionUp):
		g.curRow = (g.curRow + Size - 1) % Size
	case in.Has(core.ActionDown):
		g.curRow = (g.curRow + 1) % Size
	case in.Has(core.ActionLeft):
		g.curCol = (g.curCol + Size - 1) % Size
	case in.Has(core.ActionRight):
		g.curCol = (g.curCol + 1) % Size
	}

	if d := in.Digit(); d > 0 {
		g.Fill(g.curRow, g.curCol, d)
	}
	if in.Has(core.ActionClear) {
		g.Fill(g.curRow, g.curCol, 0)
	}
	if in.Has(core.ActionCheck) {
		g.Check()
	}

	return core.StepResult{State: g.State()}
}

// Fill writes a digit (0 clears) into a cell. Givens are immutable.
// It reports whether the cell changed.
func (g *Game) Fill(row, col, digit int) bool {
	if row < 0 || row >= Size || col < 0 || col >= Size || digit < 0 || digit > 9 {
		return false
	}
	if g.given[row][col] || g.cells[row][col] == digit {
		return false
	}
	g.cells[row][col] = digit
	return true
}

// Check compares every cell with the solution and records the result.
func (g *Game) Check() Result {
	g.checks++
	g.wrong = 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if g.cells[r][c] != g.solution[r][c] {
				g.wrong++
			}
		}
	}
	if g.wrong == 0 {
		g.result = ResultSuccess
	} else {
		g.result = ResultFailure
	}
	return g.result
}

// Cells returns the current board.
func (g *Game) Cells() Grid {
	return g.cells
}

// filled counts cells the player has filled in.
func (g *Game) filled() int {
	n := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if !g.given[r][c] && g.cells[r][c] != 0 {
				n++
			}
		}
	}
	return n
}

func (g *Game) message() string {
	switch g.result {
	case ResultSuccess:
		return "Solved!"
	case ResultFailure:
		return fmt.Sprintf("Not yet: %d cells wrong or empty", g.wrong)
	default:
		return ""
	}
}

// Render draws the board centered on the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	// Each cell is 3 wide plus box separators.
	boardW := Size*3 + 4
	boardH := Size + 4
	x0 := (dst.Width() - boardW) / 2
	y0 := (dst.Height() - boardH) / 2
	if y0 < 1 {
		y0 = 1
	}

	dst.DrawText(1, 0, g.sc.Title)
	progress := fmt.Sprintf(" Filled: %d ", g.filled())
	dst.DrawText(dst.Width()-len(progress)-1, 0, progress)

	y := y0
	for r := 0; r < Size; r++ {
		if r%3 == 0 {
			dst.DrawHLine(x0, y, boardW, '─')
			y++
		}
		x := x0
		for c := 0; c < Size; c++ {
			if c%3 == 0 {
				dst.Set(x, y, '│')
				x++
			}
			ch := '·'
			if v := g.cells[r][c]; v != 0 {
				ch = rune('0' + v)
			}
			color := core.ColorBrightCyan
			if g.given[r][c] {
				color = core.ColorBrightWhite
			}
			if r == g.curRow && c == g.curCol {
				dst.SetColored(x, y, '[', core.ColorYellow)
				dst.SetColored(x+2, y, ']', core.ColorYellow)
			}
			dst.SetColored(x+1, y, ch, color)
			x += 3
		}
		dst.Set(x, y, '│')
		y++
	}
	dst.DrawHLine(x0, y, boardW, '─')

	if msg := g.message(); msg != "" {
		c := core.ColorBrightRed
		if g.result == ResultSuccess {
			c = core.ColorBrightGreen
		}
		dst.DrawTextColored((dst.Width()-len(msg))/2, y+1, msg, c)
	}
	if g.paused {
		dst.DrawMessage("PAUSED", "Press P to resume")
	}
}

// State returns the current game state. A solved puzzle is a finished game.
func (g *Game) State() core.GameState {
	score := 0
	if g.result == ResultSuccess {
		score = Size * Size
	}
	return core.GameState{
		Score:    score,
		GameOver: g.result == ResultSuccess,
		Paused:   g.paused,
		Message:  g.message(),
	}
}

// Register the genre with the registry
func init() {
	registry.Register("sudoku", "Sudoku", func(s scene.Scene) registry.Game {
		return New(s)
	})
}
