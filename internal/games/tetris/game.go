// Package tetris implements the tetris genre: falling tetrominoes on a
// cols x rows board with line clearing.
package tetris

import (
	"fmt"
	"math/rand"

	"github.com/vovakirdan/arcade-studio/internal/core"
	"github.com/vovakirdan/arcade-studio/internal/games/stage"
	"github.com/vovakirdan/arcade-studio/internal/registry"
	"github.com/vovakirdan/arcade-studio/internal/scene"
)

// piece is the falling tetromino.
type piece struct {
	shape int
	cells [][]bool
	row   int
	col   int
}

// Game implements the tetris genre over a scene descriptor.
type Game struct {
	sc     scene.Scene
	rules  scene.TetrisRules
	shapes [][][]bool
	colors []core.Color

	board     [][]int // 0 empty, otherwise shape index + 1
	cur       piece
	next      int
	fall      int // Ticks until the next gravity step
	fallTicks int
	score     int
	lines     int
	tick      uint64
	gameOver  bool
	paused    bool
	restart   stage.Restart
	runtime   core.RuntimeConfig
	rng       *rand.Rand
}

// New creates a tetris game for the given scene.
func New(s scene.Scene) *Game {
	g := &Game{sc: s}
	if s.Rules.Tetris != nil {
		g.rules = *s.Rules.Tetris
	}
	for _, sh := range g.rules.Shapes {
		g.shapes = append(g.shapes, parseShape(sh.Cells))
		g.colors = append(g.colors, core.ParseHexColor(sh.Color))
	}
	return g
}

func parseShape(rows []string) [][]bool {
	cells := make([][]bool, len(rows))
	for r, row := range rows {
		cells[r] = make([]bool, len(row))
		for c, ch := range []byte(row) {
			cells[r][c] = ch == '#'
		}
	}
	return cells
}

// rotate turns a shape clockwise: transpose, then reverse each row.
func rotate(cells [][]bool) [][]bool {
	if len(cells) == 0 {
		return cells
	}
	h, w := len(cells), len(cells[0])
	out := make([][]bool, w)
	for c := 0; c < w; c++ {
		out[c] = make([]bool, h)
		for r := 0; r < h; r++ {
			out[c][r] = cells[r][c]
		}
		for i, j := 0, h-1; i < j; i, j = i+1, j-1 {
			out[c][i], out[c][j] = out[c][j], out[c][i]
		}
	}
	return out
}

// ID returns the genre identifier.
func (g *Game) ID() string {
	return "tetris"
}

// Title returns the scene title.
func (g *Game) Title() string {
	return g.sc.Title
}

// Reset seeds the RNG and starts an empty board.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	g.runtime = runtime
	g.rng = rand.New(rand.NewSource(runtime.Seed))
	g.fallTicks = runtime.TicksFor(g.rules.TickMS)
	if g.fallTicks < 1 {
		g.fallTicks = 1
	}
	g.paused = false
	g.restartScene()
}

func (g *Game) restartScene() {
	g.board = make([][]int, g.rules.Rows)
	for r := range g.board {
		g.board[r] = make([]int, g.rules.Cols)
	}
	g.score = 0
	g.lines = 0
	g.tick = 0
	g.gameOver = false
	g.restart.Clear()
	g.next = g.randomShape()
	g.spawnNext()
}

func (g *Game) randomShape() int {
	if len(g.shapes) == 0 {
		return 0
	}
	return g.rng.Intn(len(g.shapes))
}

// spawnNext puts the queued shape at the top. A blocked spawn ends the game.
func (g *Game) spawnNext() {
	if !g.spawn(g.next) {
		g.gameOver = true
		g.restart.Trigger(stage.DelayTicks(g.sc.GameOver, g.runtime))
	}
	g.next = g.randomShape()
}

// spawn places shape at the top center and reports whether it fits.
func (g *Game) spawn(shape int) bool {
	if shape >= len(g.shapes) {
		g.cur = piece{}
		return false
	}
	cells := g.shapes[shape]
	w := 0
	if len(cells) > 0 {
		w = len(cells[0])
	}
	g.cur = piece{shape: shape, cells: cells, row: 0, col: (g.rules.Cols - w) / 2}
	g.fall = g.fallTicks
	return g.fits(g.cur.cells, g.cur.row, g.cur.col)
}

// fits reports whether cells placed at (row, col) stay on the board and
// clear of locked blocks.
func (g *Game) fits(cells [][]bool, row, col int) bool {
	for r, line := range cells {
		for c, on := range line {
			if !on {
				continue
			}
			br, bc := row+r, col+c
			if br < 0 || br >= g.rules.Rows || bc < 0 || bc >= g.rules.Cols {
				return false
			}
			if g.board[br][bc] != 0 {
				return false
			}
		}
	}
	return true
}

func (g *Game) move(dRow, dCol int) bool {
	if !g.fits(g.cur.cells, g.cur.row+dRow, g.cur.col+dCol) {
		return false
	}
	g.cur.row += dRow
	g.cur.col += dCol
	return true
}

func (g *Game) rotateCurrent() {
	turned := rotate(g.cur.cells)
	if g.fits(turned, g.cur.row, g.cur.col) {
		g.cur.cells = turned
	}
}

// lock writes the piece into the board, clears full rows and spawns the
// next piece.
func (g *Game) lock() {
	for r, line := range g.cur.cells {
		for c, on := range line {
			if on {
				g.board[g.cur.row+r][g.cur.col+c] = g.cur.shape + 1
			}
		}
	}
	cleared := g.clearLines()
	g.lines += cleared
	g.score += cleared * g.rules.PointsPerLine
	g.spawnNext()
}

func (g *Game) clearLines() int {
	kept := make([][]int, 0, g.rules.Rows)
	for _, row := range g.board {
		full := true
		for _, v := range row {
			if v == 0 {
				full = false
				break
			}
		}
		if !full {
			kept = append(kept, row)
		}
	}
	cleared := g.rules.Rows - len(kept)
	for i := 0; i < cleared; i++ {
		kept = append([][]int{make([]int, g.rules.Cols)}, kept...)
	}
	g.board = kept
	return cleared
}

// Step advances the simulation by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if g.gameOver {
		if in.Has(core.ActionRestart) || g.restart.Tick() {
			g.restartScene()
		}
		return core.StepResult{State: g.State()}
	}

	// Handle pause toggle
	if in.Has(core.ActionPause) {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	g.tick++

	switch {
	case in.Has(core.ActionLeft):
		g.move(0, -1)
	case in.Has(core.ActionRight):
		g.move(0, 1)
	}
	if in.Has(core.ActionUp) {
		g.rotateCurrent()
	}

	if in.Has(core.ActionFire) {
		for g.move(1, 0) {
		}
		g.lock()
		return core.StepResult{State: g.State()}
	}
	if in.Has(core.ActionDown) {
		if !g.move(1, 0) {
			g.lock()
			return core.StepResult{State: g.State()}
		}
		g.fall = g.fallTicks
	}

	g.fall--
	if g.fall <= 0 {
		g.fall = g.fallTicks
		if !g.move(1, 0) {
			g.lock()
		}
	}

	return core.StepResult{State: g.State()}
}

// Render draws the board centered on the screen, two columns per cell.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	w := g.rules.Cols*2 + 2
	x0 := (dst.Width() - w) / 2
	y0 := 1

	dst.DrawBox(core.NewRect(x0, y0, w, g.rules.Rows+2))
	cell := func(r, c int, color core.Color) {
		x := x0 + 1 + c*2
		y := y0 + 1 + r
		dst.SetColored(x, y, '█', color)
		dst.SetColored(x+1, y, '█', color)
	}
	for r, row := range g.board {
		for c, v := range row {
			if v != 0 {
				cell(r, c, g.colors[v-1])
			}
		}
	}
	if !g.gameOver {
		for r, line := range g.cur.cells {
			for c, on := range line {
				if on {
					cell(g.cur.row+r, g.cur.col+c, g.colors[g.cur.shape])
				}
			}
		}
	}

	stage.DrawHUD(dst, g.sc.Title, g.score)
	side := x0 + w + 2
	dst.DrawText(side, y0+1, fmt.Sprintf("Lines: %d", g.lines))
	if g.next < len(g.rules.Shapes) {
		dst.DrawText(side, y0+3, "Next: "+g.rules.Shapes[g.next].Name)
	}
	stage.DrawOverlays(dst, g.State(), g.sc.GameOver, g.restart.Automatic())
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    g.score,
		GameOver: g.gameOver,
		Paused:   g.paused,
	}
}

// Register the genre with the registry
func init() {
	registry.Register("tetris", "Tetris", func(s scene.Scene) registry.Game {
		return New(s)
	})
}
