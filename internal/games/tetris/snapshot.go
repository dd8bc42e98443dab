package tetris

// Snapshot captures the complete game state for determinism testing.
type Snapshot struct {
	Tick     uint64
	Score    int
	Lines    int
	Shape    int
	Row, Col int
	Next     int
	Board    []string
	GameOver bool
}

// Snapshot returns the current game snapshot.
func (g *Game) Snapshot() Snapshot {
	board := make([]string, len(g.board))
	for r, row := range g.board {
		line := make([]byte, len(row))
		for c, v := range row {
			line[c] = '.'
			if v != 0 {
				line[c] = '#'
			}
		}
		board[r] = string(line)
	}
	return Snapshot{
		Tick:     g.tick,
		Score:    g.score,
		Lines:    g.lines,
		Shape:    g.cur.shape,
		Row:      g.cur.row,
		Col:      g.cur.col,
		Next:     g.next,
		Board:    board,
		GameOver: g.gameOver,
	}
}
