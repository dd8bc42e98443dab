package bomberman

// Snapshot captures the complete game state for determinism testing.
type Snapshot struct {
	Tick     uint64
	Score    int
	X, Y     float64
	Bombs    int
	Armed    int
	GameOver bool
}

// Snapshot returns the current game snapshot.
func (g *Game) Snapshot() Snapshot {
	armed := 0
	for _, b := range g.bombs {
		if b.Armed {
			armed++
		}
	}
	return Snapshot{
		Tick:     g.tick,
		Score:    g.placed,
		X:        g.pos.X,
		Y:        g.pos.Y,
		Bombs:    len(g.bombs),
		Armed:    armed,
		GameOver: g.gameOver,
	}
}
