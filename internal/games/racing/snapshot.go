package racing

import "github.com/vovakirdan/arcade-studio/internal/core"

// Snapshot captures the complete game state for determinism testing.
type Snapshot struct {
	Tick      uint64
	Score     int
	X, Y      float64
	Rotation  float64
	Obstacles []core.Vec
	GameOver  bool
}

// Snapshot returns the current game snapshot.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Tick:      g.tick,
		Score:     g.score(),
		X:         g.pos.X,
		Y:         g.pos.Y,
		Rotation:  g.rotation,
		Obstacles: append([]core.Vec(nil), g.obstacles...),
		GameOver:  g.gameOver,
	}
}
