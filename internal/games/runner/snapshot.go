package runner

// Snapshot captures the complete game state for determinism testing.
type Snapshot struct {
	Tick          uint64
	Score         int
	PlayerX       float64
	PlayerY       float64
	PlayerVY      float64
	Grounded      bool
	ObstacleX     float64
	ObstacleY     float64
	ObstacleSpeed float64
	GameOver      bool
	Restarting    bool
}

// Snapshot returns the current game snapshot.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Tick:          g.tick,
		Score:         g.score,
		PlayerX:       g.player.X,
		PlayerY:       g.player.Y,
		PlayerVY:      g.playerVY,
		Grounded:      g.grounded,
		ObstacleX:     g.obstPos.X,
		ObstacleY:     g.obstPos.Y,
		ObstacleSpeed: -g.obstVX,
		GameOver:      g.gameOver,
		Restarting:    g.restart.Automatic(),
	}
}
