package core

// RuntimeConfig contains configuration passed to interpreters at initialization.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Simulation ticks per second (default 60)
	Seed     int64 // RNG seed for deterministic gameplay
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     0, // 0 means use current time in platform layer
	}
}

// Dt returns the duration of one tick in seconds.
func (c RuntimeConfig) Dt() float64 {
	if c.TickRate <= 0 {
		return 1.0 / 60
	}
	return 1.0 / float64(c.TickRate)
}

// TicksFor converts a millisecond duration to a whole number of ticks,
// rounding up so that a non-zero delay never collapses to zero ticks.
func (c RuntimeConfig) TicksFor(ms int) int {
	if ms <= 0 {
		return 0
	}
	rate := c.TickRate
	if rate <= 0 {
		rate = 60
	}
	return (ms*rate + 999) / 1000
}

// GameState is the status an interpreter reports to the platform.
type GameState struct {
	Score    int    // Current score
	GameOver bool   // Whether the game has ended (terminal pause included)
	Paused   bool   // Whether the game is paused
	Message  string // Optional status line, e.g. the sudoku check result
}

// StepResult is returned by Game.Step() after each simulation tick.
type StepResult struct {
	State GameState
}
