// Package all links every genre interpreter into the registry.
package all

import (
	// Import genres to register them
	_ "github.com/vovakirdan/arcade-studio/internal/games/bomberman"
	_ "github.com/vovakirdan/arcade-studio/internal/games/racing"
	_ "github.com/vovakirdan/arcade-studio/internal/games/runner"
	_ "github.com/vovakirdan/arcade-studio/internal/games/sudoku"
	_ "github.com/vovakirdan/arcade-studio/internal/games/tetris"
	_ "github.com/vovakirdan/arcade-studio/internal/games/unsupported"
)
