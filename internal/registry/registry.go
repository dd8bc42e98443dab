// Package registry provides a global registry of genre interpreters.
// Interpreters register themselves in init() functions, allowing the executor
// to instantiate them from a scene without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/arcade-studio/internal/core"
	"github.com/vovakirdan/arcade-studio/internal/scene"
)

// Game is the interface every genre interpreter implements.
// Interpreters contain pure logic with no external dependencies (especially
// no Bubble Tea). The platform handles input mapping, timing, and rendering.
type Game interface {
	// ID returns the genre this interpreter runs (e.g., "runner", "tetris").
	ID() string

	// Title returns the scene title for display.
	Title() string

	// Reset initializes or resets the game to the scene's initial conditions.
	// Called once at start and again on every restart.
	Reset(cfg core.RuntimeConfig)

	// Step advances the simulation by one fixed tick.
	Step(in core.InputFrame) core.StepResult

	// Render draws the current game state into the provided screen buffer.
	Render(dst *core.Screen)

	// State returns the current game state (score, game over, paused).
	State() core.GameState
}

// GenreInfo contains metadata about a registered genre.
type GenreInfo struct {
	ID    string
	Title string
}

// Factory builds an interpreter for a decoded scene. The scene is owned by
// the interpreter for its whole life and never changes.
type Factory func(s scene.Scene) Game

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a genre interpreter to the registry.
// Typically called from the interpreter package's init() function.
// Panics if the genre is already registered.
func Register(id, title string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: genre %q already registered", id))
	}

	factories[id] = f
	titles[id] = title
}

// List returns information about all registered genres, sorted by ID.
func List() []GenreInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]GenreInfo, 0, len(factories))
	for id := range factories {
		result = append(result, GenreInfo{
			ID:    id,
			Title: titles[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates the interpreter for a scene's genre. An unknown genre
// falls back to the "unsupported" interpreter when one is registered.
func Create(s scene.Scene) (Game, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[s.Genre]
	if !ok {
		f, ok = factories[scene.Unsupported]
	}
	if !ok {
		return nil, fmt.Errorf("registry: unknown genre %q", s.Genre)
	}

	return f(s), nil
}

// Exists checks if a genre is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
