package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/arcade-studio/internal/core"
	"github.com/vovakirdan/arcade-studio/internal/executor"
	"github.com/vovakirdan/arcade-studio/internal/storage"
)

// Model is the Bubble Tea model that plays whatever runs in a container.
type Model struct {
	container  *executor.Container
	screen     *core.Screen
	store      *storage.Store
	scoreKey   string // saved game id or genre the score is filed under
	config     core.RuntimeConfig
	input      *HeldInput
	keyMapper  *KeyMapper
	gameState  core.GameState
	lastErr    error
	quitting   bool
	backToMenu bool
	scoreSaved bool
}

// NewModel creates a play model for a loaded container.
func NewModel(c *executor.Container, store *storage.Store, scoreKey string, cfg core.RuntimeConfig) Model {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if scoreKey == "" {
		scoreKey = c.Genre()
	}

	return Model{
		container: c,
		screen:    core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		store:     store,
		scoreKey:  scoreKey,
		config:    cfg,
		input:     NewHeldInput(0),
		keyMapper: NewKeyMapper(),
	}
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+s":
		m.saveScreenshot()
		return m, nil
	case "esc", "b":
		if m.gameState.GameOver || m.gameState.Paused || !m.container.Live() {
			m.backToMenu = true
			return m, tea.Quit
		}
	}

	action, isQuit := m.keyMapper.MapKey(msg)
	if isQuit {
		m.quitting = true
		return m, tea.Quit
	}
	m.input.Press(action)
	return m, nil
}

// handleResize processes window resize events.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)

	// Layouts depend on the screen size, so a running game starts over.
	if !m.gameState.GameOver {
		m.lastErr = ignoreEmpty(m.container.Restart(m.config))
	}
	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	wasOver := m.gameState.GameOver

	result, err := m.container.Step(m.input.Frame())
	m.lastErr = ignoreEmpty(err)
	if err == nil {
		m.gameState = result.State
	}

	// Interpreters restart on their own; a new run may score again.
	if wasOver && !m.gameState.GameOver {
		m.scoreSaved = false
	}

	// Save score on game over (once)
	if m.gameState.GameOver && !m.scoreSaved && m.gameState.Score > 0 {
		if m.store != nil {
			//nolint:errcheck // Best-effort save, game continues regardless
			m.store.SaveScore(m.scoreKey, m.gameState.Score)
		}
		m.scoreSaved = true
	}

	return m, tickCmd(m.config.TickRate)
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	//nolint:errcheck // Screenshot of whatever is on screen
	m.container.Render(m.screen)

	dir := filepath.Join(os.Getenv("HOME"), ".arcade-studio", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.txt", m.scoreKey, timestamp)
	path := filepath.Join(dir, filename)

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting || m.backToMenu {
		return ""
	}
	return renderContainer(m.container, m.screen)
}

// renderContainer draws a container, or a notice when nothing runs in it.
func renderContainer(c *executor.Container, screen *core.Screen) string {
	if err := c.Render(screen); err != nil {
		switch {
		case c.Err() != nil:
			screen.DrawMessage("GAME FAILED", truncate(c.Err().Error(), screen.Width()-4))
		case c.Code() == "":
			screen.DrawMessage("NO GAME YET", "Describe a game in the chat")
		default:
			screen.DrawMessage("NOT RUNNING", "")
		}
	}
	return RenderScreen(screen)
}

func ignoreEmpty(err error) error {
	if errors.Is(err, executor.ErrEmpty) {
		return nil
	}
	return err
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// State returns the last reported game state.
func (m Model) State() core.GameState {
	return m.gameState
}

// Run plays a loaded container until the player quits.
func Run(c *executor.Container, store *storage.Store, scoreKey string, cfg core.RuntimeConfig) error {
	model := NewModel(c, store, scoreKey, cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, err := p.Run()
	return err
}
