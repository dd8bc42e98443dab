package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/arcade-studio/internal/assembler"
	"github.com/vovakirdan/arcade-studio/internal/core"
	"github.com/vovakirdan/arcade-studio/internal/executor"
	"github.com/vovakirdan/arcade-studio/internal/registry"
	"github.com/vovakirdan/arcade-studio/internal/spec"
	"github.com/vovakirdan/arcade-studio/internal/storage"
)

// galleryLimit caps how many saved games the gallery lists.
const galleryLimit = 30

// ItemKind is what a gallery entry opens.
type ItemKind int

const (
	ItemNew   ItemKind = iota // a fresh studio session
	ItemSaved                 // a saved game
	ItemGenre                 // a genre with its default spec
)

// GalleryItem represents a selectable entry in the gallery.
type GalleryItem struct {
	Kind   ItemKind
	ID     string // game id for saved games, genre id otherwise
	Title  string
	Detail string
}

// GalleryModel is the Bubble Tea model for the start screen: new game,
// saved games and quick play per genre.
type GalleryModel struct {
	items          []GalleryItem
	cursor         int
	width          int
	height         int
	config         core.RuntimeConfig
	keyMapper      *KeyMapper
	loadErr        error
	quitting       bool
	selected       *GalleryItem
	openScoreboard bool
}

// NewGalleryModel creates a gallery. A nil store lists genres only.
func NewGalleryModel(store *storage.Store, cfg core.RuntimeConfig) GalleryModel {
	items, err := galleryItems(store)
	return GalleryModel{
		items:     items,
		width:     cfg.ScreenW,
		height:    cfg.ScreenH,
		config:    cfg,
		keyMapper: NewKeyMapper(),
		loadErr:   err,
	}
}

func galleryItems(store *storage.Store) ([]GalleryItem, error) {
	items := []GalleryItem{{Kind: ItemNew, Title: "New game", Detail: "describe it in the chat"}}

	var err error
	if store != nil {
		var games []storage.Game
		games, err = store.ListGames(galleryLimit)
		for _, g := range games {
			detail := fmt.Sprintf("%s, %d plays", g.Template, g.Plays)
			if g.Creator != "" {
				detail = fmt.Sprintf("%s by %s, %d plays", g.Template, g.Creator, g.Plays)
			}
			items = append(items, GalleryItem{Kind: ItemSaved, ID: g.ID, Title: g.Title, Detail: detail})
		}
	}

	for _, g := range registry.List() {
		if !spec.Template(g.ID).Known() {
			continue
		}
		items = append(items, GalleryItem{Kind: ItemGenre, ID: g.ID, Title: g.Title, Detail: "quick play"})
	}
	return items, err
}

// Init initializes the gallery.
func (m GalleryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the gallery.
func (m GalleryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		return m, nil
	}

	return m, nil
}

func (m GalleryModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		selected := m.items[m.cursor]
		m.selected = &selected
		return m, tea.Quit

	case MenuActionNew:
		m.selected = &GalleryItem{Kind: ItemNew, Title: "New game"}
		return m, tea.Quit

	case MenuActionScoreboard:
		m.openScoreboard = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the gallery.
func (m GalleryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText("  A R C A D E   S T U D I O  ", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Make a game or play one", m.width))
	b.WriteString("\n\n")

	section := ItemKind(-1)
	for i, item := range m.items {
		if item.Kind != section {
			section = item.Kind
			if header := sectionHeader(section); header != "" {
				b.WriteString("\n")
				b.WriteString(centerText(header, m.width))
				b.WriteString("\n")
			}
		}

		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%s", cursor, item.Title)
		if item.Detail != "" {
			line += "  (" + item.Detail + ")"
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	if m.loadErr != nil {
		b.WriteString("\n")
		b.WriteString(centerText("Saved games unavailable: "+m.loadErr.Error(), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Open  |  N: New  |  Tab: Scores  |  Q: Quit"
	b.WriteString(centerText(controls, m.width))
	b.WriteString("\n")

	return b.String()
}

func sectionHeader(k ItemKind) string {
	switch k {
	case ItemSaved:
		return "- Saved games -"
	case ItemGenre:
		return "- Quick play -"
	default:
		return ""
	}
}

// Selected returns the selected item, or nil if none selected.
func (m GalleryModel) Selected() *GalleryItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m GalleryModel) IsQuitting() bool {
	return m.quitting
}

// WantsScoreboard returns true if user requested scoreboard.
func (m GalleryModel) WantsScoreboard() bool {
	return m.openScoreboard
}

// Config returns the current runtime config (may have been updated by resize).
func (m GalleryModel) Config() core.RuntimeConfig {
	return m.config
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	n := len([]rune(text))
	if n >= width {
		return text
	}
	padding := (width - n) / 2
	return strings.Repeat(" ", padding) + text
}

// GalleryResult holds the result of running the gallery.
type GalleryResult struct {
	Item            *GalleryItem
	Config          core.RuntimeConfig
	WantsScoreboard bool
	Quit            bool
}

// RunGallery runs the gallery and returns the selection result.
func RunGallery(store *storage.Store, cfg core.RuntimeConfig) (GalleryResult, error) {
	p := tea.NewProgram(NewGalleryModel(store, cfg), tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return GalleryResult{Config: cfg}, err
	}
	m, ok := finalModel.(GalleryModel)
	if !ok {
		return GalleryResult{Config: cfg, Quit: true}, nil
	}
	return galleryResult(m), nil
}

func galleryResult(m GalleryModel) GalleryResult {
	result := GalleryResult{Config: m.Config()}
	switch {
	case m.WantsScoreboard():
		result.WantsScoreboard = true
	case m.IsQuitting() || m.Selected() == nil:
		result.Quit = true
	default:
		result.Item = m.Selected()
	}
	return result
}

// LoadItem loads a saved game or a genre's default game into a container
// and returns the key its scores are filed under. Saved games count a play.
func LoadItem(c *executor.Container, store *storage.Store, item GalleryItem, opt assembler.Options) (string, error) {
	switch item.Kind {
	case ItemSaved:
		if store == nil {
			return "", fmt.Errorf("no game store configured")
		}
		g, err := store.GetGame(item.ID)
		if err != nil {
			return "", err
		}
		if _, err := store.IncrementPlays(g.ID); err != nil {
			return "", err
		}
		return g.ID, c.Load(g.ID, g.Code)

	case ItemGenre:
		t := spec.Template(item.ID)
		return item.ID, c.Load("quickplay-"+item.ID, assembler.Code(spec.ForGenre(t), opt))

	default:
		return "", fmt.Errorf("nothing to play for %q", item.Title)
	}
}
