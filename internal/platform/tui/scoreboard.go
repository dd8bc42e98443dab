package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/arcade-studio/internal/registry"
	"github.com/vovakirdan/arcade-studio/internal/spec"
	"github.com/vovakirdan/arcade-studio/internal/storage"
)

const (
	boardListWidth = 24 // board list column in the wide layout
	boardListMinW  = 84 // narrower screens show one board at a time
	boardScores    = 100
)

var (
	boardTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	boardDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boardPanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

// Board is one score list. A saved game's board is filed under the game id
// and a genre's quick play under the genre id.
type Board struct {
	Kind    ItemKind // ItemSaved or ItemGenre
	ID      string
	Title   string
	Genre   spec.Template
	Creator string
	Plays   int
	Stats   *storage.GameStats // nil until the board has a score
}

// Item is the gallery entry that plays the board's game.
func (b Board) Item() GalleryItem {
	return GalleryItem{Kind: b.Kind, ID: b.ID, Title: b.Title}
}

// Detail describes where the board's game comes from.
func (b Board) Detail() string {
	if b.Kind == ItemGenre {
		return fmt.Sprintf("%s quick play", b.Genre)
	}
	detail := string(b.Genre)
	if b.Creator != "" {
		detail += " by " + b.Creator
	}
	return fmt.Sprintf("%s, %d plays", detail, b.Plays)
}

// Boards lists the saved games, newest first, then one board per genre.
// Without a store only the genres are listed and stats stay empty.
func Boards(store *storage.Store) ([]Board, error) {
	var boards []Board
	var stats map[string]*storage.GameStats
	var err error
	if store != nil {
		var games []storage.Game
		games, err = store.ListGames(galleryLimit)
		for _, g := range games {
			boards = append(boards, Board{
				Kind:    ItemSaved,
				ID:      g.ID,
				Title:   g.Title,
				Genre:   g.Template,
				Creator: g.Creator,
				Plays:   g.Plays,
			})
		}
		if err == nil {
			stats, err = store.GetAllGamesStats()
		}
	}

	for _, g := range registry.List() {
		if t := spec.Template(g.ID); t.Known() {
			boards = append(boards, Board{Kind: ItemGenre, ID: g.ID, Title: g.Title, Genre: t})
		}
	}
	for i := range boards {
		boards[i].Stats = stats[boards[i].ID]
	}
	return boards, err
}

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Next key.Binding
	Prev key.Binding
	Play key.Binding
	Back key.Binding
	Quit key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Play, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Prev, k.Next},
		{k.Play, k.Back, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "scroll up")),
		Down: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down/j", "scroll down")),
		Next: key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("right/tab", "next board")),
		Prev: key.NewBinding(key.WithKeys("left", "h", "shift+tab"), key.WithHelp("left", "prev board")),
		Play: key.NewBinding(key.WithKeys("enter", "p"), key.WithHelp("enter", "play")),
		Back: key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc/b", "back")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ScoreboardResult is how the scoreboard was left.
type ScoreboardResult struct {
	Play *GalleryItem // set when the player asked to play the selected board
	Back bool
	Quit bool
}

// ScoreboardModel shows the high scores of every board and plays the
// selected one on request.
type ScoreboardModel struct {
	store   *storage.Store
	boards  []Board
	cursor  int
	scores  []storage.ScoreEntry
	loadErr error
	table   table.Model
	help    help.Model
	keys    ScoreboardKeyMap
	width   int
	height  int
	result  ScoreboardResult
}

// NewScoreboardModel creates a scoreboard. A nil store shows the genre
// boards with no scores.
func NewScoreboardModel(store *storage.Store, width, height int) ScoreboardModel {
	boards, err := Boards(store)
	m := ScoreboardModel{
		store:   store,
		boards:  boards,
		loadErr: err,
		help:    help.New(),
		keys:    DefaultScoreboardKeyMap(),
		width:   width,
		height:  height,
	}
	m.table = m.newTable()
	m.load()
	return m
}

// Focus selects the board filed under id, if listed.
func (m *ScoreboardModel) Focus(id string) {
	for i, b := range m.boards {
		if b.ID == id {
			m.cursor = i
			m.load()
			return
		}
	}
}

func (m ScoreboardModel) wide() bool {
	return m.width >= boardListMinW
}

func (m ScoreboardModel) newTable() table.Model {
	w := m.width - 6
	if m.wide() {
		w -= boardListWidth + 4
	}
	dateW := min(max(w-20, 12), 20)

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Rank", Width: 6},
			{Title: "Score", Width: 10},
			{Title: "Date", Width: dateW},
		}),
		table.WithFocused(true),
		table.WithHeight(max(m.height-12, 3)),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

// load reads the scores of the selected board.
func (m *ScoreboardModel) load() {
	m.scores = nil
	if b, ok := m.selected(); ok && m.store != nil {
		scores, err := m.store.TopScores(b.ID, boardScores)
		if err != nil {
			m.loadErr = err
		}
		m.scores = scores
	}

	rows := make([]table.Row, len(m.scores))
	for i, s := range m.scores {
		rows[i] = table.Row{fmt.Sprintf("#%d", i+1), fmt.Sprintf("%d", s.Score), s.CreatedAt.Format("Jan 02 15:04")}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

func (m ScoreboardModel) selected() (Board, bool) {
	if m.cursor < 0 || m.cursor >= len(m.boards) {
		return Board{}, false
	}
	return m.boards[m.cursor], true
}

// Init initializes the scoreboard.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.result.Quit = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.result.Back = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Play):
			if b, ok := m.selected(); ok {
				item := b.Item()
				m.result.Play = &item
				return m, tea.Quit
			}
			return m, nil

		case key.Matches(msg, m.keys.Next):
			m.step(1)
			return m, nil

		case key.Matches(msg, m.keys.Prev):
			m.step(-1)
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.table = m.newTable()
		m.load()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *ScoreboardModel) step(d int) {
	if n := len(m.boards); n > 0 {
		m.cursor = (m.cursor + d + n) % n
		m.load()
	}
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.Done() {
		return ""
	}

	title := "HIGH SCORES"
	b, ok := m.selected()
	if ok {
		title += " - " + b.Title
	}

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(boardTitleStyle.Render(centerText(title, m.width)))
	out.WriteString("\n")
	if ok {
		out.WriteString(boardDimStyle.Render(centerText(b.Detail(), m.width)))
	}
	out.WriteString("\n\n")

	panel := boardPanelStyle.Render(m.boardView(b, ok))
	if m.wide() {
		out.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.listView(), "  ", panel))
	} else {
		out.WriteString(boardDimStyle.Render(centerText(fmt.Sprintf("< %d/%d >", m.cursor+1, len(m.boards)), m.width)))
		out.WriteString("\n")
		out.WriteString(panel)
	}

	if m.loadErr != nil {
		out.WriteString("\n" + boardDimStyle.Render("Scores unavailable: "+m.loadErr.Error()))
	}
	out.WriteString("\n")
	out.WriteString(boardDimStyle.Render(m.help.View(m.keys)))
	return out.String()
}

// listView is the board list, saved games first, under section headers.
func (m ScoreboardModel) listView() string {
	var b strings.Builder
	section := ItemKind(-1)
	for i, board := range m.boards {
		if board.Kind != section {
			section = board.Kind
			if section == ItemSaved {
				b.WriteString(boardDimStyle.Render("Saved games") + "\n")
			} else {
				b.WriteString(boardDimStyle.Render("Genres") + "\n")
			}
		}
		line := "  " + truncate(board.Title, boardListWidth-4)
		if i == m.cursor {
			line = boardTitleStyle.Render("> " + truncate(board.Title, boardListWidth-4))
		}
		b.WriteString(line + "\n")
	}
	return boardPanelStyle.Width(boardListWidth).Render(strings.TrimRight(b.String(), "\n"))
}

// boardView is the stats line and score table of the selected board.
func (m ScoreboardModel) boardView(b Board, ok bool) string {
	if !ok {
		return boardDimStyle.Render("Nothing to show yet.")
	}
	if len(m.scores) == 0 {
		return boardDimStyle.Italic(true).Padding(1, 2).Render("No scores yet.\nPress Enter to set the first one!")
	}

	stats := fmt.Sprintf("Best %d", m.scores[0].Score)
	if st := b.Stats; st != nil {
		stats = fmt.Sprintf("Best %d  |  %d games  |  avg %.0f  |  last %s",
			st.HighScore, st.GamesCount, st.AvgScore, st.LastPlayed.Format("Jan 02"))
	}
	return stats + "\n\n" + m.table.View()
}

// Done reports whether the scoreboard was left.
func (m ScoreboardModel) Done() bool {
	r := m.result
	return r.Quit || r.Back || r.Play != nil
}

// Result returns how the scoreboard was left.
func (m ScoreboardModel) Result() ScoreboardResult {
	return m.result
}

// RunScoreboard runs the scoreboard as its own program.
func RunScoreboard(store *storage.Store, width, height int) (ScoreboardResult, error) {
	final, err := tea.NewProgram(NewScoreboardModel(store, width, height), tea.WithAltScreen()).Run()
	if err != nil {
		return ScoreboardResult{}, err
	}
	m, ok := final.(ScoreboardModel)
	if !ok {
		return ScoreboardResult{Quit: true}, nil
	}
	return m.Result(), nil
}
