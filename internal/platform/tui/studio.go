package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/arcade-studio/internal/assets"
	"github.com/vovakirdan/arcade-studio/internal/core"
	"github.com/vovakirdan/arcade-studio/internal/round"
	"github.com/vovakirdan/arcade-studio/internal/spec"
	"github.com/vovakirdan/arcade-studio/internal/studio"
)

// Studio tabs.
type studioTab int

const (
	tabChat studioTab = iota
	tabPlay
	tabAssets
)

var tabNames = []string{"Chat", "Play", "Assets"}

// replyTimeout bounds one assistant call, retries included.
const replyTimeout = 3 * time.Minute

// StudioKeyMap defines the key bindings for the studio.
type StudioKeyMap struct {
	Send    key.Binding
	NextTab key.Binding
	Back    key.Binding
	Scroll  key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k StudioKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.NextTab, k.Scroll, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k StudioKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Send, k.NextTab, k.Scroll}, {k.Back, k.Quit}}
}

// DefaultStudioKeyMap returns default key bindings.
func DefaultStudioKeyMap() StudioKeyMap {
	return StudioKeyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "chat/play/assets"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back to chat"),
		),
		Scroll: key.NewBinding(
			key.WithKeys("pgup", "pgdown"),
			key.WithHelp("pgup/pgdn", "scroll"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// replyMsg carries the outcome of one chat line.
type replyMsg struct {
	res studio.Result
	err error
}

// updateMsg carries a new resolved code of the current round.
type updateMsg round.Update

// subscriptionDoneMsg is sent when the session stops publishing.
type subscriptionDoneMsg struct{}

// StudioModel is the chat studio: transcript, input, live preview, play
// tab and asset status.
type StudioModel struct {
	session *studio.Session
	sub     *studio.Subscription
	config  core.RuntimeConfig

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	keys     StudioKeyMap

	tab       studioTab
	busy      bool
	width     int
	height    int
	preview   *core.Screen
	play      *core.Screen
	held      *HeldInput
	keyMapper *KeyMapper
	gameState core.GameState
	lastErr   error
	update    round.Update
	quitting  bool
	goingBack bool
}

// NewStudioModel creates a studio for a session.
func NewStudioModel(s *studio.Session, cfg core.RuntimeConfig) StudioModel {
	in := textinput.New()
	in.Placeholder = "Describe a game, or /help"
	in.Prompt = "> "
	in.CharLimit = 500
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	h := help.New()
	h.ShowAll = false

	m := StudioModel{
		session:   s,
		sub:       s.Subscribe(),
		config:    cfg,
		input:     in,
		spinner:   sp,
		help:      h,
		keys:      DefaultStudioKeyMap(),
		width:     cfg.ScreenW,
		height:    cfg.ScreenH,
		held:      NewHeldInput(0),
		keyMapper: NewKeyMapper(),
	}
	m.layout()
	m.refreshTranscript()
	return m
}

// layout sizes the panes for the current window.
func (m *StudioModel) layout() {
	w, h := m.width, m.height
	if w < 40 {
		w = 40
	}
	if h < 12 {
		h = 12
	}

	chatW := w * 11 / 20
	bodyH := h - 5 // tab bar, input, help
	m.input.Width = chatW - 4
	m.viewport = viewport.New(chatW, bodyH)

	previewW := w - chatW - 3
	previewH := bodyH - 2
	if m.preview == nil {
		m.preview = core.NewScreen(previewW, previewH)
	} else {
		m.preview.Resize(previewW, previewH)
	}
	if m.play == nil {
		m.play = core.NewScreen(w, h-2)
	} else {
		m.play.Resize(w, h-2)
	}
	m.help.Width = w
	m.applyRuntime()
}

// applyRuntime sizes the preview game for the pane it is shown in. New
// rounds load with the same runtime.
func (m *StudioModel) applyRuntime() {
	if c := m.session.Container(); c != nil {
		m.lastErr = ignoreEmpty(c.Restart(m.runtime()))
	}
}

// Init starts the tick loop and listens for round updates.
func (m StudioModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tickCmd(m.config.TickRate), waitForUpdate(m.sub))
}

func waitForUpdate(sub *studio.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case u := <-sub.Updates():
			return updateMsg(u)
		case <-sub.Done():
			return subscriptionDoneMsg{}
		}
	}
}

func sendLine(s *studio.Session, line string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
		defer cancel()
		res, err := s.Send(ctx, line)
		return replyMsg{res: res, err: err}
	}
}

// Update handles messages for the studio.
func (m StudioModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.refreshTranscript()
		return m, nil

	case TickMsg:
		return m.handleTick()

	case updateMsg:
		m.update = round.Update(msg)
		return m, waitForUpdate(m.sub)

	case subscriptionDoneMsg:
		return m, nil

	case replyMsg:
		m.busy = false
		m.refreshTranscript()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m StudioModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		m.session.Unsubscribe(m.sub)
		return m, tea.Quit
	}
	if key.Matches(msg, m.keys.NextTab) {
		m.switchTab((m.tab + 1) % studioTab(len(tabNames)))
		return m, nil
	}

	switch m.tab {
	case tabPlay:
		if msg.String() == "esc" || msg.String() == "q" {
			m.switchTab(tabChat)
			return m, nil
		}
		action, _ := m.keyMapper.MapKey(msg)
		m.held.Press(action)
		return m, nil

	case tabAssets:
		if key.Matches(msg, m.keys.Back) {
			m.switchTab(tabChat)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		if m.input.Value() == "" {
			m.goingBack = true
			m.session.Unsubscribe(m.sub)
			return m, tea.Quit
		}
		m.input.Reset()
		return m, nil

	case key.Matches(msg, m.keys.Send):
		line := strings.TrimSpace(m.input.Value())
		if line == "" || m.busy {
			return m, nil
		}
		m.input.Reset()
		m.busy = true
		m.viewport.SetContent(m.transcriptText(line))
		m.viewport.GotoBottom()
		return m, tea.Batch(sendLine(m.session, line), m.spinner.Tick)

	case key.Matches(msg, m.keys.Scroll):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// switchTab moves between tabs. Entering or leaving the play tab restarts
// the game at the new size.
func (m *StudioModel) switchTab(t studioTab) {
	resize := (m.tab == tabPlay) != (t == tabPlay)
	m.tab = t
	m.held.Reset()
	if resize {
		m.applyRuntime()
	}
}

// handleTick steps the preview. Only the play tab forwards keys.
func (m StudioModel) handleTick() (tea.Model, tea.Cmd) {
	c := m.session.Container()
	if c == nil {
		return m, tickCmd(m.config.TickRate)
	}

	in := core.NewInputFrame()
	if m.tab == tabPlay {
		in = m.held.Frame()
	}
	res, err := c.Step(in)
	m.lastErr = ignoreEmpty(err)
	if err == nil {
		m.gameState = res.State
	}
	return m, tickCmd(m.config.TickRate)
}

func (m StudioModel) runtime() core.RuntimeConfig {
	cfg := m.config
	screen := m.preview
	if m.tab == tabPlay {
		screen = m.play
	}
	cfg.ScreenW, cfg.ScreenH = screen.Width(), screen.Height()
	return cfg
}

func (m *StudioModel) refreshTranscript() {
	m.viewport.SetContent(m.transcriptText(""))
	m.viewport.GotoBottom()
}

var (
	userStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("117"))
	aiStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	systemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	borderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	activeTab   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 1)
	inactiveTab = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
)

// transcriptText renders the conversation, with pending as an unanswered
// user line.
func (m StudioModel) transcriptText(pending string) string {
	wrap := lipgloss.NewStyle().Width(m.viewport.Width - 1)
	var b strings.Builder
	for _, msg := range m.session.Transcript() {
		b.WriteString(wrap.Render(formatMessage(msg)))
		b.WriteString("\n")
	}
	if pending != "" {
		b.WriteString(wrap.Render(formatMessage(spec.Message{Role: spec.RoleUser, Content: pending})))
		b.WriteString("\n")
	}
	return b.String()
}

func formatMessage(msg spec.Message) string {
	switch msg.Role {
	case spec.RoleUser:
		return userStyle.Render("you: ") + msg.Content
	case spec.RoleAI:
		return aiStyle.Render("studio: ") + msg.Content
	default:
		return systemStyle.Render(msg.Content)
	}
}

// View renders the studio.
func (m StudioModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	switch m.tab {
	case tabPlay:
		b.WriteString(m.renderPlay())
	case tabAssets:
		b.WriteString(m.renderAssets())
	default:
		b.WriteString(m.renderChat())
	}

	b.WriteString("\n")
	b.WriteString(systemStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m StudioModel) renderTabs() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		if studioTab(i) == m.tab {
			tabs[i] = activeTab.Render(name)
		} else {
			tabs[i] = inactiveTab.Render(name)
		}
	}
	status := m.statusLine()
	return lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(tabs, " "), "  ", systemStyle.Render(status))
}

func (m StudioModel) statusLine() string {
	if m.busy {
		return m.spinner.View() + " thinking..."
	}
	if m.lastErr != nil {
		return "engine stopped: " + truncate(m.lastErr.Error(), 40)
	}
	if m.update.RoundID == "" {
		return "no game yet"
	}
	status := fmt.Sprintf("%s  score %d", m.update.Genre, m.gameState.Score)
	if !m.update.Complete {
		return status + "  (images pending)"
	}
	var failed []string
	for _, slot := range assets.Slots() {
		if r, ok := m.update.Assets[slot]; ok && r.Status == assets.Failed {
			failed = append(failed, string(slot))
		}
	}
	if len(failed) > 0 {
		status += "  (default art: " + strings.Join(failed, ", ") + ")"
	}
	return status
}

func (m StudioModel) renderChat() string {
	chat := lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), m.input.View())

	c := m.session.Container()
	previewText := ""
	if c != nil {
		previewText = renderContainer(c, m.preview)
	}
	preview := borderStyle.Render(previewText)
	return lipgloss.JoinHorizontal(lipgloss.Top, chat, " ", preview)
}

func (m StudioModel) renderPlay() string {
	c := m.session.Container()
	if c == nil {
		return "preview disabled"
	}
	return renderContainer(c, m.play)
}

func (m StudioModel) renderAssets() string {
	var b strings.Builder
	b.WriteString(aiStyle.Render("Assets"))
	b.WriteString("\n\n")
	if style := m.session.Style(); style != "" {
		fmt.Fprintf(&b, "style: %s\n\n", style)
	}

	set := m.session.Assets()
	if len(set) == 0 {
		b.WriteString(systemStyle.Render("No images in this round."))
		return b.String()
	}
	for _, slot := range assets.Slots() {
		r, ok := set[slot]
		if !ok {
			continue
		}
		detail := ""
		switch r.Status {
		case assets.Resolved:
			detail = truncate(r.URL, 48)
		case assets.Failed:
			detail = "using default: " + truncate(r.Err, 40)
		}
		fmt.Fprintf(&b, "%-11s %-9s %s\n", slot, r.Status, detail)
	}
	return b.String()
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// IsGoingBack returns true if user wants to go back to the gallery.
func (m StudioModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m StudioModel) IsQuitting() bool {
	return m.quitting
}

// RunStudio runs the studio for a session until the user leaves.
func RunStudio(s *studio.Session, cfg core.RuntimeConfig) error {
	p := tea.NewProgram(NewStudioModel(s, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
