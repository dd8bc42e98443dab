// Package tui provides the terminal front end: the gallery, the chat studio,
// the play screen, the scoreboard and an SSH server serving all of them via
// Wish.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/google/uuid"

	"github.com/vovakirdan/arcade-studio/internal/assembler"
	"github.com/vovakirdan/arcade-studio/internal/core"
	"github.com/vovakirdan/arcade-studio/internal/executor"
	"github.com/vovakirdan/arcade-studio/internal/storage"
	"github.com/vovakirdan/arcade-studio/internal/studio"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.arcade-studio/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
	}
}

// Backend is what every SSH connection shares.
type Backend struct {
	Manager   *studio.Manager
	Executor  *executor.Executor
	Store     *storage.Store // optional
	Assembler assembler.Options
	Logger    *log.Logger
}

// SSHServer wraps a Wish SSH server for the studio.
type SSHServer struct {
	config  SSHServerConfig
	backend Backend
	server  *ssh.Server
	logger  *log.Logger
}

type connKey struct{}

// conn tracks what one SSH connection opened, so it can be torn down when
// the connection ends.
type conn struct {
	id string

	mu       sync.Mutex
	seq      int
	sessions []string
}

func (c *conn) nextSessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	id := fmt.Sprintf("%s-%d", c.id, c.seq)
	c.sessions = append(c.sessions, id)
	return id
}

func (c *conn) playContainer() string {
	return c.id + "-play"
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig, backend Backend) (*SSHServer, error) {
	if backend.Manager == nil || backend.Executor == nil {
		return nil, errors.New("ssh server needs a session manager and an executor")
	}
	logger := backend.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger = logger.WithPrefix("ssh")

	srv := &SSHServer{
		config:  cfg,
		backend: backend,
		logger:  logger,
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".arcade-studio", "host_key")
	}

	// Ensure host key directory exists
	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.connMiddleware,
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}
	c, ok := sshSession.Context().Value(connKey{}).(*conn)
	if !ok {
		return nil, nil
	}

	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: 60,
		Seed:     time.Now().UnixNano(),
	}

	model := NewSessionModel(s.backend, c, cfg, sshSession.User())
	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// connMiddleware registers the connection and releases its studio sessions
// and play container once it ends.
func (s *SSHServer) connMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		c := &conn{id: "ssh-" + uuid.NewString()[:8]}
		sshSession.Context().SetValue(connKey{}, c)

		next(sshSession)

		c.mu.Lock()
		ids := append([]string(nil), c.sessions...)
		c.mu.Unlock()
		for _, id := range ids {
			s.backend.Manager.Remove(id)
		}
		s.backend.Executor.Remove(c.playContainer())
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe serves until ctx is done, then shuts down.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("ssh server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// screenKind is the screen a SessionModel currently shows.
type screenKind int

const (
	screenGallery screenKind = iota
	screenStudio
	screenPlay
	screenScores
)

// SessionModel manages one connection's flow: gallery -> studio or game or
// scoreboard -> gallery.
type SessionModel struct {
	backend  Backend
	conn     *conn
	config   core.RuntimeConfig
	username string

	screen     screenKind
	gallery    GalleryModel
	studio     StudioModel
	play       Model
	scoreboard ScoreboardModel
	session    *studio.Session
	notice     string
	quitting   bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(backend Backend, c *conn, cfg core.RuntimeConfig, username string) SessionModel {
	return SessionModel{
		backend:  backend,
		conn:     c,
		config:   cfg,
		username: username,
		gallery:  NewGalleryModel(backend.Store, cfg),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.gallery.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch m.screen {
	case screenStudio:
		return m.updateStudio(msg)
	case screenPlay:
		return m.updatePlay(msg)
	case screenScores:
		return m.updateScores(msg)
	default:
		return m.updateGallery(msg)
	}
}

func (m SessionModel) updateGallery(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.gallery.Update(msg)
	if g, ok := next.(GalleryModel); ok {
		m.gallery = g
	}
	if _, isKey := msg.(tea.KeyMsg); isKey {
		m.notice = ""
	}

	if m.gallery.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.gallery.WantsScoreboard() {
		m.scoreboard = NewScoreboardModel(m.backend.Store, m.config.ScreenW, m.config.ScreenH)
		m.screen = screenScores
		return m, m.scoreboard.Init()
	}

	item := m.gallery.Selected()
	if item == nil {
		return m, cmd
	}
	if item.Kind == ItemNew {
		return m.openStudio()
	}
	return m.openGame(*item)
}

func (m SessionModel) openStudio() (tea.Model, tea.Cmd) {
	s, err := m.backend.Manager.Create(m.conn.nextSessionID(), m.username)
	if err != nil {
		return m.toGallery("Could not open the studio: " + err.Error())
	}
	m.session = s
	m.studio = NewStudioModel(s, m.config)
	m.screen = screenStudio
	return m, m.studio.Init()
}

func (m SessionModel) openGame(item GalleryItem) (tea.Model, tea.Cmd) {
	c := m.backend.Executor.Container(m.conn.playContainer())
	scoreKey, err := LoadItem(c, m.backend.Store, item, m.backend.Assembler)
	if err != nil {
		return m.toGallery("Could not start " + item.Title + ": " + err.Error())
	}
	m.play = NewModel(c, m.backend.Store, scoreKey, m.config)
	//nolint:errcheck // A failed start shows in the play screen
	c.Restart(m.play.config)
	m.screen = screenPlay
	return m, m.play.Init()
}

func (m SessionModel) updateStudio(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.studio.Update(msg)
	if s, ok := next.(StudioModel); ok {
		m.studio = s
	}

	if m.studio.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.studio.IsGoingBack() {
		m.backend.Manager.Remove(m.session.ID())
		m.session = nil
		return m.toGallery("")
	}
	return m, cmd
}

func (m SessionModel) updatePlay(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.play.Update(msg)
	if p, ok := next.(Model); ok {
		m.play = p
	}

	if m.play.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.play.BackToMenu() {
		m.backend.Executor.Container(m.conn.playContainer()).Close()
		return m.toGallery("")
	}
	return m, cmd
}

func (m SessionModel) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.scoreboard.Update(msg)
	if s, ok := next.(ScoreboardModel); ok {
		m.scoreboard = s
	}

	res := m.scoreboard.Result()
	switch {
	case res.Quit:
		m.quitting = true
		return m, tea.Quit
	case res.Play != nil:
		return m.openGame(*res.Play)
	case res.Back:
		return m.toGallery("")
	}
	return m, cmd
}

func (m SessionModel) toGallery(notice string) (tea.Model, tea.Cmd) {
	m.gallery = NewGalleryModel(m.backend.Store, m.config)
	m.screen = screenGallery
	m.notice = notice
	return m, m.gallery.Init()
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenStudio:
		return m.studio.View()
	case screenPlay:
		return m.play.View()
	case screenScores:
		return m.scoreboard.View()
	}

	view := m.gallery.View()
	if m.notice != "" {
		view += "\n" + centerText(m.notice, m.config.ScreenW) + "\n"
	}
	return view
}
