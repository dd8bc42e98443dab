// Package storage provides SQLite-based persistence for saved games, studio
// transcripts and scores. Uses the pure-Go modernc.org/sqlite driver to
// avoid CGO dependencies.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/arcade-studio/internal/spec"
)

// DefaultPath is used when no database path is configured.
const DefaultPath = "~/.arcade-studio/studio.db"

// ErrNotFound is returned when a saved game does not exist.
var ErrNotFound = errors.New("storage: not found")

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// Game is a saved game: the spec it came from and its resolved code.
type Game struct {
	ID        string
	Title     string
	Creator   string
	Template  spec.Template
	Thumbnail string
	Plays     int
	Spec      spec.GameSpec
	Code      string
	CreatedAt time.Time
}

// ScoreEntry represents a single high score record.
type ScoreEntry struct {
	ID        int64
	GameID    string
	Score     int
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		dbPath = DefaultPath
	}
	// Expand ~ to home directory
	if dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// One writer; the SSH and HTTP servers share the store.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			creator TEXT NOT NULL DEFAULT '',
			template TEXT NOT NULL,
			thumbnail TEXT NOT NULL DEFAULT '',
			plays INTEGER NOT NULL DEFAULT 0,
			spec TEXT NOT NULL,
			code TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_games_created ON games(created_at DESC);

		CREATE TABLE IF NOT EXISTS messages (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, seq);

		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			score INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(game_id, score DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveGame stores g and returns it with its id and creation time set.
// An empty id gets a fresh uuid; an existing id is overwritten.
func (s *Store) SaveGame(g Game) (Game, error) {
	if strings.TrimSpace(g.Title) == "" {
		return Game{}, fmt.Errorf("storage: game title is required")
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.Template == "" {
		g.Template = g.Spec.Template
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	specJSON, err := json.Marshal(g.Spec)
	if err != nil {
		return Game{}, fmt.Errorf("storage: cannot encode spec: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO games (id, title, creator, template, thumbnail, plays, spec, code, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title, creator = excluded.creator, template = excluded.template,
		   thumbnail = excluded.thumbnail, spec = excluded.spec, code = excluded.code`,
		g.ID, g.Title, g.Creator, string(g.Template), g.Thumbnail, g.Plays,
		string(specJSON), g.Code, g.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return Game{}, fmt.Errorf("storage: cannot save game: %w", err)
	}
	return g, nil
}

const gameColumns = `id, title, creator, template, thumbnail, plays, spec, code, created_at`

// GetGame loads a saved game by id.
func (s *Store) GetGame(id string) (Game, error) {
	row := s.db.QueryRow(`SELECT `+gameColumns+` FROM games WHERE id = ?`, id)
	g, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Game{}, fmt.Errorf("%w: game %s", ErrNotFound, id)
	}
	if err != nil {
		return Game{}, fmt.Errorf("storage: cannot query game: %w", err)
	}
	return g, nil
}

// ListGames returns saved games, newest first.
func (s *Store) ListGames(limit int) ([]Game, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT `+gameColumns+` FROM games ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query games: %w", err)
	}
	defer rows.Close()

	var games []Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return games, nil
}

// IncrementPlays bumps the play counter of a saved game and returns the new
// count.
func (s *Store) IncrementPlays(id string) (int, error) {
	res, err := s.db.Exec(`UPDATE games SET plays = plays + 1 WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot update plays: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, fmt.Errorf("%w: game %s", ErrNotFound, id)
	}
	var plays int
	if err := s.db.QueryRow(`SELECT plays FROM games WHERE id = ?`, id).Scan(&plays); err != nil {
		return 0, fmt.Errorf("storage: cannot query plays: %w", err)
	}
	return plays, nil
}

// DeleteGame removes a saved game and its scores.
func (s *Store) DeleteGame(id string) error {
	res, err := s.db.Exec(`DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("storage: cannot delete game: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: game %s", ErrNotFound, id)
	}
	return s.ClearScores(id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(row scanner) (Game, error) {
	var g Game
	var template, specJSON string
	var createdAt any
	if err := row.Scan(&g.ID, &g.Title, &g.Creator, &template, &g.Thumbnail, &g.Plays, &specJSON, &g.Code, &createdAt); err != nil {
		return Game{}, err
	}
	g.Template = spec.Template(template)
	if err := json.Unmarshal([]byte(specJSON), &g.Spec); err != nil {
		return Game{}, fmt.Errorf("storage: corrupt spec for game %s: %w", g.ID, err)
	}
	g.CreatedAt = parseTime(createdAt)
	return g, nil
}

// AppendMessage adds a transcript entry to a studio session.
func (s *Store) AppendMessage(sessionID string, m spec.Message) error {
	_, err := s.db.Exec(
		`INSERT INTO messages (session_id, id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		sessionID, m.ID, string(m.Role), m.Content, m.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save message: %w", err)
	}
	return nil
}

// Messages returns a session's transcript in insertion order.
func (s *Store) Messages(sessionID string) ([]spec.Message, error) {
	rows, err := s.db.Query(
		`SELECT id, role, content, created_at FROM messages WHERE session_id = ? ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query messages: %w", err)
	}
	defer rows.Close()

	var msgs []spec.Message
	for rows.Next() {
		var m spec.Message
		var role string
		var createdAt any
		if err := rows.Scan(&m.ID, &role, &m.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		m.Role = spec.Role(role)
		m.CreatedAt = parseTime(createdAt)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return msgs, nil
}

// SaveScore records a new score for the given game id or genre.
// Returns the ID of the inserted record.
func (s *Store) SaveScore(gameID string, score int) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO scores (game_id, score) VALUES (?, ?)",
		gameID, score,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save score: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// TopScores retrieves the top N scores for the given game.
// Results are ordered by score descending.
func (s *Store) TopScores(gameID string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, game_id, score, created_at
		 FROM scores
		 WHERE game_id = ?
		 ORDER BY score DESC
		 LIMIT ?`,
		gameID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.GameID, &e.Score, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// HighScore returns the highest score for the given game.
// Returns 0 if no scores exist.
func (s *Store) HighScore(gameID string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM scores WHERE game_id = ?",
		gameID,
	).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}
	if !score.Valid {
		return 0, nil
	}
	return int(score.Int64), nil
}

// ClearScores deletes all scores for the given game.
func (s *Store) ClearScores(gameID string) error {
	_, err := s.db.Exec("DELETE FROM scores WHERE game_id = ?", gameID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

// GameStats contains aggregated statistics for a game.
type GameStats struct {
	GameID     string
	GamesCount int
	HighScore  int
	AvgScore   float64
	LastPlayed time.Time
}

// GetAllGamesStats retrieves statistics for every game that has scores.
func (s *Store) GetAllGamesStats() (map[string]*GameStats, error) {
	rows, err := s.db.Query(
		`SELECT game_id, COUNT(*), MAX(score), AVG(score), MAX(created_at)
		 FROM scores
		 GROUP BY game_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all games stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*GameStats)
	for rows.Next() {
		var st GameStats
		var lastPlayed any
		if err := rows.Scan(&st.GameID, &st.GamesCount, &st.HighScore, &st.AvgScore, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastPlayed = parseTime(lastPlayed)
		stats[st.GameID] = &st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return stats, nil
}

const timeLayout = "2006-01-02 15:04:05"

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(timeLayout, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
