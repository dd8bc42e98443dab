// Package scene defines the structured game descriptor produced by the
// assemblers and consumed by the genre interpreters.
//
// A scene travels as canonical YAML text. Asset URL fields may carry
// placeholder tokens in the raw form; the resolved form has URLs (or empty
// strings) in their place. Interpreters never execute anything from a scene,
// they only read parameters.
package scene

// Unsupported is the genre of the fallback scene.
const Unsupported = "unsupported"

// Scene is the complete descriptor of one runnable game.
type Scene struct {
	Genre    string    `yaml:"genre"`
	Title    string    `yaml:"title"`
	Canvas   Canvas    `yaml:"canvas"`
	Physics  Physics   `yaml:"physics"`
	Assets   []Asset   `yaml:"assets,omitempty"`
	Actors   []Actor   `yaml:"actors,omitempty"`
	Texts    []Text    `yaml:"texts,omitempty"`
	Rules    Rules     `yaml:"rules,omitempty"`
	GameOver *GameOver `yaml:"game_over,omitempty"`
	Help     string    `yaml:"help,omitempty"`
}

// Canvas is the logical drawing surface.
type Canvas struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Background string `yaml:"background"`
}

// Physics holds world-wide physics toggles.
type Physics struct {
	Gravity float64 `yaml:"gravity"`
}

// Asset is an image to load under a key.
type Asset struct {
	Key string `yaml:"key"`
	URL string `yaml:"url"`
}

// Body kinds.
const (
	BodyDynamic = "dynamic"
	BodyStatic  = "static"
	BodyNone    = "none"
)

// Actor is a sprite placed in the world at construction time.
type Actor struct {
	ID    string  `yaml:"id"`
	Asset string  `yaml:"asset,omitempty"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Scale float64 `yaml:"scale"`
	Body  string  `yaml:"body"`
	Glyph string  `yaml:"glyph,omitempty"`
	Color string  `yaml:"color,omitempty"`
}

// Text is a static label.
type Text struct {
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Content string  `yaml:"content"`
	Size    int     `yaml:"size"`
	Color   string  `yaml:"color,omitempty"`
}

// GameOver describes the terminal pause-then-restart behavior.
type GameOver struct {
	Text           string `yaml:"text"`
	RestartDelayMS int    `yaml:"restart_delay_ms"`
}

// Rules carries the per-frame behavior of exactly one genre.
type Rules struct {
	Runner    *RunnerRules    `yaml:"runner,omitempty"`
	Racing    *RacingRules    `yaml:"racing,omitempty"`
	Bomberman *BombermanRules `yaml:"bomberman,omitempty"`
	Sudoku    *SudokuRules    `yaml:"sudoku,omitempty"`
	Tetris    *TetrisRules    `yaml:"tetris,omitempty"`
}

// Range is a closed numeric interval.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// RunnerRules: jump over a single scrolling obstacle.
type RunnerRules struct {
	GroundY       float64 `yaml:"ground_y"`
	JumpVelocity  float64 `yaml:"jump_velocity"`
	ObstacleSpeed float64 `yaml:"obstacle_speed"`
	DespawnX      float64 `yaml:"despawn_x"`
	RespawnX      float64 `yaml:"respawn_x"`
	RespawnSpeed  Range   `yaml:"respawn_speed"`
}

// RacingRules: top-down steering among static obstacles.
type RacingRules struct {
	Thrust          float64 `yaml:"thrust"`
	AngularVelocity float64 `yaml:"angular_velocity"`
	Obstacles       int     `yaml:"obstacles"`
	SpawnX          Range   `yaml:"spawn_x"`
	SpawnY          Range   `yaml:"spawn_y"`
}

// BombermanRules: tile maze with timed bombs.
//
// Layout has one string per tile row; '#' marks a wall, anything else is floor.
type BombermanRules struct {
	Tile           int      `yaml:"tile"`
	Speed          float64  `yaml:"speed"`
	BombCooldownMS int      `yaml:"bomb_cooldown_ms"`
	BombFuseMS     int      `yaml:"bomb_fuse_ms"`
	Layout         []string `yaml:"layout"`
}

// Wall reports whether tile (col, row) is a wall. Outside the layout is wall.
func (r *BombermanRules) Wall(col, row int) bool {
	if row < 0 || row >= len(r.Layout) || col < 0 || col >= len(r.Layout[row]) {
		return true
	}
	return r.Layout[row][col] == '#'
}

// SudokuRules: one fixed puzzle and its solution, 9 rows of 9 digits each.
// '0' marks an empty cell in the puzzle.
type SudokuRules struct {
	Puzzle   []string `yaml:"puzzle"`
	Solution []string `yaml:"solution"`
}

// TetrisRules: falling tetrominoes on a fixed board.
type TetrisRules struct {
	Cols          int     `yaml:"cols"`
	Rows          int     `yaml:"rows"`
	TickMS        int     `yaml:"tick_ms"`
	PointsPerLine int     `yaml:"points_per_line"`
	Shapes        []Shape `yaml:"shapes"`
}

// Shape is a tetromino as rows of '#' and '.'.
type Shape struct {
	Name  string   `yaml:"name"`
	Color string   `yaml:"color"`
	Cells []string `yaml:"cells"`
}

// AssetURL returns the URL loaded under key, or "" when the key is unknown
// or its URL is empty (an empty URL is never loaded).
func (s *Scene) AssetURL(key string) string {
	for _, a := range s.Assets {
		if a.Key == key {
			return a.URL
		}
	}
	return ""
}

// Loaded returns the assets an engine would actually load: those with a URL.
func (s *Scene) Loaded() []Asset {
	var out []Asset
	for _, a := range s.Assets {
		if a.URL != "" {
			out = append(out, a)
		}
	}
	return out
}

// Actor returns the actor with the given id.
func (s *Scene) Actor(id string) (Actor, bool) {
	for _, a := range s.Actors {
		if a.ID == id {
			return a, true
		}
	}
	return Actor{}, false
}
