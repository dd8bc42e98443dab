// Package config provides YAML-based studio configuration loading:
// canvas, asset defaults, AI endpoints, per-genre tuning, storage and server.
package config

import (
	"time"

	"github.com/vovakirdan/arcade-studio/internal/assets"
)

// StudioConfig is the complete studio configuration.
type StudioConfig struct {
	Canvas  CanvasConfig  `yaml:"canvas"`
	Assets  AssetsConfig  `yaml:"assets"`
	AI      AIConfig      `yaml:"ai"`
	Genres  GenresConfig  `yaml:"genres"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
}

// CanvasConfig is the logical world size every scene is built for.
type CanvasConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// AssetsConfig controls asset defaults and post-processing.
type AssetsConfig struct {
	Defaults         assets.Defaults `yaml:"defaults"`
	RemoveBackground bool            `yaml:"remove_background"`
	Style            string          `yaml:"style"` // prefix for image prompts
}

// AIConfig describes the chat, image and background-removal services.
type AIConfig struct {
	Endpoint       string `yaml:"endpoint"`
	APIKey         string `yaml:"api_key"`
	ChatDeployment string `yaml:"chat_deployment"`
	ChatAPIVersion string `yaml:"chat_api_version"`

	ImageEndpoint   string `yaml:"image_endpoint"`
	ImageAPIKey     string `yaml:"image_api_key"`
	ImageDeployment string `yaml:"image_deployment"`
	ImageAPIVersion string `yaml:"image_api_version"`
	ImageSize       string `yaml:"image_size"`

	BgRemovalEndpoint string `yaml:"bg_removal_endpoint"`
	BgRemovalAPIKey   string `yaml:"bg_removal_api_key"`

	MaxAttempts    int `yaml:"max_attempts"`
	BackoffMillis  int `yaml:"backoff_ms"` // wait before the second attempt, doubled after
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Backoff returns the wait before the first retry.
func (c AIConfig) Backoff() time.Duration {
	if c.BackoffMillis <= 0 {
		return 0
	}
	return time.Duration(c.BackoffMillis) * time.Millisecond
}

// Timeout returns the per-request timeout.
func (c AIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GenresConfig holds per-genre tuning consumed by the assemblers.
type GenresConfig struct {
	GameOverDelayMS int             `yaml:"game_over_delay_ms"`
	Runner          RunnerTuning    `yaml:"runner"`
	Racing          RacingTuning    `yaml:"racing"`
	Bomberman       BombermanTuning `yaml:"bomberman"`
	Tetris          TetrisTuning    `yaml:"tetris"`
}

// RunnerTuning defines physics parameters for the runner genre.
type RunnerTuning struct {
	Gravity         float64 `yaml:"gravity"`
	JumpVelocity    float64 `yaml:"jump_velocity"`
	GroundY         float64 `yaml:"ground_y"`
	ObstacleSpeed   float64 `yaml:"obstacle_speed"`
	RespawnSpeedMin float64 `yaml:"respawn_speed_min"`
	RespawnSpeedMax float64 `yaml:"respawn_speed_max"`
}

// RacingTuning defines movement parameters for the racing genre.
type RacingTuning struct {
	Thrust          float64 `yaml:"thrust"`
	AngularVelocity float64 `yaml:"angular_velocity"`
	Obstacles       int     `yaml:"obstacles"`
}

// BombermanTuning defines grid and bomb timing for the bomberman genre.
type BombermanTuning struct {
	Tile           int     `yaml:"tile"`
	Speed          float64 `yaml:"speed"`
	BombCooldownMS int     `yaml:"bomb_cooldown_ms"`
	BombFuseMS     int     `yaml:"bomb_fuse_ms"`
}

// TetrisTuning defines board timing and scoring for the tetris genre.
type TetrisTuning struct {
	TickMS        int `yaml:"tick_ms"`
	PointsPerLine int `yaml:"points_per_line"`
}

// StorageConfig locates the sqlite database.
type StorageConfig struct {
	Path string `yaml:"path"` // empty means ~/.arcade-studio/studio.db
}

// ServerConfig configures `studio serve`.
type ServerConfig struct {
	SSHAddr            string `yaml:"ssh_addr"`
	HTTPAddr           string `yaml:"http_addr"`
	HostKeyPath        string `yaml:"host_key_path"`
	PublicURL          string `yaml:"public_url"` // base for share links
	IdleTimeoutSeconds int    `yaml:"idle_timeout_seconds"`
}
