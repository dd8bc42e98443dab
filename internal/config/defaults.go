package config

import (
	_ "embed"

	"github.com/vovakirdan/arcade-studio/internal/assets"
)

//go:embed defaults/studio.yaml
var defaultStudioYAML []byte

// DefaultStudioConfig returns the default studio configuration.
func DefaultStudioConfig() StudioConfig {
	return StudioConfig{
		Canvas: CanvasConfig{
			Width:  800,
			Height: 600,
		},
		Assets: AssetsConfig{
			Defaults:         assets.DefaultLocal(),
			RemoveBackground: true,
		},
		AI: AIConfig{
			ChatAPIVersion:  "2024-02-15-preview",
			ImageAPIVersion: "2024-02-01",
			ImageSize:       "1024x1024",
			MaxAttempts:     3,
			BackoffMillis:   500,
			TimeoutSeconds:  60,
		},
		Genres: GenresConfig{
			GameOverDelayMS: 2000,
			Runner: RunnerTuning{
				Gravity:         500,
				JumpVelocity:    -400,
				GroundY:         590,
				ObstacleSpeed:   300,
				RespawnSpeedMin: 300,
				RespawnSpeedMax: 600,
			},
			Racing: RacingTuning{
				Thrust:          200,
				AngularVelocity: 200,
				Obstacles:       5,
			},
			Bomberman: BombermanTuning{
				Tile:           40,
				Speed:          150,
				BombCooldownMS: 1000,
				BombFuseMS:     3000,
			},
			Tetris: TetrisTuning{
				TickMS:        1000,
				PointsPerLine: 10,
			},
		},
		Server: ServerConfig{
			SSHAddr:            ":23234",
			HTTPAddr:           ":8080",
			HostKeyPath:        ".ssh/studio_ed25519",
			PublicURL:          "http://localhost:8080",
			IdleTimeoutSeconds: 1800,
		},
	}
}
