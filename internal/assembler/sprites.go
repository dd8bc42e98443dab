package assembler

import (
	"fmt"

	"github.com/vovakirdan/arcade-studio/internal/assets"
	"github.com/vovakirdan/arcade-studio/internal/scene"
	"github.com/vovakirdan/arcade-studio/internal/spec"
)

func assembleRunner(g spec.GameSpec, opt Options) scene.Scene {
	t := opt.Genres.Runner
	player := spriteName(g.PlayerSprite, "Player")
	obstacle := spriteName(g.ObstacleSprite, "Obstacle")

	return scene.Scene{
		Genre:   string(spec.Runner),
		Title:   fmt.Sprintf("%s dodges %s", player, obstacle),
		Canvas:  canvas(opt, backgroundColor(g)),
		Physics: scene.Physics{Gravity: t.Gravity},
		Assets: append(backgroundAssets(g),
			scene.Asset{Key: keyPlayer, URL: slotURL(g, assets.SlotPlayer, opt)},
			scene.Asset{Key: keyObstacle, URL: slotURL(g, assets.SlotObstacle, opt)},
		),
		Actors: []scene.Actor{
			{ID: "player", Asset: keyPlayer, X: 200, Y: 500, Scale: g.PlayerSprite.ScaleOrDefault(), Body: scene.BodyDynamic, Glyph: "@", Color: "#FFD700"},
			{ID: "obstacle", Asset: keyObstacle, X: 700, Y: 520, Scale: g.ObstacleSprite.ScaleOrDefault(), Body: scene.BodyDynamic, Glyph: "▲", Color: "#FF0000"},
		},
		Texts: []scene.Text{
			{X: centerX(opt), Y: 100, Content: fmt.Sprintf("%s dodges %s", player, obstacle), Size: 24, Color: textColor},
			{X: centerX(opt), Y: 50, Content: helpText(g.Control, "Up arrow (jump)"), Size: 18, Color: helpColor},
		},
		Rules: scene.Rules{Runner: &scene.RunnerRules{
			GroundY:       t.GroundY,
			JumpVelocity:  t.JumpVelocity,
			ObstacleSpeed: t.ObstacleSpeed,
			DespawnX:      -50,
			RespawnX:      float64(opt.Canvas.Width) + 50,
			RespawnSpeed:  scene.Range{Min: t.RespawnSpeedMin, Max: t.RespawnSpeedMax},
		}},
		GameOver: gameOver(opt),
		Help:     "Up: jump  P: pause  Q: quit",
	}
}

func assembleRacing(g spec.GameSpec, opt Options) scene.Scene {
	t := opt.Genres.Racing
	player := spriteName(g.PlayerSprite, "Player")
	w, h := float64(opt.Canvas.Width), float64(opt.Canvas.Height)

	return scene.Scene{
		Genre:   string(spec.Racing),
		Title:   fmt.Sprintf("%s Racing", player),
		Canvas:  canvas(opt, backgroundColor(g)),
		Physics: scene.Physics{Gravity: 0},
		Assets: append(backgroundAssets(g),
			scene.Asset{Key: keyPlayer, URL: slotURL(g, assets.SlotPlayer, opt)},
			scene.Asset{Key: keyObstacle, URL: slotURL(g, assets.SlotObstacle, opt)},
		),
		Actors: []scene.Actor{
			{ID: "player", Asset: keyPlayer, X: w / 2, Y: h * 5 / 6, Scale: g.PlayerSprite.ScaleOrDefault(), Body: scene.BodyDynamic, Glyph: "A", Color: "#FFD700"},
			{ID: "obstacle", Asset: keyObstacle, Scale: g.ObstacleSprite.ScaleOrDefault(), Body: scene.BodyStatic, Glyph: "■", Color: "#FF8700"},
		},
		Texts: []scene.Text{
			{X: centerX(opt), Y: 50, Content: helpText(g.Control, "arrow keys (drive)"), Size: 18, Color: helpColor},
		},
		Rules: scene.Rules{Racing: &scene.RacingRules{
			Thrust:          t.Thrust,
			AngularVelocity: t.AngularVelocity,
			Obstacles:       t.Obstacles,
			SpawnX:          scene.Range{Min: w / 8, Max: w * 7 / 8},
			SpawnY:          scene.Range{Min: h / 6, Max: h * 2 / 3},
		}},
		GameOver: gameOver(opt),
		Help:     "Left/Right: steer  Up/Down: drive  P: pause  Q: quit",
	}
}

func assembleBomberman(g spec.GameSpec, opt Options) scene.Scene {
	t := opt.Genres.Bomberman
	player := spriteName(g.PlayerSprite, "Player")
	tile := float64(t.Tile)

	return scene.Scene{
		Genre:   string(spec.Bomberman),
		Title:   fmt.Sprintf("%s Bomberman", player),
		Canvas:  canvas(opt, colorGrass),
		Physics: scene.Physics{Gravity: 0},
		Assets: append(backgroundAssets(g),
			scene.Asset{Key: keyPlayer, URL: slotURL(g, assets.SlotPlayer, opt)},
			scene.Asset{Key: keyBomb, URL: slotURL(g, assets.SlotObstacle, opt)},
			scene.Asset{Key: keyWall, URL: opt.Defaults.Obstacle},
		),
		Actors: []scene.Actor{
			{ID: "player", Asset: keyPlayer, X: tile * 1.5, Y: tile * 1.5, Scale: g.PlayerSprite.ScaleOrDefault(), Body: scene.BodyDynamic, Glyph: "@", Color: "#FFD700"},
			{ID: "bomb", Asset: keyBomb, Scale: g.ObstacleSprite.ScaleOrDefault(), Body: scene.BodyStatic, Glyph: "●", Color: "#FF0000"},
			{ID: "wall", Asset: keyWall, Scale: g.ObstacleSprite.ScaleOrDefault(), Body: scene.BodyStatic, Glyph: "█", Color: "#8A8A8A"},
		},
		Texts: []scene.Text{
			{X: centerX(opt), Y: 20, Content: helpText(g.Control, "arrows (move), Space (bomb)"), Size: 18, Color: helpColor},
		},
		Rules: scene.Rules{Bomberman: &scene.BombermanRules{
			Tile:           t.Tile,
			Speed:          t.Speed,
			BombCooldownMS: t.BombCooldownMS,
			BombFuseMS:     t.BombFuseMS,
			Layout:         WallLayout(opt.Canvas.Width/t.Tile, opt.Canvas.Height/t.Tile),
		}},
		GameOver: gameOver(opt),
		Help:     "Arrows: move  Space: bomb  P: pause  Q: quit",
	}
}

// WallLayout generates a bomberman maze of cols x rows tiles: every border
// tile is a wall, and so is every interior tile whose column and row are
// both even. Tile (1,1), the spawn, is never a wall.
func WallLayout(cols, rows int) []string {
	layout := make([]string, rows)
	for r := 0; r < rows; r++ {
		row := make([]byte, cols)
		for c := 0; c < cols; c++ {
			border := c == 0 || r == 0 || c == cols-1 || r == rows-1
			pillar := c%2 == 0 && r%2 == 0
			if border || pillar {
				row[c] = '#'
			} else {
				row[c] = '.'
			}
		}
		layout[r] = string(row)
	}
	return layout
}

func assembleUnsupported(_ spec.GameSpec, opt Options) scene.Scene {
	return scene.Scene{
		Genre:  scene.Unsupported,
		Title:  "Unsupported game",
		Canvas: canvas(opt, colorUnsupported),
		Texts: []scene.Text{
			{X: centerX(opt), Y: centerY(opt), Content: "unsupported game", Size: 24, Color: textColor},
		},
		Help: "Q: quit",
	}
}
