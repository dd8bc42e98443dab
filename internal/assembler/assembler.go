// Package assembler turns a GameSpec into raw scene text.
//
// Each genre has one assembler: a pure, total function from a spec to a
// scene descriptor. Asset URL fields hold placeholder tokens for slots whose
// image is still coming, and local default URLs for slots that expect none.
// The selector routes unknown or missing templates to the unsupported scene.
package assembler

import (
	"github.com/vovakirdan/arcade-studio/internal/assets"
	"github.com/vovakirdan/arcade-studio/internal/config"
	"github.com/vovakirdan/arcade-studio/internal/scene"
	"github.com/vovakirdan/arcade-studio/internal/spec"
)

// Options are the caller-supplied inputs every assembler may read besides
// the spec itself.
type Options struct {
	Canvas   config.CanvasConfig
	Defaults assets.Defaults
	Genres   config.GenresConfig
}

// OptionsFrom extracts assembler options from a studio config.
func OptionsFrom(cfg config.StudioConfig) Options {
	return Options{
		Canvas:   cfg.Canvas,
		Defaults: cfg.Assets.Defaults,
		Genres:   cfg.Genres,
	}
}

// DefaultOptions returns options built from the default studio config.
func DefaultOptions() Options {
	return OptionsFrom(config.DefaultStudioConfig())
}

// Func assembles a scene for one genre. It must not fail.
type Func func(g spec.GameSpec, opt Options) scene.Scene

var assemblers = map[spec.Template]Func{
	spec.Runner:    assembleRunner,
	spec.Racing:    assembleRacing,
	spec.Bomberman: assembleBomberman,
	spec.Sudoku:    assembleSudoku,
	spec.Tetris:    assembleTetris,
}

// Select returns the assembler for a template. Unknown and empty templates
// get the unsupported assembler.
func Select(t spec.Template) Func {
	if f, ok := assemblers[t]; ok {
		return f
	}
	return assembleUnsupported
}

// Scene assembles the scene for a spec.
func Scene(g spec.GameSpec, opt Options) scene.Scene {
	return Select(g.Template)(g, opt.withFallbacks())
}

// Code assembles the raw GeneratedCode for a spec: canonical scene YAML with
// placeholder tokens in asset URL fields.
func Code(g spec.GameSpec, opt Options) string {
	return scene.MustEncode(Scene(g, opt))
}

// withFallbacks replaces every missing or out-of-range option with its
// default, field by field, so that any Options still assembles a runnable
// scene.
func (o Options) withFallbacks() Options {
	def := DefaultOptions()
	if o.Canvas.Width <= 0 || o.Canvas.Height <= 0 {
		o.Canvas = def.Canvas
	}
	orString(&o.Defaults.Player, def.Defaults.Player)
	orString(&o.Defaults.Obstacle, def.Defaults.Obstacle)
	orString(&o.Defaults.Background, def.Defaults.Background)
	o.Genres = genresWithFallbacks(o.Genres, def.Genres)
	return o
}

func genresWithFallbacks(g, def config.GenresConfig) config.GenresConfig {
	orPositive(&g.GameOverDelayMS, def.GameOverDelayMS)

	r, dr := &g.Runner, def.Runner
	orPositive(&r.Gravity, dr.Gravity)
	if r.JumpVelocity >= 0 {
		r.JumpVelocity = dr.JumpVelocity
	}
	orPositive(&r.GroundY, dr.GroundY)
	orPositive(&r.ObstacleSpeed, dr.ObstacleSpeed)
	orPositive(&r.RespawnSpeedMin, dr.RespawnSpeedMin)
	orPositive(&r.RespawnSpeedMax, dr.RespawnSpeedMax)
	if r.RespawnSpeedMax < r.RespawnSpeedMin {
		r.RespawnSpeedMax = r.RespawnSpeedMin
	}

	c, dc := &g.Racing, def.Racing
	orPositive(&c.Thrust, dc.Thrust)
	orPositive(&c.AngularVelocity, dc.AngularVelocity)
	orPositive(&c.Obstacles, dc.Obstacles)

	b, db := &g.Bomberman, def.Bomberman
	orPositive(&b.Tile, db.Tile)
	orPositive(&b.Speed, db.Speed)
	orPositive(&b.BombCooldownMS, db.BombCooldownMS)
	orPositive(&b.BombFuseMS, db.BombFuseMS)

	t, dt := &g.Tetris, def.Tetris
	orPositive(&t.TickMS, dt.TickMS)
	orPositive(&t.PointsPerLine, dt.PointsPerLine)
	return g
}

func orPositive[T int | float64](v *T, def T) {
	if *v <= 0 {
		*v = def
	}
}

func orString(v *string, def string) {
	if *v == "" {
		*v = def
	}
}
