// Package executor runs resolved scene descriptors. Each container owns at
// most one live interpreter; a new descriptor tears the old one down before
// the next is created, and any failure leaves the container empty.
package executor

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/arcade-studio/internal/core"
	"github.com/vovakirdan/arcade-studio/internal/registry"
	"github.com/vovakirdan/arcade-studio/internal/scene"
)

// ErrEmpty is returned when stepping or rendering a container with no
// live instance.
var ErrEmpty = errors.New("executor: container is empty")

// Phase names the stage at which a run failed.
type Phase string

const (
	PhaseDecode Phase = "decode"
	PhaseCreate Phase = "create"
	PhaseStep   Phase = "step"
	PhaseRender Phase = "render"
)

// RunError reports a failure caught at the container boundary.
type RunError struct {
	Container string
	Round     string
	Phase     Phase
	Err       error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("executor: container %s: %s failed: %v", e.Container, e.Phase, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Factory builds an interpreter for a decoded scene.
type Factory func(scene.Scene) (registry.Game, error)

// Options configures an Executor.
type Options struct {
	Runtime core.RuntimeConfig
	Logger  *log.Logger
	Factory Factory // defaults to registry.Create
}

// Executor hands out containers by id.
type Executor struct {
	opts       Options
	mu         sync.Mutex
	containers map[string]*Container
}

// New creates an executor.
func New(opts Options) *Executor {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Factory == nil {
		opts.Factory = registry.Create
	}
	if opts.Runtime.TickRate <= 0 {
		opts.Runtime = core.DefaultConfig()
	}
	return &Executor{
		opts:       opts,
		containers: make(map[string]*Container),
	}
}

// Container returns the container with the given id, creating it empty.
func (e *Executor) Container(id string) *Container {
	e.mu.Lock()
	defer e.mu.Unlock()

	if c, ok := e.containers[id]; ok {
		return c
	}
	c := &Container{
		id:      id,
		logger:  e.opts.Logger.With("container", id),
		runtime: e.opts.Runtime,
		factory: e.opts.Factory,
	}
	e.containers[id] = c
	return c
}

// IDs lists the known containers in order.
func (e *Executor) IDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]string, 0, len(e.containers))
	for id := range e.containers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Remove tears a container down and forgets it.
func (e *Executor) Remove(id string) {
	e.mu.Lock()
	c, ok := e.containers[id]
	delete(e.containers, id)
	e.mu.Unlock()

	if ok {
		c.Close()
	}
}

// Close tears every container down.
func (e *Executor) Close() {
	e.mu.Lock()
	all := make([]*Container, 0, len(e.containers))
	for _, c := range e.containers {
		all = append(all, c)
	}
	e.containers = make(map[string]*Container)
	e.mu.Unlock()

	for _, c := range all {
		c.Close()
	}
}

// Stats counts lifecycle events of a container.
type Stats struct {
	Creates   int
	Teardowns int
	Failures  int
}

// Container is an exclusive rendering target for one interpreter.
type Container struct {
	id      string
	logger  *log.Logger
	runtime core.RuntimeConfig
	factory Factory

	mu    sync.Mutex
	game  registry.Game
	code  string
	round string
	genre string
	state core.GameState
	err   error
	stats Stats
}

// ID returns the container id.
func (c *Container) ID() string {
	return c.id
}

// Load runs resolved code in the container. Loading the code that is already
// loaded is a no-op; anything else tears the current instance down first.
// A failure is logged, leaves the container empty and is returned as a
// *RunError.
func (c *Container) Load(round, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if code == c.code && (c.game != nil || c.err != nil) {
		c.round = round
		return c.err
	}

	c.teardown()
	c.code = code
	c.round = round
	c.err = nil

	sc, err := scene.Decode(code)
	if err != nil {
		return c.fail(PhaseDecode, err)
	}

	var g registry.Game
	err = protect(func() error {
		created, err := c.factory(sc)
		if err != nil {
			return err
		}
		created.Reset(c.runtime)
		g = created
		return nil
	})
	if err != nil {
		return c.fail(PhaseCreate, err)
	}

	c.game = g
	c.genre = sc.Genre
	c.state = g.State()
	c.stats.Creates++
	c.logger.Info("engine started", "round", round, "genre", sc.Genre)
	return nil
}

// Step advances the live instance by one tick.
func (c *Container) Step(in core.InputFrame) (core.StepResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.game == nil {
		return core.StepResult{}, ErrEmpty
	}
	var res core.StepResult
	err := protect(func() error {
		res = c.game.Step(in)
		return nil
	})
	if err != nil {
		return core.StepResult{}, c.fail(PhaseStep, err)
	}
	c.state = res.State
	return res, nil
}

// Render draws the live instance. An empty container renders nothing.
func (c *Container) Render(dst *core.Screen) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.game == nil {
		dst.Clear()
		return ErrEmpty
	}
	err := protect(func() error {
		c.game.Render(dst)
		return nil
	})
	if err != nil {
		dst.Clear()
		return c.fail(PhaseRender, err)
	}
	return nil
}

// Restart resets the live instance with a new runtime configuration.
func (c *Container) Restart(runtime core.RuntimeConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.runtime = runtime
	if c.game == nil {
		return ErrEmpty
	}
	err := protect(func() error {
		c.game.Reset(runtime)
		return nil
	})
	if err != nil {
		return c.fail(PhaseCreate, err)
	}
	c.state = c.game.State()
	return nil
}

// Close tears the live instance down.
func (c *Container) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.teardown()
	c.code = ""
	c.round = ""
	c.err = nil
}

// Live reports whether an instance is running.
func (c *Container) Live() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game != nil
}

// Code returns the code last loaded, whether or not it runs.
func (c *Container) Code() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.code
}

// Round returns the round id of the code last loaded.
func (c *Container) Round() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.round
}

// Genre returns the genre of the live instance, or "".
func (c *Container) Genre() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.game == nil {
		return ""
	}
	return c.genre
}

// Title returns the title of the live instance, or "".
func (c *Container) Title() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.game == nil {
		return ""
	}
	return c.game.Title()
}

// State returns the last observed game state.
func (c *Container) State() core.GameState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the failure that emptied the container, if any.
func (c *Container) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Stats returns the lifecycle counters.
func (c *Container) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// teardown releases the live instance. Callers hold c.mu.
func (c *Container) teardown() {
	if c.game == nil {
		return
	}
	c.game = nil
	c.genre = ""
	c.state = core.GameState{}
	c.stats.Teardowns++
	c.logger.Debug("engine torn down", "round", c.round)
}

// fail records err, empties the container and logs. Callers hold c.mu.
func (c *Container) fail(phase Phase, err error) error {
	c.teardown()
	runErr := &RunError{Container: c.id, Round: c.round, Phase: phase, Err: err}
	c.err = runErr
	c.stats.Failures++
	c.logger.Error("engine failed", "round", c.round, "phase", phase, "error", err)
	return runErr
}

// protect runs fn and turns a panic into an error.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
