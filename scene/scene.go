package scene

import (
	"errors"
	"fmt"
	"image/color"
	"os"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/jump/config"
	"github.com/milk9111/jump/control"
	"github.com/milk9111/jump/geom"
	"github.com/milk9111/jump/level"
	"github.com/milk9111/jump/levels"
	"github.com/milk9111/jump/physics"
	"github.com/milk9111/jump/script"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/colornames"
)

// ErrLoad wraps failures to build a scene from a config file.
var ErrLoad = errors.New("scene: load failed")

// DefaultConfig is the config used when no path is given.
const DefaultConfig = "default.yaml"

// Platform is a kinetic body steered by a script.
type Platform struct {
	Name   string
	Body   *physics.Body
	Color  color.Color
	Script *script.Controller
}

// Scene is a world built from a config: the compiled level, one
// keyboard-driven jumper and the scripted platforms.
type Scene struct {
	Config    config.Config
	Layout    level.Layout
	World     *physics.World
	Input     *control.Input
	Player    *physics.Body
	Jumper    *control.Jumper
	Machine   *control.Machine
	Platforms []Platform
	Spawn     cp.Vector

	scripts map[string]*script.Controller
	log     logrus.FieldLogger
}

// LoadLevel reads a level from disk, falling back to the embedded levels.
func LoadLevel(name string) (level.Layout, error) {
	if _, err := os.Stat(name); err == nil {
		return level.Load(name)
	}
	l, err := levels.LoadLevelFromFS(name)
	if err != nil {
		return level.Layout{}, fmt.Errorf("scene: level %q: %w", name, err)
	}
	return l, nil
}

// Build constructs a scene from cfg.
func Build(cfg config.Config, log logrus.FieldLogger) (*Scene, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	layout, err := LoadLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	grid, err := level.Compile(layout)
	if err != nil {
		return nil, fmt.Errorf("scene: compile %q: %w", cfg.Level, err)
	}
	world, err := physics.NewWorld(cfg.WorldConfig(), physics.WithLogger(log), physics.WithGrid(grid))
	if err != nil {
		return nil, fmt.Errorf("scene: world: %w", err)
	}

	s := &Scene{
		Config: cfg,
		Layout: layout,
		World:  world,
		Input:   &control.Input{},
		scripts: make(map[string]*script.Controller),
		log:     log,
	}

	spawn, ok := layout.Spawn()
	if !ok {
		ts := float64(layout.TileSize)
		spawn = cp.Vector{X: ts, Y: ts * float64(layout.Height()-1)}
		log.WithField("level", layout.Name).Warn("scene: level has no spawn, using top left")
	}
	s.Spawn = spawn

	if err := s.addPlayer(); err != nil {
		return nil, err
	}
	for _, p := range cfg.Platforms {
		if err := s.addPlatform(p); err != nil {
			return nil, err
		}
	}
	world.Flush()

	log.WithFields(logrus.Fields{
		"level":     layout.Name,
		"platforms": len(s.Platforms),
		"spawn":     spawn,
	}).Info("scene: built")
	return s, nil
}

func (s *Scene) addPlayer() error {
	props := s.Config.JumperProps()
	jumper, err := control.NewJumper(s.Input, s.World, props)
	if err != nil {
		return fmt.Errorf("scene: jumper: %w", err)
	}
	machine := control.NewMachine(s.Input, props)
	machine.OnTransition = func(b *physics.Body, from, to control.State) {
		s.log.WithFields(logrus.Fields{
			"body": b.Handle(),
			"from": from,
			"to":   to,
		}).Debug("scene: player state")
	}

	b, err := physics.NewBody(physics.Dynamic, geom.NewRect(s.Spawn.X, s.Spawn.Y, s.Config.Body.Width, s.Config.Body.Height))
	if err != nil {
		return fmt.Errorf("scene: player: %w", err)
	}
	b.Props = s.Config.Properties()
	b.Controller = jumper
	b.StateWatcher = machine
	b.UserData = "player"
	if _, err := s.World.AddBody(b); err != nil {
		return fmt.Errorf("scene: player: %w", err)
	}

	s.Player = b
	s.Jumper = jumper
	s.Machine = machine
	return nil
}

func (s *Scene) addPlatform(p config.PlatformSpec) error {
	b, err := physics.NewBody(physics.Kinetic, geom.NewRect(p.X, p.Y, p.W, p.H))
	if err != nil {
		return fmt.Errorf("scene: platform %s: %w", p.Name, err)
	}
	b.UserData = p.Name

	var ctrl *script.Controller
	if p.Script != "" {
		ctrl, err = s.controller(p)
		if err != nil {
			return err
		}
		b.Controller = ctrl
	}

	var c color.Color = colornames.Steelblue
	if p.Color != nil && p.Color.Color != nil {
		c = p.Color.Color
	}

	if _, err := s.World.AddBody(b); err != nil {
		return fmt.Errorf("scene: platform %s: %w", p.Name, err)
	}
	s.Platforms = append(s.Platforms, Platform{Name: p.Name, Body: b, Color: c, Script: ctrl})
	return nil
}

// controller compiles each script once and hands later platforms a clone.
func (s *Scene) controller(p config.PlatformSpec) (*script.Controller, error) {
	if compiled, ok := s.scripts[p.Script]; ok {
		return compiled.Clone(script.WithName(p.Name)), nil
	}
	src, err := config.LoadScript(p.Script)
	if err != nil {
		return nil, fmt.Errorf("scene: platform %s: script %s: %w", p.Name, p.Script, err)
	}
	ctrl, err := script.New(src, script.WithName(p.Name), script.WithLogger(s.log))
	if err != nil {
		return nil, fmt.Errorf("scene: platform %s: %w", p.Name, err)
	}
	s.scripts[p.Script] = ctrl
	return ctrl, nil
}

// Frame records which actions pressed reports as held and advances the world
// by delta seconds. A nil pressed releases every action.
func (s *Scene) Frame(delta float64, pressed func(control.Action) bool) bool {
	if pressed == nil {
		s.Input.Reset()
	} else {
		for _, a := range control.Actions() {
			s.Input.Set(a, pressed(a))
		}
	}
	return s.World.Step(delta)
}

// Respawn puts the player back at the spawn point at rest.
func (s *Scene) Respawn() {
	if s.Player == nil {
		return
	}
	s.Player.AABB.Pos = s.Spawn
	s.Player.LastPosition = s.Spawn
	s.Player.Velocity = cp.Vector{}
	s.Machine.Set(s.Player, control.Falling)
	s.log.WithField("spawn", s.Spawn).Info("scene: respawn")
}

// Status summarizes the player for overlays.
func (s *Scene) Status() string {
	if s.Player == nil {
		return "no player"
	}
	b := s.Player
	return fmt.Sprintf("State: %s\nPos: (%.1f, %.1f)\nVel: (%.1f, %.1f)\nGrounded: %v\nJumps: %d",
		s.Machine.State(), b.AABB.Pos.X, b.AABB.Pos.Y, b.Velocity.X, b.Velocity.Y,
		b.Grounded, s.Jumper.JumpsRemaining())
}

// Fields describes b for structured logs.
func Fields(b *physics.Body) logrus.Fields {
	f := logrus.Fields{
		"handle":   b.Handle(),
		"type":     b.Type,
		"x":        b.AABB.Pos.X,
		"y":        b.AABB.Pos.Y,
		"vx":       b.Velocity.X,
		"vy":       b.Velocity.Y,
		"grounded": b.Grounded,
	}
	if name, ok := b.UserData.(string); ok {
		f["name"] = name
	}
	return f
}

// Load reads the config at path, or the embedded default config when path is
// empty, and builds a scene from it. A non-empty levelName overrides the
// config's level.
func Load(path, levelName string, log logrus.FieldLogger) (*Scene, error) {
	var (
		cfg config.Config
		err error
	)
	if path == "" {
		cfg, err = defaultConfig()
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	if levelName != "" {
		cfg.Level = levelName
	}
	s, err := Build(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return s, nil
}

func defaultConfig() (config.Config, error) {
	data, err := config.ReadFile(DefaultConfig)
	if err != nil {
		return config.Config{}, err
	}
	return config.Parse(data)
}
