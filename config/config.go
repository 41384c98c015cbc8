package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/jump/common"
	"github.com/milk9111/jump/control"
	"github.com/milk9111/jump/physics"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid config")

type Vec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (v Vec) CP() cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}

type WorldSpec struct {
	Gravity  Vec `yaml:"gravity"`
	MaxSpeed Vec `yaml:"max_speed"`
	Workers  int `yaml:"workers"`
}

type BodySpec struct {
	Width           float64 `yaml:"width"`
	Height          float64 `yaml:"height"`
	Acceleration    float64 `yaml:"acceleration"`
	AirAcceleration float64 `yaml:"air_acceleration"`
	Deceleration    float64 `yaml:"deceleration"`
	AirDeceleration float64 `yaml:"air_deceleration"`
	MaxSpeed        Vec     `yaml:"max_speed"`
	GravityModifier float64 `yaml:"gravity_modifier"`
}

type JumperSpec struct {
	JumpCount            int     `yaml:"jump_count"`
	JumpStrength         float64 `yaml:"jump_strength"`
	DoubleJumpStrength   float64 `yaml:"double_jump_strength"`
	VariableHeightWindow float64 `yaml:"variable_height_window"`
	GraceWindow          float64 `yaml:"grace_window"`
	PreRequestWindow     float64 `yaml:"pre_request_window"`
	HittingHeadStopsJump bool    `yaml:"hitting_head_stops_jump"`
	WallSlideEnabled     bool    `yaml:"wall_slide_enabled"`
	WallJumpEnabled      bool    `yaml:"wall_jump_enabled"`
	WallJumpLaunchPower  float64 `yaml:"wall_jump_launch_power"`
	WallMaxSlideSpeed    float64 `yaml:"wall_max_slide_speed"`
}

// PlatformSpec describes a kinetic platform driven by a tengo script.
type PlatformSpec struct {
	Name   string     `yaml:"name"`
	X      float64    `yaml:"x"`
	Y      float64    `yaml:"y"`
	W      float64    `yaml:"w"`
	H      float64    `yaml:"h"`
	Script string     `yaml:"script"`
	Color  *YAMLColor `yaml:"color"`
}

type Config struct {
	World     WorldSpec      `yaml:"world"`
	Body      BodySpec       `yaml:"body"`
	Jumper    JumperSpec     `yaml:"jumper"`
	Platforms []PlatformSpec `yaml:"platforms"`
	// Level is a level file path, or the name of an embedded level.
	Level string `yaml:"level"`
}

func Default() Config {
	j := control.DefaultJumperProps()
	return Config{
		World: WorldSpec{
			Gravity:  Vec{X: 0, Y: -900},
			MaxSpeed: Vec{X: common.DefaultMaxSpeed, Y: common.DefaultMaxSpeed},
			Workers:  1,
		},
		Body: BodySpec{
			Width:           12,
			Height:          20,
			Acceleration:    3000,
			AirAcceleration: 1500,
			Deceleration:    3000,
			AirDeceleration: 800,
			MaxSpeed:        Vec{X: 200, Y: 0},
			GravityModifier: 1,
		},
		Jumper: JumperSpec{
			JumpCount:            j.JumpCount,
			JumpStrength:         j.JumpStrength,
			DoubleJumpStrength:   j.DoubleJumpStrength,
			VariableHeightWindow: j.VariableHeightWindow,
			GraceWindow:          j.GraceWindow,
			PreRequestWindow:     j.PreRequestWindow,
			HittingHeadStopsJump: j.HittingHeadStopsJump,
			WallSlideEnabled:     j.WallSlideEnabled,
			WallJumpEnabled:      j.WallJumpEnabled,
			WallJumpLaunchPower:  j.WallJumpLaunchPower,
			WallMaxSlideSpeed:    j.WallMaxSlideSpeed,
		},
		Level: "demo.yaml",
	}
}

// Parse decodes YAML over the defaults, so omitted fields keep their default
// values.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and validates the config at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := c.WorldConfig().Validate(); err != nil {
		return fmt.Errorf("config: world: %w: %w", ErrInvalid, err)
	}
	if c.Body.Width <= 0 || c.Body.Height <= 0 {
		return fmt.Errorf("config: body size %vx%v: %w", c.Body.Width, c.Body.Height, ErrInvalid)
	}
	for name, v := range map[string]float64{
		"acceleration":     c.Body.Acceleration,
		"air_acceleration": c.Body.AirAcceleration,
		"deceleration":     c.Body.Deceleration,
		"air_deceleration": c.Body.AirDeceleration,
		"max_speed.x":      c.Body.MaxSpeed.X,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("config: body %s %v: %w", name, v, ErrInvalid)
		}
	}
	if err := c.JumperProps().Validate(); err != nil {
		return fmt.Errorf("config: jumper: %w: %w", ErrInvalid, err)
	}
	for i, p := range c.Platforms {
		if p.W <= 0 || p.H <= 0 {
			return fmt.Errorf("config: platform %d (%s) size %vx%v: %w", i, p.Name, p.W, p.H, ErrInvalid)
		}
	}
	return nil
}

// WorldConfig converts the world section into a physics config.
func (c Config) WorldConfig() physics.Config {
	cfg := physics.DefaultConfig()
	cfg.Gravity = c.World.Gravity.CP()
	cfg.MaxSpeed = c.World.MaxSpeed.CP()
	cfg.Workers = c.World.Workers
	return cfg
}

func (c Config) Properties() physics.Properties {
	return physics.Properties{
		Acceleration:    c.Body.Acceleration,
		AirAcceleration: c.Body.AirAcceleration,
		Deceleration:    c.Body.Deceleration,
		AirDeceleration: c.Body.AirDeceleration,
		MaxSpeed:        c.Body.MaxSpeed.CP(),
		GravityModifier: c.Body.GravityModifier,
	}
}

func (c Config) JumperProps() control.JumperProps {
	j := c.Jumper
	return control.JumperProps{
		JumpCount:            j.JumpCount,
		JumpStrength:         j.JumpStrength,
		DoubleJumpStrength:   j.DoubleJumpStrength,
		VariableHeightWindow: j.VariableHeightWindow,
		GraceWindow:          j.GraceWindow,
		PreRequestWindow:     j.PreRequestWindow,
		HittingHeadStopsJump: j.HittingHeadStopsJump,
		WallSlideEnabled:     j.WallSlideEnabled,
		WallJumpEnabled:      j.WallJumpEnabled,
		WallJumpLaunchPower:  j.WallJumpLaunchPower,
		WallMaxSlideSpeed:    j.WallMaxSlideSpeed,
	}
}
