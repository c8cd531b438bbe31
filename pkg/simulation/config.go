package simulation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/PancakeLord3000/Boid-Simulation/pkg/behavior"
)

//go:embed config.schema.json
var configSchema string

// Config is the full configuration surface. The json tags are the config
// file format, validated against the embedded schema; the mapstructure tags
// are what viper binds flags and BOIDS_* environment variables to.
//
// Separation, Cohesion and Alignment are slider-style factors, not absolute
// radii; Params derives the radii by scaling them with the boid size.
type Config struct {
	NumBoids        int     `json:"num_boids" mapstructure:"num_boids"`
	BoidSize        float64 `json:"boid_size" mapstructure:"boid_size"`
	Separation      float64 `json:"separation" mapstructure:"separation"`
	Cohesion        float64 `json:"cohesion" mapstructure:"cohesion"`
	Alignment       float64 `json:"alignment" mapstructure:"alignment"`
	MaxSpeed        float64 `json:"max_speed" mapstructure:"max_speed"`
	MaxForce        float64 `json:"max_force" mapstructure:"max_force"`
	CubeSize        float64 `json:"cube_size" mapstructure:"cube_size"`
	CenterAlignment bool    `json:"center_alignment" mapstructure:"center_alignment"`

	FPS          int   `json:"fps" mapstructure:"fps"`
	Seed         int64 `json:"seed" mapstructure:"seed"`
	WindowWidth  int   `json:"window_width" mapstructure:"window_width"`
	WindowHeight int   `json:"window_height" mapstructure:"window_height"`

	Record    bool   `json:"record" mapstructure:"record"`
	Duration  string `json:"duration" mapstructure:"duration"`
	OutputDir string `json:"output_dir" mapstructure:"output_dir"`

	LogLevel string `json:"log_level" mapstructure:"log_level"`
	LogFile  string `json:"log_file" mapstructure:"log_file"`
}

// DefaultConfig returns the reference defaults: 100 boids of size 10 in a
// 500-unit cube at 30 fps, with the factor calibration of the original
// control panel.
func DefaultConfig() *Config {
	return &Config{
		NumBoids:     100,
		BoidSize:     10,
		Separation:   10,
		Cohesion:     16,
		Alignment:    20,
		MaxSpeed:     5,
		MaxForce:     1,
		CubeSize:     500,
		FPS:          30,
		WindowWidth:  1280,
		WindowHeight: 800,
		Duration:     "60",
		OutputDir:    ".",
		LogLevel:     "info",
	}
}

// Params derives the runtime parameter snapshot from the config: the
// factors become absolute radii through the boid-size scaling.
func (c *Config) Params() Params {
	s := behavior.DeriveSettings(
		c.BoidSize,
		c.Separation, c.Cohesion, c.Alignment,
		c.MaxSpeed, c.MaxForce, c.CubeSize,
	)
	s.CenterAlignment = c.CenterAlignment
	return Params{NumBoids: c.NumBoids, Settings: s}
}

// DefaultDurationSeconds is the recording length used when the configured
// duration cannot be parsed.
const DefaultDurationSeconds = 60

// DurationSeconds parses the recording duration. A non-numeric or
// non-positive value falls back to the documented default instead of
// failing the run.
func (c *Config) DurationSeconds() int {
	secs, err := strconv.Atoi(strings.TrimSpace(c.Duration))
	if err != nil || secs <= 0 {
		return DefaultDurationSeconds
	}
	return secs
}

// FrameBudget translates the recording settings into the run loop's frame
// budget: zero when recording is off.
func (c *Config) FrameBudget() int {
	if !c.Record {
		return 0
	}
	return c.FPS * c.DurationSeconds()
}

// LoadConfig reads a JSON config file, validates it against the embedded
// schema and unmarshals it over the defaults, so a partial file only
// overrides what it names.
func LoadConfig(path string) (*Config, error) {
	sch, err := jsonschema.CompileString("config.schema.json", configSchema)
	if err != nil {
		return nil, fmt.Errorf("compiling config schema: %w", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("decoding config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}
