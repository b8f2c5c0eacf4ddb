package collision

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the tunables of a CollisionWorld. It is usually loaded from a
// YAML file:
//
//	frame_rate: 60
//	debug: false
//	pipelined: false
//	result_buffer: 256
//	watch: true
//	matrix:
//	  - [player, floor]
//	  - [player, enemy]
type Config struct {
	FrameRate    float64     `yaml:"frame_rate"`
	Debug        bool        `yaml:"debug"`
	LogPrefix    string      `yaml:"log_prefix"`
	Pipelined    bool        `yaml:"pipelined"`
	ResultBuffer int         `yaml:"result_buffer"`
	Watch        bool        `yaml:"watch"`
	Matrix       [][2]string `yaml:"matrix"`

	// path is where the config came from; empty for in-memory configs.
	path string
}

func DefaultConfig() Config {
	return Config{
		FrameRate:    60,
		LogPrefix:    "collision",
		ResultBuffer: 256,
	}
}

// LoadConfig reads a YAML config. Missing fields keep their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("collision: load %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("collision: parse %s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// withDefaults fills the zero valued tunables of c from DefaultConfig and
// keeps everything the caller set.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.FrameRate == 0 {
		c.FrameRate = def.FrameRate
	}
	if c.ResultBuffer == 0 {
		c.ResultBuffer = def.ResultBuffer
	}
	if c.LogPrefix == "" {
		c.LogPrefix = def.LogPrefix
	}
	return c
}

func (c Config) Path() string {
	return c.path
}

func (c Config) Validate() error {
	if c.FrameRate <= 0 {
		return fmt.Errorf("frame_rate must be positive, got %v", c.FrameRate)
	}
	if c.ResultBuffer < 1 {
		return fmt.Errorf("result_buffer must be at least 1, got %d", c.ResultBuffer)
	}
	_, err := c.BuildMatrix()
	return err
}

// FramePeriod is the time between frames at FrameRate.
func (c Config) FramePeriod() time.Duration {
	return time.Duration(float64(time.Second) / c.FrameRate)
}

// BuildMatrix resolves the tag pairs of the config into a matrix.
func (c Config) BuildMatrix() (CollisionMatrix, error) {
	var m CollisionMatrix
	for i, pair := range c.Matrix {
		a, err := ParseTag(pair[0])
		if err != nil {
			return CollisionMatrix{}, fmt.Errorf("matrix[%d]: %w", i, err)
		}
		b, err := ParseTag(pair[1])
		if err != nil {
			return CollisionMatrix{}, fmt.Errorf("matrix[%d]: %w", i, err)
		}
		m.RegisterDetectionTarget(a, b)
	}
	return m, nil
}
