// Package config loads the server configuration from an optional YAML
// file with environment overrides for secrets.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds everything the campussim server needs at startup.
type Config struct {
	Addr     string `yaml:"addr"`
	AdminKey string `yaml:"admin_key"`
	DBPath   string `yaml:"db_path"`

	Seed           int64 `yaml:"seed"`
	BasePopulation int   `yaml:"base_population"`

	CORSOrigins []string `yaml:"cors_origins"`

	Weather WeatherConfig `yaml:"weather"`
	LLM     LLMConfig     `yaml:"llm"`
}

// WeatherConfig configures the real-weather feed. Disabled when the
// coordinates are both zero.
type WeatherConfig struct {
	Latitude    float64 `yaml:"latitude"`
	Longitude   float64 `yaml:"longitude"`
	IntervalSec int     `yaml:"interval_sec"`
}

// LLMConfig configures the directive and agent language model. The API
// key comes from the environment, never the file.
type LLMConfig struct {
	Model          string `yaml:"model"`
	APIKey         string `yaml:"-"`
	PollSec        int    `yaml:"poll_sec"`
	AgentBatchSize int    `yaml:"agent_batch_size"`
}

// Load reads the config file at path, or returns defaults when path is
// empty. ANTHROPIC_API_KEY and CAMPUS_ADMIN_KEY override the file.
func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}
	if key := os.Getenv("CAMPUS_ADMIN_KEY"); key != "" {
		cfg.AdminKey = key
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Addr:           ":8420",
		DBPath:         "campus.db",
		Seed:           42,
		BasePopulation: 500,
		Weather: WeatherConfig{
			// Paris by default; the campus is French after all.
			Latitude:    48.8566,
			Longitude:   2.3522,
			IntervalSec: 600,
		},
		LLM: LLMConfig{
			Model:          "claude-sonnet-4-20250514",
			PollSec:        20,
			AgentBatchSize: 3,
		},
	}
}

func (c *Config) normalize() {
	if c.Weather.IntervalSec <= 0 {
		c.Weather.IntervalSec = 600
	}
	if c.LLM.PollSec <= 0 {
		c.LLM.PollSec = 20
	}
	if c.LLM.AgentBatchSize <= 0 {
		c.LLM.AgentBatchSize = 3
	}
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if c.BasePopulation <= 0 {
		return fmt.Errorf("base_population must be > 0")
	}
	if c.Weather.Latitude < -90 || c.Weather.Latitude > 90 {
		return fmt.Errorf("weather.latitude out of range")
	}
	if c.Weather.Longitude < -180 || c.Weather.Longitude > 180 {
		return fmt.Errorf("weather.longitude out of range")
	}
	return nil
}

// WeatherEnabled reports whether the real-weather feed is configured.
func (c Config) WeatherEnabled() bool {
	return c.Weather.Latitude != 0 || c.Weather.Longitude != 0
}
