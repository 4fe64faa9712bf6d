package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the config file kept inside the .backlog directory.
const FileName = "config.yaml"

// Config is the root configuration for a backlog project.
type Config struct {
	Version  int    `yaml:"version"`
	Project  string `yaml:"project,omitempty"`  // display name for board headers
	Database string `yaml:"database,omitempty"` // db file relative to .backlog (default backlog.db)
	Agent    string `yaml:"agent,omitempty"`    // default agent label for CLI sessions
	Sprint   string `yaml:"sprint,omitempty"`   // current sprint, used as default filter
	Board    Board  `yaml:"board,omitempty"`
}

// Board holds display settings for the board command.
type Board struct {
	ColumnWidth int `yaml:"column_width,omitempty"`
}

// BoardColumnWidth returns the column width for the board view.
func (c *Config) BoardColumnWidth() int {
	if c.Board.ColumnWidth > 0 {
		return c.Board.ColumnWidth
	}
	return 22
}

// DatabaseFile returns the configured database filename.
func (c *Config) DatabaseFile() string {
	if c.Database != "" {
		return c.Database
	}
	return "backlog.db"
}

// AgentLabel returns the agent label to stamp on writes, preferring the
// BACKLOG_AGENT environment variable over the config file.
func (c *Config) AgentLabel() string {
	if env := os.Getenv("BACKLOG_AGENT"); env != "" {
		return env
	}
	return c.Agent
}

// Load reads and parses the config file at the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the config to the given path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns a starter config for a new project.
func DefaultConfig(project string) *Config {
	return &Config{
		Version:  1,
		Project:  project,
		Database: "backlog.db",
	}
}

func (c *Config) validate() error {
	if c.Version != 1 {
		return fmt.Errorf("unsupported config version %d", c.Version)
	}
	if c.Database != "" && (c.Database[0] == '/' || c.Database[0] == '\\') {
		return fmt.Errorf("database must be a filename relative to .backlog, got %q", c.Database)
	}
	return nil
}
