package config

import (
	"fmt"

	"github.com/kbukum/through2/logger"
)

// Config is the top-level configuration of a through2 program.
type Config struct {
	Stream  StreamConfig  `yaml:"stream" mapstructure:"stream"`
	Logging logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults applies default values to every section.
func (c *Config) ApplyDefaults() {
	c.Logging.ApplyDefaults()
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.Stream.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
