package config

import (
	"github.com/kbukum/through2/stream"
	"github.com/kbukum/through2/validation"
)

// StreamConfig holds stream options as loaded from configuration. Unset
// fields leave the corresponding option at the stream default.
type StreamConfig struct {
	ObjectMode    *bool  `yaml:"object_mode" mapstructure:"object_mode"`
	HighWaterMark *int   `yaml:"high_water_mark" mapstructure:"high_water_mark" validate:"omitempty,min=0"`
	Encoding      string `yaml:"encoding" mapstructure:"encoding" validate:"omitempty,oneof=buffer utf8 utf-8 hex base64"`
	AutoDestroy   *bool  `yaml:"auto_destroy" mapstructure:"auto_destroy"`
	Name          string `yaml:"name" mapstructure:"name" validate:"max=128"`
}

// Validate checks field constraints.
func (c *StreamConfig) Validate() error {
	return validation.Validate(c)
}

// Options converts the configuration into stream options, emitting only the
// keys that are set.
func (c *StreamConfig) Options() []stream.Option {
	opts := make([]stream.Option, 0, 5)
	if c.ObjectMode != nil {
		opts = append(opts, stream.WithObjectMode(*c.ObjectMode))
	}
	if c.HighWaterMark != nil {
		opts = append(opts, stream.WithHighWaterMark(*c.HighWaterMark))
	}
	if c.Encoding != "" && c.Encoding != stream.EncodingBuffer {
		opts = append(opts, stream.WithEncoding(c.Encoding))
	}
	if c.AutoDestroy != nil {
		opts = append(opts, stream.WithAutoDestroy(*c.AutoDestroy))
	}
	if c.Name != "" {
		opts = append(opts, stream.WithName(c.Name))
	}
	return opts
}
