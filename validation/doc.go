// Package validation validates configuration structs with validator/v10
// struct tags and reports failures as INVALID_CONFIG errors.
//
//	type StreamConfig struct {
//	    HighWaterMark *int `validate:"omitempty,min=0"`
//	}
//	err := validation.Validate(&cfg)
package validation
