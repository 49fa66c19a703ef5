// Package config loads through2 configuration from YAML files, .env files
// and environment variables.
//
// It uses Viper for layered loading and godotenv for .env files. Environment
// variables map onto nested keys by splitting on underscores, so
// STREAM_HIGH_WATER_MARK sets stream.high_water_mark.
//
// # Usage
//
//	var cfg config.Config
//	if err := config.LoadConfig("through2", &cfg); err != nil {
//		return err
//	}
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil {
//		return err
//	}
//	t := through2.New(cfg.Stream.Options(), fn, nil)
package config
