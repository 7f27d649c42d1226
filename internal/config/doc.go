// Package config provides configuration management for apkpure-downloader.
//
// This package handles:
//   - Default configuration values
//   - Loading settings from JSON or YAML files
//   - APKPURE_* environment overrides, optionally seeded from a .env file
//   - Validation
//   - Logger construction
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Downloads into the current directory, one at a time, no pacing.
//
// # Precedence
//
// Defaults, then the config file, then the environment, then command-line
// flags applied by the caller:
//
//	settings, err := config.Load("apkpure.yaml")
//	err = settings.LoadEnv(".env")
//	settings.Parallel = *parallelFlag
//	err = settings.Validate()
//
// # Configuration Options
//
// Settings includes options for:
//   - Output directory, or a blob bucket URL with the directory as key prefix
//   - Parallel downloads and per-task start delay
//   - Catalog endpoint, request timeout and optional request throttling
//   - Log level and format
package config
