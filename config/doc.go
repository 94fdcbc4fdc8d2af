// Package config provides configuration loading and validation for streamkit
// applications.
//
// It uses Viper to load configuration from YAML files and environment
// variables, with godotenv picking up .env files from standard locations.
//
// # Usage
//
//	var cfg config.Config
//	err := config.LoadConfig("my-app", &cfg)
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil { ... }
//
// Environment variables override file values using the STREAMKIT_ prefix with
// underscore-separated paths (e.g., STREAMKIT_LOGGING_LEVEL, STREAMKIT_PIPELINES_DIR).
package config
