// Package config loads runtime configuration from multiple sources (YAML
// files, environment variables, CLI flags) with precedence: CLI flags >
// Environment variables > YAML config > Defaults. It exposes strongly typed
// settings, including the analysis defaults and scaling limits used by the
// calculation core, to the rest of the application.
package config
