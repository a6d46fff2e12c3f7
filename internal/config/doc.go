// Package config loads, normalizes, and validates mediaflow configuration
// from TOML files with sensible defaults for every field.
package config
