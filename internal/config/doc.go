// Package config loads, normalizes, and validates kbpkit configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the KBPKIT_STATE_DIR environment
// fallback. The Config type centralizes the parse and write options the CLI
// hands to the engine, so every subcommand opens and writes files the same way.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
