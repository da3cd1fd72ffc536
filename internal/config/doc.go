// Package config loads, normalizes, and validates ReplayVault configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the REPLAYVAULT_BASE_URL
// environment fallback. Always obtain settings through this package so
// downstream code receives sanitized paths and validated source settings.
package config
