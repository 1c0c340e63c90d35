// Package config loads, normalizes, and validates marquee configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MARQUEE_DATA_DIR. The Config type centralizes every tunable threshold the
// matcher, scorer, and audit gate use, so the values tuned against real data
// live in one file rather than in code.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
