// Package config loads, normalizes, and validates debtwatch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DEBTWATCH_API_TOKEN. The Config type centralizes every knob the CLI needs:
// analytics backend endpoint and credentials, data/log directories, upload
// conflict policy, and notification settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
