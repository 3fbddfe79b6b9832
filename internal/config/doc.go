// Package config loads, normalizes, and validates vistopia configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// VISTOPIA_API_TOKEN, which may also come from a .env file in the working
// directory. The Config type centralizes every knob the CLI needs: API
// endpoints and token, output and state directories, tagging defaults, and the
// external converter and archiver settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
