// Package config loads, normalizes, and validates reelsmith configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads an optional .env file, and honours
// environment fallbacks such as GEMINI_API_KEY and HF_TOKEN. The Config type
// centralizes every knob the CLI and export batch need: canvas geometry,
// caption and cover styling, dub voices, service credentials, and publishing targets.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
