// Package config handles configuration loading and management for httpui.
//
// It provides functionality for:
//   - Loading configuration from .httpui.config.json or .httpui.yaml files
//   - Default configuration values
//   - Merging file configuration with command line overrides
package config
