// Package cmd implements the httpui CLI commands using Cobra.
//
// Available commands:
//   - list: Display every request of .http files
//   - show: Display one request by position
//   - validate: Check .http file syntax without sending anything
//   - send: Dispatch requests and print the responses
//   - history: Inspect requests recorded by send --history
//   - import: Convert curl, Insomnia or OpenAPI sources to .http files
//   - record: Capture live traffic through a proxy as a .http file
//   - coverage: Match requests against the operations of an OpenAPI document
//   - init: Create a config file and an example .http file
//   - version: Show httpui version information
//
// Flags default to HTTPUI_* environment variables, and settings not given
// as flags come from the config file.
package cmd
