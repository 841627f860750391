// Package output renders parsed .http files and dispatch results.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output
//   - JUnit: JUnit XML format for CI validation of .http files
//   - TAP: Test Anything Protocol format
//
// Formatters that accumulate results write them in Flush.
package output
