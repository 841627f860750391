// Package http dispatches parsed .http requests over the network.
//
// It wraps the standard library's http package with additional features:
//   - Mapping of parsed request descriptors onto outbound requests
//   - Configurable timeouts, redirects, proxy and TLS verification
//   - Default headers applied to every request
//   - Response body reading and timing
package http
