// Package dispatch sends a batch of parsed requests one after another.
//
// Requests are paced by an optional rate limit, every exchange can be
// handed to a Recorder (see the history package), and latencies are
// collected into a histogram for the final summary.
package dispatch
