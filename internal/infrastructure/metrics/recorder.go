// Package metrics records request and cache lifecycle measurements.
package metrics

import (
	"time"
)

// Fetch outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
	OutcomeDropped = "dropped"
)

// Recorder receives measurements from the HTTP client and resource hooks.
//
// Thread Safety: Implementations must be safe for concurrent use by multiple goroutines.
type Recorder interface {
	// ObserveRequest records one HTTP round trip. status is 0 on transport failure.
	ObserveRequest(method, path string, status int, duration time.Duration)
	// ObserveFetch records how a resource refresh ended.
	ObserveFetch(resource, outcome string, duration time.Duration)
	// ObserveMutation records a create/update/delete call.
	ObserveMutation(method string, ok bool)
}

// Nop discards all measurements
type Nop struct{}

func (Nop) ObserveRequest(string, string, int, time.Duration) {}
func (Nop) ObserveFetch(string, string, time.Duration)        {}
func (Nop) ObserveMutation(string, bool)                      {}
