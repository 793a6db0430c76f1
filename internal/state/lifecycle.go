// Package state defines the request lifecycle model shared by all
// state slices.
package state

// Status is the tagged status of one asynchronous operation.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSucceeded
	StatusFailed
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Lifecycle tracks one logical concern's request state. A slice holds
// one Lifecycle per concern; concerns are never conflated.
type Lifecycle struct {
	Status Status
	Err    string
}

// Begin transitions to Pending and clears any previous failure.
func (l *Lifecycle) Begin() {
	l.Status = StatusPending
	l.Err = ""
}

// Succeed transitions to Succeeded.
func (l *Lifecycle) Succeed() {
	l.Status = StatusSucceeded
	l.Err = ""
}

// Fail transitions to Failed and records the reason.
func (l *Lifecycle) Fail(reason string) {
	l.Status = StatusFailed
	l.Err = reason
}

// Reset returns the lifecycle to Idle.
func (l *Lifecycle) Reset() {
	l.Status = StatusIdle
	l.Err = ""
}

// Pending reports whether a request for this concern is in flight.
func (l Lifecycle) Pending() bool {
	return l.Status == StatusPending
}

// Failed reports whether the last request for this concern failed.
func (l Lifecycle) Failed() bool {
	return l.Status == StatusFailed
}
