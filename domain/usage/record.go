// Package usage provides dispatch record types and aggregation
// functions. All functions are pure - no side effects.
package usage

import "time"

// Status classifies how a dispatch ended.
type Status string

const (
	StatusDispatched Status = "dispatched" // validated, handler ran, reply sent
	StatusRejected   Status = "rejected"   // input failed validation
	StatusThrottled  Status = "throttled"  // cooldown denied the invocation
	StatusUnknown    Status = "unknown"    // no command under that name
	StatusFailed     Status = "failed"     // handler returned an error
)

// Record represents a single dispatch outcome (immutable value type).
type Record struct {
	ID         string
	Command    string
	Channel    string
	Author     string
	Status     Status
	ErrorCount int   // validation errors reported, 0 unless rejected
	LatencyMs  int64 // handler latency, 0 unless the handler ran
	At         time.Time
}

// HandlerRan reports whether the record's command handler executed.
func (r Record) HandlerRan() bool {
	return r.Status == StatusDispatched || r.Status == StatusFailed
}

// NewRecord creates a dispatch record.
func NewRecord(id, command, channel, author string, status Status, errorCount int, latencyMs int64, at time.Time) Record {
	return Record{
		ID:         id,
		Command:    command,
		Channel:    channel,
		Author:     author,
		Status:     status,
		ErrorCount: errorCount,
		LatencyMs:  latencyMs,
		At:         at,
	}
}

// Summary represents aggregated dispatches for a period (value type).
type Summary struct {
	Command      string
	PeriodStart  time.Time
	PeriodEnd    time.Time
	Total        int64
	Dispatched   int64
	Rejected     int64
	Throttled    int64
	Unknown      int64
	Failed       int64
	ErrorCount   int64 // validation errors across rejected dispatches
	AvgLatencyMs int64 // over records whose handler ran
}
