// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"time"

	"github.com/artpar/cmdgate/domain/cooldown"
	"github.com/artpar/cmdgate/domain/usage"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// Hasher provides credential hashing.
type Hasher interface {
	// Hash generates a hash from a plaintext value.
	Hash(plaintext string) ([]byte, error)

	// Compare checks if plaintext matches hash.
	Compare(hash []byte, plaintext string) bool
}

// Random provides random integers for command handlers.
type Random interface {
	// IntN returns a uniform random int in [0, max). max must be > 0.
	IntN(max int) (int, error)
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// CooldownStore persists per-command, per-author cooldown windows.
type CooldownStore interface {
	// Get retrieves the current window state. A zero State is returned
	// when the pair has never been seen.
	Get(ctx context.Context, command, author string) (cooldown.State, error)

	// Set updates the window state for a pair.
	Set(ctx context.Context, command, author string, state cooldown.State) error
}

// UsageStore persists dispatch records and serves summaries.
type UsageStore interface {
	// RecordBatch stores multiple dispatch records.
	RecordBatch(ctx context.Context, records []usage.Record) error

	// Summary returns aggregated dispatches for one command over a
	// period. An empty command aggregates across all commands.
	Summary(ctx context.Context, command string, start, end time.Time) (usage.Summary, error)

	// Recent returns the most recent dispatch records, newest first.
	Recent(ctx context.Context, limit int) ([]usage.Record, error)
}

// -----------------------------------------------------------------------------
// Event Ports
// -----------------------------------------------------------------------------

// UsageRecorder accepts dispatch records for async processing.
type UsageRecorder interface {
	// Record queues a dispatch record for processing.
	// This should be non-blocking.
	Record(rec usage.Record)

	// Flush forces immediate processing of queued records.
	Flush(ctx context.Context) error

	// Close stops the recorder and flushes remaining records.
	Close() error
}
