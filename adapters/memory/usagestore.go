package memory

import (
	"context"
	"sync"
	"time"

	"github.com/artpar/cmdgate/domain/usage"
	"github.com/artpar/cmdgate/ports"
)

// UsageStore is an in-memory implementation of ports.UsageStore.
type UsageStore struct {
	mu      sync.RWMutex
	records []usage.Record
}

// NewUsageStore creates a new in-memory usage store.
func NewUsageStore() *UsageStore {
	return &UsageStore{
		records: make([]usage.Record, 0),
	}
}

// RecordBatch stores multiple dispatch records.
func (s *UsageStore) RecordBatch(ctx context.Context, records []usage.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, records...)
	return nil
}

// Summary returns aggregated dispatches for a command over a period.
func (s *UsageStore) Summary(ctx context.Context, command string, start, end time.Time) (usage.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matching []usage.Record
	for _, r := range s.records {
		if command != "" && r.Command != command {
			continue
		}
		if !r.At.Before(start) && !r.At.After(end) {
			matching = append(matching, r)
		}
	}

	summary := usage.Aggregate(matching, start, end)
	summary.Command = command
	return summary, nil
}

// Recent returns the most recent dispatch records, newest first.
func (s *UsageStore) Recent(ctx context.Context, limit int) ([]usage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var recent []usage.Record
	for i := len(s.records) - 1; i >= 0 && len(recent) < limit; i-- {
		recent = append(recent, s.records[i])
	}
	return recent, nil
}

// All returns every stored record (for testing).
func (s *UsageStore) All() []usage.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]usage.Record{}, s.records...)
}

// Clear removes all records (for testing).
func (s *UsageStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make([]usage.Record, 0)
}

// Ensure interface compliance.
var _ ports.UsageStore = (*UsageStore)(nil)
