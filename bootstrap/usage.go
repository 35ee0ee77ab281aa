package bootstrap

import (
	"context"
	"sync"
	"time"

	"github.com/artpar/cmdgate/domain/usage"
	"github.com/artpar/cmdgate/ports"
	"github.com/rs/zerolog"
)

// LocalUsageRecorder buffers dispatch records and writes them to the
// store in batches.
type LocalUsageRecorder struct {
	store         ports.UsageStore
	logger        zerolog.Logger
	buffer        []usage.Record
	mu            sync.Mutex
	batchSize     int
	flushInterval time.Duration
	stopCh        chan struct{}
	wg            sync.WaitGroup
	writers       sync.WaitGroup
	closeOnce     sync.Once
}

// NewLocalUsageRecorder creates a new local usage recorder.
func NewLocalUsageRecorder(store ports.UsageStore, logger zerolog.Logger, batchSize int, flushInterval time.Duration) *LocalUsageRecorder {
	if batchSize == 0 {
		batchSize = 100
	}
	if flushInterval == 0 {
		flushInterval = 10 * time.Second
	}

	r := &LocalUsageRecorder{
		store:         store,
		logger:        logger,
		buffer:        make([]usage.Record, 0, batchSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		stopCh:        make(chan struct{}),
	}

	r.wg.Add(1)
	go r.flushLoop()

	return r
}

// Record queues a dispatch record for processing.
func (r *LocalUsageRecorder) Record(rec usage.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buffer = append(r.buffer, rec)

	if len(r.buffer) >= r.batchSize {
		r.flushLocked()
	}
}

// Flush forces immediate processing of queued records.
func (r *LocalUsageRecorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushLocked()
	return nil
}

func (r *LocalUsageRecorder) flushLocked() {
	if len(r.buffer) == 0 {
		return
	}

	records := make([]usage.Record, len(r.buffer))
	copy(records, r.buffer)
	r.buffer = r.buffer[:0]

	// Write in background to not block dispatches
	r.writers.Add(1)
	go func() {
		defer r.writers.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := r.store.RecordBatch(ctx, records); err != nil {
			r.logger.Error().
				Err(err).
				Int("records", len(records)).
				Msg("usage batch write failed")
		}
	}()
}

func (r *LocalUsageRecorder) flushLoop() {
	defer r.wg.Done()
	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Flush(context.Background())
		case <-r.stopCh:
			return
		}
	}
}

// Close stops the recorder, waits for in-flight batch writes and
// drains the remaining buffer synchronously. After Close returns every
// queued record has been handed to the store.
func (r *LocalUsageRecorder) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.stopCh)
		r.wg.Wait()

		r.mu.Lock()
		defer r.mu.Unlock()

		// The lock is held, so no new background writers can start.
		r.writers.Wait()

		if len(r.buffer) > 0 {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err = r.store.RecordBatch(ctx, r.buffer)
			r.buffer = nil
		}
	})
	return err
}

// Ensure interface compliance.
var _ ports.UsageRecorder = (*LocalUsageRecorder)(nil)
