package app

import (
	"context"

	"github.com/toth-andor/drone/internal/flight"
	"github.com/toth-andor/drone/internal/storage"
)

// maxBatchSize is the default number of ticks stored within a single
// database transaction.
const maxBatchSize = 100

// recorder buffers ticks and writes them to the store in batches. It also
// keeps the flight summary reported once the run finishes.
type recorder struct {
	store     storage.Store
	sessionID string

	batch []flight.Tick
	max   int

	count       int64
	maxAltitude float64
}

func newRecorder(store storage.Store, sessionID string, batchSize int) *recorder {
	if batchSize <= 0 {
		batchSize = maxBatchSize
	}

	return &recorder{
		store:     store,
		sessionID: sessionID,
		batch:     make([]flight.Tick, 0, batchSize),
		max:       batchSize,
	}
}

func (r *recorder) add(ctx context.Context, tick flight.Tick) error {
	r.batch = append(r.batch, tick)
	r.count++
	if tick.Position.Y > r.maxAltitude {
		r.maxAltitude = tick.Position.Y
	}

	if len(r.batch) >= r.max {
		return r.flush(ctx)
	}
	return nil
}

func (r *recorder) flush(ctx context.Context) error {
	if len(r.batch) == 0 {
		return nil
	}

	if err := r.store.WriteTicks(ctx, r.sessionID, r.batch); err != nil {
		return err
	}

	r.batch = r.batch[:0]
	return nil
}
