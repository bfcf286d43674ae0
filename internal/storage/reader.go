package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/toth-andor/drone/internal/flight"
)

// WithStartTime restricts a TickReader to ticks at or after the given
// simulation time in seconds.
func WithStartTime(t float64) func(r *TickReader) {
	return func(r *TickReader) {
		r.minTime = &t
	}
}

// WithEndTime restricts a TickReader to ticks at or before the given
// simulation time in seconds.
func WithEndTime(t float64) func(r *TickReader) {
	return func(r *TickReader) {
		r.maxTime = &t
	}
}

// WithTimeRange restricts a TickReader to ticks within [start, end]
// simulation seconds.
func WithTimeRange(start, end float64) func(r *TickReader) {
	return func(r *TickReader) {
		r.minTime = &start
		r.maxTime = &end
	}
}

// TickReader provides buffered iteration over one session's tick records in
// sequence order:
//
//	for reader.Next() {
//	    tick := reader.Current()
//	    ...
//	}
//	if err := reader.Error(); err != nil { ... }
//
// A TickReader must be closed after use and is not safe for concurrent use.
type TickReader struct {
	rows    *sql.Rows
	current flight.Tick
	err     error

	minTime *float64
	maxTime *float64
}

func newTickReader(ctx context.Context, db *sql.DB, sessionID string, opts ...func(r *TickReader)) (*TickReader, error) {
	r := &TickReader{}
	for _, opt := range opts {
		opt(r)
	}

	start, end := -math.MaxFloat64, math.MaxFloat64
	if r.minTime != nil {
		start = *r.minTime
	}
	if r.maxTime != nil {
		end = *r.maxTime
	}

	stmt, err := db.PrepareContext(ctx, selectTicksSQL)
	if err != nil {
		return nil, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, sessionID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying ticks: %w", err)
	}

	r.rows = rows
	return r, nil
}

// Next advances to the next tick. It returns false when the session runs
// out of ticks or an error occurs.
func (r *TickReader) Next() bool {
	if r.err != nil || !r.rows.Next() {
		return false
	}

	r.current, r.err = scanTick(r.rows)
	return r.err == nil
}

// Current returns the tick Next advanced to.
func (r *TickReader) Current() flight.Tick {
	return r.current
}

// Error returns any error that occurred during iteration.
func (r *TickReader) Error() error {
	if r.err != nil {
		return r.err
	}
	return r.rows.Err()
}

// Close releases the database resources.
func (r *TickReader) Close() error {
	return r.rows.Close()
}
