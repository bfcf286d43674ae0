package storage

import (
	"context"

	_ "github.com/mattn/go-sqlite3"

	"github.com/toth-andor/drone/internal/flight"
)

// Store provides an interface for recording and retrieving flight data.
// It handles sessions and the per-cycle tick records produced by the
// simulator. All operations that write to the database should be considered
// atomic.
type Store interface {
	// CreateSession registers a new flight and returns its unique
	// identifier.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - name: Operator-assigned label, may be empty
	//   - config: Optional flight configuration. Can be string, []byte,
	//     or a JSON-serializable object
	//
	// Returns:
	//   - sessionID: Unique identifier for the created session
	//   - error: If session creation fails or context is cancelled
	CreateSession(ctx context.Context, name string, config any) (sessionID string, err error)

	// Session retrieves a specific flight session by its ID. It returns
	// ErrNotFound if no such session exists.
	Session(ctx context.Context, id string) (*flight.Session, error)

	// Sessions returns all flight sessions stored in the database,
	// ordered by start time in ascending order.
	Sessions(ctx context.Context) ([]*flight.Session, error)

	// LatestSession returns the most recently started flight session. It
	// returns ErrNotFound if the database holds no sessions.
	LatestSession(ctx context.Context) (*flight.Session, error)

	// WriteTicks saves a batch of tick records for a session in a single
	// atomic transaction.
	WriteTicks(ctx context.Context, sessionID string, ticks []flight.Tick) error

	// Close releases all database connections and resources. After Close
	// is called, the store instance cannot be reused. It is safe to call
	// Close multiple times.
	Close() error
}
