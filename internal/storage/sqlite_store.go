package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/toth-andor/drone/internal/flight"
)

// ErrNotFound is returned when a requested session does not exist.
var ErrNotFound = errors.New("storage: not found")

// errClosed is returned by operations invoked after Close.
var errClosed = errors.New("storage: store is closed")

// SqliteStore records flights into a single SQLite database file. It keeps
// separate lazily opened connections for writing and reading, so a plotting
// tool can read a database a recorder is still appending to.
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

var _ Store = (*SqliteStore)(nil)

// NewSqliteStore creates a store backed by the SQLite database at dbPath.
// The file and schema are created on first write.
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) CreateSession(ctx context.Context, name string, config any) (sessionID string, err error) {
	var configData string

	if config != nil {
		switch v := config.(type) {
		case string:
			configData = v

		case []byte:
			configData = string(v)

		default:
			var p []byte
			if p, err = json.Marshal(config); err != nil {
				err = fmt.Errorf("marshaling config: %w", err)
				return
			}

			configData = string(p)
		}
	}

	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertSessionSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	sessionID = uuid.NewString()
	if _, err = stmt.ExecContext(ctx, sessionID, name, time.Now().UTC(), configData); err != nil {
		sessionID = ""
		err = fmt.Errorf("inserting session: %w", err)
	}
	return
}

func (s *SqliteStore) Session(ctx context.Context, id string) (session *flight.Session, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectSessionSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	session, err = scanSession(stmt.QueryRowContext(ctx, id))
	if errors.Is(err, sql.ErrNoRows) {
		session, err = nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
		return
	}
	if err != nil {
		session, err = nil, fmt.Errorf("scanning session: %w", err)
	}
	return
}

func (s *SqliteStore) Sessions(ctx context.Context) (sessions []*flight.Session, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectSessionsSQL)
	if err != nil {
		err = fmt.Errorf("querying sessions: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var sess *flight.Session
		if sess, err = scanSession(rows); err != nil {
			err = fmt.Errorf("scanning session: %w", err)
			return
		}
		sessions = append(sessions, sess)
	}

	err = rows.Err()
	return
}

func (s *SqliteStore) LatestSession(ctx context.Context) (session *flight.Session, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	session, err = scanSession(db.QueryRowContext(ctx, selectLatestSessionSQL))
	if errors.Is(err, sql.ErrNoRows) {
		session, err = nil, fmt.Errorf("no sessions recorded: %w", ErrNotFound)
		return
	}
	if err != nil {
		session, err = nil, fmt.Errorf("scanning session: %w", err)
	}
	return
}

func (s *SqliteStore) WriteTicks(ctx context.Context, sessionID string, ticks []flight.Tick) (err error) {
	if len(ticks) == 0 {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	values := make([]any, 0, len(ticks)*tickColumns)

	valuesPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", tickColumns), ", ") + ")"

	var sb strings.Builder

	sb.WriteString(insertTicksSQL)

	for i, tick := range ticks {
		values = tickValues(values, sessionID, tick)

		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(valuesPlaceholder)
	}

	if _, err = tx.ExecContext(ctx, sb.String(), values...); err != nil {
		return fmt.Errorf("batch inserting ticks: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// Ticks creates a TickReader iterating over a session's tick records in
// sequence order. The returned reader must be closed after use to release
// database resources; it should only be used from a single goroutine.
func (s *SqliteStore) Ticks(ctx context.Context, sessionID string, opts ...func(r *TickReader)) (*TickReader, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}
	return newTickReader(ctx, db, sessionID, opts...)
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		// Keep connections from opening after close.
		s.writeDBOnce.Do(func() { s.writeDBErr = errClosed })
		s.readDBOnce.Do(func() { s.readDBErr = errClosed })

		var writeErr, readErr error

		if s.writeDB != nil {
			_ = runSQLCommand(s.writeDB, initIndexesSQL)

			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		s.writeDBErr = errClosed
		s.readDBErr = errClosed

		switch {
		case writeErr != nil && readErr != nil:
			s.closeErr = errors.Join(writeErr, readErr)
		case writeErr != nil:
			s.closeErr = writeErr
		case readErr != nil:
			s.closeErr = readErr
		}
	})

	return s.closeErr
}
