package reading

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// Reading is one grid state transition for a user.
type Reading struct {
	// ID is the auto-assigned row identifier.
	ID int64 `json:"id"`

	// UserID identifies the user the reading belongs to.
	UserID string `json:"user_id"`

	// GridState is the inferred grid power state at RecordedAt.
	GridState bool `json:"grid_state"`

	// RecordedAt is when the state was inferred (UTC).
	RecordedAt time.Time `json:"recorded_at"`
}

// ErrNoReadings is returned when a user has no readings yet.
var ErrNoReadings = errors.New("reading: no readings recorded")

// Store defines persistence operations for grid state readings.
type Store interface {
	// Append records a new grid state transition and returns its row ID.
	Append(ctx context.Context, userID string, gridState bool, at time.Time) (int64, error)

	// MostRecent returns the newest reading for a user, or ErrNoReadings
	// if none exist.
	MostRecent(ctx context.Context, userID string) (*Reading, error)

	// History returns recent readings for a user, newest first.
	History(ctx context.Context, userID string, limit int) ([]Reading, error)
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite reading store.
//
// Parameters:
//   - db: Open SQLite connection used for queries
//
// Returns:
//   - *SQLiteStore: Store instance ready for use
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Append inserts a new reading for a user.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - userID: User the reading belongs to
//   - gridState: Inferred grid power state
//   - at: Instant the state was inferred
//
// Returns:
//   - int64: Row ID of the inserted reading
//   - error: nil on success, otherwise the underlying database error
func (s *SQLiteStore) Append(ctx context.Context, userID string, gridState bool, at time.Time) (int64, error) {
	if userID == "" {
		return 0, fmt.Errorf("user id is required")
	}
	if at.IsZero() {
		return 0, fmt.Errorf("timestamp is required")
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO grid_readings (user_id, grid_state, recorded_at) VALUES (?, ?, ?)",
		userID,
		boolToInt(gridState),
		at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting reading: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading insert id: %w", err)
	}

	return id, nil
}

// MostRecent returns the newest reading for a user.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - userID: User to look up
//
// Returns:
//   - *Reading: The newest reading, timestamp in UTC
//   - error: ErrNoReadings if the user has none, otherwise the
//     underlying database error
func (s *SQLiteStore) MostRecent(ctx context.Context, userID string) (*Reading, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, grid_state, recorded_at
		 FROM grid_readings
		 WHERE user_id = ?
		 ORDER BY recorded_at DESC, id DESC
		 LIMIT 1`,
		userID,
	)

	r, err := scanReading(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoReadings
		}
		return nil, fmt.Errorf("querying most recent reading: %w", err)
	}

	return r, nil
}

// History returns recent readings for a user, ordered newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - userID: User to look up
//   - limit: Maximum entries to return (default 50, max 500)
//
// Returns:
//   - []Reading: Readings ordered by recorded_at DESC
//   - error: nil on success, otherwise the underlying query error
func (s *SQLiteStore) History(ctx context.Context, userID string, limit int) ([]Reading, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, grid_state, recorded_at
		 FROM grid_readings
		 WHERE user_id = ?
		 ORDER BY recorded_at DESC, id DESC
		 LIMIT ?`,
		userID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	defer rows.Close()

	readings := make([]Reading, 0, limit)
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning reading: %w", err)
		}
		readings = append(readings, *r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating readings: %w", err)
	}

	return readings, nil
}

// scanner abstracts sql.Row and sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

// scanReading scans a single reading row.
func scanReading(row scanner) (*Reading, error) {
	var r Reading
	var gridState int
	var recordedAt string

	if err := row.Scan(&r.ID, &r.UserID, &gridState, &recordedAt); err != nil {
		return nil, err
	}

	timestamp, err := parseReadingTimestamp(recordedAt)
	if err != nil {
		return nil, err
	}
	r.RecordedAt = timestamp
	r.GridState = gridState != 0

	return &r, nil
}

// parseReadingTimestamp parses a timestamp stored in SQLite.
func parseReadingTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("recorded_at is empty")
	}

	timestamp, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return timestamp, nil
	}

	fallback, fallbackErr := time.Parse("2006-01-02 15:04:05", value)
	if fallbackErr == nil {
		return fallback.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("parsing recorded_at: %w", err)
}

// boolToInt converts a bool to the integer form SQLite stores.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
