package reading

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// testDB creates a temporary SQLite database with the grid_readings
// table for reading store tests.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	schema := `
	CREATE TABLE grid_readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		grid_state INTEGER NOT NULL,
		recorded_at TEXT NOT NULL
	) STRICT;
	CREATE INDEX idx_grid_readings_user_time ON grid_readings(user_id, recorded_at DESC);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating test schema: %v", err)
	}

	return db
}

func TestAppendAndMostRecent(t *testing.T) {
	db := testDB(t)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	id1, err := store.Append(ctx, "usr-1", true, base)
	if err != nil {
		t.Fatalf("first Append failed: %v", err)
	}
	id2, err := store.Append(ctx, "usr-1", false, base.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("second Append failed: %v", err)
	}
	if id2 <= id1 {
		t.Errorf("expected increasing row IDs, got %d then %d", id1, id2)
	}

	got, err := store.MostRecent(ctx, "usr-1")
	if err != nil {
		t.Fatalf("MostRecent failed: %v", err)
	}
	if got.GridState {
		t.Error("GridState = true, want false")
	}
	if !got.RecordedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("RecordedAt = %v, want %v", got.RecordedAt, base.Add(2*time.Minute))
	}
}

func TestMostRecentNoReadings(t *testing.T) {
	db := testDB(t)
	store := NewSQLiteStore(db)

	_, err := store.MostRecent(context.Background(), "usr-1")
	if !errors.Is(err, ErrNoReadings) {
		t.Errorf("expected ErrNoReadings, got: %v", err)
	}
}

func TestMostRecentTieBreaksOnRowID(t *testing.T) {
	db := testDB(t)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if _, err := store.Append(ctx, "usr-1", true, at); err != nil {
		t.Fatalf("first Append failed: %v", err)
	}
	if _, err := store.Append(ctx, "usr-1", false, at); err != nil {
		t.Fatalf("second Append failed: %v", err)
	}

	got, err := store.MostRecent(ctx, "usr-1")
	if err != nil {
		t.Fatalf("MostRecent failed: %v", err)
	}
	if got.GridState {
		t.Error("equal timestamps should resolve to the later insert")
	}
}

func TestMostRecentScopedPerUser(t *testing.T) {
	db := testDB(t)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if _, err := store.Append(ctx, "usr-1", true, base); err != nil {
		t.Fatalf("Append usr-1 failed: %v", err)
	}
	if _, err := store.Append(ctx, "usr-2", false, base.Add(time.Hour)); err != nil {
		t.Fatalf("Append usr-2 failed: %v", err)
	}

	got, err := store.MostRecent(ctx, "usr-1")
	if err != nil {
		t.Fatalf("MostRecent failed: %v", err)
	}
	if !got.GridState {
		t.Error("usr-1 reading leaked from usr-2")
	}
}

func TestHistoryOrderAndLimit(t *testing.T) {
	db := testDB(t)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		state := i%2 == 0
		if _, err := store.Append(ctx, "usr-1", state, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}

	readings, err := store.History(ctx, "usr-1", 3)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(readings) != 3 {
		t.Fatalf("got %d readings, want 3", len(readings))
	}
	for i := 1; i < len(readings); i++ {
		if readings[i].RecordedAt.After(readings[i-1].RecordedAt) {
			t.Errorf("history not ordered newest first at index %d", i)
		}
	}
	if !readings[0].RecordedAt.Equal(base.Add(4 * time.Minute)) {
		t.Errorf("newest reading RecordedAt = %v, want %v", readings[0].RecordedAt, base.Add(4*time.Minute))
	}
}

func TestHistoryDefaultLimit(t *testing.T) {
	db := testDB(t)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	if _, err := store.Append(ctx, "usr-1", true, time.Now().UTC()); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	readings, err := store.History(ctx, "usr-1", 0)
	if err != nil {
		t.Fatalf("History with zero limit failed: %v", err)
	}
	if len(readings) != 1 {
		t.Errorf("got %d readings, want 1", len(readings))
	}
}

func TestAppendValidation(t *testing.T) {
	db := testDB(t)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	if _, err := store.Append(ctx, "", true, time.Now()); err == nil {
		t.Error("expected error for empty user id")
	}
	if _, err := store.Append(ctx, "usr-1", true, time.Time{}); err == nil {
		t.Error("expected error for zero timestamp")
	}
}
