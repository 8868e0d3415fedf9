package device

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// testDB creates a temporary SQLite database with the users and
// ext_devices tables for device store tests.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	schema := `
	CREATE TABLE users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'reporter',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		updated_at TEXT NOT NULL DEFAULT (datetime('now'))
	) STRICT;

	CREATE TABLE ext_devices (
		mac_address TEXT PRIMARY KEY,
		fw_version TEXT NOT NULL DEFAULT '',
		fs_version TEXT NOT NULL DEFAULT '',
		uptime INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL,
		user_id TEXT REFERENCES users(id)
	) STRICT;
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating test schema: %v", err)
	}

	return db
}

// insertTestUser adds a user row and returns its ID.
func insertTestUser(t *testing.T, db *sql.DB, id, username string) string {
	t.Helper()

	_, err := db.Exec(
		"INSERT INTO users (id, username, password_hash) VALUES (?, ?, ?)",
		id, username, "x",
	)
	if err != nil {
		t.Fatalf("inserting test user: %v", err)
	}
	return id
}

func TestUpsertCreatesDevice(t *testing.T) {
	db := testDB(t)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	userID := insertTestUser(t, db, "usr-1", "alice")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	err := store.Upsert(ctx, &Device{
		MACAddress: "AA:BB:CC:DD:EE:FF",
		FWVersion:  "1.2.0",
		FSVersion:  "0.9.1",
		Uptime:     3600,
		UpdatedAt:  now,
		UserID:     userID,
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.GetByMAC(ctx, "AA:BB:CC:DD:EE:FF")
	if err != nil {
		t.Fatalf("GetByMAC failed: %v", err)
	}
	if got.FWVersion != "1.2.0" {
		t.Errorf("FWVersion = %q, want %q", got.FWVersion, "1.2.0")
	}
	if got.Uptime != 3600 {
		t.Errorf("Uptime = %d, want 3600", got.Uptime)
	}
	if !got.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, now)
	}
	if got.UserID != userID {
		t.Errorf("UserID = %q, want %q", got.UserID, userID)
	}
}

func TestUpsertUpdatesExistingDevice(t *testing.T) {
	db := testDB(t)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	userID := insertTestUser(t, db, "usr-1", "alice")
	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	second := first.Add(30 * time.Second)

	if err := store.Upsert(ctx, &Device{
		MACAddress: "AA:BB:CC:DD:EE:FF",
		FWVersion:  "1.2.0",
		Uptime:     100,
		UpdatedAt:  first,
		UserID:     userID,
	}); err != nil {
		t.Fatalf("first Upsert failed: %v", err)
	}

	if err := store.Upsert(ctx, &Device{
		MACAddress: "AA:BB:CC:DD:EE:FF",
		FWVersion:  "1.3.0",
		Uptime:     130,
		UpdatedAt:  second,
	}); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	got, err := store.GetByMAC(ctx, "AA:BB:CC:DD:EE:FF")
	if err != nil {
		t.Fatalf("GetByMAC failed: %v", err)
	}
	if got.FWVersion != "1.3.0" {
		t.Errorf("FWVersion = %q, want %q", got.FWVersion, "1.3.0")
	}
	if got.Uptime != 130 {
		t.Errorf("Uptime = %d, want 130", got.Uptime)
	}
	if !got.UpdatedAt.Equal(second) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, second)
	}
	// An update without an owner must not orphan a claimed device.
	if got.UserID != userID {
		t.Errorf("UserID = %q, want %q (owner preserved)", got.UserID, userID)
	}
}

func TestGetByMACNotFound(t *testing.T) {
	db := testDB(t)
	store := NewSQLiteStore(db)

	_, err := store.GetByMAC(context.Background(), "00:00:00:00:00:00")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("expected ErrDeviceNotFound, got: %v", err)
	}
}

func TestGetByMACEmptyAddress(t *testing.T) {
	db := testDB(t)
	store := NewSQLiteStore(db)

	_, err := store.GetByMAC(context.Background(), "")
	if err == nil {
		t.Error("expected error for empty mac address")
	}
}

func TestListAllResolvesOwners(t *testing.T) {
	db := testDB(t)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	userID := insertTestUser(t, db, "usr-1", "alice")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := store.Upsert(ctx, &Device{
		MACAddress: "AA:AA:AA:AA:AA:AA",
		UpdatedAt:  now,
		UserID:     userID,
	}); err != nil {
		t.Fatalf("Upsert owned failed: %v", err)
	}
	if err := store.Upsert(ctx, &Device{
		MACAddress: "BB:BB:BB:BB:BB:BB",
		UpdatedAt:  now,
	}); err != nil {
		t.Fatalf("Upsert unowned failed: %v", err)
	}

	devices, err := store.ListAll(ctx, true)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("got %d devices, want 2", len(devices))
	}

	if devices[0].OwnerUsername != "alice" {
		t.Errorf("owned device OwnerUsername = %q, want %q", devices[0].OwnerUsername, "alice")
	}
	if devices[1].OwnerUsername != "" {
		t.Errorf("unowned device OwnerUsername = %q, want empty", devices[1].OwnerUsername)
	}
	if devices[1].HasOwner() {
		t.Error("unowned device HasOwner() = true, want false")
	}
}

func TestListAllWithoutOwnerResolution(t *testing.T) {
	db := testDB(t)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	userID := insertTestUser(t, db, "usr-1", "alice")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := store.Upsert(ctx, &Device{
		MACAddress: "AA:AA:AA:AA:AA:AA",
		UpdatedAt:  now,
		UserID:     userID,
	}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	devices, err := store.ListAll(ctx, false)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("got %d devices, want 1", len(devices))
	}
	if devices[0].OwnerUsername != "" {
		t.Errorf("OwnerUsername = %q, want empty without resolution", devices[0].OwnerUsername)
	}
	if devices[0].UserID != userID {
		t.Errorf("UserID = %q, want %q", devices[0].UserID, userID)
	}
}
