// Package database provides SQLite persistence for GridWatch Core.
//
// It wraps database/sql with connection configuration (WAL mode, busy
// timeout, single-writer pool), health checks, and an embedded-migration
// runner. Device records, grid readings, and user accounts all live in
// one SQLite file; the schema is applied from SQL files compiled into
// the binary via the migrations package.
//
// # Usage
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
