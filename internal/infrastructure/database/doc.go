// Package database provides the SQLite store for chart dataset definitions.
//
// The database is small and read-mostly: it holds which lines a building's
// chart shows and how they are labelled. WAL mode and a busy timeout keep
// API reads from blocking on the occasional write.
//
// Usage:
//
//	db, err := database.Open(ctx, cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migrations are embedded by the migrations package and applied in version
// order. Every .up.sql has a matching .down.sql.
package database
