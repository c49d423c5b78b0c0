package database

import (
	"context"
	"io/fs"
	"testing"
	"testing/fstest"
	"time"
)

var testMigrations = fstest.MapFS{
	"20260301_120000_create_lines.up.sql":   {Data: []byte("CREATE TABLE lines (id INTEGER PRIMARY KEY, code TEXT NOT NULL);")},
	"20260301_120000_create_lines.down.sql": {Data: []byte("DROP TABLE lines;")},
	"20260302_090000_seed_lines.up.sql":     {Data: []byte("INSERT INTO lines (code) VALUES ('temperature');")},
	"20260302_090000_seed_lines.down.sql":   {Data: []byte("DELETE FROM lines;")},
	"README.md":                             {Data: []byte("ignored")},
}

// useMigrations swaps the package-level migration source for one test.
func useMigrations(t *testing.T, fsys fs.FS) {
	t.Helper()
	origFS, origDir := MigrationsFS, MigrationsDir
	t.Cleanup(func() {
		MigrationsFS, MigrationsDir = origFS, origDir
	})
	MigrationsFS, MigrationsDir = fsys, "."
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name,
	).Scan(&count)
	if err != nil {
		t.Fatalf("query error: %v", err)
	}
	return count == 1
}

func TestMigrate(t *testing.T) {
	useMigrations(t, testMigrations)
	db := openTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if !tableExists(t, db, "lines") {
		t.Fatal("table lines not created")
	}

	var rows int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM lines").Scan(&rows); err != nil {
		t.Fatalf("SELECT error = %v", err)
	}
	if rows != 1 {
		t.Errorf("seeded rows = %d, want 1", rows)
	}

	applied, pending, err := db.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 2 || len(pending) != 0 {
		t.Errorf("applied = %d, pending = %d, want 2 and 0", len(applied), len(pending))
	}

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

func TestMigrateDown(t *testing.T) {
	useMigrations(t, testMigrations)
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	// Newest first: the seed, then the table.
	for range 2 {
		if err := db.MigrateDown(ctx); err != nil {
			t.Fatalf("MigrateDown() error = %v", err)
		}
	}
	if tableExists(t, db, "lines") {
		t.Error("table lines should have been dropped")
	}

	applied, _, err := db.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("applied = %d after rollback, want 0", len(applied))
	}

	if err := db.MigrateDown(ctx); err != nil {
		t.Errorf("MigrateDown() with nothing applied error = %v", err)
	}
}

func TestMigrate_NoMigrations(t *testing.T) {
	useMigrations(t, nil)
	db := openTestDB(t)

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() with no migrations error = %v", err)
	}
}

func TestMigrate_MissingUp(t *testing.T) {
	useMigrations(t, fstest.MapFS{
		"20260301_120000_orphan.down.sql": {Data: []byte("SELECT 1;")},
	})
	db := openTestDB(t)

	if err := db.Migrate(context.Background()); err == nil {
		t.Error("Migrate() = nil, want error for down-only migration")
	}
}

func TestMigrate_FailedMigrationRolledBack(t *testing.T) {
	useMigrations(t, fstest.MapFS{
		"20260301_120000_broken.up.sql": {Data: []byte("CREATE TABLE ok_part (id INTEGER); CREATE TABLE;")},
	})
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err == nil {
		t.Fatal("Migrate() = nil, want error")
	}
	applied, pending, err := db.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 0 || len(pending) != 1 {
		t.Errorf("applied = %d, pending = %d, want 0 and 1", len(applied), len(pending))
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		filename    string
		wantVersion string
		wantName    string
		wantIsUp    bool
		wantOk      bool
	}{
		{"20260301_120000_chart_datasets.up.sql", "20260301_120000", "chart_datasets", true, true},
		{"20260301_120000_chart_datasets.down.sql", "20260301_120000", "chart_datasets", false, true},
		{"20260301_120000.up.sql", "20260301_120000", "20260301_120000", true, true},
		{"readme.txt", "", "", false, false},
		{"20260301_120000_chart_datasets.sql", "", "", false, false},
		{"invalid.up.sql", "", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, isUp, ok := parseMigrationFilename(tt.filename)
			if ok != tt.wantOk {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOk)
			}
			if !ok {
				return
			}
			if version != tt.wantVersion || name != tt.wantName || isUp != tt.wantIsUp {
				t.Errorf("got (%q, %q, %v), want (%q, %q, %v)",
					version, name, isUp, tt.wantVersion, tt.wantName, tt.wantIsUp)
			}
		})
	}
}
