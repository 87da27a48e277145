package database

import (
	"context"
	"testing"
)

const (
	versionPreJoin  = 5
	versionPostJoin = 6
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{Driver: DialectSQLite, Path: ":memory:"}, nil)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mustExec(t *testing.T, db *DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

// seedPreJoinFixture migrates to the schema that still has cores.system_id
// and inserts one team, two systems, and three cores: one per system and one
// with no system at all.
func seedPreJoinFixture(t *testing.T, db *DB) {
	t.Helper()
	if err := db.MigrateUpTo(versionPreJoin); err != nil {
		t.Fatalf("failed to migrate to pre-join schema: %v", err)
	}

	mustExec(t, db, `INSERT INTO teams (id, slug, name) VALUES (1, 'mister-devel', 'MiSTer Devel')`)
	mustExec(t, db, `INSERT INTO systems (id, slug, name, owner_team_id) VALUES (1, 'nes', 'Nintendo Entertainment System', 1)`)
	mustExec(t, db, `INSERT INTO systems (id, slug, name, owner_team_id) VALUES (2, 'snes', 'Super Nintendo', 1)`)
	mustExec(t, db, `INSERT INTO cores (id, slug, name, system_id, owner_team_id) VALUES (1, 'nes-core', 'NES Core', 1, 1)`)
	mustExec(t, db, `INSERT INTO cores (id, slug, name, system_id, owner_team_id) VALUES (2, 'snes-core', 'SNES Core', 2, 1)`)
	mustExec(t, db, `INSERT INTO cores (id, slug, name, system_id, owner_team_id) VALUES (3, 'orphan-core', 'Orphan Core', NULL, 1)`)
}

func joinPairs(t *testing.T, db *DB) map[[2]int32]bool {
	t.Helper()
	rows, err := db.Query(`SELECT core_id, system_id FROM core_systems ORDER BY core_id, system_id`)
	if err != nil {
		t.Fatalf("failed to query core_systems: %v", err)
	}
	defer rows.Close()

	pairs := make(map[[2]int32]bool)
	for rows.Next() {
		var coreID, systemID int32
		if err := rows.Scan(&coreID, &systemID); err != nil {
			t.Fatalf("failed to scan pair: %v", err)
		}
		pairs[[2]int32{coreID, systemID}] = true
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("row iteration failed: %v", err)
	}
	return pairs
}

func schemaVersion(t *testing.T, db *DB) int64 {
	t.Helper()
	v, err := db.MigrationVersion()
	if err != nil {
		t.Fatalf("failed to read schema version: %v", err)
	}
	return v
}

func TestMigrateUp_FullSchema(t *testing.T) {
	db := openTestDB(t)

	if err := db.MigrateUp(); err != nil {
		t.Fatalf("failed to migrate up: %v", err)
	}

	if v := schemaVersion(t, db); v != versionPostJoin {
		t.Errorf("schema version = %d, want %d", v, versionPostJoin)
	}

	for _, table := range []string{"teams", "platforms", "systems", "cores", "core_releases", "core_systems"} {
		rows, err := db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		if err != nil {
			t.Errorf("table %s does not exist: %v", table, err)
			continue
		}
		rows.Close()
	}

	// The one-to-many column is gone.
	if _, err := db.Query(`SELECT system_id FROM cores LIMIT 1`); err == nil {
		t.Error("cores.system_id should not exist after the join-table migration")
	}
}

func TestJoinTableMigration_Backfill(t *testing.T) {
	db := openTestDB(t)
	seedPreJoinFixture(t, db)

	if err := db.MigrateUpTo(versionPostJoin); err != nil {
		t.Fatalf("failed to apply join-table migration: %v", err)
	}

	pairs := joinPairs(t, db)

	// Every core with an assigned system produced exactly its pair; the
	// unassigned core produced nothing.
	want := map[[2]int32]bool{
		{1, 1}: true,
		{2, 2}: true,
	}
	if len(pairs) != len(want) {
		t.Fatalf("core_systems has %d pairs, want %d: %v", len(pairs), len(want), pairs)
	}
	for pair := range want {
		if !pairs[pair] {
			t.Errorf("missing pair %v", pair)
		}
	}

	// Non-association data on cores survived the table rebuild.
	var slug string
	if err := db.QueryRow(`SELECT slug FROM cores WHERE id = 3`).Scan(&slug); err != nil {
		t.Fatalf("failed to read core 3: %v", err)
	}
	if slug != "orphan-core" {
		t.Errorf("core 3 slug = %q, want %q", slug, "orphan-core")
	}
}

func TestJoinTableMigration_RoundTrip(t *testing.T) {
	db := openTestDB(t)

	// Only cores with exactly one system: the lossless rollback case.
	if err := db.MigrateUpTo(versionPreJoin); err != nil {
		t.Fatalf("failed to migrate to pre-join schema: %v", err)
	}
	mustExec(t, db, `INSERT INTO teams (id, slug, name) VALUES (1, 'mister-devel', 'MiSTer Devel')`)
	mustExec(t, db, `INSERT INTO systems (id, slug, name, owner_team_id) VALUES (1, 'nes', 'NES', 1)`)
	mustExec(t, db, `INSERT INTO systems (id, slug, name, owner_team_id) VALUES (2, 'snes', 'SNES', 1)`)
	mustExec(t, db, `INSERT INTO cores (id, slug, name, system_id, owner_team_id) VALUES (1, 'nes-core', 'NES Core', 1, 1)`)
	mustExec(t, db, `INSERT INTO cores (id, slug, name, system_id, owner_team_id) VALUES (2, 'snes-core', 'SNES Core', 2, 1)`)

	if err := db.MigrateUpTo(versionPostJoin); err != nil {
		t.Fatalf("failed to apply join-table migration: %v", err)
	}
	if err := db.MigrateDown(); err != nil {
		t.Fatalf("failed to roll back join-table migration: %v", err)
	}

	if v := schemaVersion(t, db); v != versionPreJoin {
		t.Errorf("schema version after rollback = %d, want %d", v, versionPreJoin)
	}

	rows, err := db.Query(`SELECT id, system_id FROM cores ORDER BY id`)
	if err != nil {
		t.Fatalf("cores.system_id should exist after rollback: %v", err)
	}
	defer rows.Close()

	got := map[int32]int32{}
	for rows.Next() {
		var id, systemID int32
		if err := rows.Scan(&id, &systemID); err != nil {
			t.Fatalf("failed to scan core: %v", err)
		}
		got[id] = systemID
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("row iteration failed: %v", err)
	}

	want := map[int32]int32{1: 1, 2: 2}
	if len(got) != len(want) {
		t.Fatalf("cores after rollback = %v, want %v", got, want)
	}
	for id, systemID := range want {
		if got[id] != systemID {
			t.Errorf("core %d system_id = %d, want %d", id, got[id], systemID)
		}
	}

	// The join table is gone.
	if _, err := db.Query(`SELECT 1 FROM core_systems LIMIT 1`); err == nil {
		t.Error("core_systems should not exist after rollback")
	}
}

func TestJoinTableMigration_DownFailsOnUnassociatedCore(t *testing.T) {
	db := openTestDB(t)
	seedPreJoinFixture(t, db)

	// Core 3 has no system, so it gets no join rows and the rollback's
	// NOT NULL tightening must fail.
	if err := db.MigrateUpTo(versionPostJoin); err != nil {
		t.Fatalf("failed to apply join-table migration: %v", err)
	}
	if err := db.MigrateDown(); err == nil {
		t.Fatal("rollback should fail when a core has no associated system")
	}

	// The failed rollback left the post-migration schema untouched.
	if v := schemaVersion(t, db); v != versionPostJoin {
		t.Errorf("schema version after failed rollback = %d, want %d", v, versionPostJoin)
	}
	if pairs := joinPairs(t, db); len(pairs) != 2 {
		t.Errorf("core_systems should be intact after failed rollback, got %v", pairs)
	}
	if _, err := db.Query(`SELECT system_id FROM cores LIMIT 1`); err == nil {
		t.Error("cores.system_id should not reappear after a failed rollback")
	}
}

func TestJoinTableMigration_DownPicksSmallestSystem(t *testing.T) {
	db := openTestDB(t)

	if err := db.MigrateUpTo(versionPreJoin); err != nil {
		t.Fatalf("failed to migrate to pre-join schema: %v", err)
	}
	mustExec(t, db, `INSERT INTO teams (id, slug, name) VALUES (1, 'mister-devel', 'MiSTer Devel')`)
	mustExec(t, db, `INSERT INTO systems (id, slug, name, owner_team_id) VALUES (1, 'gb', 'Game Boy', 1)`)
	mustExec(t, db, `INSERT INTO systems (id, slug, name, owner_team_id) VALUES (2, 'gbc', 'Game Boy Color', 1)`)
	mustExec(t, db, `INSERT INTO cores (id, slug, name, system_id, owner_team_id) VALUES (1, 'gameboy', 'Gameboy', 2, 1)`)

	if err := db.MigrateUpTo(versionPostJoin); err != nil {
		t.Fatalf("failed to apply join-table migration: %v", err)
	}

	// Fan the core out to a second system, then roll back.
	mustExec(t, db, `INSERT INTO core_systems (core_id, system_id) VALUES (1, 1)`)
	if err := db.MigrateDown(); err != nil {
		t.Fatalf("rollback with fan-out should succeed: %v", err)
	}

	var systemID int32
	if err := db.QueryRow(`SELECT system_id FROM cores WHERE id = 1`).Scan(&systemID); err != nil {
		t.Fatalf("failed to read restored system_id: %v", err)
	}
	if systemID != 1 {
		t.Errorf("restored system_id = %d, want smallest associated system 1", systemID)
	}
}

func TestJoinTableMigration_UpDownUpChaining(t *testing.T) {
	db := openTestDB(t)

	if err := db.MigrateUpTo(versionPreJoin); err != nil {
		t.Fatalf("failed to migrate to pre-join schema: %v", err)
	}
	mustExec(t, db, `INSERT INTO teams (id, slug, name) VALUES (1, 'mister-devel', 'MiSTer Devel')`)
	mustExec(t, db, `INSERT INTO systems (id, slug, name, owner_team_id) VALUES (1, 'nes', 'NES', 1)`)
	mustExec(t, db, `INSERT INTO cores (id, slug, name, system_id, owner_team_id) VALUES (1, 'nes-core', 'NES Core', 1, 1)`)

	if err := db.MigrateUpTo(versionPostJoin); err != nil {
		t.Fatalf("first up failed: %v", err)
	}
	first := joinPairs(t, db)

	if err := db.MigrateDown(); err != nil {
		t.Fatalf("down failed: %v", err)
	}
	if err := db.MigrateUpTo(versionPostJoin); err != nil {
		t.Fatalf("second up failed: %v", err)
	}
	second := joinPairs(t, db)

	if len(first) != len(second) {
		t.Fatalf("pair sets differ: first %v, second %v", first, second)
	}
	for pair := range first {
		if !second[pair] {
			t.Errorf("pair %v lost across up/down/up", pair)
		}
	}
}

func TestJoinTableMigration_RestoresForeignKeyEnforcement(t *testing.T) {
	db := openTestDB(t)
	seedPreJoinFixture(t, db)
	mustExec(t, db, `INSERT INTO platforms (id, slug, name, owner_team_id) VALUES (1, 'mister', 'MiSTer', 1)`)
	mustExec(t, db, `INSERT INTO core_releases (core_id, platform_id, version, date_released)
		VALUES (1, 1, '1.0.0', '2026-01-01 00:00:00')`)

	if err := db.MigrateUpTo(versionPostJoin); err != nil {
		t.Fatalf("failed to apply join-table migration: %v", err)
	}

	// The rebuild toggles foreign_keys off; it must come back on.
	var enabled int
	if err := db.QueryRow(`PRAGMA foreign_keys`).Scan(&enabled); err != nil {
		t.Fatalf("failed to read foreign_keys pragma: %v", err)
	}
	if enabled != 1 {
		t.Fatalf("foreign_keys = %d after migration, want 1", enabled)
	}

	if _, err := db.Exec(`INSERT INTO core_systems (core_id, system_id) VALUES (1, 999)`); err == nil {
		t.Error("insert referencing a missing system should fail")
	}

	// No reference in core_systems or core_releases broke across the rebuild.
	rows, err := db.Query(`PRAGMA foreign_key_check`)
	if err != nil {
		t.Fatalf("foreign_key_check failed: %v", err)
	}
	defer rows.Close()
	if rows.Next() {
		t.Error("foreign_key_check reported violations after migration")
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("row iteration failed: %v", err)
	}
}

func TestMigrateRedo(t *testing.T) {
	db := openTestDB(t)
	seedPreJoinFixture(t, db)
	mustExec(t, db, `DELETE FROM cores WHERE id = 3`)

	if err := db.MigrateUpTo(versionPostJoin); err != nil {
		t.Fatalf("failed to apply join-table migration: %v", err)
	}
	if err := db.MigrateRedo(); err != nil {
		t.Fatalf("redo failed: %v", err)
	}
	if v := schemaVersion(t, db); v != versionPostJoin {
		t.Errorf("schema version after redo = %d, want %d", v, versionPostJoin)
	}
	if pairs := joinPairs(t, db); len(pairs) != 2 {
		t.Errorf("core_systems should have 2 pairs after redo, got %v", pairs)
	}
}

func TestMigrationStatus(t *testing.T) {
	db := openTestDB(t)

	states, err := db.MigrationStatus()
	if err != nil {
		t.Fatalf("failed to read status: %v", err)
	}
	if len(states) != versionPostJoin {
		t.Fatalf("status lists %d migrations, want %d", len(states), versionPostJoin)
	}
	for _, s := range states {
		if s.Applied {
			t.Errorf("migration %d should be pending on a fresh database", s.Version)
		}
	}

	if err := db.MigrateUpTo(versionPreJoin); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	states, err = db.MigrationStatus()
	if err != nil {
		t.Fatalf("failed to read status: %v", err)
	}
	for _, s := range states {
		wantApplied := s.Version <= versionPreJoin
		if s.Applied != wantApplied {
			t.Errorf("migration %d applied = %v, want %v", s.Version, s.Applied, wantApplied)
		}
	}
}
