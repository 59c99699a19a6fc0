package migrate

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite3", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestUpAppliesEmbeddedMigrationsOnSQLite(t *testing.T) {
	UseLogger(context.Background(), nil)
	conn := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, Up(ctx, conn, "sqlite"))

	for _, table := range []string{
		"migrations", "family_members", "app_adoptions", "media_transfers",
		"storage_snapshots", "minor_payment_setups", "daily_progress",
	} {
		var name string
		err := conn.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, "table %s", table)
	}

	version, err := Version(ctx, conn, "sqlite")
	require.NoError(t, err)
	assert.EqualValues(t, 20260301090600, version)

	// idempotent
	require.NoError(t, Up(ctx, conn, "sqlite"))
}

func TestMigrateToVersionRollsBack(t *testing.T) {
	UseLogger(context.Background(), nil)
	conn := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, Up(ctx, conn, "sqlite"))
	require.NoError(t, MigrateToVersion(ctx, conn, "sqlite", "", "20260301090300"))

	var count int
	require.NoError(t, conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'daily_progress'").Scan(&count))
	assert.Zero(t, count)

	_, err := conn.ExecContext(ctx, "SELECT id FROM media_transfers")
	require.NoError(t, err)

	require.Error(t, MigrateToVersion(ctx, conn, "sqlite", "", "latest"))
}

func TestDialect(t *testing.T) {
	assert.Equal(t, "sqlite3", Dialect("SQLite"))
	assert.Equal(t, "postgres", Dialect("postgres"))
	assert.Equal(t, "postgres", Dialect(""))
}

func TestSnapshotMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_storage_snapshots.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	content := string(data)

	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS storage_snapshots",
		"ON storage_snapshots (migration_id, day_number, sequence)",
		"CHECK (day_number BETWEEN 1 AND 7)",
		"DROP TABLE IF EXISTS storage_snapshots",
	} {
		assert.True(t, strings.Contains(content, sub), "missing %q", sub)
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_bad.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, ValidateDir(dir))
}

func TestValidateEmbedded(t *testing.T) {
	require.NoError(t, ValidateEmbedded())
}

func TestValidateDirRejectsPostgresOnlySQL(t *testing.T) {
	dir := t.TempDir()
	body := "-- +goose Up\nCREATE TABLE notes (id BIGSERIAL PRIMARY KEY);\n-- +goose Down\nDROP TABLE notes;\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260401000000_notes.sql"), []byte(body), 0o644))
	err := ValidateDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not portable")
}

func TestCreateAtUsesClock(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2026, 4, 2, 10, 30, 0, 0, time.UTC)
	path, err := createAt(dir, "snapshot notes", at)
	require.NoError(t, err)
	assert.Equal(t, "20260402103000_snapshot_notes.sql", filepath.Base(path))

	next, err := createAt(dir, "rollup index", at)
	require.NoError(t, err)
	assert.Equal(t, "20260402103001_rollup_index.sql", filepath.Base(next))

	_, err = createAt(dir, "  !!  ", at)
	assert.Error(t, err)
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Snapshot Notes")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_add_snapshot_notes.sql"))
	require.NoError(t, ValidateDir(dir))
}
