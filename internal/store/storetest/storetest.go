// Package storetest opens migrated in-memory SQLite stores for tests.
package storetest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/devicemove-backend/internal/store"
	"github.com/angelmondragon/devicemove-backend/pkg/config"
	"github.com/angelmondragon/devicemove-backend/pkg/db"
	"github.com/angelmondragon/devicemove-backend/pkg/migrate"
)

var seq atomic.Int64

// NewClient returns a db client on a fresh in-memory database with every
// migration applied.
func NewClient(t testing.TB) *db.Client {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := config.DBConfig{
		Driver: config.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_busy_timeout=5000", name, seq.Add(1)),
	}
	ctx := context.Background()
	client, err := db.New(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	sqlDB, err := client.SQL()
	require.NoError(t, err)
	migrate.UseLogger(ctx, nil)
	require.NoError(t, migrate.Up(ctx, sqlDB, client.Driver()))
	return client
}

// New returns a Store backed by NewClient.
func New(t testing.TB) *store.Store {
	t.Helper()
	return store.NewFromClient(NewClient(t))
}
