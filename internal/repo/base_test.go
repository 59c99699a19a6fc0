package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type note struct {
	ID   int
	Body string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, conn.AutoMigrate(&note{}))
	return conn
}

func TestBaseDB_BindsContext(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)
	require.NotNil(t, withCtx.Statement)
	assert.Equal(t, ctx, withCtx.Statement.Context)

	assert.Same(t, db, base.DB(nil))
	assert.False(t, base.InTx())
}

func TestTransactionRollsBackAndReusesOpenTx(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)
	ctx := context.Background()

	err := base.Transaction(ctx, func(tx Base) error {
		assert.True(t, tx.InTx())
		if err := tx.DB(ctx).Create(&note{Body: "first"}).Error; err != nil {
			return err
		}
		return tx.Transaction(ctx, func(inner Base) error {
			assert.Same(t, tx.db, inner.db)
			return errors.New("abort")
		})
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&note{}).Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, base.Transaction(ctx, func(tx Base) error {
		return tx.DB(ctx).Create(&note{Body: "kept"}).Error
	}))
	require.NoError(t, db.Model(&note{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
