package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/burgermaster/blendcalc/internal/domain/blend"
	gormstore "github.com/burgermaster/blendcalc/internal/infrastructure/persistence/gorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestStateStore_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "blendcalc.db")

	db, err := SetupDatabase(path, logger.Silent)
	require.NoError(t, err)
	store := gormstore.NewStateStore(db)

	_, err = store.Get(ctx, "burger-master-units")
	assert.ErrorIs(t, err, blend.ErrStateNotFound)

	require.NoError(t, store.Set(ctx, "burger-master-units", "30"))
	require.NoError(t, store.Set(ctx, "burger-master-units", "45"))
	value, err := store.Get(ctx, "burger-master-units")
	require.NoError(t, err)
	assert.Equal(t, "45", value)

	var count int64
	require.NoError(t, db.Model(&gormstore.StateEntry{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, store.Delete(ctx, "burger-master-units"))
	require.NoError(t, store.Delete(ctx, "burger-master-units"))
	_, err = store.Get(ctx, "burger-master-units")
	assert.ErrorIs(t, err, blend.ErrStateNotFound)
}

func TestStateStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "blendcalc.db")

	db, err := SetupDatabase(path, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, gormstore.NewStateStore(db).Set(ctx, "burger-master-selling-price", "42.5"))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	reopened, err := SetupDatabase(path, logger.Silent)
	require.NoError(t, err)
	value, err := gormstore.NewStateStore(reopened).Get(ctx, "burger-master-selling-price")
	require.NoError(t, err)
	assert.Equal(t, "42.5", value)
}

// failOnKey makes every insert of key fail inside gorm's create chain.
func failOnKey(t *testing.T, db *gorm.DB, key string) {
	t.Helper()
	err := db.Callback().Create().Before("gorm:create").Register("test:fail_on_key", func(tx *gorm.DB) {
		if entry, ok := tx.Statement.Dest.(*gormstore.StateEntry); ok && entry.Key == key {
			_ = tx.AddError(errors.New("disk full"))
		}
	})
	require.NoError(t, err)
}

func TestStateStore_SetManyRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	db, err := SetupDatabase(filepath.Join(t.TempDir(), "blendcalc.db"), logger.Silent)
	require.NoError(t, err)
	store := gormstore.NewStateStore(db)
	require.NoError(t, store.SetMany(ctx, map[string]string{
		"burger-master-prices": `{"Gordura Animal":15}`,
		"burger-master-units":  "30",
	}))

	// Keys are written in sorted order, so units is the last one.
	failOnKey(t, db, "burger-master-units")
	err = store.SetMany(ctx, map[string]string{
		"burger-master-prices": `{"Gordura Animal":20}`,
		"burger-master-recipe": `{}`,
		"burger-master-units":  "45",
	})

	require.Error(t, err)
	value, err := store.Get(ctx, "burger-master-prices")
	require.NoError(t, err)
	assert.Equal(t, `{"Gordura Animal":15}`, value)
	_, err = store.Get(ctx, "burger-master-recipe")
	assert.ErrorIs(t, err, blend.ErrStateNotFound)
	value, err = store.Get(ctx, "burger-master-units")
	require.NoError(t, err)
	assert.Equal(t, "30", value)
}

func TestStateStore_DeleteMany(t *testing.T) {
	ctx := context.Background()
	db, err := SetupDatabase(filepath.Join(t.TempDir(), "blendcalc.db"), logger.Silent)
	require.NoError(t, err)
	store := gormstore.NewStateStore(db)
	require.NoError(t, store.SetMany(ctx, map[string]string{"a": "1", "b": "2", "c": "3"}))

	require.NoError(t, store.DeleteMany(ctx, []string{"a", "b", "missing"}))
	require.NoError(t, store.DeleteMany(ctx, nil))

	var count int64
	require.NoError(t, db.Model(&gormstore.StateEntry{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	value, err := store.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "3", value)
}
