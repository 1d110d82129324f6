package database

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/hugh/recipe-api/internal/database/migrations"
	"github.com/hugh/recipe-api/internal/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestAutoMigrate_CreatesRecipeSchema(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, AutoMigrate(db))

	for _, table := range []string{"users", "tags", "ingredients", "recipes", "recipe_tags", "recipe_ingredients"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
	assert.True(t, db.Migrator().HasIndex(&models.User{}, "idx_users_email"))
}

func TestMigrate_RunsEmbeddedMigrations(t *testing.T) {
	db := openSQLite(t)

	var gotDir string
	orig := gooseUp
	gooseUp = func(ctx context.Context, sqlDB *sql.DB, dir string) error {
		gotDir = dir
		return nil
	}
	t.Cleanup(func() { gooseUp = orig })

	require.NoError(t, Migrate(context.Background(), db))
	assert.Equal(t, ".", gotDir)
}

func TestMigrate_WrapsFailure(t *testing.T) {
	db := openSQLite(t)

	orig := gooseUp
	gooseUp = func(ctx context.Context, sqlDB *sql.DB, dir string) error {
		return errors.New("boom")
	}
	t.Cleanup(func() { gooseUp = orig })

	err := Migrate(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "applying migrations")
}

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrations.FS, "*.sql")
	require.NoError(t, err)
	assert.Contains(t, files, "00001_init.sql")

	body, err := fs.ReadFile(migrations.FS, "00001_init.sql")
	require.NoError(t, err)
	assert.Contains(t, string(body), "-- +goose Up")
	assert.Contains(t, string(body), "CREATE TABLE recipe_tags")
}
