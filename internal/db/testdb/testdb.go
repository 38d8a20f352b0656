// Package testdb opens throwaway in-memory databases for tests.
package testdb

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shopkeep/shopkeep/internal/db/models"
)

// Open returns a migrated in-memory SQLite database private to the test.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)

	t.Cleanup(func() { _ = sqlDB.Close() })

	err = db.AutoMigrate(
		&models.User{},
		&models.Store{},
		&models.Permission{},
		&models.Role{},
		&models.RolePermission{},
		&models.RoleAssignment{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// User inserts an active user with the given username and password "secret".
func User(t testing.TB, db *gorm.DB, username string) models.User {
	t.Helper()

	hash, err := models.HashPassword("secret")
	require.NoError(t, err)

	u := models.User{Active: true, Username: username, Email: username + "@example.com", Password: hash}
	require.NoError(t, db.Create(&u).Error, "failed to seed user")

	return u
}
