// Package repotest opens a migrated database for tests.
package repotest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/ecommerce_api/internal/repo"
	pkgdb "github.com/Skotchmaster/ecommerce_api/pkg/db"
)

// EnvDatabaseURL points the tests at a PostgreSQL database instead of in-memory SQLite.
const EnvDatabaseURL = "SHOP_TEST_DATABASE_URL"

func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv(EnvDatabaseURL)
	if dsn == "" {
		dsn = "sqlite://:memory:"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := pkgdb.Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(db))

	t.Cleanup(func() {
		if os.Getenv(EnvDatabaseURL) != "" {
			db.Exec("TRUNCATE TABLE orders, cart_items, products, categories, users RESTART IDENTITY CASCADE")
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
