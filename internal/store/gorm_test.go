package store_test

import (
	"os"
	"testing"

	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/models"
	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/store"
	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/store/storetest"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.List{}, &models.Item{}))

	storetest.Run(t, func(t *testing.T) store.Store {
		require.NoError(t, db.Exec("TRUNCATE items, lists, users CASCADE").Error)
		return store.NewPostgresStore(db)
	})
}
