package store_test

import (
	"context"
	"os"
	"testing"

	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/store"
	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/store/storetest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	storetest.Run(t, func(t *testing.T) store.Store {
		db := client.Database("listkeeper_test_" + uuid.NewString()[:8])
		t.Cleanup(func() { _ = db.Drop(ctx) })
		s := store.NewMongoStore(db)
		require.NoError(t, s.EnsureIndexes(ctx))
		return s
	})
}
