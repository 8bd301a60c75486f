package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/store"
	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/store/storetest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(*testing.T) store.Store {
		return store.NewMemoryStore()
	})
}

func TestMemoryStoreStampsRemovalWithClock(t *testing.T) {
	at := time.Date(2024, time.May, 1, 9, 30, 0, 0, time.UTC)
	s := store.NewMemoryStore().WithClock(func() time.Time { return at })
	ctx := context.Background()

	l, err := s.InsertList(ctx, store.ListFields{Name: "x", OwnerID: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, at, l.CreatedAt)

	require.NoError(t, s.SoftDeleteList(ctx, l.ID))
	got, err := s.FindListByIDUnscoped(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, got.RemovedAt.Valid)
	assert.Equal(t, at, got.RemovedAt.Time)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	l, err := s.InsertList(ctx, store.ListFields{Name: "original", OwnerID: uuid.New()})
	require.NoError(t, err)
	l.Name = "mutated"

	got, err := s.FindListByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", got.Name)
}
