package credentials

import (
	"context"
	"testing"
	"time"

	"template-migrator/internal/common/database"
	"template-migrator/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helpers
// ==========================

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := &database.RedisClient{
		Client: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
	}
	return NewStore(client, logger.NewNoOpLogger()), mr
}

// ==========================
// Store Tests
// ==========================

func TestStore_PutAndGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	err := store.Put(ctx, "user-1", ProviderHubSpot, &Stored{AccessToken: "hs-token"}, 0)
	require.NoError(t, err)

	stored, err := store.Get(ctx, "user-1", ProviderHubSpot)
	require.NoError(t, err)
	assert.Equal(t, "hs-token", stored.AccessToken)
}

func TestStore_GetMissingKeyIsNotConnected(t *testing.T) {
	store, _ := newTestStore(t)

	stored, err := store.Get(context.Background(), "user-1", ProviderSFMC)

	assert.Nil(t, stored)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestStore_ProvidersAreIsolated(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "user-1", ProviderHubSpot, &Stored{AccessToken: "hs"}, 0))

	_, err := store.Get(ctx, "user-1", ProviderSFMC)
	assert.ErrorIs(t, err, ErrNotConnected)

	_, err = store.Get(ctx, "user-2", ProviderHubSpot)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestStore_GetUnreachableStoreIsLookupError(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	stored, err := store.Get(context.Background(), "user-1", ProviderHubSpot)

	assert.Nil(t, stored)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotConnected)
}

func TestStore_GetCorruptPayloadIsLookupError(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, mr.Set("credentials:user-1:hubspot", "{not json"))

	stored, err := store.Get(context.Background(), "user-1", ProviderHubSpot)

	assert.Nil(t, stored)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotConnected)
}

func TestStore_DeleteDisconnects(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "user-1", ProviderSFMC, &Stored{
		ClientID:     "id",
		ClientSecret: "secret",
		Subdomain:    "sub",
	}, time.Hour))
	require.NoError(t, store.Delete(ctx, "user-1", ProviderSFMC))

	_, err := store.Get(ctx, "user-1", ProviderSFMC)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestStored_HasSFMCProvisioning(t *testing.T) {
	tests := []struct {
		name   string
		stored Stored
		want   bool
	}{
		{
			name:   "complete triple",
			stored: Stored{ClientID: "a", ClientSecret: "b", Subdomain: "c"},
			want:   true,
		},
		{
			name:   "missing subdomain",
			stored: Stored{ClientID: "a", ClientSecret: "b"},
			want:   false,
		},
		{
			name:   "hubspot-shaped blob",
			stored: Stored{AccessToken: "tok"},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.stored.HasSFMCProvisioning())
		})
	}
}
