//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Apurer/b2b-ordering-api/internal/domains/orders/ports"
)

func startRedis(t *testing.T) *goredis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := goredis.NewClient(&goredis.Options{Addr: endpoint})
	t.Cleanup(func() {
		_ = client.Close()
		_ = container.Terminate(ctx)
	})
	return client
}

func TestIdempotencyStore_FirstWriterWins(t *testing.T) {
	client := startRedis(t)
	store := NewIdempotencyStore(client, time.Minute)
	ctx := context.Background()

	record := ports.IdempotencyRecord{Key: "acct:po-1", AccountID: "acct", RequestHash: "h1", OrderID: "order-1"}
	saved, err := store.Save(ctx, record)
	require.NoError(t, err)
	assert.Equal(t, "order-1", saved.OrderID)

	again, err := store.Save(ctx, record)
	require.NoError(t, err)
	assert.Equal(t, "order-1", again.OrderID)

	loser := record
	loser.OrderID = "order-2"
	existing, err := store.Save(ctx, loser)
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	assert.Equal(t, "order-1", existing.OrderID)

	ttl, err := client.TTL(ctx, "idem:order:create:acct:po-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestIdempotencyStore_GetMissing(t *testing.T) {
	store := NewIdempotencyStore(startRedis(t), 0)
	record, err := store.Get(context.Background(), "acct:none")
	require.NoError(t, err)
	assert.Nil(t, record)
}
