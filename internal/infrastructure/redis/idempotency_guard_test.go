package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuard(t *testing.T) *IdempotencyGuard {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client, err := NewClient(context.Background(), addr, "", 0)
	if err != nil {
		t.Skipf("Redis no disponible: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return NewIdempotencyGuard(client, time.Minute)
}

func TestIdempotencyGuard_SegundaReservaFalla(t *testing.T) {
	g := newGuard(t)
	ctx := context.Background()
	key := "co-1:" + uuid.NewString()

	ok, err := g.Acquire(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Acquire(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok, "la clave ya estaba reservada")

	require.NoError(t, g.Release(ctx, key))
	ok, err = g.Acquire(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok, "tras liberar se puede reservar otra vez")
	require.NoError(t, g.Release(ctx, key))
}

func TestNewClient_DireccionInvalida(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewClient(ctx, "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
