// Package redis implementa el guard de idempotencia de liquidaciones sobre Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/Rentabodega-api/internal/application/ports"
)

const (
	settlementKeyPrefix = "ledger:settlement:"
	settlementKeyTTL    = 24 * time.Hour
)

var _ ports.IdempotencyGuard = (*IdempotencyGuard)(nil)

// IdempotencyGuard reserva request_id con SETNX. Una reserva vencida o perdida
// solo deja pasar la solicitud al índice único de la base de datos.
type IdempotencyGuard struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewIdempotencyGuard construye el guard; ttl <= 0 usa 24 h.
func NewIdempotencyGuard(client *goredis.Client, ttl time.Duration) *IdempotencyGuard {
	if ttl <= 0 {
		ttl = settlementKeyTTL
	}
	return &IdempotencyGuard{client: client, ttl: ttl}
}

// NewClient abre el cliente y verifica la conexión con PING.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", addr, err)
	}
	return client, nil
}

func (g *IdempotencyGuard) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, settlementKeyPrefix+key, 1, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis: reservar %s: %w", key, err)
	}
	return ok, nil
}

func (g *IdempotencyGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, settlementKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis: liberar %s: %w", key, err)
	}
	return nil
}
