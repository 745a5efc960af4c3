// Package redis implementa el contador de secuencias sobre Redis (COUNTER_BACKEND=redis).
package redis

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/pkg/config"
	goredis "github.com/redis/go-redis/v9"
)

var _ repository.CounterRepository = (*CounterRepo)(nil)

const defaultKeyPrefix = "pos:seq:"

// CounterRepo secuencias con INCR: la clave se crea en 0 y se incrementa atómicamente.
type CounterRepo struct {
	client    goredis.UniversalClient
	keyPrefix string
}

// NewClient abre el cliente y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewCounterRepository construye el adaptador. keyPrefix vacío = "pos:seq:".
func NewCounterRepository(client goredis.UniversalClient, keyPrefix string) *CounterRepo {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &CounterRepo{client: client, keyPrefix: keyPrefix}
}

// Increment ejecuta INCR sobre la clave de la secuencia.
func (r *CounterRepo) Increment(ctx context.Context, name string) (int64, error) {
	n, err := r.client.Incr(ctx, r.key(name)).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", name, err)
	}
	return n, nil
}

func (r *CounterRepo) key(name string) string {
	return r.keyPrefix + name
}
