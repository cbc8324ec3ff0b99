package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jeovahfialho/t212-exporter/internal/config"
)

// ErrCacheMiss indica que a chave não existe ou expirou.
var ErrCacheMiss = errors.New("chave não encontrada no cache")

// RedisCache guarda valores serializados em JSON. Atende tanto o cache de
// documentos de detalhe quanto o cache de posições.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Options converte a configuração nas opções do cliente.
func Options(cfg *config.Config) (*redis.Options, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("erro ao parsear URL Redis: %w", err)
	}

	opt.PoolSize = 4
	opt.MinIdleConns = 1
	opt.MaxRetries = 3
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	return opt, nil
}

func NewRedisCache(cfg *config.Config) (*RedisCache, error) {
	opt, err := Options(cfg)
	if err != nil {
		return nil, err
	}

	c := NewWithClient(redis.NewClient(opt), cfg.CacheTTL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.HealthCheck(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("erro ao conectar Redis: %w", err)
	}

	return c, nil
}

func NewWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("erro ao ler %s do cache: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("erro ao decodificar %s: %w", key, err)
	}

	return nil
}

// Set grava o valor com o TTL informado ou, na falta dele, com o padrão.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl ...time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("erro ao codificar %s: %w", key, err)
	}

	expiration := c.ttl
	if len(ttl) > 0 && ttl[0] > 0 {
		expiration = ttl[0]
	}

	if err := c.client.Set(ctx, key, data, expiration).Err(); err != nil {
		return fmt.Errorf("erro ao gravar %s no cache: %w", key, err)
	}

	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// DeletePrefix remove todas as chaves que começam com prefix e devolve
// quantas foram apagadas.
func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) (int64, error) {
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()

	var deleted int64
	batch := make([]string, 0, 100)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.client.Del(ctx, batch...).Result()
		deleted += n
		batch = batch[:0]
		return err
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				return deleted, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, err
	}

	return deleted, flush()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
