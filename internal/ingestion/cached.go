package ingestion

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/jeovahfialho/t212-exporter/pkg/logger"
	"github.com/jeovahfialho/t212-exporter/pkg/metrics"
	"go.uber.org/zap"
)

const DetailCachePrefix = "t212:detail:"

// Cache é o subconjunto do RedisCache usado aqui.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl ...time.Duration) error
}

// CachedSource guarda documentos de detalhe já buscados. Ordens executadas
// não mudam, então reexecutar o mesmo intervalo evita as requisições.
// A chave é o detailsPath, sem a URL base.
type CachedSource struct {
	source  Source
	cache   Cache
	ttl     time.Duration
	baseURL string
}

func NewCachedSource(source Source, cache Cache, ttl time.Duration, baseURL string) *CachedSource {
	return &CachedSource{
		source:  source,
		cache:   cache,
		ttl:     ttl,
		baseURL: baseURL,
	}
}

// Key devolve a chave de cache de uma URL de detalhe.
func (c *CachedSource) Key(url string) string {
	return DetailCachePrefix + strings.TrimPrefix(url, c.baseURL)
}

func (c *CachedSource) FetchJSON(ctx context.Context, url string, dest any) error {
	key := c.Key(url)

	if err := c.cache.Get(ctx, key, dest); err == nil {
		metrics.RecordCacheHit()
		return nil
	}
	metrics.RecordCacheMiss()

	var raw json.RawMessage
	if err := c.source.FetchJSON(ctx, url, &raw); err != nil {
		return err
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return err
	}

	if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
		logger.Debug("erro ao salvar detalhe no cache", zap.String("url", url), zap.Error(err))
	}

	return nil
}
