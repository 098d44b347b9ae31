// CacheService — LRU-кэш записей токенов с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/document-intake/internal/domain/model"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "di_token_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш токенов.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "di_token_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша токенов.",
	})
)

// CacheService — LRU-кэш записей токенов с автоматическим TTL.
// Записи токенов неизменяемы, поэтому инвалидация не нужна:
// кэш лишь снимает нагрузку с хранилища при повторных скачиваниях.
// Кэш у каждого экземпляра свой.
type CacheService struct {
	cache *expirable.LRU[string, model.SignatureToken]
}

// NewCacheService создаёт LRU-кэш с указанным максимальным размером и TTL.
// maxSize — максимальное количество записей в кэше.
// ttl — время жизни записи после добавления.
func NewCacheService(maxSize int, ttl time.Duration) *CacheService {
	cache := expirable.NewLRU[string, model.SignatureToken](maxSize, nil, ttl)
	return &CacheService{cache: cache}
}

// Get возвращает запись токена из кэша.
// Обновляет Prometheus-метрики hit/miss.
func (c *CacheService) Get(value string) (model.SignatureToken, bool) {
	val, ok := c.cache.Get(value)
	if ok {
		cacheHitsTotal.Inc()
		return val, true
	}
	cacheMissesTotal.Inc()
	return model.SignatureToken{}, false
}

// Set добавляет запись в кэш.
func (c *CacheService) Set(token model.SignatureToken) {
	c.cache.Add(token.Value, token)
}

// Len возвращает количество записей в кэше.
func (c *CacheService) Len() int {
	return c.cache.Len()
}
