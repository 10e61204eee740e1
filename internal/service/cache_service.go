package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ignatzorin/preloved-backend/internal/goroutine"
)

// Префикс ключей админской статистики.
const adminStatsPrefix = "admin:"

// CacheService кэш в памяти с TTL и сбросом по префиксу.
type CacheService struct {
	mu    sync.RWMutex
	cache map[string]cacheEntry
	now   func() time.Time
	stop  chan struct{}
	once  sync.Once
}

type cacheEntry struct {
	data      interface{}
	expiresAt time.Time
}

// NewCacheService создаёт кэш и запускает фоновую очистку просроченных записей.
func NewCacheService(cleanupInterval time.Duration) *CacheService {
	cs := &CacheService{
		cache: make(map[string]cacheEntry),
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	if cleanupInterval > 0 {
		goroutine.SafeGo(func() { cs.cleanup(cleanupInterval) })
	}
	return cs
}

// Get возвращает значение, если оно есть и не просрочено.
func (cs *CacheService) Get(key string) (interface{}, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	entry, ok := cs.cache[key]
	if !ok || cs.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.data, true
}

func (cs *CacheService) Set(key string, value interface{}, ttl time.Duration) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.cache[key] = cacheEntry{data: value, expiresAt: cs.now().Add(ttl)}
}

func (cs *CacheService) Delete(key string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	delete(cs.cache, key)
}

// InvalidateByPrefix удаляет все ключи с префиксом.
func (cs *CacheService) InvalidateByPrefix(prefix string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for key := range cs.cache {
		if strings.HasPrefix(key, prefix) {
			delete(cs.cache, key)
		}
	}
}

// InvalidateAdminStats сбрасывает сводку, аналитику и рейтинг продавцов.
func (cs *CacheService) InvalidateAdminStats() {
	cs.InvalidateByPrefix(adminStatsPrefix)
}

// GetOrSet возвращает значение из кэша или вычисляет и сохраняет его.
// Ошибки не кэшируются.
func (cs *CacheService) GetOrSet(key string, ttl time.Duration, fn func() (interface{}, error)) (interface{}, error) {
	if value, ok := cs.Get(key); ok {
		return value, nil
	}

	value, err := fn()
	if err != nil {
		return nil, err
	}
	cs.Set(key, value, ttl)
	return value, nil
}

// Close останавливает фоновую очистку.
func (cs *CacheService) Close() {
	cs.once.Do(func() { close(cs.stop) })
}

func (cs *CacheService) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-cs.stop:
			return
		case <-ticker.C:
			cs.mu.Lock()
			now := cs.now()
			for key, entry := range cs.cache {
				if now.After(entry.expiresAt) {
					delete(cs.cache, key)
				}
			}
			cs.mu.Unlock()
		}
	}
}

func DashboardCacheKey() string {
	return adminStatsPrefix + "dashboard"
}

func AnalyticsCacheKey(bucket string, days int) string {
	return fmt.Sprintf("%sanalytics:%s:%d", adminStatsPrefix, bucket, days)
}

func TopSellersCacheKey(limit int) string {
	return fmt.Sprintf("%stop_sellers:%d", adminStatsPrefix, limit)
}
