package utils

import (
	"sync"
	"time"
)

// DefaultCacheTTL 确认凭据的默认有效期，足够操作员完成二次确认
const DefaultCacheTTL = 10 * time.Minute

// 使用 sync.Map 保证并发安全
var (
	memoryCache sync.Map
)

// cacheItem 内部结构，包含值和过期时间
type cacheItem struct {
	value      string
	expiration time.Time
}

// SetCache 设置缓存
// key: 确认令牌 (confirmation token)
// ttl <= 0 时使用默认有效期
func SetCache(key string, value string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	memoryCache.Store(key, cacheItem{
		value:      value,
		expiration: time.Now().Add(ttl),
	})
}

// GetCache 获取缓存并验证是否过期
func GetCache(key string) (string, bool) {
	val, ok := memoryCache.Load(key)
	if !ok {
		return "", false
	}

	item := val.(cacheItem)

	// 检查是否过期
	if time.Now().After(item.expiration) {
		memoryCache.Delete(key) // 懒删除
		return "", false
	}

	return item.value, true
}

// DeleteCache 删除缓存 (用完即焚)
func DeleteCache(key string) {
	memoryCache.Delete(key)
}
