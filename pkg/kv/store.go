package kv

import (
	"context"
	"sync"
)

// Store 键值存储抽象
// 浏览器端的 localStorage 在服务端的对应物：收藏夹、汇率快照都存这里
// 值一律是字符串 (JSON 序列化后的内容)，和 localStorage 的语义保持一致
type Store interface {
	// Get 读取 key，不存在时返回 ("", nil)
	Get(ctx context.Context, key string) (string, error)

	// Set 覆盖写入
	Set(ctx context.Context, key, value string) error

	// Delete 删除 key
	Delete(ctx context.Context, key string) error
}

// ==================== 内存实现 ====================

// MemoryStore 进程内实现，单元测试与本地开发使用
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[key], nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
