package services

import (
	"encoding/json"
	"sync"
	"time"
)

// MemorySessionStore 进程内会话存储, 仅适合单进程部署
type MemorySessionStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// NewMemorySessionStore 创建进程内会话存储
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemorySessionStore) Set(key string, value interface{}, expiration time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{
		payload:   payload,
		expiresAt: s.now().Add(expiration),
	}
	return nil
}

func (s *MemorySessionStore) Get(key string, dest interface{}) error {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return ErrSessionStoreMiss
	}
	if s.now().After(entry.expiresAt) {
		// 过期条目按不存在处理, 删除留给下一次写或Delete
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return ErrSessionStoreMiss
	}

	return json.Unmarshal(entry.payload, dest)
}

func (s *MemorySessionStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
