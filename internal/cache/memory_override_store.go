package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	apperrors "film-ticket-desk/pkg/app_errors"
)

// MemoryOverrideStoreImpl 以 map 保存字串值，行為與 Redis 版一致；程序結束即消失
type MemoryOverrideStoreImpl struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryOverrideStore() *MemoryOverrideStoreImpl {
	return &MemoryOverrideStoreImpl{
		values: make(map[string]string),
	}
}

func (s *MemoryOverrideStoreImpl) Get(ctx context.Context, filmID int) (int, error) {
	s.mu.RLock()
	val, ok := s.values[OverrideKey(filmID)]
	s.mu.RUnlock()
	if !ok {
		return -1, apperrors.ErrOverrideNotFound
	}

	remaining, err := strconv.Atoi(val)
	if err != nil {
		return -1, fmt.Errorf("invalid override %q: %v", val, err)
	}
	return remaining, nil
}

func (s *MemoryOverrideStoreImpl) Set(ctx context.Context, filmID int, remaining int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[OverrideKey(filmID)] = strconv.Itoa(remaining)
	return nil
}

func (s *MemoryOverrideStoreImpl) Delete(ctx context.Context, filmID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, OverrideKey(filmID))
	return nil
}

// Keys 目前存在的 key (測試用)
func (s *MemoryOverrideStoreImpl) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	return keys
}
