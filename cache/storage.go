package cache

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"creatorpulse/config"

	"github.com/gofiber/fiber/v2"
)

type memoryItem struct {
	value      []byte
	expiration time.Time
}

// MemoryStorage is an in-process fiber.Storage. Expired entries are dropped
// lazily on read.
type MemoryStorage struct {
	items map[string]memoryItem
	mu    sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		items: make(map[string]memoryItem),
	}
}

// Get returns nil, nil for a missing or expired key, as fiber.Storage requires.
func (m *MemoryStorage) Get(key string) ([]byte, error) {
	m.mu.RLock()
	item, exists := m.items[key]
	m.mu.RUnlock()
	if !exists {
		return nil, nil
	}

	if !item.expiration.IsZero() && time.Now().After(item.expiration) {
		m.mu.Lock()
		delete(m.items, key)
		m.mu.Unlock()
		return nil, nil
	}
	return item.value, nil
}

func (m *MemoryStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	item := memoryItem{value: append([]byte(nil), val...)}
	if exp > 0 {
		item.expiration = time.Now().Add(exp)
	}

	m.mu.Lock()
	m.items[key] = item
	m.mu.Unlock()
	return nil
}

// Incr adds one to the decimal counter under key, creating it at 1. Counters
// never expire.
func (m *MemoryStorage) Incr(key string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n uint64
	if item, ok := m.items[key]; ok && (item.expiration.IsZero() || time.Now().Before(item.expiration)) {
		parsed, err := strconv.ParseUint(string(item.value), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("incr %s: value is not a counter", key)
		}
		n = parsed
	}
	n++
	m.items[key] = memoryItem{value: []byte(strconv.FormatUint(n, 10))}
	return n, nil
}

func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Reset() error {
	m.mu.Lock()
	m.items = make(map[string]memoryItem)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}

// Len counts the stored entries, expired ones included.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// NewStorage picks Redis when it is enabled and in-process memory otherwise.
func NewStorage(cfg config.RedisConfig) fiber.Storage {
	if cfg.Enabled {
		return NewRedisStorage(cfg)
	}
	return NewMemoryStorage()
}
