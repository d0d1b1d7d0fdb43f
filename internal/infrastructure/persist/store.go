package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Store is a namespaced byte-value store
type Store interface {
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	Set(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error
	Clear(ctx context.Context, namespace string) error
	Keys(ctx context.Context, namespace string) ([]string, error)
}

// SQLStore persists values in the kv table with a read-through cache
type SQLStore struct {
	db    *sql.DB
	cache sync.Map // namespace + "\x00" + key -> []byte
}

// NewSQLStore creates a store over an opened database
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func cacheKey(namespace, key string) string {
	return namespace + "\x00" + key
}

// Get returns the value for key, reporting false when absent
func (s *SQLStore) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	if cached, ok := s.cache.Load(cacheKey(namespace, key)); ok {
		return cloneBytes(cached.([]byte)), true, nil
	}

	var value []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM kv WHERE namespace = ? AND key = ?", namespace, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s/%s: %w", namespace, key, err)
	}

	s.cache.Store(cacheKey(namespace, key), cloneBytes(value))
	return value, true, nil
}

// Set writes value for key
func (s *SQLStore) Set(ctx context.Context, namespace, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		namespace, key, value, time.Now().UnixNano(),
	)
	if err != nil {
		s.cache.Delete(cacheKey(namespace, key))
		return fmt.Errorf("failed to write %s/%s: %w", namespace, key, err)
	}

	s.cache.Store(cacheKey(namespace, key), cloneBytes(value))
	return nil
}

// Delete removes key
func (s *SQLStore) Delete(ctx context.Context, namespace, key string) error {
	s.cache.Delete(cacheKey(namespace, key))
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE namespace = ? AND key = ?", namespace, key); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Clear removes every key in namespace
func (s *SQLStore) Clear(ctx context.Context, namespace string) error {
	prefix := namespace + "\x00"
	s.cache.Range(func(k, _ interface{}) bool {
		if ks := k.(string); len(ks) >= len(prefix) && ks[:len(prefix)] == prefix {
			s.cache.Delete(k)
		}
		return true
	})

	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE namespace = ?", namespace); err != nil {
		return fmt.Errorf("failed to clear %s: %w", namespace, err)
	}
	return nil
}

// Keys lists the keys in namespace in sorted order
func (s *SQLStore) Keys(ctx context.Context, namespace string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key FROM kv WHERE namespace = ? ORDER BY key", namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", namespace, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// MemoryStore keeps values in process memory
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string][]byte)}
}

// Get returns the value for key, reporting false when absent
func (m *MemoryStore) Get(_ context.Context, namespace, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[namespace][key]
	return cloneBytes(v), ok, nil
}

// Set writes value for key
func (m *MemoryStore) Set(_ context.Context, namespace, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ns, ok := m.data[namespace]
	if !ok {
		ns = make(map[string][]byte)
		m.data[namespace] = ns
	}
	ns[key] = cloneBytes(value)
	return nil
}

// Delete removes key
func (m *MemoryStore) Delete(_ context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data[namespace], key)
	return nil
}

// Clear removes every key in namespace
func (m *MemoryStore) Clear(_ context.Context, namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, namespace)
	return nil
}

// Keys lists the keys in namespace in sorted order
func (m *MemoryStore) Keys(_ context.Context, namespace string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data[namespace]))
	for k := range m.data[namespace] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
