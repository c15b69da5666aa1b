package api

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/kalambet/newsetl/internal/record"
)

// MemoryStore holds user records in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[int]record.Record
}

// NewMemoryStore returns a store holding users.
func NewMemoryStore(users ...record.Record) *MemoryStore {
	s := &MemoryStore{users: make(map[int]record.Record, len(users))}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

// LoadSeedFile reads a JSON array of user documents into a new store.
func LoadSeedFile(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	var users []record.Record
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parsing seed file %s: %w", path, err)
	}
	for i, u := range users {
		if u.ID == 0 {
			return nil, fmt.Errorf("parsing seed file %s: entry %d has no id", path, i)
		}
	}
	return NewMemoryStore(users...), nil
}

// Get returns the user with id.
func (s *MemoryStore) Get(id int) (record.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if ok {
		u.News = append([]record.NewsItem(nil), u.News...)
	}
	return u, ok
}

// Replace stores u in place of the existing user with the same id. It
// reports false when no such user exists.
func (s *MemoryStore) Replace(u record.Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return false
	}
	u.News = append([]record.NewsItem(nil), u.News...)
	s.users[u.ID] = u
	return true
}

// IDs returns the stored ids in ascending order.
func (s *MemoryStore) IDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
