package internal

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// BoundedSet remembers the most recently inserted keys up to a fixed size.
// Membership checks do not refresh a key, so eviction follows insertion order.
type BoundedSet struct {
	cache *lru.Cache[string, struct{}]
}

// NewBoundedSet creates a set holding at most size keys.
func NewBoundedSet(size int) (*BoundedSet, error) {
	cache, err := lru.New[string, struct{}](size)
	if err != nil {
		return nil, err
	}
	return &BoundedSet{cache: cache}, nil
}

// Add inserts key unless it is already present.
func (s *BoundedSet) Add(key string) {
	if s.cache.Contains(key) {
		return
	}
	s.cache.Add(key, struct{}{})
}

// Contains reports whether key is in the set.
func (s *BoundedSet) Contains(key string) bool {
	return s.cache.Contains(key)
}

// Len returns the number of keys held.
func (s *BoundedSet) Len() int {
	return s.cache.Len()
}
