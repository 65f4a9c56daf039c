package cart

import (
	"context"
	"sync"
)

// MemoryStore keeps carts in process memory. Items preserve insertion
// order per session.
type MemoryStore struct {
	carts map[string][]Item
	mu    sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts: make(map[string][]Item),
	}
}

func (s *MemoryStore) Add(ctx context.Context, sessionID string, item Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[sessionID]
	for i := range items {
		if items[i].ProductID == item.ProductID {
			items[i].Quantity += item.Quantity
			return nil
		}
	}
	s.carts[sessionID] = append(items, item)
	return nil
}

func (s *MemoryStore) Remove(ctx context.Context, sessionID string, productID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[sessionID]
	for i := range items {
		if items[i].ProductID == productID {
			s.carts[sessionID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *MemoryStore) Items(ctx context.Context, sessionID string) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.carts[sessionID]
	out := make([]Item, len(items))
	copy(out, items)
	return out, nil
}

func (s *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sessionID)
	return nil
}
