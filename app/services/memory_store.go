package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"todo-list-api/app/models"
)

// MemoryItemStore keeps items in a map. Nothing survives a restart.
type MemoryItemStore struct {
	mu     sync.RWMutex
	items  map[int64]models.Item
	nextID int64
	now    func() time.Time
}

// NewMemoryItemStore creates an empty in-memory store.
func NewMemoryItemStore() *MemoryItemStore {
	return &MemoryItemStore{
		items:  make(map[int64]models.Item),
		nextID: 1,
		now:    time.Now,
	}
}

// ListItems returns all items ordered by id.
func (s *MemoryItemStore) ListItems(ctx context.Context) ([]models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.Item, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// CreateItem stores a copy of item under the next id.
func (s *MemoryItemStore) CreateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := *item
	created.FillDefaults(s.now())
	created.ID = s.nextID
	s.items[created.ID] = created
	s.nextID++
	return &created, nil
}

// GetItem returns the item with the given id.
func (s *MemoryItemStore) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return &item, nil
}

// UpdateItem replaces the stored item, keeping its id.
func (s *MemoryItemStore) UpdateItem(ctx context.Context, id int64, item *models.Item) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return nil, &NotFoundError{ID: id}
	}
	updated := *item
	updated.FillDefaults(s.now())
	updated.ID = id
	s.items[id] = updated
	return &updated, nil
}

// DeleteItem removes the item and returns it.
func (s *MemoryItemStore) DeleteItem(ctx context.Context, id int64) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	delete(s.items, id)
	return &item, nil
}

// Close is a no-op.
func (s *MemoryItemStore) Close(ctx context.Context) error {
	return nil
}
