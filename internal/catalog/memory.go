package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// MemoryStore keeps the catalog in a map, for tests and offline runs.
type MemoryStore struct {
	mu     sync.RWMutex
	items  map[int]*Item
	order  []int
	writes int
}

func NewMemoryStore(items ...*Item) *MemoryStore {
	s := &MemoryStore{items: make(map[int]*Item)}
	for _, it := range items {
		s.Put(it)
	}
	return s
}

// Put adds or replaces an item; top level items keep insertion order.
func (s *MemoryStore) Put(item *Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[item.ID]; !ok && !item.IsVariation() {
		s.order = append(s.order, item.ID)
	}
	if item.Meta == nil {
		item.Meta = make(map[string]string)
	}
	s.items[item.ID] = item
}

func (s *MemoryStore) Delete(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

func (s *MemoryStore) ListActiveIDs(ctx context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int, 0, len(s.order))
	for _, id := range s.order {
		if _, ok := s.items[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *MemoryStore) Get(ctx context.Context, id int) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[id]
	if !ok {
		return nil, errors.Wrapf(ErrItemNotFound, "id %d", id)
	}
	cp := *it
	cp.Variations = append([]int(nil), it.Variations...)
	cp.Meta = make(map[string]string, len(it.Meta))
	for k, v := range it.Meta {
		cp.Meta[k] = v
	}
	return &cp, nil
}

func (s *MemoryStore) GetVariation(ctx context.Context, parentID, id int) (*Item, error) {
	it, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if it.ParentID != 0 && it.ParentID != parentID {
		return nil, errors.Wrapf(ErrItemNotFound, "id %d is not a variation of %d", id, parentID)
	}
	it.ParentID = parentID
	return it, nil
}

func (s *MemoryStore) SetMeta(ctx context.Context, item *Item, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[item.ID]
	if !ok {
		return errors.Wrapf(ErrItemNotFound, "id %d", item.ID)
	}
	for k, v := range values {
		it.Meta[k] = v
	}
	s.writes++
	return nil
}

// Meta returns the stored meta value of an item.
func (s *MemoryStore) Meta(id int, key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if it, ok := s.items[id]; ok {
		return it.Meta[key]
	}
	return ""
}

// Writes counts SetMeta calls.
func (s *MemoryStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
