package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/RoGogDBD/inventory/internal/models"
)

// MemStorage хранит записи в памяти процесса, упорядоченными по id.
type MemStorage struct {
	mu     sync.RWMutex
	items  []models.Item
	nextID int64
}

func NewMemStorage() *MemStorage {
	return &MemStorage{nextID: 1}
}

func (s *MemStorage) Insert(ctx context.Context, name, description string, photoPath *string) (*models.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := models.Item{
		ID:          s.nextID,
		Name:        name,
		Description: description,
		PhotoPath:   clonePath(photoPath),
	}
	s.nextID++
	s.items = append(s.items, item)

	return cloneItem(item), nil
}

func (s *MemStorage) List(ctx context.Context) ([]models.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, *cloneItem(it))
	}
	return out, nil
}

func (s *MemStorage) Get(ctx context.Context, id int64) (*models.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.index(id)
	if !ok {
		return nil, ErrItemNotFound
	}
	return cloneItem(s.items[idx]), nil
}

func (s *MemStorage) Update(ctx context.Context, id int64, name, description *string) (*models.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.index(id)
	if !ok {
		return nil, ErrItemNotFound
	}
	if name != nil && *name != "" {
		s.items[idx].Name = *name
	}
	if description != nil && *description != "" {
		s.items[idx].Description = *description
	}
	return cloneItem(s.items[idx]), nil
}

func (s *MemStorage) SetPhoto(ctx context.Context, id int64, photoPath *string) (*models.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("set item photo: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.index(id)
	if !ok {
		return nil, ErrItemNotFound
	}
	s.items[idx].PhotoPath = clonePath(photoPath)
	return cloneItem(s.items[idx]), nil
}

func (s *MemStorage) Delete(ctx context.Context, id int64) (*models.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("delete item: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.index(id)
	if !ok {
		return nil, ErrItemNotFound
	}
	removed := s.items[idx]
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	return cloneItem(removed), nil
}

func (s *MemStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// index ищет запись бинарным поиском: id выдаются по возрастанию.
func (s *MemStorage) index(id int64) (int, bool) {
	i := sort.Search(len(s.items), func(i int) bool { return s.items[i].ID >= id })
	if i < len(s.items) && s.items[i].ID == id {
		return i, true
	}
	return 0, false
}

func cloneItem(it models.Item) *models.Item {
	it.PhotoPath = clonePath(it.PhotoPath)
	return &it
}

func clonePath(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
