package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shinyyama/home-inventory/internal/model"
)

// memoryItemRepository keeps items in process memory. It backs DB_DRIVER=memory
// and the service tests; every read and write goes through a deep copy.
type memoryItemRepository struct {
	mu    sync.RWMutex
	items map[string]*model.Item
	now   func() time.Time
}

func NewMemoryItemRepository() ItemRepository {
	return &memoryItemRepository{
		items: make(map[string]*model.Item),
		now:   time.Now,
	}
}

func (r *memoryItemRepository) Create(ctx context.Context, item *model.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	prepareCreate(item)
	now := r.now()
	item.CreatedAt, item.UpdatedAt = now, now
	for i := range item.Attachments {
		item.Attachments[i].CreatedAt = now
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = item.Clone()
	return nil
}

func (r *memoryItemRepository) FindByID(ctx context.Context, id string) (*model.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return item.Clone(), nil
}

func (r *memoryItemRepository) List(ctx context.Context, filter ListFilter) ([]model.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := make([]model.Item, 0, len(r.items))
	for _, it := range r.items {
		if filter.Category != "" && it.Category != filter.Category {
			continue
		}
		if filter.Room != "" && it.Room != filter.Room {
			continue
		}
		items = append(items, *it.Clone())
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (r *memoryItemRepository) Update(ctx context.Context, id string, patch ItemPatch) (*UpdateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	item := stored.Clone()
	res, err := patch.applyTo(item)
	if err != nil {
		return nil, err
	}
	now := r.now()
	item.UpdatedAt = now
	for i := range item.Attachments {
		if item.Attachments[i].CreatedAt.IsZero() {
			item.Attachments[i].CreatedAt = now
		}
	}
	r.items[id] = item
	res.Item = item.Clone()
	return res, nil
}

func (r *memoryItemRepository) Delete(ctx context.Context, id string) (*model.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.items, id)
	return item, nil
}

func (r *memoryItemRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.items)), nil
}
