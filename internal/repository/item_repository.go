package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shinyyama/home-inventory/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	FindByID(ctx context.Context, id string) (*model.Item, error)
	List(ctx context.Context, filter ListFilter) ([]model.Item, error)
	// Update applies patch atomically and reports the image key and
	// attachments it displaced, read under the same lock as the write.
	Update(ctx context.Context, id string, patch ItemPatch) (*UpdateResult, error)
	Delete(ctx context.Context, id string) (*model.Item, error)
	Count(ctx context.Context) (int64, error)
}

var (
	ErrDBNotReady = errors.New("database not initialized")
	ErrNotFound   = errors.New("item not found")
)

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, item *model.Item) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	prepareCreate(item)
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *itemRepository) FindByID(ctx context.Context, id string) (*model.Item, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	return findByID(r.db.WithContext(ctx), id)
}

func (r *itemRepository) List(ctx context.Context, filter ListFilter) ([]model.Item, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	q := r.db.WithContext(ctx).Preload("Attachments", byPosition)
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Room != "" {
		q = q.Where("room = ?", filter.Room)
	}
	var items []model.Item
	if err := q.Order("created_at desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Update loads the item with a row lock, applies the patch and writes fields
// and attachment list in one transaction.
func (r *itemRepository) Update(ctx context.Context, id string, patch ItemPatch) (*UpdateResult, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var res *UpdateResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := findByID(forUpdate(tx), id)
		if err != nil {
			return err
		}
		res, err = patch.applyTo(item)
		if err != nil {
			return err
		}
		if len(res.Removed) > 0 {
			ids := make([]string, 0, len(res.Removed))
			for _, a := range res.Removed {
				ids = append(ids, a.ID)
			}
			if err := tx.Where("item_id = ? AND id IN ?", id, ids).
				Delete(&model.Attachment{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Omit(clause.Associations).Save(item).Error; err != nil {
			return err
		}
		if len(item.Attachments) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).
				Create(&item.Attachments).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Delete removes the item and its attachment rows and returns what was
// removed, so the caller can clean up the referenced blobs.
func (r *itemRepository) Delete(ctx context.Context, id string) (*model.Item, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var deleted *model.Item
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := findByID(forUpdate(tx), id)
		if err != nil {
			return err
		}
		if err := tx.Where("item_id = ?", id).Delete(&model.Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Item{}, "id = ?", id).Error; err != nil {
			return err
		}
		deleted = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (r *itemRepository) Count(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Item{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func findByID(db *gorm.DB, id string) (*model.Item, error) {
	var item model.Item
	if err := db.Preload("Attachments", byPosition).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// forUpdate takes a row lock on the item read, so concurrent writers queue
// behind each other instead of acting on the same snapshot.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}

func prepareCreate(item *model.Item) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	for i := range item.Attachments {
		if item.Attachments[i].ID == "" {
			item.Attachments[i].ID = uuid.NewString()
		}
		item.Attachments[i].ItemID = item.ID
		item.Attachments[i].Position = i
	}
}
