package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultSerialNumber is stored when an item is created without a serial number.
const DefaultSerialNumber = "N/A"

// DateLayout is the calendar date layout used for purchaseDate and warranty.
const DateLayout = "2006-01-02"

type Item struct {
	ID               string          `gorm:"primaryKey;size:36"`
	Name             string          `gorm:"size:200;not null"`
	SerialNumber     string          `gorm:"size:120;not null"`
	Brand            string          `gorm:"size:120;not null"`
	Model            string          `gorm:"size:120;not null"`
	Condition        Condition       `gorm:"size:32;not null"`
	Category         Category        `gorm:"size:64;not null;index:idx_items_category"`
	Room             Room            `gorm:"size:64;not null;index:idx_items_room"`
	PurchaseDate     time.Time       `gorm:"type:date;not null"`
	PurchaseLocation string          `gorm:"size:200;not null"`
	Price            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ImageKey         string          `gorm:"column:image_key;size:512;not null"`
	Warranty         *time.Time      `gorm:"type:date"`
	Notes            string          `gorm:"type:text;not null"`
	Attachments      []Attachment    `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time       `gorm:"autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime"`
}

func (Item) TableName() string {
	return "items"
}

// Clone returns a deep copy, so callers can mutate the result without touching
// the attachment slice of the original.
func (it *Item) Clone() *Item {
	if it == nil {
		return nil
	}
	cp := *it
	if it.Warranty != nil {
		w := *it.Warranty
		cp.Warranty = &w
	}
	if it.Attachments != nil {
		cp.Attachments = make([]Attachment, len(it.Attachments))
		copy(cp.Attachments, it.Attachments)
	}
	return &cp
}

// BlobKeys lists every object key the item references, image first.
func (it *Item) BlobKeys() []string {
	keys := make([]string, 0, 1+len(it.Attachments))
	if it.ImageKey != "" {
		keys = append(keys, it.ImageKey)
	}
	for _, a := range it.Attachments {
		keys = append(keys, a.Key)
	}
	return keys
}
