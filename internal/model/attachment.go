package model

import "time"

// Attachment is a supporting document (receipt, manual) owned by exactly one item.
type Attachment struct {
	ID          string    `gorm:"primaryKey;size:36"`
	ItemID      string    `gorm:"column:item_id;size:36;not null;index:idx_item_attachments_item_id"`
	Key         string    `gorm:"column:object_key;size:512;not null"`
	Filename    string    `gorm:"size:255;not null"`
	ContentType string    `gorm:"size:127"`
	Position    int       `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (Attachment) TableName() string {
	return "item_attachments"
}
