package repository

import (
	"github.com/google/uuid"
	"github.com/shinyyama/home-inventory/internal/model"
)

type ListFilter struct {
	Category model.Category
	Room     model.Room
}

// ItemPatch is a partial update. Only supplied fields change; attachments
// listed in RemoveAttachmentIDs are dropped and AppendAttachments are added
// after the remaining ones, keeping their order.
type ItemPatch struct {
	Fields              model.ItemInput
	ImageKey            *string
	RemoveAttachmentIDs []string
	AppendAttachments   []model.Attachment
}

// UpdateResult is the item after an update together with what the update
// displaced, as seen by the write itself.
type UpdateResult struct {
	Item *model.Item
	// ReplacedImageKey is set when the image key changed.
	ReplacedImageKey string
	Removed          []model.Attachment
}

func (p ItemPatch) applyTo(item *model.Item) (*UpdateResult, error) {
	if err := p.Fields.ApplyTo(item); err != nil {
		return nil, err
	}
	res := &UpdateResult{Item: item}
	if p.ImageKey != nil {
		if item.ImageKey != *p.ImageKey {
			res.ReplacedImageKey = item.ImageKey
		}
		item.ImageKey = *p.ImageKey
	}

	remove := make(map[string]struct{}, len(p.RemoveAttachmentIDs))
	for _, id := range p.RemoveAttachmentIDs {
		remove[id] = struct{}{}
	}
	kept := make([]model.Attachment, 0, len(item.Attachments)+len(p.AppendAttachments))
	for _, a := range item.Attachments {
		if _, drop := remove[a.ID]; drop {
			res.Removed = append(res.Removed, a)
			continue
		}
		kept = append(kept, a)
	}
	kept = append(kept, p.AppendAttachments...)
	for i := range kept {
		if kept[i].ID == "" {
			kept[i].ID = uuid.NewString()
		}
		kept[i].ItemID = item.ID
		kept[i].Position = i
	}
	item.Attachments = kept
	return res, nil
}
