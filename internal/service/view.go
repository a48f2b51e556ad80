package service

import "github.com/shinyyama/home-inventory/internal/model"

// ItemView is an item as returned to clients: blob keys replaced by signed
// links. A nil link means the blob is temporarily unavailable.
type ItemView struct {
	Item        *model.Item
	ImageURL    *string
	Attachments []AttachmentView
}

type AttachmentView struct {
	ID          string
	Filename    string
	ContentType string
	URL         *string
}
