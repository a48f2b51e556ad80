package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/shinyyama/home-inventory/internal/model"
	"github.com/shinyyama/home-inventory/internal/repository"
	"github.com/shinyyama/home-inventory/internal/storage"
)

const DefaultMaxAttachments = 5

// BlobGateway is the part of the object store gateway the lifecycle needs.
type BlobGateway interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	SignedReadURL(ctx context.Context, key string) *string
}

// ItemService keeps item records and their blobs in step across create,
// update and delete, and signs blob links on the way out.
type ItemService interface {
	Create(ctx context.Context, req CreateItemRequest) (*model.Item, error)
	Get(ctx context.Context, id string) (*ItemView, error)
	List(ctx context.Context, filter repository.ListFilter) ([]ItemView, error)
	Update(ctx context.Context, id string, req UpdateItemRequest) (*model.Item, error)
	Delete(ctx context.Context, id string) (*model.Item, error)
	Enrich(ctx context.Context, item *model.Item) ItemView
}

type CreateItemRequest struct {
	Fields      model.ItemInput
	Image       *Upload
	Attachments []Upload
}

type UpdateItemRequest struct {
	Fields      model.ItemInput
	Image       *Upload
	Attachments []Upload
	// DeletedAttachments holds attachment ids. A value that is not an id is
	// accepted as a filename when exactly one attachment carries it.
	DeletedAttachments []string
}

type Options struct {
	MaxAttachments    int
	UploadConcurrency int
	Logger            *slog.Logger
}

type itemService struct {
	repo           repository.ItemRepository
	gw             BlobGateway
	maxAttachments int
	concurrency    int
	logger         *slog.Logger
}

func NewItemService(repo repository.ItemRepository, gw BlobGateway, opts Options) ItemService {
	s := &itemService{
		repo:           repo,
		gw:             gw,
		maxAttachments: opts.MaxAttachments,
		concurrency:    opts.UploadConcurrency,
		logger:         opts.Logger,
	}
	if s.maxAttachments <= 0 {
		s.maxAttachments = DefaultMaxAttachments
	}
	if s.concurrency <= 0 {
		s.concurrency = 1
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func (s *itemService) Create(ctx context.Context, req CreateItemRequest) (*model.Item, error) {
	if req.Image == nil {
		return nil, ErrMissingImage
	}
	if err := s.checkUploads(req.Image, req.Attachments); err != nil {
		return nil, err
	}
	item, err := model.NewItem(req.Fields)
	if err != nil {
		return nil, err
	}

	rb := newRollback(s.gw, s.logger)
	imageKey, err := s.upload(ctx, storage.ImagePrefix, *req.Image)
	if err != nil {
		return nil, err
	}
	rb.track(imageKey)

	attachments, err := s.uploadAttachments(ctx, req.Attachments, rb)
	if err != nil {
		rb.run(ctx)
		return nil, err
	}

	item.ImageKey = imageKey
	item.Attachments = attachments
	if err := s.repo.Create(ctx, item); err != nil {
		rb.run(ctx)
		return nil, &PersistenceError{Op: "create", Err: err}
	}
	s.logger.Info("item created", "item_id", item.ID, "image_key", item.ImageKey, "attachments", len(item.Attachments))
	return item, nil
}

func (s *itemService) Get(ctx context.Context, id string) (*ItemView, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find item %s: %w", id, err)
	}
	v := s.Enrich(ctx, item)
	return &v, nil
}

func (s *itemService) List(ctx context.Context, filter repository.ListFilter) ([]ItemView, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	views := make([]ItemView, 0, len(items))
	for i := range items {
		views = append(views, s.Enrich(ctx, &items[i]))
	}
	return views, nil
}

// Update applies field changes, swaps the image and edits the attachment list.
// New blobs are uploaded before the record is written; replaced and removed
// blobs are deleted only after the write succeeded, so the stored record never
// points at a missing blob.
func (s *itemService) Update(ctx context.Context, id string, req UpdateItemRequest) (*model.Item, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find item %s: %w", id, err)
	}
	if err := s.checkUploads(req.Image, req.Attachments); err != nil {
		return nil, err
	}
	if err := req.Fields.Validate(); err != nil {
		return nil, err
	}
	removed, err := matchAttachments(current.Attachments, req.DeletedAttachments)
	if err != nil {
		return nil, err
	}

	patch := repository.ItemPatch{Fields: req.Fields}
	for _, a := range removed {
		patch.RemoveAttachmentIDs = append(patch.RemoveAttachmentIDs, a.ID)
	}

	rb := newRollback(s.gw, s.logger)
	if req.Image != nil {
		key, err := s.upload(ctx, storage.ImagePrefix, *req.Image)
		if err != nil {
			return nil, err
		}
		rb.track(key)
		patch.ImageKey = &key
	}
	added, err := s.uploadAttachments(ctx, req.Attachments, rb)
	if err != nil {
		rb.run(ctx)
		return nil, err
	}
	patch.AppendAttachments = added

	res, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		rb.run(ctx)
		var ve *ValidationError
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		case errors.As(err, &ve):
			return nil, err
		}
		return nil, &PersistenceError{Op: "update", Err: err}
	}

	// Purge what the write itself displaced; current may be stale when
	// another update committed in between.
	if res.ReplacedImageKey != "" {
		s.purge(ctx, res.ReplacedImageKey, "replaced image")
	}
	for _, a := range res.Removed {
		s.purge(ctx, a.Key, "removed attachment")
	}
	s.logger.Info("item updated", "item_id", id, "image_replaced", res.ReplacedImageKey != "",
		"attachments_added", len(added), "attachments_removed", len(res.Removed))
	return res.Item, nil
}

// Delete removes the record first, then every blob it referenced. Blob
// failures do not stop the remaining deletes; they come back as a
// *CleanupError alongside the deleted item.
func (s *itemService) Delete(ctx context.Context, id string) (*model.Item, error) {
	item, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &PersistenceError{Op: "delete", Err: err}
	}

	cleanupCtx := context.WithoutCancel(ctx)
	var failed []*storage.DeleteError
	for _, key := range item.BlobKeys() {
		if err := s.gw.Delete(cleanupCtx, key); err != nil {
			var de *storage.DeleteError
			if !errors.As(err, &de) {
				de = &storage.DeleteError{Key: key, Err: err}
			}
			s.logger.Warn("blob delete failed after item delete", "item_id", id, "key", key, "error", err)
			failed = append(failed, de)
		}
	}
	if len(failed) > 0 {
		return item, &CleanupError{ItemID: id, Failed: failed}
	}
	s.logger.Info("item deleted", "item_id", id, "blobs", len(item.BlobKeys()))
	return item, nil
}

// Enrich swaps stored keys for freshly signed read links. It does not touch
// item and persists nothing.
func (s *itemService) Enrich(ctx context.Context, item *model.Item) ItemView {
	v := ItemView{
		Item:        item,
		ImageURL:    s.gw.SignedReadURL(ctx, item.ImageKey),
		Attachments: make([]AttachmentView, 0, len(item.Attachments)),
	}
	for _, a := range item.Attachments {
		v.Attachments = append(v.Attachments, AttachmentView{
			ID:          a.ID,
			Filename:    a.Filename,
			ContentType: a.ContentType,
			URL:         s.gw.SignedReadURL(ctx, a.Key),
		})
	}
	return v
}

func (s *itemService) checkUploads(image *Upload, attachments []Upload) error {
	if len(attachments) > s.maxAttachments {
		return &ValidationError{Field: "attachments", Reason: fmt.Sprintf("accepts at most %d files", s.maxAttachments)}
	}
	if image != nil && !isImageType(image.ContentType) {
		return &ValidationError{Field: "image", Reason: "must be an image file"}
	}
	return nil
}

func (s *itemService) upload(ctx context.Context, prefix string, u Upload) (string, error) {
	key := storage.NewKey(prefix, u.Filename)
	body, err := u.Open()
	if err != nil {
		return "", &storage.WriteError{Key: key, Err: err}
	}
	defer body.Close()
	return s.gw.Put(ctx, key, body, u.Size, u.ContentType)
}

// uploadAttachments stores uploads with at most s.concurrency in flight and
// returns them in submission order. After the first failure no further
// upload starts; whatever did land is tracked on rb for the caller to undo.
func (s *itemService) uploadAttachments(ctx context.Context, uploads []Upload, rb *rollback) ([]model.Attachment, error) {
	if len(uploads) == 0 {
		return nil, nil
	}
	out := make([]model.Attachment, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, u := range uploads {
		i, u := i, u
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			key, err := s.upload(gctx, storage.AttachmentPrefix, u)
			if err != nil {
				return err
			}
			rb.track(key)
			out[i] = model.Attachment{
				ID:          uuid.NewString(),
				Key:         key,
				Filename:    u.Filename,
				ContentType: u.ContentType,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &storage.WriteError{Key: storage.AttachmentPrefix, Err: err}
	}
	return out, nil
}

// purge deletes a blob the committed record no longer references.
func (s *itemService) purge(ctx context.Context, key, what string) {
	if err := s.gw.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.logger.Warn("blob cleanup failed; blob orphaned", "what", what, "key", key, "error", err)
	}
}

// matchAttachments resolves deletion references against the item's
// attachments, in record order. Ids win; a bare filename only matches when it
// is unique on the item. Unknown references are ignored.
func matchAttachments(attachments []model.Attachment, refs []string) ([]model.Attachment, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	selected := make(map[string]bool)
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		var byName []string
		found := false
		for _, a := range attachments {
			if a.ID == ref {
				selected[a.ID] = true
				found = true
				break
			}
			if a.Filename == ref {
				byName = append(byName, a.ID)
			}
		}
		if found {
			continue
		}
		switch len(byName) {
		case 0:
		case 1:
			selected[byName[0]] = true
		default:
			return nil, &ValidationError{
				Field:  "deletedAttachments",
				Reason: fmt.Sprintf("filename %q matches %d attachments; send the attachment id", ref, len(byName)),
			}
		}
	}
	var out []model.Attachment
	for _, a := range attachments {
		if selected[a.ID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func isImageType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return ct == "" || ct == "application/octet-stream" || strings.HasPrefix(ct, "image/")
}
