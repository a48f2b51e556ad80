package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/home-inventory/internal/model"
	"github.com/shinyyama/home-inventory/internal/repository"
	"github.com/shinyyama/home-inventory/internal/service"
)

type ItemHandler struct {
	svc    service.ItemService
	logger *slog.Logger
}

func NewItemHandler(svc service.ItemService, logger *slog.Logger) *ItemHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ItemHandler{svc: svc, logger: logger}
}

type AttachmentResponse struct {
	ID          string  `json:"id"`
	Filename    string  `json:"filename"`
	ContentType string  `json:"contentType"`
	URL         *string `json:"url"`
}

type ItemResponse struct {
	ID               string               `json:"id"`
	Name             string               `json:"name"`
	SerialNumber     string               `json:"serialNumber"`
	Brand            string               `json:"brand"`
	Model            string               `json:"model"`
	Condition        string               `json:"condition"`
	Category         string               `json:"category"`
	Room             string               `json:"room"`
	PurchaseDate     string               `json:"purchaseDate"`
	PurchaseLocation string               `json:"purchaseLocation"`
	Price            json.Number          `json:"price"`
	Warranty         *string              `json:"warranty"`
	Notes            string               `json:"notes"`
	Image            *string              `json:"image"`
	Attachments      []AttachmentResponse `json:"attachments"`
	CreatedAt        string               `json:"createdAt"`
	UpdatedAt        string               `json:"updatedAt"`
}

type ItemEnvelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Item    ItemResponse `json:"item"`
}

type CreatedEnvelope struct {
	Message string       `json:"message"`
	Item    ItemResponse `json:"item"`
}

type DeleteEnvelope struct {
	Success     bool         `json:"success"`
	Message     string       `json:"message"`
	ItemDeleted ItemResponse `json:"itemDeleted"`
	FailedKeys  []string     `json:"failedKeys,omitempty"`
}

func (h *ItemHandler) List(c echo.Context) error {
	filter := repository.ListFilter{
		Category: model.Category(strings.TrimSpace(c.QueryParam("category"))),
		Room:     model.Room(strings.TrimSpace(c.QueryParam("room"))),
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "unknown category"))
	}
	if filter.Room != "" && !filter.Room.Valid() {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "unknown room"))
	}
	views, err := h.svc.List(c.Request().Context(), filter)
	if err != nil {
		return h.writeError(c, err, "failed to fetch items")
	}
	resp := make([]ItemResponse, 0, len(views))
	for i := range views {
		resp = append(resp, toItemResponse(views[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ItemHandler) Get(c echo.Context) error {
	view, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.writeError(c, err, "failed to fetch item")
	}
	return c.JSON(http.StatusOK, ItemEnvelope{Success: true, Item: toItemResponse(*view)})
}

func (h *ItemHandler) Create(c echo.Context) error {
	form, err := readItemForm(c)
	if err != nil {
		return h.writeError(c, err, "failed to add item")
	}
	ctx := c.Request().Context()
	item, err := h.svc.Create(ctx, service.CreateItemRequest{
		Fields:      form.fields,
		Image:       form.image,
		Attachments: form.attachments,
	})
	if err != nil {
		return h.writeError(c, err, "failed to add item")
	}
	return c.JSON(http.StatusCreated, CreatedEnvelope{
		Message: "Item added successfully",
		Item:    toItemResponse(h.svc.Enrich(ctx, item)),
	})
}

func (h *ItemHandler) Update(c echo.Context) error {
	form, err := readItemForm(c)
	if err != nil {
		return h.writeError(c, err, "failed to update item")
	}
	ctx := c.Request().Context()
	item, err := h.svc.Update(ctx, c.Param("id"), service.UpdateItemRequest{
		Fields:             form.fields,
		Image:              form.image,
		Attachments:        form.attachments,
		DeletedAttachments: form.deletedAttachments,
	})
	if err != nil {
		return h.writeError(c, err, "failed to update item")
	}
	return c.JSON(http.StatusOK, ItemEnvelope{
		Success: true,
		Message: "Item updated successfully",
		Item:    toItemResponse(h.svc.Enrich(ctx, item)),
	})
}

func (h *ItemHandler) Delete(c echo.Context) error {
	item, err := h.svc.Delete(c.Request().Context(), c.Param("id"))
	var cleanup *service.CleanupError
	switch {
	case errors.As(err, &cleanup):
		h.logger.Error("item deleted with leftover blobs", "item_id", cleanup.ItemID, "keys", cleanup.Keys())
		return c.JSON(http.StatusInternalServerError, DeleteEnvelope{
			Success:     false,
			Message:     "Item deleted but some files could not be removed",
			ItemDeleted: toStoredItemResponse(item),
			FailedKeys:  cleanup.Keys(),
		})
	case err != nil:
		return h.writeError(c, err, "failed to delete item")
	}
	return c.JSON(http.StatusOK, DeleteEnvelope{
		Success:     true,
		Message:     "Item deleted successfully",
		ItemDeleted: toStoredItemResponse(item),
	})
}

func (h *ItemHandler) writeError(c echo.Context, err error, fallback string) error {
	var ve *service.ValidationError
	var he *echo.HTTPError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", ve.Error()))
	case errors.Is(err, service.ErrMissingImage):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("missing_image", err.Error()))
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "item not found"))
	case errors.As(err, &he):
		msg, _ := he.Message.(string)
		if msg == "" {
			msg = http.StatusText(he.Code)
		}
		return c.JSON(he.Code, NewErrorResponse("bad_request", msg))
	}
	h.logger.Error(fallback, "error", err, "path", c.Path(), "id", c.Param("id"))
	return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "Internal server error"))
}

func toItemResponse(v service.ItemView) ItemResponse {
	resp := baseItemResponse(v.Item)
	resp.Image = v.ImageURL
	for _, a := range v.Attachments {
		resp.Attachments = append(resp.Attachments, AttachmentResponse{
			ID:          a.ID,
			Filename:    a.Filename,
			ContentType: a.ContentType,
			URL:         a.URL,
		})
	}
	return resp
}

// toStoredItemResponse renders an item with its object keys in place of links.
func toStoredItemResponse(item *model.Item) ItemResponse {
	if item == nil {
		return ItemResponse{Attachments: []AttachmentResponse{}}
	}
	resp := baseItemResponse(item)
	if item.ImageKey != "" {
		key := item.ImageKey
		resp.Image = &key
	}
	for _, a := range item.Attachments {
		key := a.Key
		resp.Attachments = append(resp.Attachments, AttachmentResponse{
			ID:          a.ID,
			Filename:    a.Filename,
			ContentType: a.ContentType,
			URL:         &key,
		})
	}
	return resp
}

func baseItemResponse(item *model.Item) ItemResponse {
	resp := ItemResponse{
		ID:               item.ID,
		Name:             item.Name,
		SerialNumber:     item.SerialNumber,
		Brand:            item.Brand,
		Model:            item.Model,
		Condition:        string(item.Condition),
		Category:         string(item.Category),
		Room:             string(item.Room),
		PurchaseDate:     item.PurchaseDate.Format(model.DateLayout),
		PurchaseLocation: item.PurchaseLocation,
		Price:            json.Number(item.Price.StringFixed(2)),
		Notes:            item.Notes,
		Attachments:      make([]AttachmentResponse, 0, len(item.Attachments)),
		CreatedAt:        item.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        item.UpdatedAt.Format(time.RFC3339),
	}
	if item.Warranty != nil {
		w := item.Warranty.Format(model.DateLayout)
		resp.Warranty = &w
	}
	return resp
}
