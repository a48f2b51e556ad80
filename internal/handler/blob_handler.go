package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/home-inventory/internal/storage"
	"github.com/shinyyama/home-inventory/internal/storage/memory"
)

// BlobHandler serves objects held by the in-process storage backend through
// the signed links that backend hands out.
type BlobHandler struct {
	store *memory.Backend
}

func NewBlobHandler(store *memory.Backend) *BlobHandler {
	return &BlobHandler{store: store}
}

func (h *BlobHandler) Get(c echo.Context) error {
	key, err := url.PathUnescape(c.Param("*"))
	if err != nil || key == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid key"))
	}
	q := c.QueryParams()
	if err := h.store.Verify(key, q.Get("expires"), q.Get("nonce"), q.Get("sig")); err != nil {
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", err.Error()))
	}
	body, contentType, err := h.store.Open(key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "object not found"))
		}
		return err
	}
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return c.Stream(http.StatusOK, contentType, body)
}
