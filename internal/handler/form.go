package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/home-inventory/internal/model"
	"github.com/shinyyama/home-inventory/internal/service"
)

const (
	fieldImage              = "image"
	fieldAttachments        = "attachments"
	fieldDeletedAttachments = "deletedAttachments"
)

// itemForm is a decoded create/update submission.
type itemForm struct {
	fields             model.ItemInput
	image              *service.Upload
	attachments        []service.Upload
	deletedAttachments []string
}

// readItemForm decodes multipart, urlencoded or JSON bodies. A text field is
// recorded only when its key is present, so an explicit empty value is kept
// apart from an omitted one.
func readItemForm(c echo.Context) (*itemForm, error) {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	switch {
	case strings.HasPrefix(ct, echo.MIMEMultipartForm):
		return readMultipart(c)
	case strings.HasPrefix(ct, echo.MIMEApplicationJSON):
		return readJSON(c)
	case strings.HasPrefix(ct, echo.MIMEApplicationForm):
		params, err := c.FormParams()
		if err != nil {
			return nil, &service.ValidationError{Field: "body", Reason: "is not a valid form"}
		}
		f := &itemForm{}
		f.setValues(params)
		return f, nil
	case c.Request().ContentLength == 0:
		return &itemForm{}, nil
	default:
		return nil, echo.NewHTTPError(http.StatusUnsupportedMediaType, "unsupported content type")
	}
}

func readMultipart(c echo.Context) (*itemForm, error) {
	mf, err := c.MultipartForm()
	if err != nil {
		return nil, &service.ValidationError{Field: "body", Reason: "is not a valid multipart form"}
	}
	f := &itemForm{}
	f.setValues(mf.Value)

	images := mf.File[fieldImage]
	if len(images) > 1 {
		return nil, &service.ValidationError{Field: fieldImage, Reason: "accepts a single file"}
	}
	if len(images) == 1 {
		u := service.UploadFromFileHeader(images[0])
		f.image = &u
	}
	for _, fh := range mf.File[fieldAttachments] {
		f.attachments = append(f.attachments, service.UploadFromFileHeader(fh))
	}
	return f, nil
}

func (f *itemForm) setValues(values map[string][]string) {
	for key, vs := range values {
		if len(vs) == 0 {
			continue
		}
		switch key {
		case fieldDeletedAttachments, fieldDeletedAttachments + "[]":
			f.deletedAttachments = append(f.deletedAttachments, vs...)
		default:
			f.fields.Set(key, vs[len(vs)-1])
		}
	}
}

func readJSON(c echo.Context) (*itemForm, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
		return nil, &service.ValidationError{Field: "body", Reason: "is not valid json"}
	}
	f := &itemForm{}
	for key, msg := range raw {
		if key == fieldDeletedAttachments {
			ids, err := stringList(msg)
			if err != nil {
				return nil, &service.ValidationError{Field: key, Reason: "must be a string or a list of strings"}
			}
			f.deletedAttachments = append(f.deletedAttachments, ids...)
			continue
		}
		v, err := scalarString(msg)
		if err != nil {
			return nil, &service.ValidationError{Field: key, Reason: err.Error()}
		}
		f.fields.Set(key, v)
	}
	return f, nil
}

func scalarString(msg json.RawMessage) (string, error) {
	var v any
	if err := json.Unmarshal(msg, &v); err != nil {
		return "", err
	}
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case float64, bool:
		return strings.TrimSpace(string(msg)), nil
	default:
		return "", fmt.Errorf("must be a scalar value")
	}
}

func stringList(msg json.RawMessage) ([]string, error) {
	var one string
	if err := json.Unmarshal(msg, &one); err == nil {
		return []string{one}, nil
	}
	var many []string
	if err := json.Unmarshal(msg, &many); err != nil {
		return nil, err
	}
	return many, nil
}
