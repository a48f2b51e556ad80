package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, contentType, body string) (*itemForm, error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPatch, "/api/items/1", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	c := echo.New().NewContext(req, httptest.NewRecorder())
	return readItemForm(c)
}

func TestReadJSONForm(t *testing.T) {
	f, err := decode(t, echo.MIMEApplicationJSON, `{"price": 12.5, "notes": null, "deletedAttachments": ["a", "b"], "unknown": 1}`)
	require.NoError(t, err)

	require.NotNil(t, f.fields.Price)
	assert.Equal(t, "12.5", *f.fields.Price)
	require.NotNil(t, f.fields.Notes)
	assert.Equal(t, "", *f.fields.Notes)
	assert.Nil(t, f.fields.Name)
	assert.Equal(t, []string{"a", "b"}, f.deletedAttachments)
}

func TestReadJSONSingleDeletedAttachment(t *testing.T) {
	f, err := decode(t, echo.MIMEApplicationJSON, `{"deletedAttachments": "receipt.pdf"}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"receipt.pdf"}, f.deletedAttachments)
	assert.True(t, f.fields.Empty())
}

func TestReadJSONRejectsObjects(t *testing.T) {
	_, err := decode(t, echo.MIMEApplicationJSON, `{"name": {"first": "x"}}`)
	assert.Error(t, err)

	_, err = decode(t, echo.MIMEApplicationJSON, `not json`)
	assert.Error(t, err)
}

func TestReadURLEncodedForm(t *testing.T) {
	v := url.Values{}
	v.Set("warranty", "")
	v.Add("deletedAttachments[]", "x")
	v.Add("deletedAttachments[]", "y")
	f, err := decode(t, echo.MIMEApplicationForm, v.Encode())
	require.NoError(t, err)

	require.NotNil(t, f.fields.Warranty)
	assert.Equal(t, "", *f.fields.Warranty)
	assert.Equal(t, []string{"x", "y"}, f.deletedAttachments)
}

func TestReadUnsupportedContentType(t *testing.T) {
	_, err := decode(t, "text/plain", "hello")
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnsupportedMediaType, he.Code)
}

func TestReadFormWithoutContentType(t *testing.T) {
	f, err := decode(t, "", "")
	require.NoError(t, err)
	assert.True(t, f.fields.Empty())

	_, err = decode(t, "", `{"notes":"lost"}`)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnsupportedMediaType, he.Code)

	f, err = decode(t, "text/plain", "")
	require.NoError(t, err)
	assert.True(t, f.fields.Empty())
}
