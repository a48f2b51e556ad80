package memory

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinyyama/home-inventory/internal/storage"
)

func put(t *testing.T, b *Backend, key, body string) {
	t.Helper()
	require.NoError(t, b.Put(context.Background(), storage.Object{
		Key:         key,
		Body:        strings.NewReader(body),
		Size:        int64(len(body)),
		ContentType: "text/plain",
	}))
}

func TestPutOpenDelete(t *testing.T) {
	b := New("")
	put(t, b, "attachments/r.txt", "hello")

	r, ct, err := b.Open("attachments/r.txt")
	require.NoError(t, err)
	data, _ := io.ReadAll(r)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, "text/plain", ct)
	assert.Equal(t, []string{"attachments/r.txt"}, b.Keys())

	require.NoError(t, b.Delete(context.Background(), "attachments/r.txt"))
	err = b.Delete(context.Background(), "attachments/r.txt")
	assert.True(t, errors.Is(err, storage.ErrObjectNotFound))
	_, _, err = b.Open("attachments/r.txt")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestSignedURLVerify(t *testing.T) {
	b := New("http://localhost:8080/blobs/")
	put(t, b, "images/my photo.png", "png")

	raw, err := b.SignedURL(context.Background(), "images/my photo.png", time.Hour)
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/blobs/images/my photo.png", u.Path)

	q := u.Query()
	assert.NoError(t, b.Verify("images/my photo.png", q.Get("expires"), q.Get("nonce"), q.Get("sig")))
	assert.ErrorIs(t, b.Verify("images/other.png", q.Get("expires"), q.Get("nonce"), q.Get("sig")), ErrInvalidSignature)
	assert.ErrorIs(t, b.Verify("images/my photo.png", q.Get("expires"), "tampered", q.Get("sig")), ErrInvalidSignature)
}

func TestSignedURLExpires(t *testing.T) {
	b := New("")
	start := time.Now()
	b.now = func() time.Time { return start }

	raw, err := b.SignedURL(context.Background(), "images/a.png", time.Minute)
	require.NoError(t, err)
	u, _ := url.Parse(raw)
	q := u.Query()

	b.now = func() time.Time { return start.Add(2 * time.Minute) }
	assert.ErrorIs(t, b.Verify("images/a.png", q.Get("expires"), q.Get("nonce"), q.Get("sig")), ErrInvalidSignature)
}

func TestCanceledContext(t *testing.T) {
	b := New("")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Put(ctx, storage.Object{Key: "k", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, b.Has("k"))
}
