package storage_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinyyama/home-inventory/internal/storage"
	"github.com/shinyyama/home-inventory/internal/storage/memory"
)

type failingBackend struct {
	*memory.Backend
	putErr, deleteErr, signErr error
}

func (f *failingBackend) Put(ctx context.Context, obj storage.Object) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.Backend.Put(ctx, obj)
}

func (f *failingBackend) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.Backend.Delete(ctx, key)
}

func (f *failingBackend) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	return f.Backend.SignedURL(ctx, key, ttl)
}

func TestGatewayPutAndDelete(t *testing.T) {
	ctx := context.Background()
	mem := memory.New("")
	gw := storage.NewGateway(mem)

	key, err := gw.Put(ctx, "images/a.png", strings.NewReader("png"), 3, "")
	require.NoError(t, err)
	assert.Equal(t, "images/a.png", key)
	assert.True(t, mem.Has(key))

	_, ct, err := mem.Open(key)
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", ct)

	require.NoError(t, gw.Delete(ctx, key))
	assert.False(t, mem.Has(key))
}

func TestGatewayDeleteIsIdempotent(t *testing.T) {
	gw := storage.NewGateway(memory.New(""))

	assert.NoError(t, gw.Delete(context.Background(), ""))
	assert.NoError(t, gw.Delete(context.Background(), "images/never-existed.png"))
}

func TestGatewayWrapsBackendErrors(t *testing.T) {
	boom := errors.New("boom")
	fb := &failingBackend{Backend: memory.New(""), putErr: boom, deleteErr: boom}
	gw := storage.NewGateway(fb)

	_, err := gw.Put(context.Background(), "images/a.png", strings.NewReader("x"), 1, "image/png")
	var we *storage.WriteError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, "images/a.png", we.Key)
	assert.ErrorIs(t, err, boom)

	err = gw.Delete(context.Background(), "images/a.png")
	var de *storage.DeleteError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "images/a.png", de.Key)

	_, err = gw.Put(context.Background(), "", strings.NewReader("x"), 1, "")
	assert.True(t, errors.As(err, &we))
}

func TestGatewaySignedReadURL(t *testing.T) {
	ctx := context.Background()
	mem := memory.New("http://localhost:8080/blobs")
	gw := storage.NewGateway(mem, storage.WithSignedURLTTL(time.Minute))
	_, err := gw.Put(ctx, "images/a.png", strings.NewReader("png"), 3, "image/png")
	require.NoError(t, err)

	first := gw.SignedReadURL(ctx, "images/a.png")
	second := gw.SignedReadURL(ctx, "images/a.png")
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.NotEqual(t, *first, *second)
	assert.True(t, strings.HasPrefix(*first, "http://localhost:8080/blobs/images/a.png?"))
	assert.Equal(t, time.Minute, gw.TTL())

	assert.Nil(t, gw.SignedReadURL(ctx, ""))
}

func TestGatewaySignFailureYieldsNil(t *testing.T) {
	fb := &failingBackend{Backend: memory.New(""), signErr: errors.New("no signer")}
	gw := storage.NewGateway(fb)

	assert.Nil(t, gw.SignedReadURL(context.Background(), "images/a.png"))
}

func TestGatewayTimeout(t *testing.T) {
	gw := storage.NewGateway(slowBackend{}, storage.WithTimeout(10*time.Millisecond))

	_, err := gw.Put(context.Background(), "images/a.png", strings.NewReader("x"), 1, "image/png")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type slowBackend struct{}

func (slowBackend) Name() string { return "slow" }

func (slowBackend) Put(ctx context.Context, _ storage.Object) error {
	<-ctx.Done()
	return ctx.Err()
}

func (slowBackend) Delete(ctx context.Context, _ string) error {
	<-ctx.Done()
	return ctx.Err()
}

func (slowBackend) SignedURL(ctx context.Context, _ string, _ time.Duration) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}
