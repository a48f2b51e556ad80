package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"
)

// Gateway wraps a Backend with the error taxonomy the item lifecycle relies on:
// uploads fail with *WriteError, deletes are idempotent and fail with
// *DeleteError, and signing never fails (it yields nil instead).
type Gateway struct {
	backend Backend
	timeout time.Duration
	ttl     time.Duration
	logger  *slog.Logger
}

type Option func(*Gateway)

// WithTimeout bounds every backend call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.timeout = d }
}

// WithSignedURLTTL sets the lifetime of links returned by SignedReadURL.
func WithSignedURLTTL(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.ttl = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

func NewGateway(backend Backend, opts ...Option) *Gateway {
	g := &Gateway{
		backend: backend,
		ttl:     DefaultSignedURLTTL,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Backend returns the wrapped backend.
func (g *Gateway) Backend() Backend {
	return g.backend
}

// TTL returns the configured signed URL lifetime.
func (g *Gateway) TTL() time.Duration {
	return g.ttl
}

// Put stores body under key and returns the key. The caller assigns keys
// (see NewKey); the gateway never invents one.
func (g *Gateway) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if key == "" {
		return "", &WriteError{Key: key, Err: errors.New("empty key")}
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	err := g.backend.Put(ctx, Object{Key: key, Body: body, Size: size, ContentType: contentType})
	if err != nil {
		return "", &WriteError{Key: key, Err: err}
	}
	return key, nil
}

// Delete removes the blob under key. Deleting an empty or missing key succeeds.
func (g *Gateway) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	if err := g.backend.Delete(ctx, key); err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			g.logger.Debug("blob already absent", "backend", g.backend.Name(), "key", key)
			return nil
		}
		return &DeleteError{Key: key, Err: err}
	}
	return nil
}

// SignedReadURL returns a read link for key valid for the gateway TTL, or nil
// when key is empty or the link could not be generated. A nil result means the
// blob is temporarily unavailable for display, not that the item is gone.
func (g *Gateway) SignedReadURL(ctx context.Context, key string) *string {
	return g.SignedReadURLWithTTL(ctx, key, g.ttl)
}

func (g *Gateway) SignedReadURLWithTTL(ctx context.Context, key string, ttl time.Duration) *string {
	if key == "" {
		return nil
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	u, err := g.backend.SignedURL(ctx, key, ttl)
	if err != nil {
		g.logger.Warn("sign url failed", "backend", g.backend.Name(), "key", key, "error", err)
		return nil
	}
	return &u
}

func (g *Gateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, g.timeout)
}
