// Package memory is an in-process blob backend for development and tests.
// Signed URLs point at BaseURL and are verified with an HMAC held in memory.
package memory

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shinyyama/home-inventory/internal/storage"
)

var ErrInvalidSignature = errors.New("invalid or expired signature")

type object struct {
	data        []byte
	contentType string
}

// Backend keeps blobs in a map guarded by a RWMutex.
type Backend struct {
	mu      sync.RWMutex
	objects map[string]object
	baseURL string
	secret  []byte
	now     func() time.Time
}

// New creates an empty backend whose signed URLs are rooted at baseURL,
// e.g. "http://localhost:8080/blobs".
func New(baseURL string) *Backend {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic(fmt.Sprintf("memory storage: read random secret: %v", err))
	}
	if baseURL == "" {
		baseURL = "memory://blobs"
	}
	return &Backend{
		objects: make(map[string]object),
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		now:     time.Now,
	}
}

func (b *Backend) Name() string { return "memory" }

func (b *Backend) Put(ctx context.Context, obj storage.Object) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[obj.Key] = object{data: data, contentType: obj.ContentType}
	return nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[key]; !ok {
		return fmt.Errorf("%s: %w", key, storage.ErrObjectNotFound)
	}
	delete(b.objects, key)
	return nil
}

// SignedURL returns <baseURL>/<key>?expires=<unix>&nonce=<n>&sig=<hmac>.
// Each call carries a fresh nonce, so two links for the same key differ.
func (b *Backend) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	expires := strconv.FormatInt(b.now().Add(ttl).Unix(), 10)
	nonce := strings.ReplaceAll(uuid.NewString(), "-", "")
	q := url.Values{}
	q.Set("expires", expires)
	q.Set("nonce", nonce)
	q.Set("sig", b.sign(key, expires, nonce))
	return fmt.Sprintf("%s/%s?%s", b.baseURL, escapeKey(key), q.Encode()), nil
}

// Verify checks a link produced by SignedURL.
func (b *Backend) Verify(key, expires, nonce, sig string) error {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil || b.now().Unix() > exp {
		return ErrInvalidSignature
	}
	want := b.sign(key, expires, nonce)
	if !hmac.Equal([]byte(want), []byte(sig)) {
		return ErrInvalidSignature
	}
	return nil
}

// Open returns the blob bytes and content type.
func (b *Backend) Open(key string) (io.Reader, string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	o, ok := b.objects[key]
	if !ok {
		return nil, "", storage.ErrObjectNotFound
	}
	return bytes.NewReader(o.data), o.contentType, nil
}

// Has reports whether a blob exists under key.
func (b *Backend) Has(key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.objects[key]
	return ok
}

// Keys lists stored keys in sorted order.
func (b *Backend) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]string, 0, len(b.objects))
	for k := range b.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (b *Backend) sign(key, expires, nonce string) string {
	mac := hmac.New(sha256.New, b.secret)
	mac.Write([]byte(key))
	mac.Write([]byte{0})
	mac.Write([]byte(expires))
	mac.Write([]byte{0})
	mac.Write([]byte(nonce))
	return hex.EncodeToString(mac.Sum(nil))
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
