// Package gcs stores blobs in a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	gstorage "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/shinyyama/home-inventory/internal/storage"
)

type Config struct {
	Bucket string
	// CredentialsFile is an optional service account JSON file. Without it the
	// default credential chain is used.
	CredentialsFile string
	// SignerEmail and SignerKeyFile override the identity used for V4 signing.
	// Leave empty to sign with the client credentials.
	SignerEmail   string
	SignerKeyFile string
}

type Backend struct {
	client     *gstorage.Client
	bucket     *gstorage.BucketHandle
	signer     string
	privateKey []byte
}

func New(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("gcs: bucket name is required")
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := gstorage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: new client: %w", err)
	}
	b := &Backend{
		client: client,
		bucket: client.Bucket(cfg.Bucket),
		signer: cfg.SignerEmail,
	}
	if cfg.SignerKeyFile != "" {
		key, err := os.ReadFile(cfg.SignerKeyFile)
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("gcs: read signer key: %w", err)
		}
		b.privateKey = key
	}
	return b, nil
}

func (b *Backend) Name() string { return "gcs" }

func (b *Backend) Put(ctx context.Context, obj storage.Object) error {
	w := b.bucket.Object(obj.Key).NewWriter(ctx)
	w.ContentType = obj.ContentType
	if _, err := io.Copy(w, obj.Body); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	err := b.bucket.Object(key).Delete(ctx)
	if errors.Is(err, gstorage.ErrObjectNotExist) {
		return fmt.Errorf("%s: %w", key, storage.ErrObjectNotFound)
	}
	return err
}

func (b *Backend) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	opts := &gstorage.SignedURLOptions{
		Scheme:  gstorage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(ttl),
	}
	if b.signer != "" {
		opts.GoogleAccessID = b.signer
	}
	if len(b.privateKey) > 0 {
		opts.PrivateKey = b.privateKey
	}
	return b.bucket.SignedURL(key, opts)
}

func (b *Backend) Close() error {
	return b.client.Close()
}
