package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shinyyama/home-inventory/internal/config"
	"github.com/shinyyama/home-inventory/internal/db"
	"github.com/shinyyama/home-inventory/internal/repository"
	"github.com/shinyyama/home-inventory/internal/storage"
	"github.com/shinyyama/home-inventory/internal/storage/gcs"
	"github.com/shinyyama/home-inventory/internal/storage/memory"
	"github.com/shinyyama/home-inventory/internal/storage/s3"
	"gorm.io/gorm"
)

// OpenRepository connects the configured item store. The returned func
// releases it.
func OpenRepository(cfg *config.Config) (repository.ItemRepository, func() error, error) {
	if cfg.DBDriver == "memory" {
		return repository.NewMemoryItemRepository(), func() error { return nil }, nil
	}
	conn, err := db.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("db connect: %w", err)
	}
	return attachRepository(conn, db.Migrate)
}

// attachRepository migrates conn and wraps it in the gorm repository. conn is
// closed again when that fails.
func attachRepository(conn *gorm.DB, migrate func(*gorm.DB) error) (repository.ItemRepository, func() error, error) {
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("db handle: %w", err)
	}
	if err := migrate(conn); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("db migrate: %w", err)
	}
	return repository.NewItemRepository(conn), sqlDB.Close, nil
}

// Storage is the opened object store. Blobs is non-nil only for the
// in-process backend.
type Storage struct {
	Gateway *storage.Gateway
	Blobs   *memory.Backend
	Close   func() error
}

func OpenStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Storage, error) {
	opts := []storage.Option{
		storage.WithSignedURLTTL(cfg.SignedURLTTL()),
		storage.WithTimeout(cfg.StorageOpTimeout()),
		storage.WithLogger(logger),
	}
	switch cfg.StorageBackend {
	case "gcs":
		b, err := gcs.New(ctx, gcs.Config{
			Bucket:          cfg.StorageBucket,
			CredentialsFile: cfg.GCSCredentials,
			SignerEmail:     cfg.GCSSignerEmail,
			SignerKeyFile:   cfg.GCSSignerKey,
		})
		if err != nil {
			return nil, err
		}
		return &Storage{Gateway: storage.NewGateway(b, opts...), Close: b.Close}, nil
	case "s3":
		b, err := s3.New(ctx, s3.Config{
			Region:          cfg.S3Region,
			Bucket:          cfg.StorageBucket,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			Endpoint:        cfg.S3Endpoint,
			UsePathStyle:    cfg.S3UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		return &Storage{Gateway: storage.NewGateway(b, opts...), Close: func() error { return nil }}, nil
	default:
		b := memory.New(strings.TrimRight(cfg.PublicBaseURL, "/") + "/blobs")
		return &Storage{Gateway: storage.NewGateway(b, opts...), Blobs: b, Close: func() error { return nil }}, nil
	}
}
