package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	DBDriver               string `env:"DB_DRIVER" envDefault:"mysql"` // mysql or memory
	DBUser                 string `env:"DB_USER"`
	DBPassword             string `env:"DB_PASSWORD"`
	DBHost                 string `env:"DB_HOST"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName                 string `env:"DB_NAME"`
	DBPort                 string `env:"DB_PORT" envDefault:"3306"`
	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`

	StorageBackend  string `env:"STORAGE_BACKEND" envDefault:"memory"` // gcs, s3 or memory
	StorageBucket   string `env:"STORAGE_BUCKET"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	GCSCredentials  string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	GCSSignerEmail  string `env:"GCS_SIGNER_EMAIL"`
	GCSSignerKey    string `env:"GCS_SIGNER_KEY_FILE"`
	S3Region        string `env:"S3_REGION" envDefault:"us-east-1"`
	S3AccessKeyID   string `env:"S3_ACCESS_KEY_ID"`
	S3SecretKey     string `env:"S3_SECRET_ACCESS_KEY"`
	S3Endpoint      string `env:"S3_ENDPOINT"`
	S3UsePathStyle  bool   `env:"S3_USE_PATH_STYLE" envDefault:"false"`
	SignedURLTTLSec int    `env:"SIGNED_URL_TTL_SECONDS" envDefault:"3600"`
	StorageTimeout  int    `env:"STORAGE_TIMEOUT_SECONDS" envDefault:"60"`

	MaxAttachments    int    `env:"MAX_ATTACHMENTS" envDefault:"5"`
	UploadConcurrency int    `env:"UPLOAD_CONCURRENCY" envDefault:"1"`
	MaxBodySize       string `env:"MAX_BODY_SIZE" envDefault:"50M"`

	FirebaseProjectID string   `env:"FIREBASE_PROJECT_ID"`
	AllowedOrigins    []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	LogLevel          string   `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "memory":
	case "mysql":
		var missing []string
		if c.DBUser == "" {
			missing = append(missing, "DB_USER")
		}
		if c.DBHost == "" && c.InstanceConnectionName == "" {
			missing = append(missing, "DB_HOST")
		}
		if c.DBName == "" {
			missing = append(missing, "DB_NAME")
		}
		if len(missing) > 0 {
			return fmt.Errorf("config: mysql driver requires %s", strings.Join(missing, ", "))
		}
	default:
		return fmt.Errorf("config: unknown DB_DRIVER %q (use mysql or memory)", c.DBDriver)
	}

	switch c.StorageBackend {
	case "memory":
	case "gcs", "s3":
		if c.StorageBucket == "" {
			return fmt.Errorf("config: STORAGE_BACKEND=%s requires STORAGE_BUCKET", c.StorageBackend)
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_BACKEND %q (use gcs, s3 or memory)", c.StorageBackend)
	}

	if c.SignedURLTTLSec <= 0 {
		return fmt.Errorf("config: SIGNED_URL_TTL_SECONDS must be positive")
	}
	if c.MaxAttachments <= 0 {
		return fmt.Errorf("config: MAX_ATTACHMENTS must be positive")
	}
	return nil
}

func (c *Config) SignedURLTTL() time.Duration {
	return time.Duration(c.SignedURLTTLSec) * time.Second
}

func (c *Config) StorageOpTimeout() time.Duration {
	return time.Duration(c.StorageTimeout) * time.Second
}
