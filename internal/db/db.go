package db

import (
	"net"
	"strings"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/shinyyama/home-inventory/internal/config"
	"github.com/shinyyama/home-inventory/internal/model"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// BuildDSN renders the driver DSN. A Cloud SQL instance name wins over
// DB_HOST; a host may be a bare name, a socket path, or already wrapped as
// tcp(...) or unix(...).
func BuildDSN(cfg *config.Config) string {
	dc := mysqldrv.NewConfig()
	dc.User = cfg.DBUser
	dc.Passwd = cfg.DBPassword
	dc.DBName = cfg.DBName
	dc.ParseTime = true
	dc.Loc = time.UTC
	dc.Params = map[string]string{"charset": "utf8mb4"}
	dc.Net, dc.Addr = endpoint(cfg)
	return dc.FormatDSN()
}

func endpoint(cfg *config.Config) (network, addr string) {
	host := strings.TrimSpace(cfg.DBHost)
	switch {
	case cfg.InstanceConnectionName != "":
		return "unix", "/cloudsql/" + cfg.InstanceConnectionName
	case strings.HasPrefix(host, "tcp(") && strings.HasSuffix(host, ")"):
		return "tcp", host[len("tcp(") : len(host)-1]
	case strings.HasPrefix(host, "unix(") && strings.HasSuffix(host, ")"):
		return "unix", host[len("unix(") : len(host)-1]
	case strings.HasPrefix(host, "/"):
		return "unix", host
	}
	return "tcp", net.JoinHostPort(host, cfg.DBPort)
}

func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := BuildDSN(cfg)
	gcfg := &gorm.Config{
		PrepareStmt: true,
		Logger:      logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
	db, err := gorm.Open(mysql.Open(dsn), gcfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(10)

	return db, nil
}

// Migrate creates or updates the items and item_attachments tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.Item{}, &model.Attachment{})
}
