package db

import (
	"strings"
	"testing"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinyyama/home-inventory/internal/config"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		wantNet  string
		wantAddr string
	}{
		{"host and port", config.Config{DBUser: "u", DBPassword: "p", DBHost: "127.0.0.1", DBPort: "3306", DBName: "inv"}, "tcp", "127.0.0.1:3306"},
		{"wrapped tcp", config.Config{DBUser: "u", DBHost: "tcp(db:3307)", DBName: "inv"}, "tcp", "db:3307"},
		{"wrapped unix", config.Config{DBUser: "u", DBHost: "unix(/tmp/my.sock)", DBName: "inv"}, "unix", "/tmp/my.sock"},
		{"socket path", config.Config{DBUser: "u", DBHost: "/var/run/mysqld.sock", DBName: "inv"}, "unix", "/var/run/mysqld.sock"},
		{"cloud sql", config.Config{DBUser: "u", DBHost: "ignored", DBName: "inv", InstanceConnectionName: "p:r:i"}, "unix", "/cloudsql/p:r:i"},
		{"ipv6 host", config.Config{DBUser: "u", DBHost: "::1", DBPort: "3306", DBName: "inv"}, "tcp", "[::1]:3306"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := BuildDSN(&tt.cfg)
			got, err := mysqldrv.ParseDSN(dsn)
			require.NoError(t, err, dsn)
			assert.Equal(t, tt.wantNet, got.Net)
			assert.Equal(t, tt.wantAddr, got.Addr)
			assert.Equal(t, tt.cfg.DBUser, got.User)
			assert.Equal(t, tt.cfg.DBPassword, got.Passwd)
			assert.Equal(t, "inv", got.DBName)
			assert.True(t, got.ParseTime)
			assert.Equal(t, time.UTC, got.Loc)
			assert.True(t, strings.Contains(dsn, "charset=utf8mb4"), dsn)
		})
	}
}

func TestBuildDSNEscapesPassword(t *testing.T) {
	cfg := config.Config{DBUser: "u", DBPassword: "p@ss/w:rd", DBHost: "db", DBPort: "3306", DBName: "inv"}
	got, err := mysqldrv.ParseDSN(BuildDSN(&cfg))
	require.NoError(t, err)
	assert.Equal(t, "p@ss/w:rd", got.Passwd)
	assert.Equal(t, "db:3306", got.Addr)
}
