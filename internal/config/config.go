package config

import (
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Repository RepositoryConfig `mapstructure:"repository" validate:"required"`
	SQLite     SQLiteConfig     `mapstructure:"sqlite"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	MySQL      MySQLConfig      `mapstructure:"mysql"`
	Logging    LoggingConfig    `mapstructure:"logging" validate:"required"`
}

// ServerConfig contains all HTTP server related configuration settings.
type ServerConfig struct {
	Host        string   `mapstructure:"host" validate:"required"`
	Port        int      `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// Addr returns the host:port address the HTTP server binds to.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// RepositoryConfig selects which persistence backend the application uses.
// Backend is validated by the repository factory, which owns the set of
// supported backends and reports unknown ones together with the full list.
type RepositoryConfig struct {
	Backend string `mapstructure:"backend" validate:"required"`
}

// SQLiteConfig contains settings for the SQLite persistence backend.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// PostgresConfig contains settings for the PostgreSQL persistence backend.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// DSN returns the connection string in URL form for database/sql with the
// pgx driver.
func (c PostgresConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Database,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else if c.User != "" {
		u.User = url.User(c.User)
	}
	if c.SSLMode != "" {
		q := url.Values{}
		q.Set("sslmode", c.SSLMode)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// MySQLConfig contains settings for the MySQL persistence backend.
// ConnectAttempts and ConnectDelay control the startup retry loop.
type MySQLConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	ConnectAttempts int           `mapstructure:"connect_attempts"`
	ConnectDelay    time.Duration `mapstructure:"connect_delay"`
}

// DSN returns the go-sql-driver connection string. ParseTime is always on so
// DATETIME columns scan into time.Time.
func (c MySQLConfig) DSN() string {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.DBName = c.Database
	mc.ParseTime = true
	mc.Loc = time.UTC
	return mc.FormatDSN()
}

// LoggingConfig contains structured logging settings.
// An empty DBPath disables log persistence.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	DBPath string `mapstructure:"db_path"`
}
