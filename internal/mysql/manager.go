// Package mysql manages the application's MySQL connection pool.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-sql-driver/mysql"
	"github.com/replicate/go/logging"
)

var logger = logging.New("mysql")

type Config struct {
	User     string `env:"MYSQL_USER" envDefault:"root"`
	Password string `env:"MYSQL_PASSWORD" envDefault:""`
	Host     string `env:"MYSQL_HOST" envDefault:"localhost"`
	Port     int    `env:"MYSQL_PORT" envDefault:"3306"`
	Database string `env:"MYSQL_DATABASE" envDefault:"app"`

	// Pool sizing: PoolSize idle connections, up to MaxOverflow extra
	// under load. Connections older than PoolRecycle are discarded.
	PoolSize    int           `env:"SQL_POOL_SIZE" envDefault:"10"`
	MaxOverflow int           `env:"SQL_MAX_OVERFLOW" envDefault:"10"`
	PoolRecycle time.Duration `env:"SQL_POOL_RECYCLE" envDefault:"1800s"`

	TestOnStartup  bool          `env:"SQL_TEST_ON_STARTUP" envDefault:"true"`
	ConnectTimeout time.Duration `env:"SQL_CONNECT_TIMEOUT" envDefault:"5s"`
}

// ConfigFromEnv parses Config from MYSQL_* and SQL_* environment variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse mysql config: %w", err)
	}
	return cfg, nil
}

// Manager owns the *sql.DB pool and its startup/shutdown lifecycle.
type Manager struct {
	cfg Config
	db  *sql.DB
	mu  sync.Mutex
}

func NewManager(cfg Config) *Manager {
	return &Manager{cfg: cfg}
}

// DSN builds the connection string in the driver's canonical format.
func (m *Manager) DSN() string {
	c := mysql.NewConfig()
	c.User = m.cfg.User
	c.Passwd = m.cfg.Password
	c.Net = "tcp"
	c.Addr = fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	c.DBName = m.cfg.Database
	c.Timeout = m.cfg.ConnectTimeout
	return c.FormatDSN()
}

// Startup opens the pool, applies pool limits, and optionally verifies the
// server is reachable. A failed startup ping closes the pool again so the
// manager is left disconnected. Idempotent.
func (m *Manager) Startup(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	log := logger.Sugar()
	if m.db != nil {
		return nil
	}

	db, err := sql.Open("mysql", m.DSN())
	if err != nil {
		return fmt.Errorf("failed to open mysql pool: %w", err)
	}
	db.SetMaxOpenConns(m.cfg.PoolSize + m.cfg.MaxOverflow)
	db.SetMaxIdleConns(m.cfg.PoolSize)
	db.SetConnMaxLifetime(m.cfg.PoolRecycle)

	if m.cfg.TestOnStartup {
		pingCtx, cancel := context.WithTimeout(ctx, m.cfg.ConnectTimeout)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			db.Close()
			return fmt.Errorf("database startup ping failed: %w", err)
		}
	}

	log.Infow("connected to mysql",
		"addr", fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port),
		"database", m.cfg.Database,
		"pool-size", m.cfg.PoolSize,
		"max-overflow", m.cfg.MaxOverflow,
	)
	m.db = db
	return nil
}

// Ping reports whether the database is reachable.
func (m *Manager) Ping(ctx context.Context) error {
	m.mu.Lock()
	db := m.db
	m.mu.Unlock()
	if db == nil {
		return fmt.Errorf("mysql manager not started")
	}
	pingCtx, cancel := context.WithTimeout(ctx, m.cfg.ConnectTimeout)
	defer cancel()
	return db.PingContext(pingCtx)
}

// DB returns the underlying pool, or nil before Startup.
func (m *Manager) DB() *sql.DB {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.db
}

// Shutdown closes the pool. Safe to call multiple times or before Startup.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	if err != nil {
		return fmt.Errorf("failed to close mysql pool: %w", err)
	}
	return nil
}
