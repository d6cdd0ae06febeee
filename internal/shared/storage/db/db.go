package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver

	"procedure-backend/internal/shared/telemetry"
)

// ErrNoDatabaseURL is returned when no connection string is configured.
var ErrNoDatabaseURL = errors.New("DATABASE_URL is empty")

// Profile selects pool defaults for the kind of process opening the pool.
type Profile string

const (
	ProfileServer  Profile = "server"
	ProfileLambda  Profile = "lambda"
	ProfileMigrate Profile = "migrate"
)

// Options controls database pool and connectivity behavior.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

var profileDefaults = map[Profile]Options{
	// Lambda runs one request per instance; keep the pool tiny so concurrency
	// does not exhaust Postgres connections.
	ProfileLambda: {
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxIdleTime: 30 * time.Second,
		ConnMaxLifetime: 15 * time.Minute,
		PingTimeout:     3 * time.Second,
	},
	ProfileServer: {
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxIdleTime: 2 * time.Minute,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     5 * time.Second,
	},
	ProfileMigrate: {
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxIdleTime: 2 * time.Minute,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     5 * time.Second,
	},
}

var (
	openDB      = sql.Open
	singletonMu sync.Mutex
	singletonDB *sql.DB
)

// IsLambdaRuntime reports whether the current process is running in AWS Lambda.
func IsLambdaRuntime() bool {
	return strings.TrimSpace(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")) != ""
}

// DetectProfile picks ProfileLambda inside Lambda and ProfileServer elsewhere.
func DetectProfile() Profile {
	if IsLambdaRuntime() {
		return ProfileLambda
	}
	return ProfileServer
}

// OptionsFor returns the defaults for p with any DB_* env overrides applied.
func OptionsFor(p Profile) Options {
	opts, ok := profileDefaults[p]
	if !ok {
		opts = profileDefaults[ProfileServer]
	}
	overrideInt("DB_MAX_OPEN_CONNS", &opts.MaxOpenConns)
	overrideInt("DB_MAX_IDLE_CONNS", &opts.MaxIdleConns)
	overrideDuration("DB_CONN_MAX_LIFETIME", &opts.ConnMaxLifetime)
	overrideDuration("DB_CONN_MAX_IDLE_TIME", &opts.ConnMaxIdleTime)
	overrideDuration("DB_PING_TIMEOUT", &opts.PingTimeout)
	return opts
}

// Connect opens a pgx-backed pool and verifies connectivity.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, ErrNoDatabaseURL
	}

	database, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	applyOptions(database, opts)

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if err := Ping(ctx, database, timeout); err != nil {
		database.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logPoolStats(database, "db.connect")
	return database, nil
}

// Shared returns the process-wide pool, opening it on first use. A failed open
// is not cached, so the next call tries again.
func Shared(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	singletonMu.Lock()
	defer singletonMu.Unlock()
	if singletonDB != nil {
		return singletonDB, nil
	}
	database, err := Connect(ctx, databaseURL, opts)
	if err != nil {
		telemetry.Warn("db.shared.failed", map[string]any{"error": err.Error()})
		return nil, err
	}
	singletonDB = database
	return singletonDB, nil
}

func applyOptions(database *sql.DB, opts Options) {
	database.SetMaxOpenConns(positiveOr(opts.MaxOpenConns, 10))
	database.SetMaxIdleConns(positiveOr(opts.MaxIdleConns, 5))
	if opts.ConnMaxLifetime > 0 {
		database.SetConnMaxLifetime(opts.ConnMaxLifetime)
	} else {
		database.SetConnMaxLifetime(time.Hour)
	}
	if opts.ConnMaxIdleTime > 0 {
		database.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}

func positiveOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// Ping reports whether the pool can reach the database within timeout.
func Ping(ctx context.Context, database *sql.DB, timeout time.Duration) error {
	if database == nil {
		return errors.New("database not configured")
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return database.PingContext(pingCtx)
}

func logPoolStats(database *sql.DB, label string) {
	stats := database.Stats()
	telemetry.Info(label, map[string]any{
		"open":     stats.OpenConnections,
		"in_use":   stats.InUse,
		"idle":     stats.Idle,
		"max_open": stats.MaxOpenConnections,
	})
}

func overrideInt(key string, dst *int) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("db.env.invalid", map[string]any{"key": key, "error": err.Error()})
		return
	}
	*dst = v
}

func overrideDuration(key string, dst *time.Duration) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		telemetry.Warn("db.env.invalid", map[string]any{"key": key, "error": err.Error()})
		return
	}
	*dst = v
}
