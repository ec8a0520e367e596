// Package database opens the PostgreSQL pool shared by the repositories.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/jackc/pgx/v5/stdlib"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"supplierapi/internal/config"
)

// ApplicationName is reported to PostgreSQL in pg_stat_activity.
const ApplicationName = "supplierapi"

var (
	sqlOpen    = sql.Open
	retryDelay = time.Second
	pingWindow = 5 * time.Second
)

// BuildPostgresDSN returns the connection URL. DATABASE_URL wins over the
// individual DB_* parts. application_name is added unless already present.
func BuildPostgresDSN(c config.DatabaseConfig) (string, error) {
	var u *url.URL
	if c.URL != "" {
		parsed, err := url.Parse(c.URL)
		if err != nil {
			return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
		if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
			return "", fmt.Errorf("invalid DATABASE_URL: unsupported scheme %q", parsed.Scheme)
		}
		u = parsed
	} else {
		missing := missingParts(c)
		if len(missing) > 0 {
			return "", fmt.Errorf("invalid database config: missing %v", missing)
		}
		u = &url.URL{Scheme: "postgres", Host: c.Host + ":" + c.Port, Path: c.Name}
		if c.Password != "" {
			u.User = url.UserPassword(c.User, c.Password)
		} else {
			u.User = url.User(c.User)
		}
	}

	q := u.Query()
	if c.URL == "" && c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	if q.Get("application_name") == "" {
		q.Set("application_name", ApplicationName)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func missingParts(c config.DatabaseConfig) []string {
	var out []string
	for _, p := range []struct{ name, value string }{
		{"DB_HOST", c.Host}, {"DB_PORT", c.Port}, {"DB_USER", c.User}, {"DB_NAME", c.Name},
	} {
		if p.value == "" {
			out = append(out, p.name)
		}
	}
	return out
}

// NewPostgres opens a traced pool through the pgx stdlib driver and waits until the
// server answers a ping, retrying ConnectRetries times.
func NewPostgres(ctx context.Context, c config.DatabaseConfig) (*sql.DB, error) {
	dsn, err := BuildPostgresDSN(c)
	if err != nil {
		return nil, err
	}

	driverName, err := otelsql.Register("pgx",
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithSQLCommenter(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register otelsql: %w", err)
	}

	db, err := sqlOpen(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	configurePool(db, c)

	if err := waitReady(ctx, db, c.ConnectRetries); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func configurePool(db *sql.DB, c config.DatabaseConfig) {
	if c.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxIdleConns > 0 {
		db.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.ConnMaxLifetimeSec > 0 {
		db.SetConnMaxLifetime(time.Duration(c.ConnMaxLifetimeSec) * time.Second)
	}
}

func waitReady(ctx context.Context, db *sql.DB, retries int) error {
	var err error
	for attempt := 0; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, pingWindow)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil || attempt >= retries {
			return err
		}

		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(retryDelay):
		}
	}
}

// HostOf returns the host part of the configured database, for logging only.
func HostOf(c config.DatabaseConfig) string {
	if c.URL != "" {
		if u, err := url.Parse(c.URL); err == nil {
			return u.Hostname()
		}
		return ""
	}
	return c.Host
}
