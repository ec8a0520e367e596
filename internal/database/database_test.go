package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplierapi/internal/config"
)

func TestBuildPostgresDSN(t *testing.T) {
	parts := config.DatabaseConfig{Host: "db", Port: "5432", User: "app", Name: "fornecedores"}
	withPassword := parts
	withPassword.Password = "s3cret"
	withPassword.SSLMode = "disable"

	tests := []struct {
		name    string
		cfg     config.DatabaseConfig
		want    string
		wantErr string
	}{
		{
			name: "parts with password and sslmode",
			cfg:  withPassword,
			want: "postgres://app:s3cret@db:5432/fornecedores?application_name=supplierapi&sslmode=disable",
		},
		{
			name: "parts without password",
			cfg:  parts,
			want: "postgres://app@db:5432/fornecedores?application_name=supplierapi",
		},
		{
			name: "url wins over parts",
			cfg:  config.DatabaseConfig{URL: "postgresql://u:p@pg:5433/x?sslmode=require", Host: "ignored", SSLMode: "disable"},
			want: "postgresql://u:p@pg:5433/x?application_name=supplierapi&sslmode=require",
		},
		{
			name: "url keeps its application name",
			cfg:  config.DatabaseConfig{URL: "postgres://u@pg/x?application_name=jobs"},
			want: "postgres://u@pg/x?application_name=jobs",
		},
		{
			name:    "url with unsupported scheme",
			cfg:     config.DatabaseConfig{URL: "mysql://app@db/fornecedores"},
			wantErr: `unsupported scheme "mysql"`,
		},
		{
			name:    "missing parts are listed",
			cfg:     config.DatabaseConfig{Port: "5432", User: "app"},
			wantErr: "missing [DB_HOST DB_NAME]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildPostgresDSN(tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// stubOpen makes NewPostgres hand out db instead of dialing.
func stubOpen(t *testing.T, db *sql.DB, err error) {
	t.Helper()
	orig, origDelay := sqlOpen, retryDelay
	sqlOpen = func(string, string) (*sql.DB, error) { return db, err }
	retryDelay = time.Millisecond
	t.Cleanup(func() { sqlOpen, retryDelay = orig, origDelay })
}

func TestNewPostgres(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:               "db",
		Port:               "5432",
		User:               "app",
		Name:               "fornecedores",
		MaxOpenConns:       10,
		MaxIdleConns:       5,
		ConnMaxLifetimeSec: 300,
		ConnectRetries:     2,
	}

	t.Run("ready on first ping", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()
		stubOpen(t, db, nil)
		mock.ExpectPing()

		got, err := NewPostgres(context.Background(), cfg)
		require.NoError(t, err)
		assert.Same(t, db, got)
		assert.Equal(t, 10, got.Stats().MaxOpenConnections)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ready after retries", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()
		stubOpen(t, db, nil)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		mock.ExpectPing().WillReturnError(errors.New("the database system is starting up"))
		mock.ExpectPing()

		_, err = NewPostgres(context.Background(), cfg)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("gives up after retries", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		stubOpen(t, db, nil)
		for i := 0; i <= cfg.ConnectRetries; i++ {
			mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		}
		mock.ExpectClose()

		got, err := NewPostgres(context.Background(), cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db ping: connection refused")
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cancelled while waiting", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		stubOpen(t, db, nil)
		retryDelay = time.Hour
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		mock.ExpectClose()

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()
		_, err = NewPostgres(ctx, cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("open error", func(t *testing.T) {
		stubOpen(t, nil, errors.New("open error"))

		got, err := NewPostgres(context.Background(), cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sql open: open error")
		assert.Nil(t, got)
	})

	t.Run("invalid config", func(t *testing.T) {
		got, err := NewPostgres(context.Background(), config.DatabaseConfig{})
		assert.Error(t, err)
		assert.Nil(t, got)
	})
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "db", HostOf(config.DatabaseConfig{URL: "postgres://u:p@db:5432/x", Host: "other"}))
	assert.Equal(t, "localhost", HostOf(config.DatabaseConfig{Host: "localhost"}))
	assert.Empty(t, HostOf(config.DatabaseConfig{URL: "://bad"}))
}
