package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect identifies the SQL engine a Service is connected to. It selects
// the goose dialect and the constraint-error detection path.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

// Service wraps the sql.DB handle together with the dialect it was opened
// with.
type Service struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to the store described by rawURL. An empty rawURL falls back
// to a file-based SQLite database at filePath. Hosting platforms hand out
// connection strings with varying schemes, so the URL is normalized first.
func Open(rawURL, filePath string) (*Service, error) {
	driver, dsn, dialect := resolveDSN(rawURL, filePath)

	if dialect == DialectSQLite {
		if dir := filepath.Dir(strings.SplitN(dsn, "?", 2)[0]); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite serializes writes through a single connection; keeping the
	// pool at one avoids SQLITE_BUSY under concurrent handlers.
	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
	}

	return &Service{db: db, dialect: dialect}, nil
}

// resolveDSN normalizes a connection URL into a driver name, DSN and dialect.
func resolveDSN(rawURL, filePath string) (driver, dsn string, dialect Dialect) {
	switch {
	case strings.HasPrefix(rawURL, "postgres://"):
		// Normalize to the canonical scheme (mirrors the postgres:// form
		// some platforms still emit).
		return "pgx", "postgresql://" + strings.TrimPrefix(rawURL, "postgres://"), DialectPostgres
	case strings.HasPrefix(rawURL, "postgresql://"):
		return "pgx", rawURL, DialectPostgres
	case strings.HasPrefix(rawURL, "sqlite3://"):
		return "sqlite3", sqliteDSN(strings.TrimPrefix(rawURL, "sqlite3://")), DialectSQLite
	case strings.HasPrefix(rawURL, "sqlite://"):
		return "sqlite3", sqliteDSN(strings.TrimPrefix(rawURL, "sqlite://")), DialectSQLite
	case rawURL != "":
		// Anything else is taken as a plain SQLite file path.
		return "sqlite3", sqliteDSN(rawURL), DialectSQLite
	default:
		return "sqlite3", sqliteDSN(filePath), DialectSQLite
	}
}

// sqliteDSN enables foreign key enforcement, which SQLite leaves off by
// default and the schema relies on.
func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&_foreign_keys=on"
	}
	return path + "?_foreign_keys=on"
}

// DB returns the underlying database handle.
func (s *Service) DB() *sql.DB {
	return s.db
}

// Dialect returns the dialect the service was opened with.
func (s *Service) Dialect() Dialect {
	return s.dialect
}

// Close closes the underlying database handle.
func (s *Service) Close() error {
	return s.db.Close()
}

// Health reports connectivity and pool statistics.
func (s *Service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	health := map[string]string{
		"dialect": string(s.dialect),
	}

	if err := s.db.PingContext(ctx); err != nil {
		health["status"] = "down"
		health["error"] = err.Error()
		return health
	}

	stats := s.db.Stats()
	health["status"] = "up"
	health["open_connections"] = fmt.Sprintf("%d", stats.OpenConnections)
	health["in_use"] = fmt.Sprintf("%d", stats.InUse)
	health["idle"] = fmt.Sprintf("%d", stats.Idle)

	return health
}
