package repositories

import (
	"database/sql"
	"fmt"
	"ht-planning-service/internal/config"
	"ht-planning-service/internal/platform/db"
	"ht-planning-service/internal/ports"
	"os"
	"path/filepath"
	"strings"
)

// Open connects to the configured store, makes sure the schema exists and returns
// the matching repository. The caller closes the returned DB.
func Open(cfg config.Storage) (*sql.DB, ports.OutcomeRepository, error) {
	switch cfg.Driver {
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, nil, fmt.Errorf("open storage: %w: DATABASE_URL is required for postgres", config.ErrInvalidConfig)
		}
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open storage: %w", err)
		}
		if err := InitSchema(conn); err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("open storage: %w", err)
		}
		return conn, NewSQLOutcomeRepository(conn), nil

	case "sqlite":
		if dir := filepath.Dir(cfg.SqlitePath); cfg.SqlitePath != ":memory:" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("open storage: create dir %q: %w", dir, err)
			}
		}
		conn, err := db.OpenSqlite(cfg.SqlitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open storage: %w", err)
		}
		if err := InitSchema(conn); err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("open storage: %w", err)
		}
		return conn, NewSqliteOutcomeRepository(conn), nil

	default:
		return nil, nil, fmt.Errorf("open storage: %w: unknown driver %q", config.ErrInvalidConfig, cfg.Driver)
	}
}
