package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyadubrovsky/tracking-attendance/internal/database"
	_ "github.com/mattn/go-sqlite3"
)

// New opens the database file, creating its directory when needed.
// Transactions take the write lock up front so concurrent sessions queue
// instead of failing on upgrade.
func New(ctx context.Context, path string) (database.SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, fmt.Errorf("os.MkdirAll: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db.PingContext: %w", err)
	}

	return db, nil
}
