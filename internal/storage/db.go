package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// MemoryPath keeps the account database in process memory.
const MemoryPath = ":memory:"

// ResolveDBPath expands a leading ~ and leaves MemoryPath alone.
func ResolveDBPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == MemoryPath {
		return MemoryPath, nil
	}
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home dir: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}
	return path, nil
}

// Open opens (and creates if missing) the SQLite database at path and migrates it.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	path, err := ResolveDBPath(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == MemoryPath {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
