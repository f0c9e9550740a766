// Package store persists JSON documents by key. Keys look like relative file
// paths ("registrations.json", "archive/registrations-2024-06-03.json") no
// matter which backend holds them.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"weekly-tourney/internal/config"
)

const (
	KeyState         = "registration-state.json"
	KeyRegistrations = "registrations.json"
	KeyWinners       = "winners.json"

	ArchivePrefix = "archive/registrations-"
)

var ErrNotFound = errors.New("document not found")

type Store interface {
	// Get decodes the document stored under key into dst. It returns
	// ErrNotFound when nothing has been written under key yet.
	Get(ctx context.Context, key string, dst any) error
	Put(ctx context.Context, key string, v any) error
	// List returns the keys starting with prefix in ascending order.
	List(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// ArchiveKey names the snapshot of the week starting on date (YYYY-MM-DD).
func ArchiveKey(date string) string {
	return ArchivePrefix + date + ".json"
}

// ArchiveDate extracts the YYYY-MM-DD part of an archive key.
func ArchiveDate(key string) (string, bool) {
	if !strings.HasPrefix(key, ArchivePrefix) || !strings.HasSuffix(key, ".json") {
		return "", false
	}
	date := strings.TrimSuffix(strings.TrimPrefix(key, ArchivePrefix), ".json")
	if len(date) != len("2006-01-02") {
		return "", false
	}
	return date, true
}

// Open builds the backend selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case "file", "":
		return NewFileStore(cfg.DataDir), nil
	case "postgres":
		return OpenPostgres(ctx, cfg.DatabaseURL)
	case "sqlite":
		return OpenSQLite(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.StoreDriver)
	}
}

func encode(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func cleanKey(key string) (string, error) {
	k := path.Clean(strings.TrimSpace(key))
	if k == "." || k == "" || strings.HasPrefix(k, "/") || k == ".." || strings.HasPrefix(k, "../") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return k, nil
}
