package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/thehopecrystal/verify-properties/internal/queries"
	"github.com/thehopecrystal/verify-properties/internal/storage"
)

const driverName = `sqlite`

const createTables = `CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

var kv = queries.KVStore(queries.SQLite)

var _ storage.Storage = (*Storage)(nil)

// Storage keeps every key in a single SQLite file.
type Storage struct {
	Db *sql.DB
}

func New(ctx context.Context, path string) (*Storage, error) {
	if path == `` {
		return nil, errors.New(`sqlite path is empty`)
	}

	database, err := sql.Open(driverName, path)
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers anyway; one connection avoids SQLITE_BUSY.
	database.SetMaxOpenConns(1)

	if err := database.PingContext(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf(`ping sqlite: %w`, err)
	}

	if _, err := database.ExecContext(ctx, createTables); err != nil {
		database.Close()
		return nil, fmt.Errorf(`create tables: %w`, err)
	}

	return &Storage{Db: database}, nil
}

func (s *Storage) Load(ctx context.Context, key string) ([]byte, error) {
	var value string

	err := s.Db.QueryRowContext(ctx, kv.Load, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return []byte(value), nil
}

func (s *Storage) Save(ctx context.Context, key string, value []byte) error {
	_, err := s.Db.ExecContext(ctx, kv.Save, key, string(value), time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	_, err := s.Db.ExecContext(ctx, kv.Delete, key)
	return err
}

func (s *Storage) Close() error {
	return s.Db.Close()
}
