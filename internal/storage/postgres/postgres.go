package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/thehopecrystal/verify-properties/internal/queries"
	"github.com/thehopecrystal/verify-properties/internal/storage"
)

const driverName = `postgres`

//go:embed tables/createTables.sql
var createTables string

var kv = queries.KVStore(queries.Postgres)

var _ storage.Storage = (*Storage)(nil)

type Storage struct {
	Db *sql.DB
}

func New(ctx context.Context, dsn string) (*Storage, error) {
	if dsn == `` {
		return nil, errors.New(`postgres dsn is empty`)
	}

	database, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	if err := database.PingContext(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf(`ping postgres: %w`, err)
	}

	s := &Storage{Db: database}

	if err := s.Init(ctx); err != nil {
		database.Close()
		return nil, err
	}

	return s, nil
}

// Init creates the key/value table when it does not exist yet.
func (s *Storage) Init(ctx context.Context) error {
	if _, err := s.Db.ExecContext(ctx, createTables); err != nil {
		return fmt.Errorf(`create tables: %w`, err)
	}
	return nil
}

func (s *Storage) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := s.Db.QueryRowContext(ctx, kv.Load, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return value, nil
}

func (s *Storage) Save(ctx context.Context, key string, value []byte) error {
	_, err := s.Db.ExecContext(ctx, kv.Save, key, string(value), time.Now().UTC())
	return err
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	_, err := s.Db.ExecContext(ctx, kv.Delete, key)
	return err
}

func (s *Storage) Close() error {
	return s.Db.Close()
}
