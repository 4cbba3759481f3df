package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// Хранилище ключ-значение поверх Postgres, таблица kv
type KVPostgresStorage struct {
	db *sqlx.DB
}

func NewKVPostgresStorage(db *sqlx.DB) *KVPostgresStorage {
	return &KVPostgresStorage{db: db}
}

// Значение по ключу. Второй результат - нашелся ли ключ
func (s *KVPostgresStorage) Get(ctx context.Context, key string) (string, bool, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return "", false, err
	}
	defer conn.Close()

	var row dbKV
	if err := conn.GetContext(ctx, &row, `SELECT key, value, updated_at FROM kv WHERE key = $1`, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}

	return row.Value, true, nil
}

// Запись значения, существующее перезаписывается
func (s *KVPostgresStorage) Set(ctx context.Context, key, value string) error {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(
		ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key,
		value,
		time.Now().UTC(),
	); err != nil {
		return err
	}

	return nil
}

func (s *KVPostgresStorage) Delete(ctx context.Context, key string) error {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `DELETE FROM kv WHERE key = $1`, key); err != nil {
		return err
	}

	return nil
}

type dbKV struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}
