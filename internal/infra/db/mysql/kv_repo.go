package mysql

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"
)

// KVStore is the durable half of the persistence gateway: auth flags,
// the assessment list, triage maps and redraft overrides. Reads never
// fail past this boundary; a storage error is logged and surfaces as an
// absent value.
type KVStore struct {
	db  *sql.DB
	log *zap.Logger
}

func NewKVStore(db *sql.DB, log *zap.Logger) *KVStore {
	return &KVStore{db: db, log: log}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool) {
	const q = `SELECT v FROM kv_entries WHERE k=? LIMIT 1;`
	var v []byte
	if err := s.db.QueryRowContext(ctx, q, key).Scan(&v); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.Warn("kv get failed, treating as absent", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return v, true
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	const q = `
INSERT INTO kv_entries (k, v) VALUES (?,?)
ON DUPLICATE KEY UPDATE v=VALUES(v);`
	_, err := s.db.ExecContext(ctx, q, key, value)
	return err
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	const q = `DELETE FROM kv_entries WHERE k=?;`
	_, err := s.db.ExecContext(ctx, q, key)
	return err
}

func (s *KVStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	const q = `SELECT k FROM kv_entries WHERE k LIKE ?;`
	rows, err := s.db.QueryContext(ctx, q, escapeLikePattern(prefix)+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}
