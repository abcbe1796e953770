package save

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/decker502/worldstate/pkg/utils"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS save_records (
	record_key TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteBackend 基于 SQLite 的存储后端
type SQLiteBackend struct {
	sqlDB *sql.DB
}

// OpenSQLiteBackend 打开（必要时创建）SQLite 存档数据库
func OpenSQLiteBackend(path string) (*SQLiteBackend, error) {
	cleanPath, err := utils.PrepareDatabasePath(path)
	if err != nil {
		return nil, err
	}
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteBackend{sqlDB: sqlDB}, nil
}

// Close 释放数据库连接
func (s *SQLiteBackend) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *SQLiteBackend) Exists(ctx context.Context, key string) (bool, error) {
	if s == nil || s.sqlDB == nil {
		return false, fmt.Errorf("storage is not configured")
	}

	var n int
	row := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(1) FROM save_records WHERE record_key = ?`, key)
	if err := row.Scan(&n); err != nil {
		return false, fmt.Errorf("check record: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteBackend) Load(ctx context.Context, key string) ([]byte, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	var payload []byte
	row := s.sqlDB.QueryRowContext(ctx, `SELECT payload FROM save_records WHERE record_key = ?`, key)
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return payload, nil
}

func (s *SQLiteBackend) Save(ctx context.Context, key string, data []byte) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO save_records (record_key, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(record_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key, data, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put record: %w", err)
	}
	return nil
}

func (s *SQLiteBackend) Delete(ctx context.Context, key string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM save_records WHERE record_key = ?`, key); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}
