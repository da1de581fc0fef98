package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// querier *sql.DB 与 *sql.Tx 的公共子集
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore 基于 lib/pq 的 Store 实现
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore 创建 PostgresStore
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// BeginTx 开启事务（READ COMMITTED；房间计数依赖 UPDATE 行锁保证原子性）
func (s *PostgresStore) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &postgresTx{tx: tx}, nil
}

// postgresTx 实现 Tx
type postgresTx struct {
	tx   *sql.Tx
	done bool
}

func (t *postgresTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", mapPQError(err))
	}
	t.done = true
	return nil
}

func (t *postgresTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

// mapPQError 将 PostgreSQL 错误码映射为存储层 sentinel
func mapPQError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23503": // foreign_key_violation
		return fmt.Errorf("%w: %s", ErrForeignKey, pqErr.Constraint)
	case "23505": // unique_violation
		return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
	case "23514": // check_violation
		// 不映射为 ErrRoomFull：语句报错后事务已中止（25P02），换房重试只会继续失败
		if pqErr.Table == "room_occupancy" || pqErr.Table == "" {
			return fmt.Errorf("%w: %s", ErrCapacityViolation, pqErr.Message)
		}
	case "22P02": // invalid_text_representation，非法 uuid 视为不存在
		return ErrNotFound
	}
	return err
}

func nullable(s sql.NullString) any {
	if s.Valid {
		return s.String
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
