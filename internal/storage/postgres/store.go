// Package postgres implements the analytics gateway on PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/jbp-analytics/internal/contracts"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Store opens transactional gateways over a pool
// ⭐ SSOT: 분석 데이터 저장소는 여기서만
type Store struct {
	pool *pgxpool.Pool
}

var _ contracts.Store = (*Store)(nil)

// NewStore creates a store over an open pool
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// InTx runs fn inside one database transaction, committing when fn returns nil
func (s *Store) InTx(ctx context.Context, fn func(gw contracts.TxGateway) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&Gateway{q: tx})
	})
}

// Gateway runs every analytics query against one querier
type Gateway struct {
	q querier
}

var _ contracts.TxGateway = (*Gateway)(nil)

// NewGateway creates a gateway that runs each statement on its own (autocommit)
func NewGateway(pool *pgxpool.Pool) *Gateway {
	return &Gateway{q: pool}
}

func isNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
