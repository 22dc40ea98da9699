package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	serializationFailureCode = "40001"
	deadlockDetectedCode     = "40P01"

	defaultMaxAttempts = 3
)

// ErrReadOnlyTransaction は読み取り専用トランザクションの中で書き込みトランザクションを要求した場合に返却されます。
var ErrReadOnlyTransaction = errors.New("postgres: read-write transaction requested inside read-only transaction")

type txKey struct{}

// txState は実行中のトランザクションとそのアクセスモードです。
type txState struct {
	tx       pgx.Tx
	readOnly bool
}

// txStarter は pgxpool.Pool と pgxmock の双方が満たします。
type txStarter interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// TransactionManager は pgx を用いたトランザクション制御を提供します。
// 読み書きトランザクションは直列化失敗とデッドロックの場合に最初からやり直します。
type TransactionManager struct {
	pool        txStarter
	maxAttempts int
}

// TxOption は TransactionManager の設定です。
type TxOption func(*TransactionManager)

// WithMaxAttempts は読み書きトランザクションの最大試行回数を設定します。1 未満は 1 として扱います。
func WithMaxAttempts(n int) TxOption {
	return func(m *TransactionManager) {
		if n < 1 {
			n = 1
		}
		m.maxAttempts = n
	}
}

// NewTransactionManager は TransactionManager を生成します。
func NewTransactionManager(pool txStarter, opts ...TxOption) *TransactionManager {
	if pool == nil {
		return nil
	}
	m := &TransactionManager{pool: pool, maxAttempts: defaultMaxAttempts}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithinReadOnly は読み取り専用トランザクションで fn を実行します。
func (m *TransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if m == nil {
		return fn(ctx)
	}
	return m.run(ctx, pgx.ReadOnly, fn)
}

// WithinReadWrite は読み書きトランザクションで fn を実行します。fn は再試行されうるため、副作用をトランザクション内に閉じてください。
func (m *TransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if m == nil {
		return fn(ctx)
	}
	return m.run(ctx, pgx.ReadWrite, fn)
}

func (m *TransactionManager) run(ctx context.Context, mode pgx.TxAccessMode, fn func(context.Context) error) error {
	if fn == nil {
		return errors.New("postgres: transaction function is required")
	}

	if state, ok := ctx.Value(txKey{}).(txState); ok {
		if state.readOnly && mode == pgx.ReadWrite {
			return ErrReadOnlyTransaction
		}
		return fn(ctx)
	}

	attempts := 1
	if mode == pgx.ReadWrite {
		attempts = m.maxAttempts
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		err = m.runOnce(ctx, mode, fn)
		if !isRetryable(err) || ctx.Err() != nil {
			return err
		}
	}
	return err
}

func (m *TransactionManager) runOnce(ctx context.Context, mode pgx.TxAccessMode, fn func(context.Context) error) error {
	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: mode})
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	txCtx := context.WithValue(ctx, txKey{}, txState{tx: tx, readOnly: mode == pgx.ReadOnly})
	if err := fn(txCtx); err != nil {
		return rollback(ctx, tx, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return rollback(ctx, tx, fmt.Errorf("postgres: commit: %w", err))
	}
	return nil
}

func rollback(ctx context.Context, tx pgx.Tx, cause error) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return errors.Join(cause, fmt.Errorf("postgres: rollback: %w", err))
	}
	return cause
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == serializationFailureCode || pgErr.Code == deadlockDetectedCode
}

func txFromContext(ctx context.Context) (pgx.Tx, bool) {
	if ctx == nil {
		return nil, false
	}
	state, ok := ctx.Value(txKey{}).(txState)
	return state.tx, ok
}

// QueryerFromContext はコンテキスト内のトランザクションを返し、なければ fallback を返します。
func QueryerFromContext(ctx context.Context, fallback Queryer) Queryer {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return fallback
}

// Queryer は pgx.Tx と pgxpool.Pool に共通するクエリ実行インターフェースです。
type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}
