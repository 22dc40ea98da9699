package gormstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type transactionContextKey struct{}

var txContextKey = transactionContextKey{}

// TransactionManager は gorm のトランザクションをコンテキストに載せて関数を実行します。
// SQLite は読み取り専用トランザクションを区別しないため、どちらも同じトランザクションを開始します。
type TransactionManager struct {
	db *gorm.DB
}

// NewTransactionManager は TransactionManager を生成します。
func NewTransactionManager(db *gorm.DB) *TransactionManager {
	if db == nil {
		return nil
	}
	return &TransactionManager{db: db}
}

// WithinReadOnly はトランザクション内で fn を実行します。
func (m *TransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	return m.within(ctx, fn)
}

// WithinReadWrite はトランザクション内で fn を実行します。
func (m *TransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	return m.within(ctx, fn)
}

func (m *TransactionManager) within(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return fmt.Errorf("gormstore: transaction function is required")
	}
	if m == nil {
		return fn(ctx)
	}
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey, tx))
	})
}

func txFromContext(ctx context.Context) (*gorm.DB, bool) {
	if ctx == nil {
		return nil, false
	}
	tx, ok := ctx.Value(txContextKey).(*gorm.DB)
	return tx, ok
}

// dbFromContext はコンテキスト内のトランザクションを返し、なければ fallback をコンテキスト付きで返します。
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := txFromContext(ctx); ok {
		return tx.WithContext(ctx)
	}
	return fallback.WithContext(ctx)
}
