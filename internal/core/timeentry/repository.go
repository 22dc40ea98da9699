package timeentry

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository は打刻記録の永続化の抽象です。
type Repository interface {
	// Create は打刻中のエントリを作成します。同一ユーザーの打刻中エントリが既にあれば ErrAlreadyClockedIn です。
	Create(ctx context.Context, entry *TimeEntry) (*TimeEntry, error)
	FindByID(ctx context.Context, id string) (*TimeEntry, error)
	FindOpenByUser(ctx context.Context, userID string) (*TimeEntry, error)
	// Close は id と userID が一致し、かつ打刻中のエントリのみを退勤させます。該当しなければ ErrEntryNotOpen です。
	Close(ctx context.Context, in CloseParams) (*TimeEntry, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*TimeEntry, error)
}

// CloseParams は退勤時の更新内容です。
type CloseParams struct {
	ID        string
	UserID    string
	ClockOut  time.Time
	Hours     decimal.Decimal
	UpdatedAt time.Time
}
