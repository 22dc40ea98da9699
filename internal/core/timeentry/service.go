package timeentry

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/timeclock-grpc/internal/core/access"
	"github.com/ogurasousui/timeclock-grpc/internal/core/apperror"
	"github.com/sirupsen/logrus"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

// Service は出退勤のユースケースをまとめます。
type Service struct {
	repo   Repository
	dir    access.Directory
	clock  Clock
	tx     TransactionManager
	logger logrus.FieldLogger
}

// UseCase は打刻ユースケースの公開インターフェースです。
type UseCase interface {
	ClockIn(ctx context.Context, in ClockInInput) (*TimeEntry, error)
	ClockOut(ctx context.Context, in ClockOutInput) (*TimeEntry, error)
	GetOpenEntry(ctx context.Context, in GetOpenEntryInput) (*TimeEntry, error)
	ListEntries(ctx context.Context, in ListEntriesInput) ([]*TimeEntry, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, dir access.Directory, clock Clock, tx TransactionManager, logger logrus.FieldLogger) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &Service{repo: repo, dir: dir, clock: clock, tx: tx, logger: logger}
}

// ClockInInput は出勤時の入力です。UserID は打刻するアクター本人です。
type ClockInInput struct {
	UserID       string
	DepartmentID string
}

// ClockOutInput は退勤時の入力です。
type ClockOutInput struct {
	UserID      string
	TimeEntryID string
}

// GetOpenEntryInput は打刻中エントリ取得時の入力です。
type GetOpenEntryInput struct {
	UserID string
}

// ListEntriesInput は打刻履歴取得時の入力です。
type ListEntriesInput struct {
	UserID string
	Limit  int
}

// ClockIn は出勤を記録します。打刻中のエントリが既にあれば ErrAlreadyClockedIn です。
// 同時に出勤した場合もストレージの一意制約により一方のみ成功します。
func (s *Service) ClockIn(ctx context.Context, in ClockInInput) (*TimeEntry, error) {
	userID, err := normalizeUUID(in.UserID, ErrInvalidUserID)
	if err != nil {
		return nil, err
	}
	departmentID, err := normalizeUUID(in.DepartmentID, ErrInvalidDepartmentID)
	if err != nil {
		return nil, err
	}

	var created *TimeEntry
	err = s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if _, err := access.Check(txCtx, s.dir, userID, departmentID, access.ActionClockIn); err != nil {
			return err
		}

		open, err := s.repo.FindOpenByUser(txCtx, userID)
		if err != nil && !errors.Is(err, ErrNoOpenEntry) {
			return err
		}
		if open != nil {
			return ErrAlreadyClockedIn
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &TimeEntry{
			UserID:       userID,
			DepartmentID: departmentID,
			ClockIn:      now,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return err
		}
		created = result
		return nil
	})
	if err != nil {
		s.logFailure(err, "clock in", logrus.Fields{"user_id": userID, "department_id": departmentID})
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":       userID,
		"department_id": departmentID,
		"time_entry_id": created.ID,
	}).Info("clocked in")

	return created, nil
}

// ClockOut は打刻中のエントリを退勤させ、時間数を確定します。
// 他人のエントリは ErrTimeEntryNotFound、退勤済みのエントリは ErrEntryNotOpen で、いずれも何も変更しません。
func (s *Service) ClockOut(ctx context.Context, in ClockOutInput) (*TimeEntry, error) {
	userID, err := normalizeUUID(in.UserID, ErrInvalidUserID)
	if err != nil {
		return nil, err
	}
	entryID, err := normalizeUUID(in.TimeEntryID, ErrInvalidID)
	if err != nil {
		return nil, err
	}

	var closed *TimeEntry
	err = s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if _, err := access.Resolve(txCtx, s.dir, userID, ""); err != nil {
			return err
		}

		entry, err := s.repo.FindByID(txCtx, entryID)
		if err != nil {
			return err
		}
		if entry.UserID != userID {
			return ErrTimeEntryNotFound
		}
		if !entry.IsOpen() {
			return ErrEntryNotOpen
		}

		now := s.clock.Now()
		clockOut := now
		if clockOut.Before(entry.ClockIn) {
			clockOut = entry.ClockIn
		}

		result, err := s.repo.Close(txCtx, CloseParams{
			ID:        entry.ID,
			UserID:    userID,
			ClockOut:  clockOut,
			Hours:     HoursBetween(entry.ClockIn, clockOut),
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
		closed = result
		return nil
	})
	if err != nil {
		s.logFailure(err, "clock out", logrus.Fields{"user_id": userID, "time_entry_id": entryID})
		return nil, err
	}

	fields := logrus.Fields{
		"user_id":       userID,
		"department_id": closed.DepartmentID,
		"time_entry_id": closed.ID,
	}
	if closed.Hours != nil {
		fields["hours"] = closed.Hours.StringFixed(2)
	}
	s.logger.WithFields(fields).Info("clocked out")

	return closed, nil
}

// GetOpenEntry は打刻中のエントリを返します。打刻していなければ nil を返します。
func (s *Service) GetOpenEntry(ctx context.Context, in GetOpenEntryInput) (*TimeEntry, error) {
	userID, err := normalizeUUID(in.UserID, ErrInvalidUserID)
	if err != nil {
		return nil, err
	}

	var open *TimeEntry
	err = s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if _, err := access.Resolve(txCtx, s.dir, userID, ""); err != nil {
			return err
		}

		result, err := s.repo.FindOpenByUser(txCtx, userID)
		if err != nil {
			if errors.Is(err, ErrNoOpenEntry) {
				return nil
			}
			return err
		}
		open = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return open, nil
}

// ListEntries は新しい順に打刻履歴を返します。
func (s *Service) ListEntries(ctx context.Context, in ListEntriesInput) ([]*TimeEntry, error) {
	userID, err := normalizeUUID(in.UserID, ErrInvalidUserID)
	if err != nil {
		return nil, err
	}

	limit := in.Limit
	switch {
	case limit == 0:
		limit = defaultListLimit
	case limit < 0 || limit > maxListLimit:
		return nil, ErrInvalidLimit
	}

	var entries []*TimeEntry
	err = s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if _, err := access.Resolve(txCtx, s.dir, userID, ""); err != nil {
			return err
		}

		result, err := s.repo.ListByUser(txCtx, userID, limit)
		if err != nil {
			return err
		}
		entries = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Service) logFailure(err error, op string, fields logrus.Fields) {
	entry := s.logger.WithFields(fields).WithError(err)
	switch {
	case access.IsDenied(err):
		entry.Warnf("%s denied", op)
	case apperror.GetCode(err) == apperror.CodeInternal:
		entry.Errorf("%s failed", op)
	default:
		entry.Debugf("%s rejected", op)
	}
}

func normalizeUUID(raw string, invalid error) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", invalid
	}
	return parsed.String(), nil
}
