package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/ogurasousui/timeclock-grpc/internal/core/timeentry"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TimeEntryRepository は gorm を利用した打刻記録の永続化の実装です。
type TimeEntryRepository struct {
	db *gorm.DB
}

// NewTimeEntryRepository は TimeEntryRepository を生成します。
func NewTimeEntryRepository(db *gorm.DB) *TimeEntryRepository {
	return &TimeEntryRepository{db: db}
}

// Create は打刻中のエントリを作成します。
func (r *TimeEntryRepository) Create(ctx context.Context, e *timeentry.TimeEntry) (*timeentry.TimeEntry, error) {
	db := dbFromContext(ctx, r.db)

	var departments int64
	if err := db.Model(&departmentModel{}).Where("id = ?", e.DepartmentID).Count(&departments).Error; err != nil {
		return nil, fmt.Errorf("gormstore: check department: %w", err)
	}
	if departments == 0 {
		return nil, timeentry.ErrDepartmentNotFound
	}

	m := timeEntryModel{
		UserID:       e.UserID,
		DepartmentID: e.DepartmentID,
		ClockIn:      e.ClockIn.UTC(),
		CreatedAt:    e.CreatedAt.UTC(),
		UpdatedAt:    e.UpdatedAt.UTC(),
	}
	if err := db.Create(&m).Error; err != nil {
		if isUniqueViolation(err, "time_entries.user_id") {
			return nil, timeentry.ErrAlreadyClockedIn
		}
		return nil, fmt.Errorf("gormstore: create time entry: %w", err)
	}
	return toTimeEntry(&m)
}

// FindByID は ID でエントリを取得します。
func (r *TimeEntryRepository) FindByID(ctx context.Context, id string) (*timeentry.TimeEntry, error) {
	var m timeEntryModel
	if err := dbFromContext(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, timeentry.ErrTimeEntryNotFound
		}
		return nil, fmt.Errorf("gormstore: find time entry: %w", err)
	}
	return toTimeEntry(&m)
}

// FindOpenByUser はユーザーの打刻中エントリを取得します。なければ timeentry.ErrNoOpenEntry です。
func (r *TimeEntryRepository) FindOpenByUser(ctx context.Context, userID string) (*timeentry.TimeEntry, error) {
	var m timeEntryModel
	if err := dbFromContext(ctx, r.db).Where("user_id = ? AND clock_out IS NULL", userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, timeentry.ErrNoOpenEntry
		}
		return nil, fmt.Errorf("gormstore: find open time entry: %w", err)
	}
	return toTimeEntry(&m)
}

// Close は打刻中のエントリだけを退勤させます。
func (r *TimeEntryRepository) Close(ctx context.Context, in timeentry.CloseParams) (*timeentry.TimeEntry, error) {
	hours := in.Hours.StringFixed(2)
	res := dbFromContext(ctx, r.db).Model(&timeEntryModel{}).
		Where("id = ? AND user_id = ? AND clock_out IS NULL", in.ID, in.UserID).
		Updates(map[string]any{
			"clock_out":  in.ClockOut.UTC(),
			"hours":      hours,
			"updated_at": in.UpdatedAt.UTC(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("gormstore: close time entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, timeentry.ErrEntryNotOpen
	}
	return r.FindByID(ctx, in.ID)
}

// ListByUser はユーザーのエントリを出勤時刻の新しい順に取得します。
func (r *TimeEntryRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*timeentry.TimeEntry, error) {
	if limit <= 0 {
		return nil, timeentry.ErrInvalidLimit
	}

	var models []timeEntryModel
	if err := dbFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Order("clock_in DESC").Order("id DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gormstore: list time entries: %w", err)
	}

	entries := make([]*timeentry.TimeEntry, 0, len(models))
	for i := range models {
		e, err := toTimeEntry(&models[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func toTimeEntry(m *timeEntryModel) (*timeentry.TimeEntry, error) {
	e := &timeentry.TimeEntry{
		ID:           m.ID,
		UserID:       m.UserID,
		DepartmentID: m.DepartmentID,
		ClockIn:      m.ClockIn,
		ClockOut:     m.ClockOut,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.Hours != nil {
		hours, err := decimal.NewFromString(*m.Hours)
		if err != nil {
			return nil, fmt.Errorf("gormstore: parse hours %q: %w", *m.Hours, err)
		}
		e.Hours = &hours
	}
	return e, nil
}
