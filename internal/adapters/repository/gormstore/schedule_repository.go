package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ogurasousui/timeclock-grpc/internal/core/schedule"
	"gorm.io/gorm"
)

type scheduleRow struct {
	ID             string
	DepartmentID   string
	DepartmentName string
	WeekStart      time.Time
}

// ScheduleRepository は gorm からスケジュールを読み取る実装です。
type ScheduleRepository struct {
	db *gorm.DB
}

// NewScheduleRepository は ScheduleRepository を生成します。
func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// FindByWeek は部署の指定週のスケジュールを取得します。
func (r *ScheduleRepository) FindByWeek(ctx context.Context, departmentID, userID string, weekStart time.Time) (*schedule.DepartmentSchedule, error) {
	var row scheduleRow
	err := r.baseQuery(ctx).
		Where("department_schedules.department_id = ? AND department_schedules.week_start = ?", departmentID, weekStart.UTC()).
		Take(&row).Error
	if err != nil {
		return nil, translateScheduleError(err)
	}
	return r.withShifts(ctx, &row, userID)
}

// FindLatest は asOf 以前に始まる最新の週のスケジュールを取得します。
func (r *ScheduleRepository) FindLatest(ctx context.Context, departmentID, userID string, asOf time.Time) (*schedule.DepartmentSchedule, error) {
	var row scheduleRow
	err := r.baseQuery(ctx).
		Where("department_schedules.department_id = ? AND department_schedules.week_start <= ?", departmentID, asOf.UTC()).
		Order("department_schedules.week_start DESC").
		Take(&row).Error
	if err != nil {
		return nil, translateScheduleError(err)
	}
	return r.withShifts(ctx, &row, userID)
}

// ListForUserWeek はユーザーが所属する全部署の指定週のスケジュールを部署名順に取得します。
func (r *ScheduleRepository) ListForUserWeek(ctx context.Context, userID string, weekStart time.Time) ([]*schedule.DepartmentSchedule, error) {
	var rows []scheduleRow
	err := r.baseQuery(ctx).
		Joins("JOIN department_memberships m ON m.department_id = department_schedules.department_id AND m.user_id = ?", userID).
		Where("department_schedules.week_start = ?", weekStart.UTC()).
		Order("d.name").Order("department_schedules.id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("gormstore: list schedules: %w", err)
	}

	schedules := make([]*schedule.DepartmentSchedule, 0, len(rows))
	for i := range rows {
		s, err := r.withShifts(ctx, &rows[i], userID)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, nil
}

func (r *ScheduleRepository) baseQuery(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).
		Table("department_schedules").
		Select("department_schedules.id, department_schedules.department_id, d.name AS department_name, department_schedules.week_start").
		Joins("JOIN departments d ON d.id = department_schedules.department_id")
}

func (r *ScheduleRepository) withShifts(ctx context.Context, row *scheduleRow, userID string) (*schedule.DepartmentSchedule, error) {
	var models []shiftModel
	if err := dbFromContext(ctx, r.db).
		Where("schedule_id = ? AND user_id = ?", row.ID, userID).
		Order("day_of_week").Order("start_time").Order("id").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gormstore: list shifts: %w", err)
	}

	shifts := make([]schedule.WorkShift, 0, len(models))
	for _, m := range models {
		shifts = append(shifts, schedule.WorkShift{
			ID:         m.ID,
			ScheduleID: m.ScheduleID,
			UserID:     m.UserID,
			DayOfWeek:  m.DayOfWeek,
			StartTime:  m.StartTime.UTC(),
			EndTime:    m.EndTime.UTC(),
		})
	}

	week := row.WeekStart.UTC()
	return &schedule.DepartmentSchedule{
		ID:             row.ID,
		DepartmentID:   row.DepartmentID,
		DepartmentName: row.DepartmentName,
		WeekStart:      time.Date(week.Year(), week.Month(), week.Day(), 0, 0, 0, 0, time.UTC),
		Shifts:         shifts,
	}, nil
}

func translateScheduleError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return schedule.ErrScheduleNotFound
	}
	return fmt.Errorf("gormstore: find schedule: %w", err)
}
