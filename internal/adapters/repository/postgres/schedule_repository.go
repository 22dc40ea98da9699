package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/timeclock-grpc/internal/core/schedule"
	pgdb "github.com/ogurasousui/timeclock-grpc/internal/platform/db/postgres"
)

const scheduleColumns = `s.id, s.department_id, d.name, s.week_start`

// ScheduleRepository は PostgreSQL からスケジュールを読み取る実装です。
type ScheduleRepository struct {
	pool pgdb.Queryer
}

// NewScheduleRepository は ScheduleRepository を生成します。
func NewScheduleRepository(pool pgdb.Queryer) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

// FindByWeek は部署の指定週のスケジュールを取得します。
func (r *ScheduleRepository) FindByWeek(ctx context.Context, departmentID, userID string, weekStart time.Time) (*schedule.DepartmentSchedule, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+scheduleColumns+`
          FROM department_schedules s
          JOIN departments d ON d.id = s.department_id
         WHERE s.department_id = $1 AND s.week_start = $2::date
         LIMIT 1
    `, departmentID, weekStart)

	found, err := scanSchedule(row)
	if err != nil {
		return nil, err
	}
	if err := r.attachShifts(ctx, exec, userID, found); err != nil {
		return nil, err
	}
	return found, nil
}

// FindLatest は asOf 以前に始まる最新の週のスケジュールを取得します。
func (r *ScheduleRepository) FindLatest(ctx context.Context, departmentID, userID string, asOf time.Time) (*schedule.DepartmentSchedule, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+scheduleColumns+`
          FROM department_schedules s
          JOIN departments d ON d.id = s.department_id
         WHERE s.department_id = $1 AND s.week_start <= $2::date
         ORDER BY s.week_start DESC
         LIMIT 1
    `, departmentID, asOf)

	found, err := scanSchedule(row)
	if err != nil {
		return nil, err
	}
	if err := r.attachShifts(ctx, exec, userID, found); err != nil {
		return nil, err
	}
	return found, nil
}

// ListForUserWeek はユーザーが所属する全部署の指定週のスケジュールを部署名順に取得します。
func (r *ScheduleRepository) ListForUserWeek(ctx context.Context, userID string, weekStart time.Time) ([]*schedule.DepartmentSchedule, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+scheduleColumns+`
          FROM department_schedules s
          JOIN departments d ON d.id = s.department_id
          JOIN department_memberships m ON m.department_id = s.department_id AND m.user_id = $1
         WHERE s.week_start = $2::date
         ORDER BY d.name, s.id
    `, userID, weekStart)
	if err != nil {
		return nil, err
	}

	schedules := make([]*schedule.DepartmentSchedule, 0)
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		schedules = append(schedules, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 接続は 1 本のため、スケジュールの行を読み切ってからシフトを問い合わせる
	for _, s := range schedules {
		if err := r.attachShifts(ctx, exec, userID, s); err != nil {
			return nil, err
		}
	}
	return schedules, nil
}

func (r *ScheduleRepository) attachShifts(ctx context.Context, exec pgdb.Queryer, userID string, s *schedule.DepartmentSchedule) error {
	rows, err := exec.Query(ctx, `
        SELECT id, schedule_id, user_id, day_of_week, start_time, end_time
          FROM work_shifts
         WHERE schedule_id = $1 AND user_id = $2
         ORDER BY day_of_week, start_time, id
    `, s.ID, userID)
	if err != nil {
		return err
	}
	defer rows.Close()

	shifts := make([]schedule.WorkShift, 0)
	for rows.Next() {
		var (
			sh        schedule.WorkShift
			dayOfWeek int16
		)
		if err := rows.Scan(&sh.ID, &sh.ScheduleID, &sh.UserID, &dayOfWeek, &sh.StartTime, &sh.EndTime); err != nil {
			return err
		}
		sh.DayOfWeek = int(dayOfWeek)
		sh.StartTime = sh.StartTime.UTC()
		sh.EndTime = sh.EndTime.UTC()
		shifts = append(shifts, sh)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	s.Shifts = shifts
	return nil
}

func scanSchedule(row pgx.Row) (*schedule.DepartmentSchedule, error) {
	var (
		s         schedule.DepartmentSchedule
		weekStart time.Time
	)

	if err := row.Scan(&s.ID, &s.DepartmentID, &s.DepartmentName, &weekStart); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, schedule.ErrScheduleNotFound
		}
		return nil, err
	}

	s.WeekStart = time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, time.UTC)
	return &s, nil
}
