package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/timeclock-grpc/internal/core/timeentry"
	pgdb "github.com/ogurasousui/timeclock-grpc/internal/platform/db/postgres"
	"github.com/shopspring/decimal"
)

const timeEntryColumns = `id, user_id, department_id, clock_in, clock_out, hours::text, created_at, updated_at`

// TimeEntryRepository は PostgreSQL を利用した打刻記録の永続化の実装です。
// 打刻中エントリの一意性は部分ユニークインデックス time_entries_one_open_per_user で保証します。
type TimeEntryRepository struct {
	pool pgdb.Queryer
}

// NewTimeEntryRepository は TimeEntryRepository を生成します。
func NewTimeEntryRepository(pool pgdb.Queryer) *TimeEntryRepository {
	return &TimeEntryRepository{pool: pool}
}

// Create は打刻中のエントリを作成します。
func (r *TimeEntryRepository) Create(ctx context.Context, e *timeentry.TimeEntry) (*timeentry.TimeEntry, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO time_entries (user_id, department_id, clock_in, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING `+timeEntryColumns,
		e.UserID, e.DepartmentID, e.ClockIn, e.CreatedAt, e.UpdatedAt)

	created, err := scanTimeEntry(row)
	if err != nil {
		return nil, translateTimeEntryPgError(err)
	}
	return created, nil
}

// FindByID は ID でエントリを取得します。
func (r *TimeEntryRepository) FindByID(ctx context.Context, id string) (*timeentry.TimeEntry, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+timeEntryColumns+`
          FROM time_entries
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanTimeEntry(row)
	if err != nil {
		return nil, translateTimeEntryPgError(err)
	}
	return found, nil
}

// FindOpenByUser はユーザーの打刻中エントリを取得します。なければ timeentry.ErrNoOpenEntry です。
func (r *TimeEntryRepository) FindOpenByUser(ctx context.Context, userID string) (*timeentry.TimeEntry, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+timeEntryColumns+`
          FROM time_entries
         WHERE user_id = $1 AND clock_out IS NULL
         LIMIT 1
    `, userID)

	found, err := scanTimeEntry(row)
	if err != nil {
		if errors.Is(err, timeentry.ErrTimeEntryNotFound) {
			return nil, timeentry.ErrNoOpenEntry
		}
		return nil, translateTimeEntryPgError(err)
	}
	return found, nil
}

// Close は打刻中のエントリを退勤させます。既に退勤済みか所有者が異なれば timeentry.ErrEntryNotOpen です。
func (r *TimeEntryRepository) Close(ctx context.Context, in timeentry.CloseParams) (*timeentry.TimeEntry, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE time_entries
           SET clock_out = $1,
               hours = $2::numeric,
               updated_at = $3
         WHERE id = $4 AND user_id = $5 AND clock_out IS NULL
        RETURNING `+timeEntryColumns,
		in.ClockOut, in.Hours.StringFixed(2), in.UpdatedAt, in.ID, in.UserID)

	closed, err := scanTimeEntry(row)
	if err != nil {
		if errors.Is(err, timeentry.ErrTimeEntryNotFound) {
			return nil, timeentry.ErrEntryNotOpen
		}
		return nil, translateTimeEntryPgError(err)
	}
	return closed, nil
}

// ListByUser はユーザーのエントリを出勤時刻の新しい順に取得します。
func (r *TimeEntryRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*timeentry.TimeEntry, error) {
	if limit <= 0 {
		return nil, timeentry.ErrInvalidLimit
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+timeEntryColumns+`
          FROM time_entries
         WHERE user_id = $1
         ORDER BY clock_in DESC, id DESC
         LIMIT $2
    `, userID, limit)
	if err != nil {
		return nil, translateTimeEntryPgError(err)
	}
	defer rows.Close()

	entries := make([]*timeentry.TimeEntry, 0, limit)
	for rows.Next() {
		e, err := scanTimeEntry(rows)
		if err != nil {
			return nil, translateTimeEntryPgError(err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, translateTimeEntryPgError(err)
	}
	return entries, nil
}

func scanTimeEntry(row pgx.Row) (*timeentry.TimeEntry, error) {
	var (
		e                    timeentry.TimeEntry
		clockIn              time.Time
		clockOut             sql.NullTime
		hours                sql.NullString
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&e.ID, &e.UserID, &e.DepartmentID, &clockIn, &clockOut, &hours, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, timeentry.ErrTimeEntryNotFound
		}
		return nil, err
	}

	if hours.Valid {
		parsed, err := decimal.NewFromString(hours.String)
		if err != nil {
			return nil, fmt.Errorf("postgres: parse hours %q: %w", hours.String, err)
		}
		e.Hours = &parsed
	}
	if clockOut.Valid {
		out := clockOut.Time
		e.ClockOut = &out
	}

	e.ClockIn = clockIn
	e.CreatedAt = createdAt
	e.UpdatedAt = updatedAt
	return &e, nil
}

func translateTimeEntryPgError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			if pgErr.ConstraintName == "time_entries_one_open_per_user" {
				return timeentry.ErrAlreadyClockedIn
			}
		case foreignKeyViolationCode:
			if pgErr.ConstraintName == "time_entries_department_id_fkey" {
				return timeentry.ErrDepartmentNotFound
			}
		}
	}

	return err
}
