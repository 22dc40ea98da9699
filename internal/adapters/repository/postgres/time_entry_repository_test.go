package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/timeclock-grpc/internal/core/timeentry"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
)

var timeEntryRowColumns = []string{"id", "user_id", "department_id", "clock_in", "clock_out", "hours", "created_at", "updated_at"}

func TestScanTimeEntry_Closed(t *testing.T) {
	t.Parallel()

	in := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)
	out := time.Date(2024, 5, 6, 17, 30, 0, 0, time.UTC)

	row := stubRow{scanFn: func(dest ...interface{}) error {
		if len(dest) != 8 {
			return errors.New("unexpected dest length")
		}
		*(dest[0].(*string)) = "entry-1"
		*(dest[1].(*string)) = "user-1"
		*(dest[2].(*string)) = "dept-1"
		*(dest[3].(*time.Time)) = in

		clockOut := dest[4].(*sql.NullTime)
		clockOut.Time = out
		clockOut.Valid = true

		hours := dest[5].(*sql.NullString)
		hours.String = "8.50"
		hours.Valid = true

		*(dest[6].(*time.Time)) = in
		*(dest[7].(*time.Time)) = out
		return nil
	}}

	e, err := scanTimeEntry(row)
	if err != nil {
		t.Fatalf("scanTimeEntry returned error: %v", err)
	}
	if e.IsOpen() {
		t.Fatal("expected a closed entry")
	}
	if e.Hours == nil || !e.Hours.Equal(decimal.RequireFromString("8.5")) {
		t.Fatalf("unexpected hours %v", e.Hours)
	}
	if !e.ClockOut.Equal(out) {
		t.Fatalf("unexpected clock out %v", e.ClockOut)
	}
}

func TestScanTimeEntry_Open(t *testing.T) {
	t.Parallel()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		*(dest[0].(*string)) = "entry-1"
		return nil
	}}

	e, err := scanTimeEntry(row)
	if err != nil {
		t.Fatalf("scanTimeEntry returned error: %v", err)
	}
	if !e.IsOpen() || e.Hours != nil {
		t.Fatalf("expected an open entry without hours, got %+v", e)
	}
}

func TestTranslateTimeEntryPgError(t *testing.T) {
	t.Parallel()

	openErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "time_entries_one_open_per_user"}
	if !errors.Is(translateTimeEntryPgError(openErr), timeentry.ErrAlreadyClockedIn) {
		t.Fatalf("expected unique violation to map to ErrAlreadyClockedIn")
	}

	fkErr := &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "time_entries_department_id_fkey"}
	if !errors.Is(translateTimeEntryPgError(fkErr), timeentry.ErrDepartmentNotFound) {
		t.Fatalf("expected fk violation to map to ErrDepartmentNotFound")
	}

	other := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "time_entries_pkey"}
	if translateTimeEntryPgError(other) != error(other) {
		t.Fatalf("unexpected translation for unrelated unique violation")
	}
}

func TestTimeEntryRepository_Create_AlreadyClockedIn(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewTimeEntryRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO time_entries (user_id, department_id, clock_in, created_at, updated_at)`)).
		WithArgs("user-1", "dept-1", now, now, now).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "time_entries_one_open_per_user"})

	_, err = repo.Create(context.Background(), &timeentry.TimeEntry{
		UserID:       "user-1",
		DepartmentID: "dept-1",
		ClockIn:      now,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if !errors.Is(err, timeentry.ErrAlreadyClockedIn) {
		t.Fatalf("expected ErrAlreadyClockedIn, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTimeEntryRepository_Close(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewTimeEntryRepository(mock)
	in := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)
	out := time.Date(2024, 5, 6, 17, 30, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $4 AND user_id = $5 AND clock_out IS NULL`)).
		WithArgs(out, "8.50", out, "entry-1", "user-1").
		WillReturnRows(pgxmock.NewRows(timeEntryRowColumns).
			AddRow("entry-1", "user-1", "dept-1", in, out, "8.50", in, out))

	closed, err := repo.Close(context.Background(), timeentry.CloseParams{
		ID:        "entry-1",
		UserID:    "user-1",
		ClockOut:  out,
		Hours:     decimal.RequireFromString("8.5"),
		UpdatedAt: out,
	})
	if err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if closed.Hours == nil || closed.Hours.StringFixed(2) != "8.50" {
		t.Fatalf("unexpected hours %v", closed.Hours)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTimeEntryRepository_Close_NotOpen(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewTimeEntryRepository(mock)
	out := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE time_entries`)).
		WithArgs(out, "1.00", out, "entry-1", "user-1").
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.Close(context.Background(), timeentry.CloseParams{
		ID:        "entry-1",
		UserID:    "user-1",
		ClockOut:  out,
		Hours:     decimal.NewFromInt(1),
		UpdatedAt: out,
	})
	if !errors.Is(err, timeentry.ErrEntryNotOpen) {
		t.Fatalf("expected ErrEntryNotOpen, got %v", err)
	}
}

func TestTimeEntryRepository_FindOpenByUser_None(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewTimeEntryRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE user_id = $1 AND clock_out IS NULL`)).
		WithArgs("user-1").
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.FindOpenByUser(context.Background(), "user-1"); !errors.Is(err, timeentry.ErrNoOpenEntry) {
		t.Fatalf("expected ErrNoOpenEntry, got %v", err)
	}
}

func TestTimeEntryRepository_ListByUser(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewTimeEntryRepository(mock)
	day1 := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	out := day1.Add(8 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY clock_in DESC, id DESC`)).
		WithArgs("user-1", 20).
		WillReturnRows(pgxmock.NewRows(timeEntryRowColumns).
			AddRow("entry-2", "user-1", "dept-1", day2, nil, nil, day2, day2).
			AddRow("entry-1", "user-1", "dept-1", day1, out, "8.00", day1, out))

	entries, err := repo.ListByUser(context.Background(), "user-1", 20)
	if err != nil {
		t.Fatalf("ListByUser returned error: %v", err)
	}
	if len(entries) != 2 || !entries[0].IsOpen() || entries[1].IsOpen() {
		t.Fatalf("unexpected entries %+v", entries)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}

	if _, err := repo.ListByUser(context.Background(), "user-1", 0); !errors.Is(err, timeentry.ErrInvalidLimit) {
		t.Fatalf("expected ErrInvalidLimit, got %v", err)
	}
}
