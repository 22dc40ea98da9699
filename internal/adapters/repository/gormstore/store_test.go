package gormstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/timeclock-grpc/internal/core/access"
	"github.com/ogurasousui/timeclock-grpc/internal/core/department"
	"github.com/ogurasousui/timeclock-grpc/internal/core/schedule"
	"github.com/ogurasousui/timeclock-grpc/internal/core/timeentry"
	"github.com/ogurasousui/timeclock-grpc/internal/core/user"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stubClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fixture struct {
	db          *gorm.DB
	clock       *stubClock
	users       *user.Service
	departments *department.Service
	entries     *timeentry.Service
	schedules   *schedule.Service
	admin       *user.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := Open(dsn, nil)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })

	clock := &stubClock{now: time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)}
	tx := NewTransactionManager(db)
	dir := NewAccessRepository(db)

	f := &fixture{
		db:          db,
		clock:       clock,
		users:       user.NewService(NewUserRepository(db), clock, tx, nil),
		departments: department.NewService(NewDepartmentRepository(db), dir, clock, tx, nil),
		entries:     timeentry.NewService(NewTimeEntryRepository(db), dir, clock, tx, nil),
		schedules:   schedule.NewService(NewScheduleRepository(db), dir, clock, tx, nil),
	}

	f.admin, err = f.users.EnsureAdmin(context.Background(), "admin@example.com", "Admin")
	if err != nil {
		t.Fatalf("EnsureAdmin returned error: %v", err)
	}
	return f
}

func (f *fixture) user(t *testing.T, email string) *user.User {
	t.Helper()
	u, err := f.users.CreateUser(context.Background(), user.CreateUserInput{ActorID: f.admin.ID, Email: email, Name: email})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	return u
}

func (f *fixture) department(t *testing.T, name string) *department.Department {
	t.Helper()
	d, err := f.departments.CreateDepartment(context.Background(), department.CreateDepartmentInput{ActorID: f.admin.ID, Name: name})
	if err != nil {
		t.Fatalf("CreateDepartment returned error: %v", err)
	}
	return d
}

func (f *fixture) add(t *testing.T, deptID, userID, rate string, role access.DepartmentRole) *department.View {
	t.Helper()
	view, err := f.departments.AddEmployee(context.Background(), department.AddEmployeeInput{
		ActorID:      f.admin.ID,
		DepartmentID: deptID,
		EmployeeID:   userID,
		Role:         role,
		Rate:         decimal.RequireFromString(rate),
	})
	if err != nil {
		t.Fatalf("AddEmployee returned error: %v", err)
	}
	return view
}

func TestStore_DepartmentRollup(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	sales := f.department(t, "Sales")
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")

	f.add(t, sales.ID, a.ID, "20.00", access.DepartmentMember)
	view := f.add(t, sales.ID, b.ID, "15.00", access.DepartmentMember)
	if view.EmployeeCount != 2 || view.TotalCost.StringFixed(2) != "35.00" {
		t.Fatalf("expected 2 / 35.00, got %d / %s", view.EmployeeCount, view.TotalCost.StringFixed(2))
	}

	view = f.add(t, sales.ID, a.ID, "22.50", access.DepartmentManager)
	if view.EmployeeCount != 2 || view.TotalCost.StringFixed(2) != "37.50" {
		t.Fatalf("expected upsert to keep the count, got %d / %s", view.EmployeeCount, view.TotalCost.StringFixed(2))
	}

	view, err := f.departments.RemoveEmployee(context.Background(), department.RemoveEmployeeInput{
		ActorID:      f.admin.ID,
		DepartmentID: sales.ID,
		EmployeeID:   a.ID,
	})
	if err != nil {
		t.Fatalf("RemoveEmployee returned error: %v", err)
	}
	if view.EmployeeCount != 1 || view.TotalCost.StringFixed(2) != "15.00" {
		t.Fatalf("expected 1 / 15.00, got %d / %s", view.EmployeeCount, view.TotalCost.StringFixed(2))
	}

	members, err := f.departments.ListMembers(context.Background(), department.ListMembersInput{ActorID: b.ID, DepartmentID: sales.ID})
	if err != nil {
		t.Fatalf("ListMembers returned error: %v", err)
	}
	if len(members) != 1 || members[0].User == nil || members[0].User.Email != "b@example.com" {
		t.Fatalf("unexpected members %+v", members)
	}
}

func TestStore_AddEmployeeUnknownUser(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	sales := f.department(t, "Sales")

	_, err := f.departments.AddEmployee(context.Background(), department.AddEmployeeInput{
		ActorID:      f.admin.ID,
		DepartmentID: sales.ID,
		EmployeeID:   uuid.NewString(),
		Role:         access.DepartmentMember,
		Rate:         decimal.NewFromInt(10),
	})
	if !errors.Is(err, department.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestStore_ClockInOnlyOnceUnderConcurrency(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	sales := f.department(t, "Sales")
	worker := f.user(t, "worker@example.com")
	f.add(t, sales.ID, worker.ID, "10.00", access.DepartmentMember)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.entries.ClockIn(context.Background(), timeentry.ClockInInput{UserID: worker.ID, DepartmentID: sales.ID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, timeentry.ErrAlreadyClockedIn):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 || conflicts != attempts-1 {
		t.Fatalf("expected 1 success and %d conflicts, got %d / %d", attempts-1, successes, conflicts)
	}

	var open int64
	if err := f.db.Model(&timeEntryModel{}).Where("user_id = ? AND clock_out IS NULL", worker.ID).Count(&open).Error; err != nil {
		t.Fatalf("count open entries: %v", err)
	}
	if open != 1 {
		t.Fatalf("expected exactly one open entry, got %d", open)
	}
}

func TestStore_OpenEntryIndexRejectsSecondOpenRow(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	sales := f.department(t, "Sales")
	worker := f.user(t, "worker@example.com")
	repo := NewTimeEntryRepository(f.db)
	now := f.clock.Now()

	entry := &timeentry.TimeEntry{UserID: worker.ID, DepartmentID: sales.ID, ClockIn: now, CreatedAt: now, UpdatedAt: now}
	if _, err := repo.Create(context.Background(), entry); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := repo.Create(context.Background(), entry); !errors.Is(err, timeentry.ErrAlreadyClockedIn) {
		t.Fatalf("expected ErrAlreadyClockedIn from the partial index, got %v", err)
	}
}

func TestStore_ClockOutAndDeleteInUse(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	sales := f.department(t, "Sales")
	worker := f.user(t, "worker@example.com")
	f.add(t, sales.ID, worker.ID, "10.00", access.DepartmentMember)

	entry, err := f.entries.ClockIn(context.Background(), timeentry.ClockInInput{UserID: worker.ID, DepartmentID: sales.ID})
	if err != nil {
		t.Fatalf("ClockIn returned error: %v", err)
	}

	f.clock.Set(time.Date(2024, 5, 6, 17, 30, 0, 0, time.UTC))
	closed, err := f.entries.ClockOut(context.Background(), timeentry.ClockOutInput{UserID: worker.ID, TimeEntryID: entry.ID})
	if err != nil {
		t.Fatalf("ClockOut returned error: %v", err)
	}
	if closed.Hours == nil || closed.Hours.StringFixed(2) != "8.50" {
		t.Fatalf("expected 8.50 hours, got %v", closed.Hours)
	}

	if _, err := f.entries.ClockOut(context.Background(), timeentry.ClockOutInput{UserID: worker.ID, TimeEntryID: entry.ID}); !errors.Is(err, timeentry.ErrEntryNotOpen) {
		t.Fatalf("expected ErrEntryNotOpen, got %v", err)
	}

	if _, err := f.departments.DeleteDepartment(context.Background(), department.DeleteDepartmentInput{ActorID: f.admin.ID, ID: sales.ID}); !errors.Is(err, department.ErrDepartmentInUse) {
		t.Fatalf("expected ErrDepartmentInUse, got %v", err)
	}
}

func TestStore_DeleteCascadesMembershipsAndSchedules(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ops := f.department(t, "Ops")
	worker := f.user(t, "worker@example.com")
	f.add(t, ops.ID, worker.ID, "10.00", access.DepartmentMember)

	week := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	s := scheduleModel{DepartmentID: ops.ID, WeekStart: week}
	if err := f.db.Create(&s).Error; err != nil {
		t.Fatalf("create schedule: %v", err)
	}
	if err := f.db.Create(&shiftModel{ScheduleID: s.ID, UserID: worker.ID, DayOfWeek: 1, StartTime: week.Add(9 * time.Hour), EndTime: week.Add(17 * time.Hour)}).Error; err != nil {
		t.Fatalf("create shift: %v", err)
	}

	if _, err := f.departments.DeleteDepartment(context.Background(), department.DeleteDepartmentInput{ActorID: f.admin.ID, ID: ops.ID}); err != nil {
		t.Fatalf("DeleteDepartment returned error: %v", err)
	}

	for _, model := range []any{&membershipModel{}, &scheduleModel{}, &shiftModel{}} {
		var count int64
		if err := f.db.Model(model).Count(&count).Error; err != nil {
			t.Fatalf("count: %v", err)
		}
		if count != 0 {
			t.Fatalf("expected %T rows to be removed, got %d", model, count)
		}
	}
}

func TestStore_ScheduleConflicts(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	dept1 := f.department(t, "Dept1")
	dept2 := f.department(t, "Dept2")
	worker := f.user(t, "worker@example.com")
	f.add(t, dept1.ID, worker.ID, "10.00", access.DepartmentMember)
	f.add(t, dept2.ID, worker.ID, "12.00", access.DepartmentMember)

	week := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return week.Add(time.Duration(h) * time.Hour) }

	seed := func(deptID string, shifts ...shiftModel) {
		s := scheduleModel{DepartmentID: deptID, WeekStart: week}
		if err := f.db.Create(&s).Error; err != nil {
			t.Fatalf("create schedule: %v", err)
		}
		for _, sh := range shifts {
			sh.ScheduleID = s.ID
			sh.UserID = worker.ID
			if err := f.db.Create(&sh).Error; err != nil {
				t.Fatalf("create shift: %v", err)
			}
		}
	}
	seed(dept1.ID, shiftModel{DayOfWeek: 1, StartTime: at(9), EndTime: at(13)})
	seed(dept2.ID,
		shiftModel{DayOfWeek: 1, StartTime: at(12), EndTime: at(16)},
		shiftModel{DayOfWeek: 1, StartTime: at(13), EndTime: at(17)},
	)

	result, err := f.schedules.CheckUserConflicts(context.Background(), schedule.CheckUserConflictsInput{ActorID: worker.ID, UserID: worker.ID, WeekStart: week})
	if err != nil {
		t.Fatalf("CheckUserConflicts returned error: %v", err)
	}
	if !result.HasConflict || len(result.Conflicts) != 1 {
		t.Fatalf("expected a single conflict, got %+v", result.Conflicts)
	}
	if result.Conflicts[0].First.DepartmentName != "Dept1" || result.Conflicts[0].Second.DepartmentName != "Dept2" {
		t.Fatalf("unexpected conflict order %+v", result.Conflicts[0])
	}

	f.clock.Set(week.Add(50 * time.Hour))
	latest, err := f.schedules.GetSchedule(context.Background(), schedule.GetScheduleInput{ActorID: worker.ID, UserID: worker.ID, DepartmentID: dept2.ID})
	if err != nil {
		t.Fatalf("GetSchedule returned error: %v", err)
	}
	if len(latest.Shifts) != 2 || !latest.WeekStart.Equal(week) {
		t.Fatalf("unexpected schedule %+v", latest)
	}
}

func TestStore_UserListPaging(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	for i := 0; i < 3; i++ {
		f.clock.Set(f.clock.Now().Add(time.Minute))
		f.user(t, fmt.Sprintf("u%d@example.com", i))
	}

	first, err := f.users.ListUsers(context.Background(), user.ListUsersInput{ActorID: f.admin.ID, PageSize: 2})
	if err != nil {
		t.Fatalf("ListUsers returned error: %v", err)
	}
	if len(first.Users) != 2 || first.NextPageToken == "" {
		t.Fatalf("unexpected first page %+v", first)
	}
	if first.Users[0].Email != "u2@example.com" {
		t.Fatalf("expected newest first, got %s", first.Users[0].Email)
	}

	if _, err := f.users.CreateUser(context.Background(), user.CreateUserInput{ActorID: f.admin.ID, Email: "U0@example.com", Name: "dup"}); !errors.Is(err, user.ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}
