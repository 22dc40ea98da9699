package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/timeclock-grpc/internal/core/access"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type stubDirectory struct {
	global map[string]access.GlobalRole
	dept   map[string]access.DepartmentRole
}

func (d *stubDirectory) GlobalRole(_ context.Context, userID string) (access.GlobalRole, error) {
	role, ok := d.global[userID]
	if !ok {
		return "", access.ErrUnknownActor
	}
	return role, nil
}

func (d *stubDirectory) DepartmentRole(_ context.Context, userID, departmentID string) (access.DepartmentRole, error) {
	return d.dept[userID+"/"+departmentID], nil
}

type fakeRepo struct {
	schedules []*DepartmentSchedule
	members   map[string][]string
}

func (r *fakeRepo) filter(s *DepartmentSchedule, userID string) *DepartmentSchedule {
	clone := *s
	clone.Shifts = nil
	for _, sh := range s.Shifts {
		if sh.UserID == userID {
			clone.Shifts = append(clone.Shifts, sh)
		}
	}
	return &clone
}

func (r *fakeRepo) FindByWeek(_ context.Context, departmentID, userID string, weekStart time.Time) (*DepartmentSchedule, error) {
	for _, s := range r.schedules {
		if s.DepartmentID == departmentID && s.WeekStart.Equal(weekStart) {
			return r.filter(s, userID), nil
		}
	}
	return nil, ErrScheduleNotFound
}

func (r *fakeRepo) FindLatest(_ context.Context, departmentID, userID string, asOf time.Time) (*DepartmentSchedule, error) {
	var latest *DepartmentSchedule
	for _, s := range r.schedules {
		if s.DepartmentID != departmentID || s.WeekStart.After(asOf) {
			continue
		}
		if latest == nil || s.WeekStart.After(latest.WeekStart) {
			latest = s
		}
	}
	if latest == nil {
		return nil, ErrScheduleNotFound
	}
	return r.filter(latest, userID), nil
}

func (r *fakeRepo) ListForUserWeek(_ context.Context, userID string, weekStart time.Time) ([]*DepartmentSchedule, error) {
	var out []*DepartmentSchedule
	for _, deptID := range r.members[userID] {
		for _, s := range r.schedules {
			if s.DepartmentID == deptID && s.WeekStart.Equal(weekStart) {
				out = append(out, r.filter(s, userID))
			}
		}
	}
	return out, nil
}

type fixture struct {
	svc      *Service
	admin    string
	worker   string
	manager  string
	outsider string
	dept1    string
	dept2    string
	week     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		admin:    uuid.NewString(),
		worker:   uuid.NewString(),
		manager:  uuid.NewString(),
		outsider: uuid.NewString(),
		dept1:    uuid.NewString(),
		dept2:    uuid.NewString(),
		week:     time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC),
	}

	dir := &stubDirectory{
		global: map[string]access.GlobalRole{
			f.admin:    access.GlobalRoleAdmin,
			f.worker:   access.GlobalRoleUser,
			f.manager:  access.GlobalRoleUser,
			f.outsider: access.GlobalRoleUser,
		},
		dept: map[string]access.DepartmentRole{
			f.worker + "/" + f.dept1:  access.DepartmentMember,
			f.worker + "/" + f.dept2:  access.DepartmentMember,
			f.manager + "/" + f.dept1: access.DepartmentManager,
		},
	}

	monday := func(h int) time.Time { return f.week.Add(time.Duration(h) * time.Hour) }
	repo := &fakeRepo{
		members: map[string][]string{f.worker: {f.dept1, f.dept2}},
		schedules: []*DepartmentSchedule{
			{ID: "s-old", DepartmentID: f.dept1, DepartmentName: "Dept1", WeekStart: f.week.AddDate(0, 0, -7)},
			{ID: "s1", DepartmentID: f.dept1, DepartmentName: "Dept1", WeekStart: f.week, Shifts: []WorkShift{
				{ID: "X", UserID: f.worker, DayOfWeek: 1, StartTime: monday(9), EndTime: monday(13)},
				{ID: "M", UserID: f.manager, DayOfWeek: 1, StartTime: monday(8), EndTime: monday(16)},
			}},
			{ID: "s2", DepartmentID: f.dept2, DepartmentName: "Dept2", WeekStart: f.week, Shifts: []WorkShift{
				{ID: "Y", UserID: f.worker, DayOfWeek: 1, StartTime: monday(12), EndTime: monday(16)},
				{ID: "Z", UserID: f.worker, DayOfWeek: 1, StartTime: monday(13), EndTime: monday(17)},
			}},
			{ID: "s-future", DepartmentID: f.dept1, DepartmentName: "Dept1", WeekStart: f.week.AddDate(0, 0, 14)},
		},
	}

	clk := &stubClock{now: f.week.Add(50 * time.Hour)}
	f.svc = NewService(repo, dir, clk, nil, nil)
	return f
}

func TestService_GetSchedule(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	own, err := f.svc.GetSchedule(context.Background(), GetScheduleInput{
		ActorID:      f.worker,
		UserID:       f.worker,
		DepartmentID: f.dept1,
		WeekStart:    time.Date(2024, 5, 6, 15, 4, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("GetSchedule error: %v", err)
	}
	if own.ID != "s1" || len(own.Shifts) != 1 || own.Shifts[0].ID != "X" {
		t.Fatalf("expected only the worker's shift in s1, got %+v", own)
	}

	latest, err := f.svc.GetSchedule(context.Background(), GetScheduleInput{ActorID: f.manager, UserID: f.worker, DepartmentID: f.dept1})
	if err != nil {
		t.Fatalf("GetSchedule latest error: %v", err)
	}
	if latest.ID != "s1" {
		t.Fatalf("expected latest non-future schedule s1, got %s", latest.ID)
	}

	if _, err := f.svc.GetSchedule(context.Background(), GetScheduleInput{ActorID: f.outsider, UserID: f.worker, DepartmentID: f.dept1}); !errors.Is(err, access.ErrPermissionDenied) {
		t.Fatalf("expected outsider to be denied, got %v", err)
	}

	if _, err := f.svc.GetSchedule(context.Background(), GetScheduleInput{
		ActorID: f.admin, UserID: f.worker, DepartmentID: f.dept2, WeekStart: f.week.AddDate(0, 1, 0),
	}); !errors.Is(err, ErrScheduleNotFound) {
		t.Fatalf("expected ErrScheduleNotFound, got %v", err)
	}

	if _, err := f.svc.GetSchedule(context.Background(), GetScheduleInput{ActorID: f.admin, UserID: "worker", DepartmentID: f.dept1}); !errors.Is(err, ErrInvalidUserID) {
		t.Fatalf("expected ErrInvalidUserID, got %v", err)
	}
}

func TestService_CheckUserConflicts(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	result, err := f.svc.CheckUserConflicts(context.Background(), CheckUserConflictsInput{ActorID: f.worker, UserID: f.worker, WeekStart: f.week})
	if err != nil {
		t.Fatalf("CheckUserConflicts error: %v", err)
	}
	if !result.HasConflict || len(result.Conflicts) != 1 {
		t.Fatalf("expected exactly the X/Y conflict, got %+v", result.Conflicts)
	}
	if result.Conflicts[0].First.Shift.ID != "X" || result.Conflicts[0].Second.Shift.ID != "Y" {
		t.Fatalf("unexpected conflict %+v", result.Conflicts[0])
	}

	if _, err := f.svc.CheckUserConflicts(context.Background(), CheckUserConflictsInput{ActorID: f.manager, UserID: f.worker, WeekStart: f.week}); !errors.Is(err, access.ErrPermissionDenied) {
		t.Fatalf("expected manager to be denied, got %v", err)
	}

	if _, err := f.svc.CheckUserConflicts(context.Background(), CheckUserConflictsInput{ActorID: f.admin, UserID: f.worker}); !errors.Is(err, ErrInvalidWeekStart) {
		t.Fatalf("expected ErrInvalidWeekStart, got %v", err)
	}
}

func TestService_DetectConflicts_ValidatesDayOfWeek(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.svc.DetectConflicts(context.Background(), DetectConflictsInput{Schedules: []*DepartmentSchedule{
		{DepartmentID: "d1", Shifts: []WorkShift{{DayOfWeek: 7}}},
	}})
	if !errors.Is(err, ErrInvalidDayOfWeek) {
		t.Fatalf("expected ErrInvalidDayOfWeek, got %v", err)
	}

	result, err := f.svc.DetectConflicts(context.Background(), DetectConflictsInput{})
	if err != nil {
		t.Fatalf("DetectConflicts error: %v", err)
	}
	if result.HasConflict || len(result.Conflicts) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}
