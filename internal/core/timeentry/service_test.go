package timeentry

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/timeclock-grpc/internal/core/access"
	"github.com/ogurasousui/timeclock-grpc/internal/core/apperror"
)

type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func (s *stubClock) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *stubClock) set(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = t
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
	mu      sync.Mutex
	entries map[string]*TimeEntry
	closes  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{entries: make(map[string]*TimeEntry)}
}

func (r *fakeRepo) Create(_ context.Context, e *TimeEntry) (*TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.entries {
		if existing.UserID == e.UserID && existing.IsOpen() {
			return nil, ErrAlreadyClockedIn
		}
	}
	clone := cloneEntry(e)
	clone.ID = uuid.NewString()
	r.entries[clone.ID] = clone
	return cloneEntry(clone), nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, ErrTimeEntryNotFound
	}
	return cloneEntry(e), nil
}

func (r *fakeRepo) FindOpenByUser(_ context.Context, userID string) (*TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.UserID == userID && e.IsOpen() {
			return cloneEntry(e), nil
		}
	}
	return nil, ErrNoOpenEntry
}

func (r *fakeRepo) Close(_ context.Context, in CloseParams) (*TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[in.ID]
	if !ok || e.UserID != in.UserID || !e.IsOpen() {
		return nil, ErrEntryNotOpen
	}
	r.closes++
	clockOut := in.ClockOut
	hours := in.Hours
	e.ClockOut = &clockOut
	e.Hours = &hours
	e.UpdatedAt = in.UpdatedAt
	return cloneEntry(e), nil
}

func (r *fakeRepo) ListByUser(_ context.Context, userID string, limit int) ([]*TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*TimeEntry
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, cloneEntry(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClockIn.After(out[j].ClockIn) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func cloneEntry(e *TimeEntry) *TimeEntry {
	if e == nil {
		return nil
	}
	copy := *e
	if e.ClockOut != nil {
		out := *e.ClockOut
		copy.ClockOut = &out
	}
	if e.Hours != nil {
		h := *e.Hours
		copy.Hours = &h
	}
	return &copy
}

type fixture struct {
	svc    *Service
	repo   *fakeRepo
	clock  *stubClock
	user   string
	other  string
	deptID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	user := uuid.NewString()
	other := uuid.NewString()
	deptID := uuid.NewString()
	dir := &stubDirectory{
		global: map[string]access.GlobalRole{user: access.GlobalRoleUser, other: access.GlobalRoleUser},
		dept: map[string]access.DepartmentRole{
			user + "/" + deptID:  access.DepartmentMember,
			other + "/" + deptID: access.DepartmentMember,
		},
	}
	repo := newFakeRepo()
	clk := &stubClock{now: time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)}

	return &fixture{
		svc:    NewService(repo, dir, clk, nil, nil),
		repo:   repo,
		clock:  clk,
		user:   user,
		other:  other,
		deptID: deptID,
	}
}

func TestService_ClockInOut_ComputesHours(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	entry, err := f.svc.ClockIn(context.Background(), ClockInInput{UserID: f.user, DepartmentID: f.deptID})
	if err != nil {
		t.Fatalf("ClockIn error: %v", err)
	}
	if !entry.IsOpen() || entry.Hours != nil {
		t.Fatalf("expected open entry without hours, got %+v", entry)
	}

	f.clock.set(time.Date(2024, 5, 6, 17, 30, 0, 0, time.UTC))

	closed, err := f.svc.ClockOut(context.Background(), ClockOutInput{UserID: f.user, TimeEntryID: entry.ID})
	if err != nil {
		t.Fatalf("ClockOut error: %v", err)
	}
	if closed.Hours == nil || closed.Hours.StringFixed(2) != "8.50" {
		t.Fatalf("expected 8.50 hours, got %v", closed.Hours)
	}
	if closed.IsOpen() {
		t.Fatal("expected entry to be closed")
	}

	open, err := f.svc.GetOpenEntry(context.Background(), GetOpenEntryInput{UserID: f.user})
	if err != nil {
		t.Fatalf("GetOpenEntry error: %v", err)
	}
	if open != nil || StateOf(open) != StateClockedOut {
		t.Fatalf("expected CLOCKED_OUT, got %+v", open)
	}
}

func TestService_ClockIn_RejectsSecondOpenEntry(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	if _, err := f.svc.ClockIn(context.Background(), ClockInInput{UserID: f.user, DepartmentID: f.deptID}); err != nil {
		t.Fatalf("ClockIn error: %v", err)
	}

	_, err := f.svc.ClockIn(context.Background(), ClockInInput{UserID: f.user, DepartmentID: f.deptID})
	if !errors.Is(err, ErrAlreadyClockedIn) {
		t.Fatalf("expected ErrAlreadyClockedIn, got %v", err)
	}
	if apperror.GetCode(err) != apperror.CodeConflict {
		t.Fatalf("expected conflict code, got %q", apperror.GetCode(err))
	}
}

func TestService_ClockIn_ConcurrentRequests(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

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
			_, err := f.svc.ClockIn(context.Background(), ClockInInput{UserID: f.user, DepartmentID: f.deptID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrAlreadyClockedIn):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 || conflicts != attempts-1 {
		t.Fatalf("expected 1 success and %d conflicts, got %d and %d", attempts-1, successes, conflicts)
	}

	open := 0
	for _, e := range f.repo.entries {
		if e.IsOpen() {
			open++
		}
	}
	if open != 1 {
		t.Fatalf("expected exactly one open entry, found %d", open)
	}
}

func TestService_ClockIn_RequiresMembership(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.svc.ClockIn(context.Background(), ClockInInput{UserID: f.user, DepartmentID: uuid.NewString()})
	if !errors.Is(err, access.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	_, err = f.svc.ClockIn(context.Background(), ClockInInput{UserID: uuid.NewString(), DepartmentID: f.deptID})
	if !errors.Is(err, access.ErrUnknownActor) {
		t.Fatalf("expected ErrUnknownActor, got %v", err)
	}

	_, err = f.svc.ClockIn(context.Background(), ClockInInput{UserID: f.user, DepartmentID: "sales"})
	if !errors.Is(err, ErrInvalidDepartmentID) {
		t.Fatalf("expected ErrInvalidDepartmentID, got %v", err)
	}
}

func TestService_ClockOut_RejectsForeignAndClosedEntries(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	entry, err := f.svc.ClockIn(context.Background(), ClockInInput{UserID: f.user, DepartmentID: f.deptID})
	if err != nil {
		t.Fatalf("ClockIn error: %v", err)
	}

	if _, err := f.svc.ClockOut(context.Background(), ClockOutInput{UserID: f.other, TimeEntryID: entry.ID}); !errors.Is(err, ErrTimeEntryNotFound) {
		t.Fatalf("expected ErrTimeEntryNotFound for foreign entry, got %v", err)
	}
	if _, err := f.svc.ClockOut(context.Background(), ClockOutInput{UserID: f.user, TimeEntryID: uuid.NewString()}); !errors.Is(err, ErrTimeEntryNotFound) {
		t.Fatalf("expected ErrTimeEntryNotFound for unknown entry, got %v", err)
	}
	if f.repo.closes != 0 {
		t.Fatalf("expected no mutation, got %d closes", f.repo.closes)
	}

	f.clock.set(f.clock.Now().Add(time.Hour))
	if _, err := f.svc.ClockOut(context.Background(), ClockOutInput{UserID: f.user, TimeEntryID: entry.ID}); err != nil {
		t.Fatalf("ClockOut error: %v", err)
	}

	before, _ := f.repo.FindByID(context.Background(), entry.ID)
	f.clock.set(f.clock.Now().Add(time.Hour))
	if _, err := f.svc.ClockOut(context.Background(), ClockOutInput{UserID: f.user, TimeEntryID: entry.ID}); !errors.Is(err, ErrEntryNotOpen) {
		t.Fatalf("expected ErrEntryNotOpen, got %v", err)
	}
	after, _ := f.repo.FindByID(context.Background(), entry.ID)
	if !after.ClockOut.Equal(*before.ClockOut) || !after.Hours.Equal(*before.Hours) {
		t.Fatal("expected closed entry to stay unchanged")
	}
}

func TestService_ListEntries(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	for i := 0; i < 3; i++ {
		entry, err := f.svc.ClockIn(context.Background(), ClockInInput{UserID: f.user, DepartmentID: f.deptID})
		if err != nil {
			t.Fatalf("ClockIn error: %v", err)
		}
		f.clock.set(f.clock.Now().Add(2 * time.Hour))
		if _, err := f.svc.ClockOut(context.Background(), ClockOutInput{UserID: f.user, TimeEntryID: entry.ID}); err != nil {
			t.Fatalf("ClockOut error: %v", err)
		}
		f.clock.set(f.clock.Now().Add(time.Hour))
	}

	entries, err := f.svc.ListEntries(context.Background(), ListEntriesInput{UserID: f.user, Limit: 2})
	if err != nil {
		t.Fatalf("ListEntries error: %v", err)
	}
	if len(entries) != 2 || !entries[0].ClockIn.After(entries[1].ClockIn) {
		t.Fatalf("expected 2 entries newest first, got %+v", entries)
	}

	if _, err := f.svc.ListEntries(context.Background(), ListEntriesInput{UserID: f.user, Limit: maxListLimit + 1}); !errors.Is(err, ErrInvalidLimit) {
		t.Fatalf("expected ErrInvalidLimit, got %v", err)
	}
}
