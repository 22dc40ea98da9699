// Package session はクライアント側で 1 人のアクターの打刻状態を保持するビューモデルです。
// サーバーの応答が常に正であり、ローカルの更新は次回の全件取得までの表示用の写しです。
package session

import (
	"time"

	"github.com/ogurasousui/timeclock-grpc/internal/core/apperror"
	"github.com/ogurasousui/timeclock-grpc/internal/core/timeentry"
	"github.com/shopspring/decimal"
)

const defaultMaxEntries = 50

var (
	// ErrNotClockedIn は打刻中でない、または別のエントリを退勤しようとした場合に返却されます。
	ErrNotClockedIn = apperror.New(apperror.CodeConflict, "session: not clocked in")
)

// Entry はクライアントが保持する打刻記録です。Estimated はローカルで見積もった時間数であることを示します。
type Entry struct {
	ID           string
	DepartmentID string
	ClockIn      time.Time
	ClockOut     *time.Time
	Hours        *decimal.Decimal
	Estimated    bool
}

// IsOpen は退勤前かどうかを返します。
func (e Entry) IsOpen() bool {
	return e.ClockOut == nil
}

// Department は部署のキャッシュです。
type Department struct {
	ID            string
	Name          string
	EmployeeCount int
	TotalCost     decimal.Decimal
}

// State は 1 セッション分の状態です。単一アクターの逐次操作を前提とし、ロックを持ちません。
type State struct {
	current     *Entry
	entries     []Entry
	departments map[string]Department
	maxEntries  int
}

// New は State を生成します。maxEntries が 0 以下なら既定値を使います。
func New(maxEntries int) *State {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &State{
		departments: make(map[string]Department),
		maxEntries:  maxEntries,
	}
}

// Current は打刻中のエントリを返します。
func (s *State) Current() (Entry, bool) {
	if s.current == nil {
		return Entry{}, false
	}
	return cloneEntry(*s.current), true
}

// ClockState は打刻状態を返します。
func (s *State) ClockState() timeentry.State {
	if s.current == nil {
		return timeentry.StateClockedOut
	}
	return timeentry.StateClockedIn
}

// Entries は新しい順の打刻記録の写しを返します。
func (s *State) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = cloneEntry(e)
	}
	return out
}

// ApplyClockIn はサーバーが作成したエントリを打刻中として先頭に追加します。
func (s *State) ApplyClockIn(entry Entry) {
	entry = cloneEntry(entry)
	s.current = &entry
	s.entries = append([]Entry{entry}, s.removeEntry(entry.ID)...)
	s.trim()
}

// ApplyClockOut はサーバー応答を待たずにローカルで退勤を反映し、時間数を見積もります。
func (s *State) ApplyClockOut(entryID string, now time.Time) (Entry, error) {
	if s.current == nil || s.current.ID != entryID {
		return Entry{}, ErrNotClockedIn
	}

	closed := cloneEntry(*s.current)
	clockOut := now
	if clockOut.Before(closed.ClockIn) {
		clockOut = closed.ClockIn
	}
	hours := timeentry.HoursBetween(closed.ClockIn, clockOut)
	closed.ClockOut = &clockOut
	closed.Hours = &hours
	closed.Estimated = true

	s.current = nil
	s.replace(closed)
	return cloneEntry(closed), nil
}

// ApplyServerEntry はサーバーが返したエントリでローカルの写しを上書きします。
func (s *State) ApplyServerEntry(entry Entry) {
	entry = cloneEntry(entry)
	entry.Estimated = false

	switch {
	case entry.IsOpen():
		s.current = &entry
	case s.current != nil && s.current.ID == entry.ID:
		s.current = nil
	}

	if !s.replace(entry) {
		s.entries = append([]Entry{entry}, s.entries...)
		s.trim()
	}
}

// Reconcile はサーバーから取得した全体像で状態を置き換えます。
func (s *State) Reconcile(open *Entry, entries []Entry) {
	s.current = nil
	if open != nil {
		current := cloneEntry(*open)
		s.current = &current
	}

	s.entries = make([]Entry, 0, len(entries))
	for _, e := range entries {
		s.entries = append(s.entries, cloneEntry(e))
	}
	s.trim()
}

// SetDepartments は部署キャッシュを置き換えます。
func (s *State) SetDepartments(departments []Department) {
	s.departments = make(map[string]Department, len(departments))
	for _, d := range departments {
		s.departments[d.ID] = d
	}
}

// Department は ID で部署を引きます。
func (s *State) Department(id string) (Department, bool) {
	d, ok := s.departments[id]
	return d, ok
}

// Elapsed は打刻中の経過時間を "HH:MM:SS" で返します。打刻していなければ "00:00:00" です。
func (s *State) Elapsed(now time.Time) string {
	if s.current == nil {
		return timeentry.FormatElapsed(0)
	}
	return timeentry.FormatElapsed(now.Sub(s.current.ClockIn))
}

func (s *State) replace(entry Entry) bool {
	for i := range s.entries {
		if s.entries[i].ID == entry.ID {
			s.entries[i] = entry
			return true
		}
	}
	return false
}

func (s *State) removeEntry(id string) []Entry {
	out := s.entries[:0:0]
	for _, e := range s.entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

func (s *State) trim() {
	if len(s.entries) > s.maxEntries {
		s.entries = s.entries[:s.maxEntries]
	}
}

func cloneEntry(e Entry) Entry {
	if e.ClockOut != nil {
		out := *e.ClockOut
		e.ClockOut = &out
	}
	if e.Hours != nil {
		h := *e.Hours
		e.Hours = &h
	}
	return e
}
