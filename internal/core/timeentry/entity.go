package timeentry

import (
	"time"

	"github.com/shopspring/decimal"
)

// State はユーザーの打刻状態です。
type State string

const (
	StateClockedOut State = "CLOCKED_OUT"
	StateClockedIn  State = "CLOCKED_IN"
)

// TimeEntry は 1 回の出勤から退勤までの記録です。ClockOut が nil の間は打刻中です。
type TimeEntry struct {
	ID           string
	UserID       string
	DepartmentID string
	ClockIn      time.Time
	ClockOut     *time.Time
	Hours        *decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsOpen は退勤前かどうかを返します。
func (e *TimeEntry) IsOpen() bool {
	return e != nil && e.ClockOut == nil
}

// StateOf は打刻中のエントリから状態を求めます。
func StateOf(open *TimeEntry) State {
	if open.IsOpen() {
		return StateClockedIn
	}
	return StateClockedOut
}
