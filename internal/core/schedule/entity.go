package schedule

import "time"

// DepartmentSchedule は部署の 1 週間分のシフトです。WeekStart で週を識別します。
type DepartmentSchedule struct {
	ID             string
	DepartmentID   string
	DepartmentName string
	WeekStart      time.Time
	Shifts         []WorkShift
}

// WorkShift は 1 件のシフトです。StartTime と EndTime は時刻部分のみが比較対象です。
type WorkShift struct {
	ID         string
	ScheduleID string
	UserID     string
	DayOfWeek  int
	StartTime  time.Time
	EndTime    time.Time
}

// ShiftRef は衝突したシフトとその部署です。
type ShiftRef struct {
	DepartmentID   string
	DepartmentName string
	Shift          WorkShift
}

// Conflict は異なる部署間で重なる 2 件のシフトです。
type Conflict struct {
	First  ShiftRef
	Second ShiftRef
}

// Result は衝突検出の結果です。
type Result struct {
	HasConflict bool
	Conflicts   []Conflict
}
