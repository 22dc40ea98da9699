package schedule

import "time"

const secondsPerDay = 24 * 60 * 60

// DetectConflicts は異なる部署のスケジュール同士で、同じ曜日に重なるシフトを列挙します。
// 区間は半開区間として扱い、start1 < end2 かつ start2 < end1 の場合のみ衝突です。
// 同一部署内のシフトは比較しません。結果は部署の組 × シフトの走査順で、入力順が同じなら常に同じ順序です。
func DetectConflicts(schedules []*DepartmentSchedule) Result {
	result := Result{Conflicts: []Conflict{}}

	for i := 0; i < len(schedules); i++ {
		left := schedules[i]
		if left == nil {
			continue
		}
		for j := i + 1; j < len(schedules); j++ {
			right := schedules[j]
			if right == nil || left.DepartmentID == right.DepartmentID {
				continue
			}

			for _, a := range left.Shifts {
				for _, b := range right.Shifts {
					if a.DayOfWeek != b.DayOfWeek || !Overlaps(a, b) {
						continue
					}
					result.Conflicts = append(result.Conflicts, Conflict{
						First:  ShiftRef{DepartmentID: left.DepartmentID, DepartmentName: left.DepartmentName, Shift: a},
						Second: ShiftRef{DepartmentID: right.DepartmentID, DepartmentName: right.DepartmentName, Shift: b},
					})
				}
			}
		}
	}

	result.HasConflict = len(result.Conflicts) > 0
	return result
}

// Overlaps は 2 件のシフトの時刻部分が重なるかを判定します。端点が接するだけの場合は重なりません。
func Overlaps(a, b WorkShift) bool {
	aStart, aEnd := span(a)
	bStart, bEnd := span(b)
	return aStart < bEnd && bStart < aEnd
}

// span はシフトを 0 時からの秒数の区間に変換します。終了が開始より前なら翌日の時刻として扱います。
func span(s WorkShift) (int, int) {
	start := secondOfDay(s.StartTime)
	end := secondOfDay(s.EndTime)
	if end < start {
		end += secondsPerDay
	}
	return start, end
}

// secondOfDay は UTC での時刻を秒に変換します。保持しているロケーションには依存しません。
func secondOfDay(t time.Time) int {
	h, m, sec := t.UTC().Clock()
	return h*3600 + m*60 + sec
}
