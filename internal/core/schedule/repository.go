package schedule

import (
	"context"
	"time"
)

// Repository はスケジュールの読み取りを行います。スケジュールの作成・編集は外部の責務です。
type Repository interface {
	// FindByWeek は部署の指定週のスケジュールを返します。Shifts は userID のシフトのみです。
	FindByWeek(ctx context.Context, departmentID, userID string, weekStart time.Time) (*DepartmentSchedule, error)
	// FindLatest は asOf 以前に始まる最新の週のスケジュールを返します。
	FindLatest(ctx context.Context, departmentID, userID string, asOf time.Time) (*DepartmentSchedule, error)
	// ListForUserWeek は userID が所属する全部署の指定週のスケジュールを部署名順に返します。
	ListForUserWeek(ctx context.Context, userID string, weekStart time.Time) ([]*DepartmentSchedule, error)
}
