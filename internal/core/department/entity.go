package department

import (
	"time"

	"github.com/ogurasousui/timeclock-grpc/internal/core/access"
	"github.com/shopspring/decimal"
)

// Department は部署エンティティです。社員数と人件費は保持せず、参照のたびに集計します。
type Department struct {
	ID        string
	Name      string
	Info      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Membership は社員の部署所属です。(UserID, DepartmentID) で一意です。
type Membership struct {
	ID           string
	UserID       string
	DepartmentID string
	Role         access.DepartmentRole
	Rate         decimal.Decimal
	Position     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	User         *MemberSnapshot
}

// MemberSnapshot は所属に紐づくユーザー情報のスナップショットです。
type MemberSnapshot struct {
	ID    string
	Email string
	Name  string
}

// Rollup は部署の集計値です。TotalCost は時給の合計です。
type Rollup struct {
	EmployeeCount int
	TotalCost     decimal.Decimal
}

// View は集計値付きの部署です。
type View struct {
	Department    *Department
	EmployeeCount int
	TotalCost     decimal.Decimal
}

func newView(d *Department, r Rollup) *View {
	return &View{
		Department:    d,
		EmployeeCount: r.EmployeeCount,
		TotalCost:     r.TotalCost.Round(2),
	}
}
