// Package timeclockv1 は timeclock.v1 の gRPC サービス定義とメッセージです。
// メッセージは JSON コーデック (application/grpc+json) で送受信します。
package timeclockv1

import "time"

// Department は集計値付きの部署です。TotalCost は小数点以下 2 桁の文字列です。
type Department struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Info          string    `json:"info"`
	EmployeeCount int32     `json:"employee_count"`
	TotalCost     string    `json:"total_cost"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Membership は部署所属です。
type Membership struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	DepartmentID string    `json:"department_id"`
	Role         string    `json:"role"`
	Rate         string    `json:"rate"`
	Position     string    `json:"position"`
	Email        string    `json:"email,omitempty"`
	Name         string    `json:"name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TimeEntry は打刻記録です。
type TimeEntry struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	DepartmentID string     `json:"department_id"`
	ClockIn      time.Time  `json:"clock_in"`
	ClockOut     *time.Time `json:"clock_out,omitempty"`
	Hours        *string    `json:"hours,omitempty"`
}

// WorkShift はシフトです。DayOfWeek は 0 (日曜) から 6 (土曜) です。
type WorkShift struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	DayOfWeek int32     `json:"day_of_week" validate:"gte=0,lte=6"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// DepartmentSchedule は部署の週次スケジュールです。WeekStart は YYYY-MM-DD です。
type DepartmentSchedule struct {
	ID             string      `json:"id"`
	DepartmentID   string      `json:"department_id" validate:"required"`
	DepartmentName string      `json:"department_name"`
	WeekStart      string      `json:"week_start,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Shifts         []WorkShift `json:"shifts" validate:"dive"`
}

// ShiftRef は衝突したシフトとその部署です。
type ShiftRef struct {
	DepartmentID   string    `json:"department_id"`
	DepartmentName string    `json:"department_name"`
	Shift          WorkShift `json:"shift"`
}

// Conflict は重なる 2 件のシフトです。
type Conflict struct {
	First  ShiftRef `json:"first"`
	Second ShiftRef `json:"second"`
}

// User はユーザーです。
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateDepartmentRequest struct {
	Name string `json:"name" validate:"required,max=200"`
	Info string `json:"info" validate:"max=2000"`
}

type GetDepartmentRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

// UpdateDepartmentRequest の ID 形式は権限確認の後にサービスが検証します。
type UpdateDepartmentRequest struct {
	ID   string  `json:"id" validate:"required"`
	Name *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Info *string `json:"info,omitempty" validate:"omitempty,max=2000"`
}

// DeleteDepartmentRequest の ID 形式は権限確認の後にサービスが検証します。
type DeleteDepartmentRequest struct {
	ID string `json:"id" validate:"required"`
}

type ListDepartmentsRequest struct {
	// PermittedOnly が true なら呼び出し元が管理できる部署のみを返します。
	PermittedOnly bool `json:"permitted_only"`
}

// DepartmentResponse は部署を返す操作の応答です。Message は通知用の文言です。
type DepartmentResponse struct {
	Department *Department `json:"department"`
	Message    string      `json:"message,omitempty"`
}

type ListDepartmentsResponse struct {
	Departments []*Department `json:"departments"`
}

type AddEmployeeRequest struct {
	DepartmentID string `json:"department_id" validate:"required,uuid"`
	EmployeeID   string `json:"employee_id" validate:"required,uuid"`
	Role         string `json:"role" validate:"omitempty,oneof=MEMBER MANAGER ADMIN"`
	Rate         string `json:"rate" validate:"required,numeric"`
	Position     string `json:"position" validate:"max=200"`
}

type RemoveEmployeeRequest struct {
	DepartmentID string `json:"department_id" validate:"required,uuid"`
	EmployeeID   string `json:"employee_id" validate:"required,uuid"`
}

type RemoveMembershipRequest struct {
	MembershipID string `json:"membership_id" validate:"required,uuid"`
}

type UpdateMemberRoleRequest struct {
	DepartmentID string `json:"department_id" validate:"required,uuid"`
	EmployeeID   string `json:"employee_id" validate:"required,uuid"`
	Role         string `json:"role" validate:"required,oneof=MEMBER MANAGER ADMIN"`
}

type MembershipResponse struct {
	Membership *Membership `json:"membership"`
	Message    string      `json:"message,omitempty"`
}

type ListMembersRequest struct {
	DepartmentID string `json:"department_id" validate:"required,uuid"`
}

type ListMembersResponse struct {
	Members []*Membership `json:"members"`
}

type ClockInRequest struct {
	DepartmentID string `json:"department_id" validate:"required,uuid"`
}

type ClockOutRequest struct {
	TimeEntryID string `json:"time_entry_id" validate:"required,uuid"`
}

// TimeEntryResponse は打刻操作の応答です。State は CLOCKED_IN または CLOCKED_OUT です。
type TimeEntryResponse struct {
	Entry   *TimeEntry `json:"entry"`
	State   string     `json:"state"`
	Message string     `json:"message,omitempty"`
}

type GetOpenEntryRequest struct{}

type ListEntriesRequest struct {
	Limit int32 `json:"limit" validate:"gte=0,lte=200"`
}

type ListEntriesResponse struct {
	Entries []*TimeEntry `json:"entries"`
}

type GetScheduleRequest struct {
	// UserID を省略すると呼び出し元のスケジュールです。
	UserID       string `json:"user_id,omitempty" validate:"omitempty,uuid"`
	DepartmentID string `json:"department_id" validate:"required,uuid"`
	WeekStart    string `json:"week_start,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type ScheduleResponse struct {
	Schedule *DepartmentSchedule `json:"schedule"`
}

type DetectConflictsRequest struct {
	Schedules []DepartmentSchedule `json:"schedules" validate:"dive"`
}

type CheckUserConflictsRequest struct {
	UserID    string `json:"user_id,omitempty" validate:"omitempty,uuid"`
	WeekStart string `json:"week_start" validate:"required,datetime=2006-01-02"`
}

type ConflictResponse struct {
	HasConflict bool        `json:"has_conflict"`
	Conflicts   []*Conflict `json:"conflicts"`
}

type CreateUserRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,max=200"`
	Role  string `json:"role" validate:"omitempty,oneof=ADMIN USER"`
}

type GetUserRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

type UpdateUserRequest struct {
	ID   string  `json:"id" validate:"required,uuid"`
	Name *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Role *string `json:"role,omitempty" validate:"omitempty,oneof=ADMIN USER"`
}

type ListUsersRequest struct {
	PageSize  int32  `json:"page_size" validate:"gte=0,lte=200"`
	PageToken string `json:"page_token"`
	Role      string `json:"role" validate:"omitempty,oneof=ADMIN USER"`
}

type UserResponse struct {
	User    *User  `json:"user"`
	Message string `json:"message,omitempty"`
}

type ListUsersResponse struct {
	Users         []*User `json:"users"`
	NextPageToken string  `json:"next_page_token,omitempty"`
}
