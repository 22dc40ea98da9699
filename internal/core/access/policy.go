package access

import "github.com/ogurasousui/timeclock-grpc/internal/core/apperror"

var (
	// ErrPermissionDenied はポリシーが操作を拒否した場合に返却されます。
	ErrPermissionDenied = apperror.New(apperror.CodePermissionDenied, "access: permission denied")
	// ErrInvalidRole はロール文字列が不正な場合に返却されます。
	ErrInvalidRole = apperror.New(apperror.CodeValidation, "access: invalid role")
)

// Action は認可対象の操作です。
type Action string

const (
	ActionCreateDepartment Action = "department.create"
	ActionUpdateDepartment Action = "department.update"
	ActionDeleteDepartment Action = "department.delete"
	ActionViewDepartment   Action = "department.view"
	ActionAddMember        Action = "member.add"
	ActionUpdateMember     Action = "member.update"
	ActionUpdateMemberRole Action = "member.update_role"
	ActionRemoveMember     Action = "member.remove"
	ActionClockIn          Action = "time_entry.clock_in"
	ActionViewSchedule     Action = "schedule.view"
	ActionManageUsers      Action = "user.manage"
)

// Subject は判定対象となるアクターのロールです。DepartmentRole は対象部署でのロールです。
type Subject struct {
	GlobalRole     GlobalRole
	DepartmentRole DepartmentRole
}

// CanPerform は subject が action を実行できるかを判定します。
// 副作用もキャッシュも持たないため、呼び出しごとに最新のロールを渡してください。
func CanPerform(subject Subject, action Action) bool {
	if subject.GlobalRole == GlobalRoleAdmin {
		return true
	}

	switch action {
	case ActionCreateDepartment, ActionDeleteDepartment, ActionManageUsers:
		return false
	case ActionUpdateDepartment, ActionAddMember, ActionUpdateMember, ActionUpdateMemberRole:
		return subject.DepartmentRole == DepartmentManager
	case ActionRemoveMember:
		return subject.DepartmentRole == DepartmentManager || subject.DepartmentRole == DepartmentAdmin
	case ActionViewDepartment, ActionClockIn, ActionViewSchedule:
		return subject.DepartmentRole.IsValid()
	default:
		return false
	}
}

// Authorize は CanPerform が false の場合に ErrPermissionDenied を返します。
func Authorize(subject Subject, action Action) error {
	if !CanPerform(subject, action) {
		return ErrPermissionDenied
	}
	return nil
}

// CanManageDepartment は部署一覧の「管理可能な部署」に含めるかを判定します。
func CanManageDepartment(subject Subject) bool {
	if subject.GlobalRole == GlobalRoleAdmin {
		return true
	}
	return subject.DepartmentRole == DepartmentManager || subject.DepartmentRole == DepartmentAdmin
}
