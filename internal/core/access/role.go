package access

import "strings"

// GlobalRole はユーザー全体に付与されるロールです。
type GlobalRole string

const (
	GlobalRoleAdmin GlobalRole = "ADMIN"
	GlobalRoleUser  GlobalRole = "USER"
)

// DepartmentRole は部署内でのロールです。所属していない場合は RoleNone です。
type DepartmentRole string

const (
	RoleNone          DepartmentRole = ""
	DepartmentMember  DepartmentRole = "MEMBER"
	DepartmentManager DepartmentRole = "MANAGER"
	DepartmentAdmin   DepartmentRole = "ADMIN"
)

// ParseGlobalRole は文字列をグローバルロールへ変換します。
func ParseGlobalRole(raw string) (GlobalRole, error) {
	switch GlobalRole(strings.ToUpper(strings.TrimSpace(raw))) {
	case GlobalRoleAdmin:
		return GlobalRoleAdmin, nil
	case GlobalRoleUser:
		return GlobalRoleUser, nil
	default:
		return "", ErrInvalidRole
	}
}

// ParseDepartmentRole は文字列を部署ロールへ変換します。空文字は受け付けません。
func ParseDepartmentRole(raw string) (DepartmentRole, error) {
	switch DepartmentRole(strings.ToUpper(strings.TrimSpace(raw))) {
	case DepartmentMember:
		return DepartmentMember, nil
	case DepartmentManager:
		return DepartmentManager, nil
	case DepartmentAdmin:
		return DepartmentAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}

// IsValid はグローバルロールが既知の値かを返します。
func (r GlobalRole) IsValid() bool {
	return r == GlobalRoleAdmin || r == GlobalRoleUser
}

// IsValid は部署ロールが既知の値かを返します。RoleNone は無効です。
func (r DepartmentRole) IsValid() bool {
	switch r {
	case DepartmentMember, DepartmentManager, DepartmentAdmin:
		return true
	default:
		return false
	}
}
