package user

import (
	"time"

	"github.com/ogurasousui/timeclock-grpc/internal/core/access"
)

// User はユーザーエンティティです。Role はグローバルロールです。
type User struct {
	ID        string
	Email     string
	Name      string
	Role      access.GlobalRole
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin はグローバル ADMIN かどうかを返します。
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == access.GlobalRoleAdmin
}
