package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ogurasousui/timeclock-grpc/internal/core/access"
	"gorm.io/gorm"
)

// AccessRepository は access.Directory の gorm 実装です。
type AccessRepository struct {
	db *gorm.DB
}

// NewAccessRepository は AccessRepository を生成します。
func NewAccessRepository(db *gorm.DB) *AccessRepository {
	return &AccessRepository{db: db}
}

// GlobalRole はユーザーのグローバルロールを返します。
func (r *AccessRepository) GlobalRole(ctx context.Context, userID string) (access.GlobalRole, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return "", access.ErrUnknownActor
	}

	var m userModel
	err := dbFromContext(ctx, r.db).Select("role").Where("id = ?", userID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", access.ErrUnknownActor
		}
		return "", fmt.Errorf("gormstore: load global role: %w", err)
	}
	return access.GlobalRole(strings.ToUpper(m.Role)), nil
}

// DepartmentRole は部署内ロールを返します。所属がなければ access.RoleNone です。
func (r *AccessRepository) DepartmentRole(ctx context.Context, userID, departmentID string) (access.DepartmentRole, error) {
	var m membershipModel
	err := dbFromContext(ctx, r.db).
		Select("role").
		Where("user_id = ? AND department_id = ?", userID, departmentID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.RoleNone, nil
		}
		return access.RoleNone, fmt.Errorf("gormstore: load department role: %w", err)
	}
	return access.DepartmentRole(strings.ToUpper(m.Role)), nil
}
