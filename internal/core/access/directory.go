package access

import (
	"context"
	"errors"

	"github.com/ogurasousui/timeclock-grpc/internal/core/apperror"
)

// ErrUnknownActor はアクターがユーザーとして存在しない場合に返却されます。
var ErrUnknownActor = apperror.New(apperror.CodePermissionDenied, "access: unknown actor")

// Directory はロール判定に必要な最新のロールを永続層から取得します。
type Directory interface {
	// GlobalRole はユーザーのグローバルロールを返します。存在しない場合は ErrUnknownActor です。
	GlobalRole(ctx context.Context, userID string) (GlobalRole, error)
	// DepartmentRole は部署内ロールを返します。所属がなければ RoleNone を返します。
	DepartmentRole(ctx context.Context, userID, departmentID string) (DepartmentRole, error)
}

// Resolve はアクターの Subject を組み立てます。departmentID が空の場合は部署ロールを参照しません。
func Resolve(ctx context.Context, dir Directory, actorID, departmentID string) (Subject, error) {
	global, err := dir.GlobalRole(ctx, actorID)
	if err != nil {
		return Subject{}, err
	}

	subject := Subject{GlobalRole: global}
	if departmentID == "" {
		return subject, nil
	}

	role, err := dir.DepartmentRole(ctx, actorID, departmentID)
	if err != nil {
		return Subject{}, err
	}
	subject.DepartmentRole = role
	return subject, nil
}

// Check は Resolve と Authorize をまとめて行います。
func Check(ctx context.Context, dir Directory, actorID, departmentID string, action Action) (Subject, error) {
	subject, err := Resolve(ctx, dir, actorID, departmentID)
	if err != nil {
		return Subject{}, err
	}
	if err := Authorize(subject, action); err != nil {
		return Subject{}, err
	}
	return subject, nil
}

// IsDenied は err が認可失敗に該当するかを返します。
func IsDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrUnknownActor)
}
