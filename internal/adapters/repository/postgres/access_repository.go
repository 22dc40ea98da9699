package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/timeclock-grpc/internal/core/access"
	pgdb "github.com/ogurasousui/timeclock-grpc/internal/platform/db/postgres"
)

// AccessRepository は認可判定のためにロールを参照する access.Directory の実装です。
// トランザクション内で呼ばれた場合は同じトランザクションで読み取ります。
type AccessRepository struct {
	pool pgdb.Queryer
}

// NewAccessRepository は AccessRepository を生成します。
func NewAccessRepository(pool pgdb.Queryer) *AccessRepository {
	return &AccessRepository{pool: pool}
}

// GlobalRole はユーザーのグローバルロールを返します。
func (r *AccessRepository) GlobalRole(ctx context.Context, userID string) (access.GlobalRole, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return "", access.ErrUnknownActor
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var role string
	if err := exec.QueryRow(ctx, `SELECT role FROM users WHERE id = $1`, userID).Scan(&role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", access.ErrUnknownActor
		}
		return "", fmt.Errorf("postgres: load global role: %w", err)
	}
	return access.GlobalRole(strings.ToUpper(role)), nil
}

// DepartmentRole は部署内ロールを返します。所属がなければ access.RoleNone です。
func (r *AccessRepository) DepartmentRole(ctx context.Context, userID, departmentID string) (access.DepartmentRole, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return access.RoleNone, nil
	}
	if _, err := uuid.Parse(departmentID); err != nil {
		return access.RoleNone, nil
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var role string
	err := exec.QueryRow(ctx, `
        SELECT role
          FROM department_memberships
         WHERE user_id = $1 AND department_id = $2
    `, userID, departmentID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return access.RoleNone, nil
		}
		return access.RoleNone, fmt.Errorf("postgres: load department role: %w", err)
	}
	return access.DepartmentRole(strings.ToUpper(role)), nil
}
