package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/timeclock-grpc/internal/core/access"
	"github.com/ogurasousui/timeclock-grpc/internal/core/department"
	pgdb "github.com/ogurasousui/timeclock-grpc/internal/platform/db/postgres"
	"github.com/shopspring/decimal"
)

const membershipColumns = `m.id, m.user_id, m.department_id, m.role, m.rate::text, m.position, m.created_at, m.updated_at, u.email, u.name`

// DepartmentRepository は PostgreSQL を利用した部署と所属の永続化の実装です。
type DepartmentRepository struct {
	pool pgdb.Queryer
}

// NewDepartmentRepository は DepartmentRepository を生成します。
func NewDepartmentRepository(pool pgdb.Queryer) *DepartmentRepository {
	return &DepartmentRepository{pool: pool}
}

// Create は部署を新規作成します。
func (r *DepartmentRepository) Create(ctx context.Context, d *department.Department) (*department.Department, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO departments (name, info, created_at, updated_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id, name, info, created_at, updated_at
    `, d.Name, d.Info, d.CreatedAt, d.UpdatedAt)

	created, err := scanDepartment(row)
	if err != nil {
		return nil, translateDepartmentPgError(err)
	}
	return created, nil
}

// Update は部署を更新します。
func (r *DepartmentRepository) Update(ctx context.Context, d *department.Department) (*department.Department, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE departments
           SET name = $1,
               info = $2,
               updated_at = $3
         WHERE id = $4
        RETURNING id, name, info, created_at, updated_at
    `, d.Name, d.Info, d.UpdatedAt, d.ID)

	updated, err := scanDepartment(row)
	if err != nil {
		return nil, translateDepartmentPgError(err)
	}
	return updated, nil
}

// Delete は部署を削除します。所属とスケジュールは外部キーで連鎖削除されます。
func (r *DepartmentRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return translateDepartmentPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return department.ErrDepartmentNotFound
	}
	return nil
}

// FindByID は ID で部署を取得します。
func (r *DepartmentRepository) FindByID(ctx context.Context, id string) (*department.Department, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, name, info, created_at, updated_at
          FROM departments
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanDepartment(row)
	if err != nil {
		return nil, translateDepartmentPgError(err)
	}
	return found, nil
}

// List は全部署を名前順で取得します。
func (r *DepartmentRepository) List(ctx context.Context) ([]*department.Department, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, name, info, created_at, updated_at
          FROM departments
         ORDER BY name, id
    `)
	if err != nil {
		return nil, translateDepartmentPgError(err)
	}
	return collectDepartments(rows)
}

// ListManagedBy は userID が MANAGER または部署 ADMIN として所属する部署を名前順で取得します。
func (r *DepartmentRepository) ListManagedBy(ctx context.Context, userID string) ([]*department.Department, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT d.id, d.name, d.info, d.created_at, d.updated_at
          FROM departments d
          JOIN department_memberships m ON m.department_id = d.id
         WHERE m.user_id = $1 AND m.role IN ('MANAGER', 'ADMIN')
         ORDER BY d.name, d.id
    `, userID)
	if err != nil {
		return nil, translateDepartmentPgError(err)
	}
	return collectDepartments(rows)
}

// UpsertMembership は所属を作成し、(user_id, department_id) が既にあれば役割・時給・役職を上書きします。
func (r *DepartmentRepository) UpsertMembership(ctx context.Context, m *department.Membership) (*department.Membership, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH upserted AS (
            INSERT INTO department_memberships (user_id, department_id, role, rate, position, created_at, updated_at)
            VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
            ON CONFLICT (user_id, department_id) DO UPDATE
               SET role = EXCLUDED.role,
                   rate = EXCLUDED.rate,
                   position = EXCLUDED.position,
                   updated_at = EXCLUDED.updated_at
            RETURNING id, user_id, department_id, role, rate, position, created_at, updated_at
        )
        SELECT `+membershipColumns+`
          FROM upserted m
          JOIN users u ON u.id = m.user_id
    `,
		m.UserID,
		m.DepartmentID,
		string(m.Role),
		m.Rate.StringFixed(2),
		m.Position,
		m.CreatedAt,
		m.UpdatedAt,
	)

	saved, err := scanMembership(row)
	if err != nil {
		return nil, translateDepartmentPgError(err)
	}
	return saved, nil
}

// FindMembership は部署と社員で所属を取得します。
func (r *DepartmentRepository) FindMembership(ctx context.Context, departmentID, userID string) (*department.Membership, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+membershipColumns+`
          FROM department_memberships m
          JOIN users u ON u.id = m.user_id
         WHERE m.department_id = $1 AND m.user_id = $2
         LIMIT 1
    `, departmentID, userID)

	found, err := scanMembership(row)
	if err != nil {
		return nil, translateDepartmentPgError(err)
	}
	return found, nil
}

// FindMembershipByID は所属 ID で所属を取得します。
func (r *DepartmentRepository) FindMembershipByID(ctx context.Context, id string) (*department.Membership, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+membershipColumns+`
          FROM department_memberships m
          JOIN users u ON u.id = m.user_id
         WHERE m.id = $1
         LIMIT 1
    `, id)

	found, err := scanMembership(row)
	if err != nil {
		return nil, translateDepartmentPgError(err)
	}
	return found, nil
}

// UpdateMembershipRole は所属の部署内ロールを更新します。
func (r *DepartmentRepository) UpdateMembershipRole(ctx context.Context, m *department.Membership) (*department.Membership, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH updated AS (
            UPDATE department_memberships
               SET role = $1,
                   updated_at = $2
             WHERE id = $3
            RETURNING id, user_id, department_id, role, rate, position, created_at, updated_at
        )
        SELECT `+membershipColumns+`
          FROM updated m
          JOIN users u ON u.id = m.user_id
    `, string(m.Role), m.UpdatedAt, m.ID)

	updated, err := scanMembership(row)
	if err != nil {
		return nil, translateDepartmentPgError(err)
	}
	return updated, nil
}

// DeleteMembership は所属を削除します。
func (r *DepartmentRepository) DeleteMembership(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM department_memberships WHERE id = $1`, id)
	if err != nil {
		return translateDepartmentPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return department.ErrMembershipNotFound
	}
	return nil
}

// ListMemberships は部署の所属を社員名順で取得します。
func (r *DepartmentRepository) ListMemberships(ctx context.Context, departmentID string) ([]*department.Membership, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+membershipColumns+`
          FROM department_memberships m
          JOIN users u ON u.id = m.user_id
         WHERE m.department_id = $1
         ORDER BY u.name, m.id
    `, departmentID)
	if err != nil {
		return nil, translateDepartmentPgError(err)
	}
	defer rows.Close()

	members := make([]*department.Membership, 0)
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, translateDepartmentPgError(err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, translateDepartmentPgError(err)
	}
	return members, nil
}

// Rollup は所属行から社員数と時給合計を集計します。合計は numeric のまま text で受け取り、浮動小数点を経由しません。
func (r *DepartmentRepository) Rollup(ctx context.Context, departmentID string) (department.Rollup, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var (
		count int
		total string
	)
	if err := exec.QueryRow(ctx, `
        SELECT COUNT(*), COALESCE(SUM(rate), 0)::text
          FROM department_memberships
         WHERE department_id = $1
    `, departmentID).Scan(&count, &total); err != nil {
		return department.Rollup{}, fmt.Errorf("postgres: department rollup: %w", err)
	}

	cost, err := decimal.NewFromString(total)
	if err != nil {
		return department.Rollup{}, fmt.Errorf("postgres: parse total cost %q: %w", total, err)
	}
	return department.Rollup{EmployeeCount: count, TotalCost: cost}, nil
}

func collectDepartments(rows pgx.Rows) ([]*department.Department, error) {
	defer rows.Close()

	departments := make([]*department.Department, 0)
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, translateDepartmentPgError(err)
		}
		departments = append(departments, d)
	}
	if err := rows.Err(); err != nil {
		return nil, translateDepartmentPgError(err)
	}
	return departments, nil
}

func scanDepartment(row pgx.Row) (*department.Department, error) {
	var (
		d                    department.Department
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&d.ID, &d.Name, &d.Info, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, department.ErrDepartmentNotFound
		}
		return nil, err
	}

	d.CreatedAt = createdAt
	d.UpdatedAt = updatedAt
	return &d, nil
}

func scanMembership(row pgx.Row) (*department.Membership, error) {
	var (
		m                    department.Membership
		role                 string
		rate                 string
		email                string
		name                 string
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.DepartmentID,
		&role,
		&rate,
		&m.Position,
		&createdAt,
		&updatedAt,
		&email,
		&name,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, department.ErrMembershipNotFound
		}
		return nil, err
	}

	parsedRate, err := decimal.NewFromString(rate)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse rate %q: %w", rate, err)
	}

	m.Role = access.DepartmentRole(strings.ToUpper(role))
	m.Rate = parsedRate
	m.CreatedAt = createdAt
	m.UpdatedAt = updatedAt
	m.User = &department.MemberSnapshot{ID: m.UserID, Email: email, Name: name}
	return &m, nil
}

func translateDepartmentPgError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case foreignKeyViolationCode:
			switch pgErr.ConstraintName {
			case "department_memberships_user_id_fkey":
				return department.ErrEmployeeNotFound
			case "department_memberships_department_id_fkey":
				return department.ErrDepartmentNotFound
			case "time_entries_department_id_fkey":
				return department.ErrDepartmentInUse
			default:
				return err
			}
		case checkViolationCode:
			switch pgErr.ConstraintName {
			case "department_memberships_rate_check":
				return department.ErrInvalidRate
			case "department_memberships_role_check":
				return department.ErrInvalidRole
			default:
				return err
			}
		case numericOutOfRangeCode:
			return department.ErrInvalidRate
		}
	}

	return err
}
