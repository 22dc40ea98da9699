package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/timeclock-grpc/internal/core/access"
	"github.com/ogurasousui/timeclock-grpc/internal/core/user"
	pgdb "github.com/ogurasousui/timeclock-grpc/internal/platform/db/postgres"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	numericOutOfRangeCode   = "22003"
)

// UserRepository は PostgreSQL を利用したユーザー永続化の実装です。
type UserRepository struct {
	pool pgdb.Queryer
}

// NewUserRepository は UserRepository を生成します。
func NewUserRepository(pool pgdb.Queryer) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create はユーザーを新規作成します。
func (r *UserRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO users (email, name, role, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, email, name, role, created_at, updated_at
    `, u.Email, u.Name, string(u.Role), u.CreatedAt, u.UpdatedAt)

	created, err := scanUser(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return created, nil
}

// Update はユーザー情報を更新します。
func (r *UserRepository) Update(ctx context.Context, u *user.User) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE users
           SET name = $1,
               role = $2,
               updated_at = $3
         WHERE id = $4
        RETURNING id, email, name, role, created_at, updated_at
    `, u.Name, string(u.Role), u.UpdatedAt, u.ID)

	updated, err := scanUser(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return updated, nil
}

// FindByID はIDでユーザーを取得します。
func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, email, name, role, created_at, updated_at
          FROM users
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanUser(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return found, nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, email, name, role, created_at, updated_at
          FROM users
         WHERE email = $1
         LIMIT 1
    `, email)

	found, err := scanUser(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return found, nil
}

// List はユーザーの一覧を取得します。
func (r *UserRepository) List(ctx context.Context, filter user.ListUsersFilter) ([]*user.User, string, error) {
	if filter.Limit <= 0 {
		return nil, "", user.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", user.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 3)
	whereClause := ""
	if filter.Role != nil {
		args = append(args, string(*filter.Role))
		whereClause = " WHERE role = $" + strconv.Itoa(len(args))
	}

	limitPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, limitWithBuffer)
	offsetPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Offset)

	query := `
        SELECT id, email, name, role, created_at, updated_at
          FROM users` + whereClause + `
         ORDER BY created_at DESC, id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translatePgError(err)
	}
	defer rows.Close()

	users := make([]*user.User, 0, filter.Limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, "", translatePgError(err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translatePgError(err)
	}

	var nextToken string
	if len(users) == limitWithBuffer {
		users = users[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return users, nextToken, nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var (
		id                   string
		email                string
		name                 string
		role                 string
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&id, &email, &name, &role, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}

	return &user.User{
		ID:        id,
		Email:     email,
		Name:      name,
		Role:      access.GlobalRole(strings.ToUpper(role)),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func translatePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return user.ErrUserNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return user.ErrEmailAlreadyExists
		case checkViolationCode:
			return user.ErrInvalidRole
		}
	}
	return err
}
