package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ogurasousui/timeclock-grpc/internal/core/access"
	"github.com/ogurasousui/timeclock-grpc/internal/core/user"
	"gorm.io/gorm"
)

// UserRepository は gorm を利用したユーザー永続化の実装です。
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository は UserRepository を生成します。
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create はユーザーを新規作成します。
func (r *UserRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	m := userModel{
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.UTC(),
		UpdatedAt: u.UpdatedAt.UTC(),
	}
	if err := dbFromContext(ctx, r.db).Create(&m).Error; err != nil {
		return nil, translateUserError(err)
	}
	return toUser(&m), nil
}

// Update はユーザー情報を更新します。
func (r *UserRepository) Update(ctx context.Context, u *user.User) (*user.User, error) {
	db := dbFromContext(ctx, r.db)
	res := db.Model(&userModel{}).Where("id = ?", u.ID).Updates(map[string]any{
		"name":       u.Name,
		"role":       string(u.Role),
		"updated_at": u.UpdatedAt.UTC(),
	})
	if res.Error != nil {
		return nil, translateUserError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, user.ErrUserNotFound
	}
	return r.FindByID(ctx, u.ID)
}

// FindByID は ID でユーザーを取得します。
func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	var m userModel
	if err := dbFromContext(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateUserError(err)
	}
	return toUser(&m), nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var m userModel
	if err := dbFromContext(ctx, r.db).Where("email = ?", email).First(&m).Error; err != nil {
		return nil, translateUserError(err)
	}
	return toUser(&m), nil
}

// List はユーザーの一覧を作成日時の新しい順に取得します。
func (r *UserRepository) List(ctx context.Context, filter user.ListUsersFilter) ([]*user.User, string, error) {
	if filter.Limit <= 0 {
		return nil, "", user.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", user.ErrInvalidPageToken
	}

	query := dbFromContext(ctx, r.db).Model(&userModel{})
	if filter.Role != nil {
		query = query.Where("role = ?", string(*filter.Role))
	}

	var models []userModel
	if err := query.Order("created_at DESC").Order("id DESC").
		Limit(filter.Limit + 1).
		Offset(filter.Offset).
		Find(&models).Error; err != nil {
		return nil, "", fmt.Errorf("gormstore: list users: %w", err)
	}

	var nextToken string
	if len(models) > filter.Limit {
		models = models[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	users := make([]*user.User, 0, len(models))
	for i := range models {
		users = append(users, toUser(&models[i]))
	}
	return users, nextToken, nil
}

func toUser(m *userModel) *user.User {
	return &user.User{
		ID:        m.ID,
		Email:     m.Email,
		Name:      m.Name,
		Role:      access.GlobalRole(strings.ToUpper(m.Role)),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func translateUserError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return user.ErrUserNotFound
	case isUniqueViolation(err, "users.email"):
		return user.ErrEmailAlreadyExists
	default:
		return fmt.Errorf("gormstore: user: %w", err)
	}
}
