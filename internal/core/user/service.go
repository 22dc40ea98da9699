package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/ogurasousui/timeclock-grpc/internal/core/access"
	"github.com/sirupsen/logrus"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
	maxNameLength       = 200
)

// Service はユーザーに関するユースケースをまとめます。
type Service struct {
	repo   Repository
	clock  Clock
	tx     TransactionManager
	logger logrus.FieldLogger
}

// UseCase はユーザーユースケースの公開インターフェースです。
type UseCase interface {
	CreateUser(ctx context.Context, in CreateUserInput) (*User, error)
	UpdateUser(ctx context.Context, in UpdateUserInput) (*User, error)
	GetUser(ctx context.Context, in GetUserInput) (*User, error)
	ListUsers(ctx context.Context, in ListUsersInput) (*ListUsersResult, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager, logger logrus.FieldLogger) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &Service{repo: repo, clock: clock, tx: tx, logger: logger}
}

// CreateUserInput はユーザー作成時の入力です。Role が空の場合は USER です。
type CreateUserInput struct {
	ActorID string
	Email   string
	Name    string
	Role    access.GlobalRole
}

// UpdateUserInput はユーザー更新時の入力です。
type UpdateUserInput struct {
	ActorID string
	ID      string
	Name    *string
	Role    *access.GlobalRole
}

// GetUserInput はユーザー取得時の入力です。
type GetUserInput struct {
	ActorID string
	ID      string
}

// ListUsersInput は一覧取得時の入力です。
type ListUsersInput struct {
	ActorID   string
	PageSize  int
	PageToken string
	Role      *access.GlobalRole
}

// ListUsersResult は一覧取得結果を表します。
type ListUsersResult struct {
	Users         []*User
	NextPageToken string
}

// CreateUser は新しいユーザーを作成します。グローバル ADMIN のみ実行できます。
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}

	role := access.GlobalRoleUser
	if in.Role != "" {
		if !in.Role.IsValid() {
			return nil, ErrInvalidRole
		}
		role = in.Role
	}

	var created *User
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if _, err := s.authorizeAdmin(txCtx, in.ActorID); err != nil {
			return err
		}

		if err := s.ensureEmailNotExists(txCtx, email); err != nil {
			return err
		}

		result, err := s.create(txCtx, email, name, role)
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"actor_id": in.ActorID,
		"user_id":  created.ID,
		"role":     created.Role,
	}).Info("user created")

	return created, nil
}

// EnsureAdmin は指定メールアドレスのユーザーをグローバル ADMIN として用意します。
// サーバー起動時のブートストラップ専用で、アクターの認可を行いません。
func (s *Service) EnsureAdmin(ctx context.Context, email, name string) (*User, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(name) == "" {
		name = normalized
	}
	trimmedName, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	var result *User
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByEmail(txCtx, normalized)
		if err != nil && !errors.Is(err, ErrUserNotFound) {
			return err
		}

		if existing == nil {
			created, err := s.create(txCtx, normalized, trimmedName, access.GlobalRoleAdmin)
			if err != nil {
				return err
			}
			result = created
			return nil
		}

		if existing.IsAdmin() {
			result = existing
			return nil
		}

		existing.Role = access.GlobalRoleAdmin
		existing.UpdatedAt = s.clock.Now()
		updated, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}
		result = updated
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", result.ID).Info("bootstrap admin ensured")
	return result, nil
}

// UpdateUser はユーザー情報を更新します。名前は本人か ADMIN、ロールは ADMIN のみ変更できます。
func (s *Service) UpdateUser(ctx context.Context, in UpdateUserInput) (*User, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, fmt.Errorf("id: %w", err)
	}

	var updated *User
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		actor, err := s.findActor(txCtx, in.ActorID)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && (actor.ID != id || in.Role != nil) {
			return access.ErrPermissionDenied
		}

		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		if in.Name != nil {
			name, err := normalizeName(*in.Name)
			if err != nil {
				return err
			}
			existing.Name = name
		}

		if in.Role != nil {
			if !in.Role.IsValid() {
				return ErrInvalidRole
			}
			existing.Role = *in.Role
		}

		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}
		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"actor_id": in.ActorID,
		"user_id":  updated.ID,
	}).Info("user updated")

	return updated, nil
}

// GetUser は ID でユーザーを取得します。本人または ADMIN のみ参照できます。
func (s *Service) GetUser(ctx context.Context, in GetUserInput) (*User, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, fmt.Errorf("id: %w", err)
	}

	var found *User
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		actor, err := s.findActor(txCtx, in.ActorID)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && actor.ID != id {
			return access.ErrPermissionDenied
		}

		result, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		found = result
		return nil
	}); err != nil {
		return nil, err
	}

	return found, nil
}

// ListUsers はユーザーの一覧を取得します。部署へ社員を追加する画面で利用するため、登録済みユーザーなら誰でも参照できます。
func (s *Service) ListUsers(ctx context.Context, in ListUsersInput) (*ListUsersResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var rolePtr *access.GlobalRole
	if in.Role != nil {
		if !in.Role.IsValid() {
			return nil, ErrInvalidRole
		}
		role := *in.Role
		rolePtr = &role
	}

	var result ListUsersResult
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if _, err := s.findActor(txCtx, in.ActorID); err != nil {
			return err
		}

		users, nextToken, err := s.repo.List(txCtx, ListUsersFilter{
			Limit:  limit,
			Offset: offset,
			Role:   rolePtr,
		})
		if err != nil {
			return err
		}
		result.Users = users
		result.NextPageToken = nextToken
		return nil
	}); err != nil {
		return nil, err
	}

	return &result, nil
}

func (s *Service) create(ctx context.Context, email, name string, role access.GlobalRole) (*User, error) {
	now := s.clock.Now()
	return s.repo.Create(ctx, &User{
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *Service) findActor(ctx context.Context, actorID string) (*User, error) {
	if _, err := uuid.Parse(strings.TrimSpace(actorID)); err != nil {
		return nil, access.ErrUnknownActor
	}
	actor, err := s.repo.FindByID(ctx, strings.TrimSpace(actorID))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, access.ErrUnknownActor
		}
		return nil, err
	}
	return actor, nil
}

func (s *Service) authorizeAdmin(ctx context.Context, actorID string) (*User, error) {
	actor, err := s.findActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(access.Subject{GlobalRole: actor.Role}, access.ActionManageUsers); err != nil {
		s.logger.WithField("actor_id", actor.ID).Warn("user management denied")
		return nil, err
	}
	return actor, nil
}

func (s *Service) ensureEmailNotExists(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return err
	}
	if user != nil {
		return ErrEmailAlreadyExists
	}
	return nil
}

func normalizeID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if _, err := uuid.Parse(trimmed); err != nil {
		return "", ErrInvalidID
	}
	return trimmed, nil
}

func normalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil {
		return "", ErrInvalidEmail
	}

	return strings.ToLower(addr.Address), nil
}

func normalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
