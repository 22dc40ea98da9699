package department

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/ogurasousui/timeclock-grpc/internal/core/access"
	"github.com/ogurasousui/timeclock-grpc/internal/core/apperror"
	"github.com/shopspring/decimal"
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

// Service は部署と所属に関するユースケースをまとめます。
type Service struct {
	repo   Repository
	dir    access.Directory
	clock  Clock
	tx     TransactionManager
	logger logrus.FieldLogger
}

// UseCase は部署ユースケースの公開インターフェースです。
type UseCase interface {
	CreateDepartment(ctx context.Context, in CreateDepartmentInput) (*Department, error)
	GetDepartment(ctx context.Context, in GetDepartmentInput) (*View, error)
	UpdateDepartment(ctx context.Context, in UpdateDepartmentInput) (*Department, error)
	DeleteDepartment(ctx context.Context, in DeleteDepartmentInput) (*Department, error)
	ListDepartments(ctx context.Context, in ListDepartmentsInput) ([]*View, error)
	ListPermittedDepartments(ctx context.Context, in ListDepartmentsInput) ([]*View, error)
	AddEmployee(ctx context.Context, in AddEmployeeInput) (*View, error)
	RemoveEmployee(ctx context.Context, in RemoveEmployeeInput) (*View, error)
	RemoveMembership(ctx context.Context, in RemoveMembershipInput) (*View, error)
	UpdateMemberRole(ctx context.Context, in UpdateMemberRoleInput) (*Membership, error)
	ListMembers(ctx context.Context, in ListMembersInput) ([]*Membership, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, dir access.Directory, clock Clock, tx TransactionManager, logger logrus.FieldLogger) *Service {
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
	return &Service{repo: repo, dir: dir, clock: clock, tx: tx, logger: logger}
}

// CreateDepartmentInput は部署作成時の入力です。
type CreateDepartmentInput struct {
	ActorID string
	Name    string
	Info    string
}

// GetDepartmentInput は部署取得時の入力です。
type GetDepartmentInput struct {
	ActorID string
	ID      string
}

// UpdateDepartmentInput は部署更新時の入力です。
type UpdateDepartmentInput struct {
	ActorID string
	ID      string
	Name    *string
	Info    *string
}

// DeleteDepartmentInput は部署削除時の入力です。
type DeleteDepartmentInput struct {
	ActorID string
	ID      string
}

// ListDepartmentsInput は部署一覧取得時の入力です。
type ListDepartmentsInput struct {
	ActorID string
}

// AddEmployeeInput は社員追加時の入力です。既存の所属があれば上書きします。
type AddEmployeeInput struct {
	ActorID      string
	DepartmentID string
	EmployeeID   string
	Role         access.DepartmentRole
	Rate         decimal.Decimal
	Position     string
}

// RemoveEmployeeInput は社員除外時の入力です。
type RemoveEmployeeInput struct {
	ActorID      string
	DepartmentID string
	EmployeeID   string
}

// RemoveMembershipInput は所属 ID による除外時の入力です。
type RemoveMembershipInput struct {
	ActorID      string
	MembershipID string
}

// UpdateMemberRoleInput は部署内ロール変更時の入力です。
type UpdateMemberRoleInput struct {
	ActorID      string
	DepartmentID string
	EmployeeID   string
	Role         access.DepartmentRole
}

// ListMembersInput は所属一覧取得時の入力です。
type ListMembersInput struct {
	ActorID      string
	DepartmentID string
}

// CreateDepartment は部署を作成します。グローバル ADMIN のみ実行できます。
func (s *Service) CreateDepartment(ctx context.Context, in CreateDepartmentInput) (*Department, error) {
	var created *Department
	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if _, err := access.Check(txCtx, s.dir, in.ActorID, "", access.ActionCreateDepartment); err != nil {
			return err
		}

		name, err := normalizeName(in.Name)
		if err != nil {
			return err
		}
		info, err := normalizeInfo(in.Info)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Department{
			Name:      name,
			Info:      info,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
		created = result
		return nil
	})
	if err != nil {
		s.logFailure(err, "create department", logrus.Fields{"actor_id": in.ActorID})
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"actor_id":      in.ActorID,
		"department_id": created.ID,
	}).Info("department created")

	return created, nil
}

// GetDepartment は集計値付きで部署を取得します。
func (s *Service) GetDepartment(ctx context.Context, in GetDepartmentInput) (*View, error) {
	id, err := normalizeUUID(in.ID, ErrInvalidID)
	if err != nil {
		return nil, err
	}

	var view *View
	err = s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if _, err := access.Check(txCtx, s.dir, in.ActorID, id, access.ActionViewDepartment); err != nil {
			return err
		}

		result, err := s.loadView(txCtx, id)
		if err != nil {
			return err
		}
		view = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// UpdateDepartment は部署名と補足情報を更新します。
func (s *Service) UpdateDepartment(ctx context.Context, in UpdateDepartmentInput) (*Department, error) {
	id, idErr := normalizeUUID(in.ID, ErrInvalidID)

	var updated *Department
	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if idErr != nil {
			// 不正な ID の部署ではロールを持ち得ないため、グローバルロールのみで判定します。
			if _, err := access.Check(txCtx, s.dir, in.ActorID, "", access.ActionUpdateDepartment); err != nil {
				return err
			}
			return idErr
		}
		if _, err := access.Check(txCtx, s.dir, in.ActorID, id, access.ActionUpdateDepartment); err != nil {
			return err
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
		if in.Info != nil {
			info, err := normalizeInfo(*in.Info)
			if err != nil {
				return err
			}
			existing.Info = info
		}
		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}
		updated = result
		return nil
	})
	if err != nil {
		s.logFailure(err, "update department", logrus.Fields{"actor_id": in.ActorID, "department_id": id})
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"actor_id":      in.ActorID,
		"department_id": id,
	}).Info("department updated")

	return updated, nil
}

// DeleteDepartment は部署を削除し、削除した部署を返します。グローバル ADMIN のみ実行できます。
func (s *Service) DeleteDepartment(ctx context.Context, in DeleteDepartmentInput) (*Department, error) {
	var (
		id      string
		deleted *Department
	)
	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if _, err := access.Check(txCtx, s.dir, in.ActorID, "", access.ActionDeleteDepartment); err != nil {
			return err
		}

		var err error
		id, err = normalizeUUID(in.ID, ErrInvalidID)
		if err != nil {
			return err
		}

		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		deleted = existing
		return nil
	})
	if err != nil {
		s.logFailure(err, "delete department", logrus.Fields{"actor_id": in.ActorID, "department_id": id})
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"actor_id":      in.ActorID,
		"department_id": id,
	}).Info("department deleted")

	return deleted, nil
}

// ListDepartments は全部署を集計値付きで返します。
func (s *Service) ListDepartments(ctx context.Context, in ListDepartmentsInput) ([]*View, error) {
	var views []*View
	err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if _, err := access.Resolve(txCtx, s.dir, in.ActorID, ""); err != nil {
			return err
		}

		departments, err := s.repo.List(txCtx)
		if err != nil {
			return err
		}
		result, err := s.withRollups(txCtx, departments)
		if err != nil {
			return err
		}
		views = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// ListPermittedDepartments はアクターが管理できる部署を返します。
// グローバル ADMIN は全部署、それ以外は MANAGER または部署 ADMIN として所属する部署です。
func (s *Service) ListPermittedDepartments(ctx context.Context, in ListDepartmentsInput) ([]*View, error) {
	var views []*View
	err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		subject, err := access.Resolve(txCtx, s.dir, in.ActorID, "")
		if err != nil {
			return err
		}

		var departments []*Department
		if subject.GlobalRole == access.GlobalRoleAdmin {
			departments, err = s.repo.List(txCtx)
		} else {
			departments, err = s.repo.ListManagedBy(txCtx, in.ActorID)
		}
		if err != nil {
			return err
		}

		result, err := s.withRollups(txCtx, departments)
		if err != nil {
			return err
		}
		views = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// AddEmployee は社員を部署へ追加します。同じ社員の所属が既にあれば役割・時給・役職を上書きします。
func (s *Service) AddEmployee(ctx context.Context, in AddEmployeeInput) (*View, error) {
	departmentID, err := normalizeUUID(in.DepartmentID, ErrInvalidID)
	if err != nil {
		return nil, err
	}
	employeeID, err := normalizeUUID(in.EmployeeID, ErrInvalidEmployeeID)
	if err != nil {
		return nil, err
	}
	if err := validateRole(in.Role); err != nil {
		return nil, err
	}
	if err := validateRate(in.Rate); err != nil {
		return nil, err
	}
	position, err := normalizePosition(in.Position)
	if err != nil {
		return nil, err
	}

	var (
		view    *View
		created bool
	)
	err = s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if _, err := access.Check(txCtx, s.dir, in.ActorID, departmentID, access.ActionAddMember); err != nil {
			return err
		}

		dept, err := s.repo.FindByID(txCtx, departmentID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		membership := &Membership{
			UserID:       employeeID,
			DepartmentID: departmentID,
			Role:         in.Role,
			Rate:         in.Rate,
			Position:     position,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		existing, err := s.repo.FindMembership(txCtx, departmentID, employeeID)
		switch {
		case err == nil:
			membership.ID = existing.ID
			membership.CreatedAt = existing.CreatedAt
		case errors.Is(err, ErrMembershipNotFound):
			created = true
		default:
			return err
		}

		if _, err := s.repo.UpsertMembership(txCtx, membership); err != nil {
			return err
		}

		rollup, err := s.repo.Rollup(txCtx, departmentID)
		if err != nil {
			return err
		}
		view = newView(dept, rollup)
		return nil
	})
	if err != nil {
		s.logFailure(err, "add employee", logrus.Fields{"actor_id": in.ActorID, "department_id": departmentID, "employee_id": employeeID})
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"actor_id":       in.ActorID,
		"department_id":  departmentID,
		"employee_id":    employeeID,
		"created":        created,
		"employee_count": view.EmployeeCount,
		"total_cost":     view.TotalCost.StringFixed(2),
	}).Info("employee added to department")

	return view, nil
}

// RemoveEmployee は社員を部署から除外します。
// アクター・ロールの参照、認可、存在確認、削除、再集計を 1 つのトランザクションで行います。
func (s *Service) RemoveEmployee(ctx context.Context, in RemoveEmployeeInput) (*View, error) {
	departmentID, err := normalizeUUID(in.DepartmentID, ErrInvalidID)
	if err != nil {
		return nil, err
	}
	employeeID, err := normalizeUUID(in.EmployeeID, ErrInvalidEmployeeID)
	if err != nil {
		return nil, err
	}

	var view *View
	err = s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if _, err := access.Check(txCtx, s.dir, in.ActorID, departmentID, access.ActionRemoveMember); err != nil {
			return err
		}

		membership, err := s.repo.FindMembership(txCtx, departmentID, employeeID)
		if err != nil {
			return err
		}

		result, err := s.removeMembership(txCtx, membership)
		if err != nil {
			return err
		}
		view = result
		return nil
	})
	if err != nil {
		s.logFailure(err, "remove employee", logrus.Fields{"actor_id": in.ActorID, "department_id": departmentID, "employee_id": employeeID})
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"actor_id":       in.ActorID,
		"department_id":  departmentID,
		"employee_id":    employeeID,
		"employee_count": view.EmployeeCount,
		"total_cost":     view.TotalCost.StringFixed(2),
	}).Info("employee removed from department")

	return view, nil
}

// RemoveMembership は所属 ID を指定して社員を部署から除外します。
func (s *Service) RemoveMembership(ctx context.Context, in RemoveMembershipInput) (*View, error) {
	membershipID, err := normalizeUUID(in.MembershipID, ErrInvalidMembershipID)
	if err != nil {
		return nil, err
	}

	var view *View
	err = s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if _, err := access.Resolve(txCtx, s.dir, in.ActorID, ""); err != nil {
			return err
		}

		membership, err := s.repo.FindMembershipByID(txCtx, membershipID)
		if err != nil {
			return err
		}

		if _, err := access.Check(txCtx, s.dir, in.ActorID, membership.DepartmentID, access.ActionRemoveMember); err != nil {
			return err
		}

		result, err := s.removeMembership(txCtx, membership)
		if err != nil {
			return err
		}
		view = result
		return nil
	})
	if err != nil {
		s.logFailure(err, "remove membership", logrus.Fields{"actor_id": in.ActorID, "membership_id": membershipID})
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"actor_id":       in.ActorID,
		"membership_id":  membershipID,
		"department_id":  view.Department.ID,
		"employee_count": view.EmployeeCount,
	}).Info("membership removed")

	return view, nil
}

// UpdateMemberRole は部署内ロールのみを変更します。
func (s *Service) UpdateMemberRole(ctx context.Context, in UpdateMemberRoleInput) (*Membership, error) {
	departmentID, err := normalizeUUID(in.DepartmentID, ErrInvalidID)
	if err != nil {
		return nil, err
	}
	employeeID, err := normalizeUUID(in.EmployeeID, ErrInvalidEmployeeID)
	if err != nil {
		return nil, err
	}
	if err := validateRole(in.Role); err != nil {
		return nil, err
	}

	var updated *Membership
	err = s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if _, err := access.Check(txCtx, s.dir, in.ActorID, departmentID, access.ActionUpdateMemberRole); err != nil {
			return err
		}

		membership, err := s.repo.FindMembership(txCtx, departmentID, employeeID)
		if err != nil {
			return err
		}

		membership.Role = in.Role
		membership.UpdatedAt = s.clock.Now()

		result, err := s.repo.UpdateMembershipRole(txCtx, membership)
		if err != nil {
			return err
		}
		updated = result
		return nil
	})
	if err != nil {
		s.logFailure(err, "update member role", logrus.Fields{"actor_id": in.ActorID, "department_id": departmentID, "employee_id": employeeID})
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"actor_id":      in.ActorID,
		"department_id": departmentID,
		"employee_id":   employeeID,
		"role":          in.Role,
	}).Info("member role updated")

	return updated, nil
}

// ListMembers は部署の所属一覧を返します。
func (s *Service) ListMembers(ctx context.Context, in ListMembersInput) ([]*Membership, error) {
	departmentID, err := normalizeUUID(in.DepartmentID, ErrInvalidID)
	if err != nil {
		return nil, err
	}

	var members []*Membership
	err = s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if _, err := access.Check(txCtx, s.dir, in.ActorID, departmentID, access.ActionViewDepartment); err != nil {
			return err
		}

		if _, err := s.repo.FindByID(txCtx, departmentID); err != nil {
			return err
		}

		result, err := s.repo.ListMemberships(txCtx, departmentID)
		if err != nil {
			return err
		}
		members = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (s *Service) removeMembership(ctx context.Context, membership *Membership) (*View, error) {
	dept, err := s.repo.FindByID(ctx, membership.DepartmentID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteMembership(ctx, membership.ID); err != nil {
		return nil, err
	}

	rollup, err := s.repo.Rollup(ctx, membership.DepartmentID)
	if err != nil {
		return nil, err
	}
	return newView(dept, rollup), nil
}

func (s *Service) loadView(ctx context.Context, id string) (*View, error) {
	dept, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rollup, err := s.repo.Rollup(ctx, id)
	if err != nil {
		return nil, err
	}
	return newView(dept, rollup), nil
}

func (s *Service) withRollups(ctx context.Context, departments []*Department) ([]*View, error) {
	views := make([]*View, 0, len(departments))
	for _, dept := range departments {
		rollup, err := s.repo.Rollup(ctx, dept.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, newView(dept, rollup))
	}
	return views, nil
}

func (s *Service) logFailure(err error, op string, fields logrus.Fields) {
	entry := s.logger.WithFields(fields).WithError(err)
	switch {
	case access.IsDenied(err):
		entry.Warnf("%s denied", op)
	case apperror.GetCode(err) == apperror.CodeInternal:
		entry.Errorf("%s failed", op)
	default:
		entry.Debugf("%s rejected", op)
	}
}
