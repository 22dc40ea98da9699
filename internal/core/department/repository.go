package department

import "context"

// Repository は部署と所属の永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, department *Department) (*Department, error)
	Update(ctx context.Context, department *Department) (*Department, error)
	// Delete は部署を削除します。所属とスケジュールは連鎖削除され、打刻履歴が残っている場合は ErrDepartmentInUse です。
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Department, error)
	List(ctx context.Context) ([]*Department, error)
	// ListManagedBy は userID が MANAGER または部署 ADMIN として所属する部署を返します。
	ListManagedBy(ctx context.Context, userID string) ([]*Department, error)

	// UpsertMembership は (UserID, DepartmentID) の所属を作成し、既存なら役割・時給・役職を上書きします。
	UpsertMembership(ctx context.Context, membership *Membership) (*Membership, error)
	FindMembership(ctx context.Context, departmentID, userID string) (*Membership, error)
	FindMembershipByID(ctx context.Context, id string) (*Membership, error)
	UpdateMembershipRole(ctx context.Context, membership *Membership) (*Membership, error)
	DeleteMembership(ctx context.Context, id string) error
	ListMemberships(ctx context.Context, departmentID string) ([]*Membership, error)

	// Rollup は所属行から社員数と時給合計を集計します。
	Rollup(ctx context.Context, departmentID string) (Rollup, error)
}
