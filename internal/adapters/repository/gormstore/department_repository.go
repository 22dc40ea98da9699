package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ogurasousui/timeclock-grpc/internal/core/access"
	"github.com/ogurasousui/timeclock-grpc/internal/core/department"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DepartmentRepository は gorm を利用した部署と所属の永続化の実装です。
// 外部キーは張らず、参照整合性と連鎖削除はこのリポジトリで行います。
type DepartmentRepository struct {
	db *gorm.DB
}

// NewDepartmentRepository は DepartmentRepository を生成します。
func NewDepartmentRepository(db *gorm.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// Create は部署を新規作成します。
func (r *DepartmentRepository) Create(ctx context.Context, d *department.Department) (*department.Department, error) {
	m := departmentModel{
		Name:      d.Name,
		Info:      d.Info,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
	if err := dbFromContext(ctx, r.db).Create(&m).Error; err != nil {
		return nil, fmt.Errorf("gormstore: create department: %w", err)
	}
	return toDepartment(&m), nil
}

// Update は部署を更新します。
func (r *DepartmentRepository) Update(ctx context.Context, d *department.Department) (*department.Department, error) {
	res := dbFromContext(ctx, r.db).Model(&departmentModel{}).Where("id = ?", d.ID).Updates(map[string]any{
		"name":       d.Name,
		"info":       d.Info,
		"updated_at": d.UpdatedAt.UTC(),
	})
	if res.Error != nil {
		return nil, fmt.Errorf("gormstore: update department: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, department.ErrDepartmentNotFound
	}
	return r.FindByID(ctx, d.ID)
}

// Delete は部署と所属・スケジュールを削除します。打刻記録が残っていれば department.ErrDepartmentInUse です。
func (r *DepartmentRepository) Delete(ctx context.Context, id string) error {
	db := dbFromContext(ctx, r.db)

	var entries int64
	if err := db.Model(&timeEntryModel{}).Where("department_id = ?", id).Count(&entries).Error; err != nil {
		return fmt.Errorf("gormstore: count time entries: %w", err)
	}
	if entries > 0 {
		return department.ErrDepartmentInUse
	}

	scheduleIDs := db.Model(&scheduleModel{}).Select("id").Where("department_id = ?", id)
	if err := db.Where("schedule_id IN (?)", scheduleIDs).Delete(&shiftModel{}).Error; err != nil {
		return fmt.Errorf("gormstore: delete shifts: %w", err)
	}
	if err := db.Where("department_id = ?", id).Delete(&scheduleModel{}).Error; err != nil {
		return fmt.Errorf("gormstore: delete schedules: %w", err)
	}
	if err := db.Where("department_id = ?", id).Delete(&membershipModel{}).Error; err != nil {
		return fmt.Errorf("gormstore: delete memberships: %w", err)
	}

	res := db.Where("id = ?", id).Delete(&departmentModel{})
	if res.Error != nil {
		return fmt.Errorf("gormstore: delete department: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return department.ErrDepartmentNotFound
	}
	return nil
}

// FindByID は ID で部署を取得します。
func (r *DepartmentRepository) FindByID(ctx context.Context, id string) (*department.Department, error) {
	var m departmentModel
	if err := dbFromContext(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, department.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("gormstore: find department: %w", err)
	}
	return toDepartment(&m), nil
}

// List は全部署を名前順で取得します。
func (r *DepartmentRepository) List(ctx context.Context) ([]*department.Department, error) {
	var models []departmentModel
	if err := dbFromContext(ctx, r.db).Order("name").Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gormstore: list departments: %w", err)
	}
	return toDepartments(models), nil
}

// ListManagedBy は userID が MANAGER または部署 ADMIN として所属する部署を名前順で取得します。
func (r *DepartmentRepository) ListManagedBy(ctx context.Context, userID string) ([]*department.Department, error) {
	var models []departmentModel
	err := dbFromContext(ctx, r.db).
		Joins("JOIN department_memberships m ON m.department_id = departments.id").
		Where("m.user_id = ? AND m.role IN ?", userID, []string{string(access.DepartmentManager), string(access.DepartmentAdmin)}).
		Order("departments.name").Order("departments.id").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("gormstore: list managed departments: %w", err)
	}
	return toDepartments(models), nil
}

// UpsertMembership は所属を作成し、既にあれば役割・時給・役職を上書きします。
func (r *DepartmentRepository) UpsertMembership(ctx context.Context, m *department.Membership) (*department.Membership, error) {
	db := dbFromContext(ctx, r.db)

	if err := r.ensureExists(db, &userModel{}, m.UserID, department.ErrEmployeeNotFound); err != nil {
		return nil, err
	}
	if err := r.ensureExists(db, &departmentModel{}, m.DepartmentID, department.ErrDepartmentNotFound); err != nil {
		return nil, err
	}

	row := membershipModel{
		UserID:       m.UserID,
		DepartmentID: m.DepartmentID,
		Role:         string(m.Role),
		Rate:         m.Rate.StringFixed(2),
		Position:     m.Position,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "department_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "rate", "position", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		if isCheckViolation(err) {
			return nil, department.ErrInvalidRate
		}
		return nil, fmt.Errorf("gormstore: upsert membership: %w", err)
	}

	return r.FindMembership(ctx, m.DepartmentID, m.UserID)
}

// FindMembership は部署と社員で所属を取得します。
func (r *DepartmentRepository) FindMembership(ctx context.Context, departmentID, userID string) (*department.Membership, error) {
	return r.findMembership(ctx, "department_id = ? AND user_id = ?", departmentID, userID)
}

// FindMembershipByID は所属 ID で所属を取得します。
func (r *DepartmentRepository) FindMembershipByID(ctx context.Context, id string) (*department.Membership, error) {
	return r.findMembership(ctx, "id = ?", id)
}

// UpdateMembershipRole は所属の部署内ロールを更新します。
func (r *DepartmentRepository) UpdateMembershipRole(ctx context.Context, m *department.Membership) (*department.Membership, error) {
	res := dbFromContext(ctx, r.db).Model(&membershipModel{}).Where("id = ?", m.ID).Updates(map[string]any{
		"role":       string(m.Role),
		"updated_at": m.UpdatedAt.UTC(),
	})
	if res.Error != nil {
		return nil, fmt.Errorf("gormstore: update membership role: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, department.ErrMembershipNotFound
	}
	return r.FindMembershipByID(ctx, m.ID)
}

// DeleteMembership は所属を削除します。
func (r *DepartmentRepository) DeleteMembership(ctx context.Context, id string) error {
	res := dbFromContext(ctx, r.db).Where("id = ?", id).Delete(&membershipModel{})
	if res.Error != nil {
		return fmt.Errorf("gormstore: delete membership: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return department.ErrMembershipNotFound
	}
	return nil
}

// ListMemberships は部署の所属を社員名順で取得します。
func (r *DepartmentRepository) ListMemberships(ctx context.Context, departmentID string) ([]*department.Membership, error) {
	var models []membershipModel
	err := dbFromContext(ctx, r.db).
		Joins("JOIN users u ON u.id = department_memberships.user_id").
		Where("department_memberships.department_id = ?", departmentID).
		Order("u.name").Order("department_memberships.id").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("gormstore: list memberships: %w", err)
	}

	members := make([]*department.Membership, 0, len(models))
	for i := range models {
		m, err := r.withUser(ctx, &models[i])
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

// Rollup は所属行から社員数と時給合計を集計します。合計は decimal で計算します。
func (r *DepartmentRepository) Rollup(ctx context.Context, departmentID string) (department.Rollup, error) {
	var rates []string
	if err := dbFromContext(ctx, r.db).Model(&membershipModel{}).
		Where("department_id = ?", departmentID).
		Pluck("rate", &rates).Error; err != nil {
		return department.Rollup{}, fmt.Errorf("gormstore: department rollup: %w", err)
	}

	total := decimal.Zero
	for _, raw := range rates {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return department.Rollup{}, fmt.Errorf("gormstore: parse rate %q: %w", raw, err)
		}
		total = total.Add(rate)
	}
	return department.Rollup{EmployeeCount: len(rates), TotalCost: total}, nil
}

func (r *DepartmentRepository) findMembership(ctx context.Context, query string, args ...any) (*department.Membership, error) {
	var m membershipModel
	if err := dbFromContext(ctx, r.db).Where(query, args...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, department.ErrMembershipNotFound
		}
		return nil, fmt.Errorf("gormstore: find membership: %w", err)
	}
	return r.withUser(ctx, &m)
}

func (r *DepartmentRepository) withUser(ctx context.Context, m *membershipModel) (*department.Membership, error) {
	rate, err := decimal.NewFromString(m.Rate)
	if err != nil {
		return nil, fmt.Errorf("gormstore: parse rate %q: %w", m.Rate, err)
	}

	membership := &department.Membership{
		ID:           m.ID,
		UserID:       m.UserID,
		DepartmentID: m.DepartmentID,
		Role:         access.DepartmentRole(strings.ToUpper(m.Role)),
		Rate:         rate,
		Position:     m.Position,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}

	var u userModel
	if err := dbFromContext(ctx, r.db).Where("id = ?", m.UserID).First(&u).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("gormstore: load member: %w", err)
		}
	} else {
		membership.User = &department.MemberSnapshot{ID: u.ID, Email: u.Email, Name: u.Name}
	}
	return membership, nil
}

func (r *DepartmentRepository) ensureExists(db *gorm.DB, model any, id string, notFound error) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("gormstore: check existence: %w", err)
	}
	if count == 0 {
		return notFound
	}
	return nil
}

func toDepartment(m *departmentModel) *department.Department {
	return &department.Department{
		ID:        m.ID,
		Name:      m.Name,
		Info:      m.Info,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toDepartments(models []departmentModel) []*department.Department {
	departments := make([]*department.Department, 0, len(models))
	for i := range models {
		departments = append(departments, toDepartment(&models[i]))
	}
	return departments
}
