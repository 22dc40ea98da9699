package handler

import (
	"context"
	"fmt"

	v1 "github.com/ogurasousui/timeclock-grpc/internal/adapters/grpc/timeclockv1"
	"github.com/ogurasousui/timeclock-grpc/internal/core/access"
	"github.com/ogurasousui/timeclock-grpc/internal/core/department"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DepartmentGrpcHandler は DepartmentService の gRPC 実装です。
type DepartmentGrpcHandler struct {
	svc department.UseCase
	v1.UnimplementedDepartmentServiceServer
}

// NewDepartmentGrpcHandler は DepartmentGrpcHandler を生成します。
func NewDepartmentGrpcHandler(svc department.UseCase) *DepartmentGrpcHandler {
	return &DepartmentGrpcHandler{svc: svc}
}

// CreateDepartment は部署を作成します。
func (h *DepartmentGrpcHandler) CreateDepartment(ctx context.Context, req *v1.CreateDepartmentRequest) (*v1.DepartmentResponse, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	actorID, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	created, err := h.svc.CreateDepartment(ctx, department.CreateDepartmentInput{
		ActorID: actorID,
		Name:    req.Name,
		Info:    req.Info,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return &v1.DepartmentResponse{
		Department: toWireDepartment(created, 0, decimal.Zero),
		Message:    fmt.Sprintf("Department %q created", created.Name),
	}, nil
}

// GetDepartment は集計値付きの部署を取得します。
func (h *DepartmentGrpcHandler) GetDepartment(ctx context.Context, req *v1.GetDepartmentRequest) (*v1.DepartmentResponse, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	actorID, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	view, err := h.svc.GetDepartment(ctx, department.GetDepartmentInput{ActorID: actorID, ID: req.ID})
	if err != nil {
		return nil, toStatusError(err)
	}

	return &v1.DepartmentResponse{Department: toWireView(view)}, nil
}

// UpdateDepartment は部署名と説明を更新します。
func (h *DepartmentGrpcHandler) UpdateDepartment(ctx context.Context, req *v1.UpdateDepartmentRequest) (*v1.DepartmentResponse, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	actorID, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := h.svc.UpdateDepartment(ctx, department.UpdateDepartmentInput{
		ActorID: actorID,
		ID:      req.ID,
		Name:    req.Name,
		Info:    req.Info,
	}); err != nil {
		return nil, toStatusError(err)
	}

	view, err := h.svc.GetDepartment(ctx, department.GetDepartmentInput{ActorID: actorID, ID: req.ID})
	if err != nil {
		return nil, toStatusError(err)
	}

	return &v1.DepartmentResponse{
		Department: toWireView(view),
		Message:    fmt.Sprintf("Department %q updated", view.Department.Name),
	}, nil
}

// DeleteDepartment は部署を削除します。
func (h *DepartmentGrpcHandler) DeleteDepartment(ctx context.Context, req *v1.DeleteDepartmentRequest) (*v1.DepartmentResponse, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	actorID, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	deleted, err := h.svc.DeleteDepartment(ctx, department.DeleteDepartmentInput{ActorID: actorID, ID: req.ID})
	if err != nil {
		return nil, toStatusError(err)
	}

	return &v1.DepartmentResponse{
		Department: toWireDepartment(deleted, 0, decimal.Zero),
		Message:    fmt.Sprintf("Department %q deleted", deleted.Name),
	}, nil
}

// ListDepartments は部署の一覧を返します。PermittedOnly なら管理可能な部署のみです。
func (h *DepartmentGrpcHandler) ListDepartments(ctx context.Context, req *v1.ListDepartmentsRequest) (*v1.ListDepartmentsResponse, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	actorID, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	in := department.ListDepartmentsInput{ActorID: actorID}
	var views []*department.View
	if req.PermittedOnly {
		views, err = h.svc.ListPermittedDepartments(ctx, in)
	} else {
		views, err = h.svc.ListDepartments(ctx, in)
	}
	if err != nil {
		return nil, toStatusError(err)
	}

	departments := make([]*v1.Department, 0, len(views))
	for _, view := range views {
		departments = append(departments, toWireView(view))
	}
	return &v1.ListDepartmentsResponse{Departments: departments}, nil
}

// AddEmployee は社員を部署に追加します。既に所属していれば上書きします。
func (h *DepartmentGrpcHandler) AddEmployee(ctx context.Context, req *v1.AddEmployeeRequest) (*v1.DepartmentResponse, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	actorID, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, department.ErrInvalidRate.Error())
	}
	role := access.DepartmentMember
	if req.Role != "" {
		if role, err = access.ParseDepartmentRole(req.Role); err != nil {
			return nil, toStatusError(err)
		}
	}

	view, err := h.svc.AddEmployee(ctx, department.AddEmployeeInput{
		ActorID:      actorID,
		DepartmentID: req.DepartmentID,
		EmployeeID:   req.EmployeeID,
		Role:         role,
		Rate:         rate,
		Position:     req.Position,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return &v1.DepartmentResponse{
		Department: toWireView(view),
		Message:    fmt.Sprintf("Employee added to %q", view.Department.Name),
	}, nil
}

// RemoveEmployee は社員を部署から外します。
func (h *DepartmentGrpcHandler) RemoveEmployee(ctx context.Context, req *v1.RemoveEmployeeRequest) (*v1.DepartmentResponse, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	actorID, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	view, err := h.svc.RemoveEmployee(ctx, department.RemoveEmployeeInput{
		ActorID:      actorID,
		DepartmentID: req.DepartmentID,
		EmployeeID:   req.EmployeeID,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return &v1.DepartmentResponse{
		Department: toWireView(view),
		Message:    fmt.Sprintf("Employee removed from %q", view.Department.Name),
	}, nil
}

// RemoveMembership は所属 ID を指定して社員を部署から外します。
func (h *DepartmentGrpcHandler) RemoveMembership(ctx context.Context, req *v1.RemoveMembershipRequest) (*v1.DepartmentResponse, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	actorID, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	view, err := h.svc.RemoveMembership(ctx, department.RemoveMembershipInput{
		ActorID:      actorID,
		MembershipID: req.MembershipID,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return &v1.DepartmentResponse{
		Department: toWireView(view),
		Message:    fmt.Sprintf("Employee removed from %q", view.Department.Name),
	}, nil
}

// UpdateMemberRole は部署内のロールを変更します。
func (h *DepartmentGrpcHandler) UpdateMemberRole(ctx context.Context, req *v1.UpdateMemberRoleRequest) (*v1.MembershipResponse, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	actorID, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	role, err := access.ParseDepartmentRole(req.Role)
	if err != nil {
		return nil, toStatusError(err)
	}

	updated, err := h.svc.UpdateMemberRole(ctx, department.UpdateMemberRoleInput{
		ActorID:      actorID,
		DepartmentID: req.DepartmentID,
		EmployeeID:   req.EmployeeID,
		Role:         role,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return &v1.MembershipResponse{
		Membership: toWireMembership(updated),
		Message:    fmt.Sprintf("Role changed to %s", updated.Role),
	}, nil
}

// ListMembers は部署の所属一覧を返します。
func (h *DepartmentGrpcHandler) ListMembers(ctx context.Context, req *v1.ListMembersRequest) (*v1.ListMembersResponse, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	actorID, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	memberships, err := h.svc.ListMembers(ctx, department.ListMembersInput{
		ActorID:      actorID,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	members := make([]*v1.Membership, 0, len(memberships))
	for _, m := range memberships {
		members = append(members, toWireMembership(m))
	}
	return &v1.ListMembersResponse{Members: members}, nil
}

func toWireView(view *department.View) *v1.Department {
	if view == nil {
		return nil
	}
	return toWireDepartment(view.Department, view.EmployeeCount, view.TotalCost)
}

func toWireDepartment(d *department.Department, count int, totalCost decimal.Decimal) *v1.Department {
	if d == nil {
		return nil
	}
	return &v1.Department{
		ID:            d.ID,
		Name:          d.Name,
		Info:          d.Info,
		EmployeeCount: int32(count),
		TotalCost:     totalCost.StringFixed(2),
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func toWireMembership(m *department.Membership) *v1.Membership {
	if m == nil {
		return nil
	}
	out := &v1.Membership{
		ID:           m.ID,
		UserID:       m.UserID,
		DepartmentID: m.DepartmentID,
		Role:         string(m.Role),
		Rate:         m.Rate.StringFixed(2),
		Position:     m.Position,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.User != nil {
		out.Email = m.User.Email
		out.Name = m.User.Name
	}
	return out
}
