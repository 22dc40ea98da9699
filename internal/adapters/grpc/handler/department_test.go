package handler

import (
	"context"
	"testing"
	"time"

	v1 "github.com/ogurasousui/timeclock-grpc/internal/adapters/grpc/timeclockv1"
	"github.com/ogurasousui/timeclock-grpc/internal/adapters/grpc/interceptor"
	"github.com/ogurasousui/timeclock-grpc/internal/core/access"
	"github.com/ogurasousui/timeclock-grpc/internal/core/department"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	actorID      = "0a3c7a3e-8d6f-4d0e-9b61-0c2d6a1f0001"
	employeeID   = "0a3c7a3e-8d6f-4d0e-9b61-0c2d6a1f0002"
	departmentID = "0a3c7a3e-8d6f-4d0e-9b61-0c2d6a1f0003"
)

func actorContext() context.Context {
	return interceptor.WithActor(context.Background(), actorID)
}

type stubDepartmentUseCase struct {
	department.UseCase

	addInput department.AddEmployeeInput
	addOut   *department.View
	addErr   error

	getOut *department.View
	getErr error

	listPermittedCalled bool
	listOut             []*department.View

	roleInput department.UpdateMemberRoleInput
	roleOut   *department.Membership
}

func (s *stubDepartmentUseCase) AddEmployee(_ context.Context, in department.AddEmployeeInput) (*department.View, error) {
	s.addInput = in
	return s.addOut, s.addErr
}

func (s *stubDepartmentUseCase) GetDepartment(_ context.Context, _ department.GetDepartmentInput) (*department.View, error) {
	return s.getOut, s.getErr
}

func (s *stubDepartmentUseCase) ListDepartments(_ context.Context, _ department.ListDepartmentsInput) ([]*department.View, error) {
	return s.listOut, nil
}

func (s *stubDepartmentUseCase) ListPermittedDepartments(_ context.Context, _ department.ListDepartmentsInput) ([]*department.View, error) {
	s.listPermittedCalled = true
	return s.listOut, nil
}

func (s *stubDepartmentUseCase) UpdateMemberRole(_ context.Context, in department.UpdateMemberRoleInput) (*department.Membership, error) {
	s.roleInput = in
	return s.roleOut, nil
}

func salesView(count int, total string) *department.View {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return &department.View{
		Department:    &department.Department{ID: departmentID, Name: "Sales", CreatedAt: now, UpdatedAt: now},
		EmployeeCount: count,
		TotalCost:     decimal.RequireFromString(total),
	}
}

func TestDepartmentGrpcHandler_AddEmployee(t *testing.T) {
	t.Parallel()

	stub := &stubDepartmentUseCase{addOut: salesView(2, "35")}
	handler := NewDepartmentGrpcHandler(stub)

	resp, err := handler.AddEmployee(actorContext(), &v1.AddEmployeeRequest{
		DepartmentID: departmentID,
		EmployeeID:   employeeID,
		Rate:         "15.5",
		Position:     "Clerk",
	})
	if err != nil {
		t.Fatalf("AddEmployee returned error: %v", err)
	}

	if stub.addInput.ActorID != actorID {
		t.Errorf("expected actor from context, got %s", stub.addInput.ActorID)
	}
	if stub.addInput.Role != access.DepartmentMember {
		t.Errorf("expected default MEMBER role, got %s", stub.addInput.Role)
	}
	if !stub.addInput.Rate.Equal(decimal.RequireFromString("15.50")) {
		t.Errorf("unexpected rate %s", stub.addInput.Rate)
	}
	if resp.Department.EmployeeCount != 2 || resp.Department.TotalCost != "35.00" {
		t.Errorf("unexpected rollup %+v", resp.Department)
	}
	if resp.Message == "" {
		t.Error("expected notification message")
	}
}

func TestDepartmentGrpcHandler_AddEmployee_Validation(t *testing.T) {
	t.Parallel()

	handler := NewDepartmentGrpcHandler(&stubDepartmentUseCase{})

	cases := map[string]*v1.AddEmployeeRequest{
		"nil request":  nil,
		"bad rate":     {DepartmentID: departmentID, EmployeeID: employeeID, Rate: "ten"},
		"bad id":       {DepartmentID: "sales", EmployeeID: employeeID, Rate: "10"},
		"unknown role": {DepartmentID: departmentID, EmployeeID: employeeID, Rate: "10", Role: "OWNER"},
		"missing rate": {DepartmentID: departmentID, EmployeeID: employeeID},
	}
	for name, req := range cases {
		name, req := name, req
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := handler.AddEmployee(actorContext(), req)
			if status.Code(err) != codes.InvalidArgument {
				t.Fatalf("expected InvalidArgument, got %v", err)
			}
		})
	}
}

func TestDepartmentGrpcHandler_AddEmployee_ErrorMapping(t *testing.T) {
	t.Parallel()

	stub := &stubDepartmentUseCase{addErr: access.ErrPermissionDenied}
	handler := NewDepartmentGrpcHandler(stub)

	_, err := handler.AddEmployee(actorContext(), &v1.AddEmployeeRequest{DepartmentID: departmentID, EmployeeID: employeeID, Rate: "10"})
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("expected PermissionDenied, got %v", err)
	}
}

func TestDepartmentGrpcHandler_RequiresActor(t *testing.T) {
	t.Parallel()

	handler := NewDepartmentGrpcHandler(&stubDepartmentUseCase{getOut: salesView(0, "0")})

	_, err := handler.GetDepartment(context.Background(), &v1.GetDepartmentRequest{ID: departmentID})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}
}

func TestDepartmentGrpcHandler_ListDepartments(t *testing.T) {
	t.Parallel()

	stub := &stubDepartmentUseCase{listOut: []*department.View{salesView(1, "20")}}
	handler := NewDepartmentGrpcHandler(stub)

	resp, err := handler.ListDepartments(actorContext(), &v1.ListDepartmentsRequest{PermittedOnly: true})
	if err != nil {
		t.Fatalf("ListDepartments returned error: %v", err)
	}
	if !stub.listPermittedCalled {
		t.Fatal("expected permitted departments to be listed")
	}
	if len(resp.Departments) != 1 || resp.Departments[0].TotalCost != "20.00" {
		t.Fatalf("unexpected departments %+v", resp.Departments)
	}
}

func TestDepartmentGrpcHandler_UpdateMemberRole(t *testing.T) {
	t.Parallel()

	stub := &stubDepartmentUseCase{roleOut: &department.Membership{
		UserID:       employeeID,
		DepartmentID: departmentID,
		Role:         access.DepartmentManager,
		Rate:         decimal.NewFromInt(20),
		User:         &department.MemberSnapshot{ID: employeeID, Email: "mia@example.com", Name: "Mia"},
	}}
	handler := NewDepartmentGrpcHandler(stub)

	resp, err := handler.UpdateMemberRole(actorContext(), &v1.UpdateMemberRoleRequest{
		DepartmentID: departmentID,
		EmployeeID:   employeeID,
		Role:         "MANAGER",
	})
	if err != nil {
		t.Fatalf("UpdateMemberRole returned error: %v", err)
	}
	if stub.roleInput.Role != access.DepartmentManager {
		t.Errorf("expected MANAGER role passed through, got %s", stub.roleInput.Role)
	}
	if resp.Membership.Rate != "20.00" || resp.Membership.Email != "mia@example.com" {
		t.Errorf("unexpected membership %+v", resp.Membership)
	}
}
