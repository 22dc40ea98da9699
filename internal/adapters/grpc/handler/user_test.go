package handler

import (
	"context"
	"testing"
	"time"

	v1 "github.com/ogurasousui/timeclock-grpc/internal/adapters/grpc/timeclockv1"
	"github.com/ogurasousui/timeclock-grpc/internal/core/access"
	"github.com/ogurasousui/timeclock-grpc/internal/core/user"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type stubUserUseCase struct {
	createInput user.CreateUserInput
	createErr   error
	createOut   *user.User

	updateInput user.UpdateUserInput
	updateErr   error
	updateOut   *user.User

	getErr error

	listInput user.ListUsersInput
	listOut   *user.ListUsersResult
}

func (s *stubUserUseCase) CreateUser(_ context.Context, in user.CreateUserInput) (*user.User, error) {
	s.createInput = in
	return s.createOut, s.createErr
}

func (s *stubUserUseCase) UpdateUser(_ context.Context, in user.UpdateUserInput) (*user.User, error) {
	s.updateInput = in
	return s.updateOut, s.updateErr
}

func (s *stubUserUseCase) GetUser(_ context.Context, _ user.GetUserInput) (*user.User, error) {
	return nil, s.getErr
}

func (s *stubUserUseCase) ListUsers(_ context.Context, in user.ListUsersInput) (*user.ListUsersResult, error) {
	s.listInput = in
	return s.listOut, nil
}

func TestUserGrpcHandler_CreateUser(t *testing.T) {
	t.Parallel()

	now := time.Now()
	stub := &stubUserUseCase{
		createOut: &user.User{
			ID:        employeeID,
			Email:     "user@example.com",
			Name:      "User",
			Role:      access.GlobalRoleUser,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	handler := NewUserGrpcHandler(stub)

	resp, err := handler.CreateUser(actorContext(), &v1.CreateUserRequest{Email: "user@example.com", Name: "User"})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	if stub.createInput.Email != "user@example.com" || stub.createInput.ActorID != actorID {
		t.Errorf("unexpected input %+v", stub.createInput)
	}
	if stub.createInput.Role != "" {
		t.Errorf("expected empty role to be left to the service, got %s", stub.createInput.Role)
	}
	if resp.User.ID != employeeID || resp.User.Role != "USER" {
		t.Errorf("unexpected user %+v", resp.User)
	}
}

func TestUserGrpcHandler_CreateUser_ErrorMapping(t *testing.T) {
	t.Parallel()

	handler := NewUserGrpcHandler(&stubUserUseCase{createErr: user.ErrEmailAlreadyExists})

	_, err := handler.CreateUser(actorContext(), &v1.CreateUserRequest{Email: "user@example.com", Name: "User"})
	if status.Code(err) != codes.AlreadyExists {
		t.Fatalf("expected AlreadyExists, got %v", status.Code(err))
	}

	_, err = handler.CreateUser(actorContext(), &v1.CreateUserRequest{Email: "not-an-email", Name: "User"})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", status.Code(err))
	}
}

func TestUserGrpcHandler_UpdateUser_RoleTranslation(t *testing.T) {
	t.Parallel()

	now := time.Now()
	stub := &stubUserUseCase{
		updateOut: &user.User{ID: employeeID, Email: "user@example.com", Name: "Updated", Role: access.GlobalRoleAdmin, CreatedAt: now, UpdatedAt: now},
	}
	handler := NewUserGrpcHandler(stub)

	name := "Updated"
	role := "ADMIN"
	resp, err := handler.UpdateUser(actorContext(), &v1.UpdateUserRequest{ID: employeeID, Name: &name, Role: &role})
	if err != nil {
		t.Fatalf("UpdateUser returned error: %v", err)
	}

	if stub.updateInput.Role == nil || *stub.updateInput.Role != access.GlobalRoleAdmin {
		t.Fatal("expected role to be converted to ADMIN")
	}
	if resp.User.Role != "ADMIN" {
		t.Fatalf("expected response role ADMIN, got %s", resp.User.Role)
	}
}

func TestUserGrpcHandler_GetUser_NotFound(t *testing.T) {
	t.Parallel()

	handler := NewUserGrpcHandler(&stubUserUseCase{getErr: user.ErrUserNotFound})

	_, err := handler.GetUser(actorContext(), &v1.GetUserRequest{ID: employeeID})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", status.Code(err))
	}
}

func TestUserGrpcHandler_ListUsers(t *testing.T) {
	t.Parallel()

	stub := &stubUserUseCase{listOut: &user.ListUsersResult{
		Users:         []*user.User{{ID: employeeID, Email: "user@example.com", Role: access.GlobalRoleAdmin}},
		NextPageToken: "1",
	}}
	handler := NewUserGrpcHandler(stub)

	resp, err := handler.ListUsers(actorContext(), &v1.ListUsersRequest{PageSize: 1, Role: "ADMIN"})
	if err != nil {
		t.Fatalf("ListUsers returned error: %v", err)
	}
	if stub.listInput.Role == nil || *stub.listInput.Role != access.GlobalRoleAdmin || stub.listInput.PageSize != 1 {
		t.Errorf("unexpected input %+v", stub.listInput)
	}
	if len(resp.Users) != 1 || resp.NextPageToken != "1" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestUserGrpcHandler_ValidatesRequest(t *testing.T) {
	t.Parallel()

	handler := NewUserGrpcHandler(&stubUserUseCase{})

	_, err := handler.GetUser(actorContext(), nil)
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument status, got %v", err)
	}
}
