package handler

import (
	"context"
	"fmt"

	v1 "github.com/ogurasousui/timeclock-grpc/internal/adapters/grpc/timeclockv1"
	"github.com/ogurasousui/timeclock-grpc/internal/core/access"
	"github.com/ogurasousui/timeclock-grpc/internal/core/user"
)

// UserGrpcHandler は UserService の gRPC 実装です。
type UserGrpcHandler struct {
	svc user.UseCase
	v1.UnimplementedUserServiceServer
}

// NewUserGrpcHandler は UserGrpcHandler を生成します。
func NewUserGrpcHandler(svc user.UseCase) *UserGrpcHandler {
	return &UserGrpcHandler{svc: svc}
}

// CreateUser はユーザーを作成します。
func (h *UserGrpcHandler) CreateUser(ctx context.Context, req *v1.CreateUserRequest) (*v1.UserResponse, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	actorID, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	var role access.GlobalRole
	if req.Role != "" {
		if role, err = access.ParseGlobalRole(req.Role); err != nil {
			return nil, toStatusError(err)
		}
	}

	created, err := h.svc.CreateUser(ctx, user.CreateUserInput{
		ActorID: actorID,
		Email:   req.Email,
		Name:    req.Name,
		Role:    role,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return &v1.UserResponse{
		User:    toWireUser(created),
		Message: fmt.Sprintf("User %s created", created.Email),
	}, nil
}

// UpdateUser はユーザー情報を更新します。
func (h *UserGrpcHandler) UpdateUser(ctx context.Context, req *v1.UpdateUserRequest) (*v1.UserResponse, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	actorID, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	var rolePtr *access.GlobalRole
	if req.Role != nil {
		role, err := access.ParseGlobalRole(*req.Role)
		if err != nil {
			return nil, toStatusError(err)
		}
		rolePtr = &role
	}

	updated, err := h.svc.UpdateUser(ctx, user.UpdateUserInput{
		ActorID: actorID,
		ID:      req.ID,
		Name:    req.Name,
		Role:    rolePtr,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return &v1.UserResponse{
		User:    toWireUser(updated),
		Message: fmt.Sprintf("User %s updated", updated.Email),
	}, nil
}

// GetUser はユーザーを取得します。
func (h *UserGrpcHandler) GetUser(ctx context.Context, req *v1.GetUserRequest) (*v1.UserResponse, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	actorID, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	found, err := h.svc.GetUser(ctx, user.GetUserInput{ActorID: actorID, ID: req.ID})
	if err != nil {
		return nil, toStatusError(err)
	}

	return &v1.UserResponse{User: toWireUser(found)}, nil
}

// ListUsers はユーザーの一覧を取得します。
func (h *UserGrpcHandler) ListUsers(ctx context.Context, req *v1.ListUsersRequest) (*v1.ListUsersResponse, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	actorID, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	var rolePtr *access.GlobalRole
	if req.Role != "" {
		role, err := access.ParseGlobalRole(req.Role)
		if err != nil {
			return nil, toStatusError(err)
		}
		rolePtr = &role
	}

	result, err := h.svc.ListUsers(ctx, user.ListUsersInput{
		ActorID:   actorID,
		PageSize:  int(req.PageSize),
		PageToken: req.PageToken,
		Role:      rolePtr,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	users := make([]*v1.User, 0, len(result.Users))
	for _, u := range result.Users {
		users = append(users, toWireUser(u))
	}

	return &v1.ListUsersResponse{
		Users:         users,
		NextPageToken: result.NextPageToken,
	}, nil
}

func toWireUser(u *user.User) *v1.User {
	if u == nil {
		return nil
	}

	return &v1.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
