package service

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

var _ apiconnect.UserServiceHandler = (*UserService)(nil)

// UserService implements the Connect UserService.
type UserService struct {
	store storage.Store
}

func NewUserService(store storage.Store) *UserService {
	return &UserService{store: store}
}

func (s *UserService) GetUser(ctx context.Context, req *connect.Request[api.GetUserRequest]) (*connect.Response[api.GetUserResponse], error) {
	user, err := s.store.GetUser(ctx, req.Msg.UserID)
	if err != nil {
		return nil, toConnectError(ctx, "GetUser", err)
	}
	return connect.NewResponse(&api.GetUserResponse{User: toAPIUser(user)}), nil
}

func (s *UserService) ListUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, toConnectError(ctx, "ListUsers", err)
	}
	out := make([]*api.User, len(users))
	for i, u := range users {
		out[i] = toAPIUser(u)
	}
	return connect.NewResponse(&api.ListUsersResponse{Users: out}), nil
}
