package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

// UserServiceName is the fully-qualified name of the UserService.
const UserServiceName = "settleup.v1.UserService"

// Procedure paths of the UserService.
const (
	UserServiceGetUserProcedure   = "/settleup.v1.UserService/GetUser"
	UserServiceListUsersProcedure = "/settleup.v1.UserService/ListUsers"
)

// UserServiceHandler is implemented by the server side of the service.
// UserService reads registered users.
type UserServiceHandler interface {
	GetUser(context.Context, *connect.Request[api.GetUserRequest]) (*connect.Response[api.GetUserResponse], error)
	ListUsers(context.Context, *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error)
}

// NewUserServiceHandler builds an HTTP handler for svc. It returns the path to
// mount it on.
func NewUserServiceHandler(svc UserServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(UserServiceGetUserProcedure, connect.NewUnaryHandler(UserServiceGetUserProcedure, svc.GetUser, opts...))
	mux.Handle(UserServiceListUsersProcedure, connect.NewUnaryHandler(UserServiceListUsersProcedure, svc.ListUsers, opts...))
	return "/" + UserServiceName + "/", mux
}

// UserServiceClient is a client for the UserService.
type UserServiceClient interface {
	GetUser(context.Context, *connect.Request[api.GetUserRequest]) (*connect.Response[api.GetUserResponse], error)
	ListUsers(context.Context, *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error)
}

// NewUserServiceClient returns a client for the service at baseURL
// (for example, http://localhost:8080).
func NewUserServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) UserServiceClient {
	return &userServiceClient{
		getUser:   newClient[api.GetUserRequest, api.GetUserResponse](httpClient, baseURL, UserServiceGetUserProcedure, opts),
		listUsers: newClient[api.ListUsersRequest, api.ListUsersResponse](httpClient, baseURL, UserServiceListUsersProcedure, opts),
	}
}

type userServiceClient struct {
	getUser   *connect.Client[api.GetUserRequest, api.GetUserResponse]
	listUsers *connect.Client[api.ListUsersRequest, api.ListUsersResponse]
}

func (c *userServiceClient) GetUser(ctx context.Context, req *connect.Request[api.GetUserRequest]) (*connect.Response[api.GetUserResponse], error) {
	return c.getUser.CallUnary(ctx, req)
}

func (c *userServiceClient) ListUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	return c.listUsers.CallUnary(ctx, req)
}
