package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the Connect GroupService.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a new group. The caller always becomes a member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.MemberIDs),
	)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, toConnectError(ctx, "CreateGroup", models.NewValidationError("name", "must not be empty"))
	}

	members := slices.Clone(req.Msg.MemberIDs)
	if callerID := middleware.GetUserID(ctx); callerID != 0 && !slices.Contains(members, callerID) {
		members = append(members, callerID)
	}

	group := &models.Group{Name: name, MemberIDs: members}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, toConnectError(ctx, "CreateGroup", err)
	}

	slog.Info("Group created", "group_id", group.ID)
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(ctx, "GetGroup", err)
	}
	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

// ListGroups retrieves all groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		return nil, toConnectError(ctx, "ListGroups", err)
	}

	out := make([]*api.Group, len(groups))
	for i, group := range groups {
		out[i] = toAPIGroup(group)
	}

	slog.Info("ListGroups successful", "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// AddMember adds a user to a group. Only existing members may add others.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	slog.Info("AddMember request received", "group_id", req.Msg.GroupID, "user_id", req.Msg.UserID)

	if err := requireMember(ctx, s.store, req.Msg.GroupID); err != nil {
		return nil, toConnectError(ctx, "AddMember", err)
	}
	if err := s.store.AddGroupMember(ctx, req.Msg.GroupID, req.Msg.UserID); err != nil {
		return nil, toConnectError(ctx, "AddMember", err)
	}

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(ctx, "AddMember", err)
	}
	return connect.NewResponse(&api.AddMemberResponse{Group: toAPIGroup(group)}), nil
}

// DeleteGroup removes a group together with its expenses and splits.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	if err := requireMember(ctx, s.store, req.Msg.GroupID); err != nil {
		return nil, toConnectError(ctx, "DeleteGroup", err)
	}
	if err := s.store.DeleteGroup(ctx, req.Msg.GroupID); err != nil {
		return nil, toConnectError(ctx, "DeleteGroup", err)
	}

	slog.Info("Group deleted", "group_id", req.Msg.GroupID)
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}
