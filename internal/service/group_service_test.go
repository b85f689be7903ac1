package service

import (
	"context"
	"reflect"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

func TestGroupCRUD(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	alice, bob, carol, groupID := c.household(t)
	dave := c.register(t, "dave")

	got, err := c.groups.GetGroup(ctx, authed(bob, &api.GetGroupRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	want := []int64{alice.user.ID, bob.user.ID, carol.user.ID}
	if !reflect.DeepEqual(got.Msg.Group.MemberIDs, want) {
		t.Errorf("expected members %v (creator included), got %v", want, got.Msg.Group.MemberIDs)
	}

	_, err = c.groups.AddMember(ctx, authed(dave, &api.AddMemberRequest{GroupID: groupID, UserID: dave.user.ID}))
	wantCode(t, err, connect.CodePermissionDenied)

	added, err := c.groups.AddMember(ctx, authed(carol, &api.AddMemberRequest{GroupID: groupID, UserID: dave.user.ID}))
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if len(added.Msg.Group.MemberIDs) != 4 {
		t.Errorf("expected 4 members, got %v", added.Msg.Group.MemberIDs)
	}

	_, err = c.groups.AddMember(ctx, authed(carol, &api.AddMemberRequest{GroupID: groupID, UserID: 9999}))
	wantCode(t, err, connect.CodeNotFound)

	_, err = c.groups.CreateGroup(ctx, authed(alice, &api.CreateGroupRequest{Name: "  "}))
	wantCode(t, err, connect.CodeInvalidArgument)

	list, err := c.groups.ListGroups(ctx, authed(alice, &api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(list.Msg.Groups) != 1 {
		t.Errorf("expected 1 group, got %d", len(list.Msg.Groups))
	}

	if _, err := c.groups.DeleteGroup(ctx, authed(alice, &api.DeleteGroupRequest{GroupID: groupID})); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	_, err = c.groups.GetGroup(ctx, authed(alice, &api.GetGroupRequest{GroupID: groupID}))
	wantCode(t, err, connect.CodeNotFound)
}

func TestUserService(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	alice := c.register(t, "alice")
	c.register(t, "bob")

	list, err := c.users.ListUsers(ctx, authed(alice, &api.ListUsersRequest{}))
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(list.Msg.Users) != 2 {
		t.Errorf("expected 2 users, got %d", len(list.Msg.Users))
	}

	got, err := c.users.GetUser(ctx, authed(alice, &api.GetUserRequest{UserID: alice.user.ID}))
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.Msg.User.Email != "alice@example.com" {
		t.Errorf("unexpected user %+v", got.Msg.User)
	}

	_, err = c.users.GetUser(ctx, authed(alice, &api.GetUserRequest{UserID: 9999}))
	wantCode(t, err, connect.CodeNotFound)
}
