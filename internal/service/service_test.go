package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/storage/sqlite"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

type testClients struct {
	expenses apiconnect.ExpenseServiceClient
	splits   apiconnect.SplitServiceClient
	groups   apiconnect.GroupServiceClient
	users    apiconnect.UserServiceClient
	auth     apiconnect.AuthServiceClient
}

// setupTestServer starts every service over a temp-file SQLite database.
func setupTestServer(t *testing.T) *testClients {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	splits := ledger.NewSplitLedger(store)
	mux := http.NewServeMux()
	Mount(mux, Deps{
		Store:         store,
		Splits:        splits,
		Balances:      ledger.NewBalanceAggregator(store),
		Expenses:      ledger.NewExpenseService(store, splits),
		Authenticator: auth.NewPasswordAuthenticator(store),
		JWT:           auth.NewJWTManager("test-secret", time.Hour),
		Metrics:       metrics.New(),
	})

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testClients{
		expenses: apiconnect.NewExpenseServiceClient(http.DefaultClient, server.URL),
		splits:   apiconnect.NewSplitServiceClient(http.DefaultClient, server.URL),
		groups:   apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL),
		users:    apiconnect.NewUserServiceClient(http.DefaultClient, server.URL),
		auth:     apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL),
	}
}

// session is a registered user and their token.
type session struct {
	user  *api.User
	token string
}

func (c *testClients) register(t *testing.T, name string) session {
	t.Helper()
	resp, err := c.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:    name + "@example.com",
		Name:     name,
		Password: "password123",
	}))
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", name, err)
	}
	return session{user: resp.Msg.User, token: resp.Msg.Token}
}

func authed[T any](s session, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+s.token)
	return req
}

func wantCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", code)
	}
	if got := connect.CodeOf(err); got != code {
		t.Fatalf("expected code %v, got %v (%v)", code, got, err)
	}
}

// household registers alice, bob and carol and puts them in one group
// created by alice.
func (c *testClients) household(t *testing.T) (alice, bob, carol session, groupID int64) {
	t.Helper()
	alice = c.register(t, "alice")
	bob = c.register(t, "bob")
	carol = c.register(t, "carol")

	resp, err := c.groups.CreateGroup(context.Background(), authed(alice, &api.CreateGroupRequest{
		Name:      "Roommates",
		MemberIDs: []int64{bob.user.ID, carol.user.ID},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return alice, bob, carol, resp.Msg.Group.ID
}
