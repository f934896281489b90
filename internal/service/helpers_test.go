package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"connectrpc.com/connect"

	"github.com/MichealAPI/payly/internal/middleware"
	"github.com/MichealAPI/payly/internal/models"
	"github.com/MichealAPI/payly/internal/rpc"
	"github.com/MichealAPI/payly/internal/storage/sqlite"
)

const testUserHeader = "X-Test-User-ID"

// testAuthInterceptor trusts the X-Test-User-ID header as the caller's identity.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if userID := req.Header().Get(testUserHeader); userID != "" {
				ctx = middleware.WithUser(ctx, userID, userID+"@example.com")
			}
			return next(ctx, req)
		}
	}
}

type testEnv struct {
	store    *sqlite.SQLiteStore
	groups   rpc.GroupServiceClient
	expenses rpc.ExpenseServiceClient
	balances *BalanceService
}

// setupTestServer creates a test server backed by a temporary SQLite database
// with the users alice, bob, charlie and dave.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	for _, name := range []string{"alice", "bob", "charlie", "dave"} {
		user := &models.User{ID: name, Email: name + "@example.com", DisplayName: displayName(name), PasswordHash: "x", CreatedAt: 1, UpdatedAt: 1}
		if err := store.CreateUser(context.Background(), user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
	}

	balances := NewBalanceService(store)
	interceptors := connect.WithInterceptors(testAuthInterceptor())

	groupPath, groupHandler := rpc.NewGroupServiceHandler(NewGroupService(store, balances), interceptors)
	expensePath, expenseHandler := rpc.NewExpenseServiceHandler(NewExpenseService(store), interceptors)

	mux := http.NewServeMux()
	mux.Handle(groupPath, groupHandler)
	mux.Handle(expensePath, expenseHandler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{
		store:    store,
		groups:   rpc.NewGroupServiceClient(http.DefaultClient, server.URL),
		expenses: rpc.NewExpenseServiceClient(http.DefaultClient, server.URL),
		balances: balances,
	}
}

func displayName(id string) string {
	return strings.ToUpper(id[:1]) + id[1:]
}

// as builds a request sent on behalf of userID.
func as[T any](userID string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set(testUserHeader, userID)
	return req
}

// createGroup creates a group owned by alice with the given other members.
func (e *testEnv) createGroup(t *testing.T, currency string, members ...string) *rpc.Group {
	t.Helper()
	emails := make([]string, len(members))
	for i, m := range members {
		emails[i] = m + "@example.com"
	}
	resp, err := e.groups.CreateGroup(context.Background(), as("alice", &rpc.CreateGroupRequest{
		Name:         "Trip",
		Currency:     currency,
		MemberEmails: emails,
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return resp.Msg.Group
}

func (e *testEnv) createExpense(t *testing.T, userID string, req *rpc.CreateExpenseRequest) *rpc.Expense {
	t.Helper()
	resp, err := e.expenses.CreateExpense(context.Background(), as(userID, req))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	return resp.Msg.Expense
}

func everyone(ids ...string) []*rpc.Participant {
	out := make([]*rpc.Participant, len(ids))
	for i, id := range ids {
		out[i] = &rpc.Participant{UserID: id}
	}
	return out
}

func float(v float64) *float64 { return &v }

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}
