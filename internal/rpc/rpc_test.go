package rpc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"

	"github.com/MichealAPI/payly/internal/balance"
)

type stubAuth struct{}

func (stubAuth) Register(_ context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error) {
	return connect.NewResponse(&RegisterResponse{User: &User{ID: "u1", Email: req.Msg.Email, DisplayName: req.Msg.DisplayName}, Token: "t"}), nil
}

func (stubAuth) Login(_ context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	if req.Msg.Password != "secret" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("invalid email or password"))
	}
	return connect.NewResponse(&LoginResponse{User: &User{ID: "u1", Email: req.Msg.Email}, Token: "t"}), nil
}

func (stubAuth) GetCurrentUser(context.Context, *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error) {
	return connect.NewResponse(&GetCurrentUserResponse{User: &User{ID: "u1"}}), nil
}

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	path, handler := NewAuthServiceHandler(stubAuth{})
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestAuthServiceRoundTrip(t *testing.T) {
	server := newAuthServer(t)
	client := NewAuthServiceClient(http.DefaultClient, server.URL)

	resp, err := client.Register(context.Background(), connect.NewRequest(&RegisterRequest{
		Email:       "alice@example.com",
		Password:    "secret",
		DisplayName: "Alice",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if resp.Msg.User.DisplayName != "Alice" || resp.Msg.Token != "t" {
		t.Errorf("Register response = %+v", resp.Msg)
	}

	_, err = client.Login(context.Background(), connect.NewRequest(&LoginRequest{Email: "alice@example.com", Password: "wrong"}))
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Errorf("expected CodeUnauthenticated, got %v", err)
	}
}

func TestPlainJSONRequest(t *testing.T) {
	server := newAuthServer(t)

	resp, err := http.Post(server.URL+AuthServiceLoginProcedure, "application/json",
		strings.NewReader(`{"email":"alice@example.com","password":"secret"}`))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	resp, err = http.Post(server.URL+"/"+AuthServiceName+"/Logout", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown procedure status = %d, want 404", resp.StatusCode)
	}
}

func TestCodec(t *testing.T) {
	var c Codec
	if c.Name() != "json" {
		t.Errorf("Name() = %q", c.Name())
	}

	msg := &GetGroupBalancesResponse{
		Result: balance.ComputeBalances(nil, "u1"),
		Debts:  []balance.Debt{},
	}
	data, err := c.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	// The embedded result is flattened into the response object
	if !strings.Contains(string(data), `"userOwes":[]`) || !strings.Contains(string(data), `"debts":[]`) {
		t.Errorf("unexpected encoding: %s", data)
	}

	var req GetGroupRequest
	if err := c.Unmarshal(nil, &req); err != nil {
		t.Errorf("Unmarshal(nil) failed: %v", err)
	}
	if err := c.Unmarshal([]byte("{"), &req); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
