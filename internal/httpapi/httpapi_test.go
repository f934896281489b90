package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MichealAPI/payly/internal/auth"
	"github.com/MichealAPI/payly/internal/balance"
	"github.com/MichealAPI/payly/internal/models"
	"github.com/MichealAPI/payly/internal/service"
)

// stubBalances runs the engine over a fixed expense list for the "trip" group,
// which alice and bob belong to.
type stubBalances struct {
	expenses []balance.Expense
}

func (s *stubBalances) GroupBalances(_ context.Context, groupID, viewerID string) (*service.GroupBalances, error) {
	switch {
	case groupID == "broken":
		return nil, errors.New("database is locked")
	case groupID != "trip":
		return nil, fmt.Errorf("%w: %s", service.ErrGroupNotFound, groupID)
	case viewerID != "alice" && viewerID != "bob":
		return nil, service.ErrNotMember
	}
	debts := balance.Debts(s.expenses)
	return &service.GroupBalances{
		Result:  balance.Viewpoint(debts, viewerID),
		Debts:   debts,
		Ledgers: balance.Ledgers(s.expenses),
		Summary: []service.SummaryLine{},
	}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func setupServer(t *testing.T) (*httptest.Server, *auth.JWTManager) {
	t.Helper()

	alice := &balance.Member{ID: "alice", Name: "Alice"}
	bob := &balance.Member{ID: "bob", Name: "Bob"}
	stub := &stubBalances{expenses: []balance.Expense{{
		ID:          "e1",
		Amount:      100,
		Currency:    "USD",
		SplitMethod: balance.SplitEqual,
		PaidBy:      alice,
		Participants: []balance.Participant{
			{User: alice},
			{User: bob},
		},
	}}}

	jwtManager := auth.NewJWTManager("test-secret-key-that-is-long-enough", time.Hour)
	server := httptest.NewServer(NewRouter(stub, jwtManager))
	t.Cleanup(server.Close)
	return server, jwtManager
}

func get(t *testing.T, url, token string) (*http.Response, envelope) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var body envelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	return resp, body
}

func token(t *testing.T, jwtManager *auth.JWTManager, userID string) string {
	t.Helper()
	tok, err := jwtManager.Generate(&models.User{ID: userID, Email: userID + "@example.com"})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return tok
}

func TestHealth(t *testing.T) {
	server, _ := setupServer(t)

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"ok"`) {
		t.Errorf("health: %d %s", resp.StatusCode, body)
	}
}

func TestGetBalances(t *testing.T) {
	server, jwtManager := setupServer(t)

	resp, body := get(t, server.URL+"/api/v1/groups/trip/balances", token(t, jwtManager, "bob"))
	if resp.StatusCode != http.StatusOK || !body.Success {
		t.Fatalf("status %d, body %+v", resp.StatusCode, body)
	}

	var gb service.GroupBalances
	if err := json.Unmarshal(body.Data, &gb); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if len(gb.UserOwes) != 1 || gb.UserOwes[0].To.ID != "alice" || gb.UserOwes[0].Amount != 50 {
		t.Errorf("userOwes: %+v", gb.UserOwes)
	}
	if gb.TotalUserOwes["USD"] != 50 {
		t.Errorf("totals: %v", gb.TotalUserOwes)
	}
}

func TestListDebts(t *testing.T) {
	server, jwtManager := setupServer(t)

	resp, body := get(t, server.URL+"/api/v1/groups/trip/debts", token(t, jwtManager, "alice"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, body %+v", resp.StatusCode, body)
	}

	var debts []DebtResponse
	if err := json.Unmarshal(body.Data, &debts); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if len(debts) != 1 {
		t.Fatalf("expected 1 debt, got %+v", debts)
	}
	if debts[0].From.ID != "bob" || debts[0].Display != "$50.00" {
		t.Errorf("debt: %+v", debts[0])
	}
}

func TestBalanceErrors(t *testing.T) {
	server, jwtManager := setupServer(t)

	tests := []struct {
		name   string
		path   string
		user   string
		status int
		code   string
	}{
		{name: "missing token", path: "/api/v1/groups/trip/balances", status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
		{name: "unknown group", path: "/api/v1/groups/nope/balances", user: "alice", status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "not a member", path: "/api/v1/groups/trip/debts", user: "dave", status: http.StatusForbidden, code: "FORBIDDEN"},
		{name: "storage failure", path: "/api/v1/groups/broken/balances", user: "alice", status: http.StatusInternalServerError, code: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := ""
			if tt.user != "" {
				tok = token(t, jwtManager, tt.user)
			}
			resp, body := get(t, server.URL+tt.path, tok)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if body.Success || body.Error == nil || body.Error.Code != tt.code {
				t.Errorf("body: %+v", body)
			}
		})
	}
}

func TestSwaggerDoc(t *testing.T) {
	server, _ := setupServer(t)

	resp, err := http.Get(server.URL + "/swagger/doc.json")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "/groups/{groupID}/balances") {
		t.Errorf("swagger doc missing balances route")
	}
}

func TestMetricsRoute(t *testing.T) {
	server, _ := setupServer(t)

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("metrics status %d", resp.StatusCode)
	}
}
