package service

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"connectrpc.com/connect"

	"github.com/MichealAPI/payly/internal/rpc"
)

func TestCreateGroup(t *testing.T) {
	env := setupTestServer(t)

	group := env.createGroup(t, "usd", "bob", "charlie", "bob")

	if group.ID == "" || group.CreatedAt == 0 {
		t.Errorf("expected generated ID and CreatedAt, got %+v", group)
	}
	if group.Currency != "USD" {
		t.Errorf("currency: expected 'USD', got '%s'", group.Currency)
	}
	if group.CreatedBy != "alice" {
		t.Errorf("created by: expected 'alice', got '%s'", group.CreatedBy)
	}

	want := []string{"alice", "bob", "charlie"}
	if len(group.Members) != len(want) {
		t.Fatalf("members: expected %d, got %d", len(want), len(group.Members))
	}
	for i, m := range group.Members {
		if m.ID != want[i] {
			t.Errorf("member %d: expected %s, got %s", i, want[i], m.ID)
		}
	}
	if group.Members[1].DisplayName != "Bob" {
		t.Errorf("display name: expected 'Bob', got '%s'", group.Members[1].DisplayName)
	}
}

func TestCreateGroup_Errors(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *connect.Request[rpc.CreateGroupRequest]
		code connect.Code
	}{
		{"missing name", as("alice", &rpc.CreateGroupRequest{Name: "  "}), connect.CodeInvalidArgument},
		{"unknown email", as("alice", &rpc.CreateGroupRequest{Name: "Trip", MemberEmails: []string{"zed@example.com"}}), connect.CodeNotFound},
		{"unauthenticated", connect.NewRequest(&rpc.CreateGroupRequest{Name: "Trip"}), connect.CodeUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.groups.CreateGroup(ctx, tt.req)
			if connect.CodeOf(err) != tt.code {
				t.Errorf("expected %v, got %v", tt.code, err)
			}
		})
	}
}

func TestGetGroup(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := env.createGroup(t, "", "bob")

	resp, err := env.groups.GetGroup(ctx, as("bob", &rpc.GetGroupRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if resp.Msg.Group.Name != "Trip" || len(resp.Msg.Group.Members) != 2 {
		t.Errorf("unexpected group: %+v", resp.Msg.Group)
	}

	t.Run("not a member", func(t *testing.T) {
		_, err := env.groups.GetGroup(ctx, as("dave", &rpc.GetGroupRequest{GroupID: group.ID}))
		if connect.CodeOf(err) != connect.CodePermissionDenied {
			t.Errorf("expected CodePermissionDenied, got %v", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := env.groups.GetGroup(ctx, as("alice", &rpc.GetGroupRequest{GroupID: "nonexistent-id"}))
		if connect.CodeOf(err) != connect.CodeNotFound {
			t.Errorf("expected CodeNotFound, got %v", err)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := env.groups.GetGroup(ctx, as("alice", &rpc.GetGroupRequest{}))
		if connect.CodeOf(err) != connect.CodeInvalidArgument {
			t.Errorf("expected CodeInvalidArgument, got %v", err)
		}
	})
}

func TestListGroupsAndAddMembers(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := env.createGroup(t, "", "bob")
	env.createGroup(t, "", "charlie")

	resp, err := env.groups.ListGroups(ctx, as("bob", &rpc.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(resp.Msg.Groups) != 1 || resp.Msg.Groups[0].ID != group.ID {
		t.Fatalf("bob's groups: %+v", resp.Msg.Groups)
	}

	added, err := env.groups.AddMembers(ctx, as("bob", &rpc.AddMembersRequest{
		GroupID: group.ID,
		Emails:  []string{"Dave@Example.com", "alice@example.com"},
	}))
	if err != nil {
		t.Fatalf("AddMembers failed: %v", err)
	}
	if n := len(added.Msg.Group.Members); n != 3 {
		t.Errorf("members: expected 3, got %d", n)
	}

	resp, err = env.groups.ListGroups(ctx, as("dave", &rpc.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(resp.Msg.Groups) != 1 {
		t.Errorf("dave's groups: expected 1, got %d", len(resp.Msg.Groups))
	}

	_, err = env.groups.AddMembers(ctx, as("charlie", &rpc.AddMembersRequest{GroupID: group.ID, Emails: []string{"charlie@example.com"}}))
	if connect.CodeOf(err) != connect.CodePermissionDenied {
		t.Errorf("non-member adding: expected CodePermissionDenied, got %v", err)
	}
}

func TestDeleteGroup(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := env.createGroup(t, "", "bob")

	_, err := env.groups.DeleteGroup(ctx, as("bob", &rpc.DeleteGroupRequest{GroupID: group.ID}))
	if connect.CodeOf(err) != connect.CodePermissionDenied {
		t.Errorf("expected CodePermissionDenied for non-creator, got %v", err)
	}

	if _, err := env.groups.DeleteGroup(ctx, as("alice", &rpc.DeleteGroupRequest{GroupID: group.ID})); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}

	_, err = env.groups.GetGroup(ctx, as("alice", &rpc.GetGroupRequest{GroupID: group.ID}))
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("expected CodeNotFound after delete, got %v", err)
	}
}

func TestSettlements(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := env.createGroup(t, "USD", "bob", "charlie")

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name string
			req  *rpc.SettleUpRequest
		}{
			{"zero amount", &rpc.SettleUpRequest{GroupID: group.ID, ToUserID: "alice"}},
			{"negative amount", &rpc.SettleUpRequest{GroupID: group.ID, ToUserID: "alice", Amount: -5}},
			{"amount above limit", &rpc.SettleUpRequest{GroupID: group.ID, ToUserID: "alice", Amount: 1.7e308}},
			{"self", &rpc.SettleUpRequest{GroupID: group.ID, ToUserID: "bob", Amount: 5}},
			{"outsider", &rpc.SettleUpRequest{GroupID: group.ID, ToUserID: "dave", Amount: 5}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := env.groups.SettleUp(ctx, as("bob", tt.req))
				if connect.CodeOf(err) != connect.CodeInvalidArgument {
					t.Errorf("expected CodeInvalidArgument, got %v", err)
				}
			})
		}
	})

	resp, err := env.groups.SettleUp(ctx, as("bob", &rpc.SettleUpRequest{GroupID: group.ID, ToUserID: "alice", Amount: 20, Note: "cash"}))
	if err != nil {
		t.Fatalf("SettleUp failed: %v", err)
	}
	settlement := resp.Msg.Settlement
	if settlement.Currency != "USD" || settlement.FromUserID != "bob" || settlement.Note != "cash" {
		t.Errorf("unexpected settlement: %+v", settlement)
	}

	list, err := env.groups.ListSettlements(ctx, as("charlie", &rpc.ListSettlementsRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("ListSettlements failed: %v", err)
	}
	if len(list.Msg.Settlements) != 1 || list.Msg.Settlements[0].ID != settlement.ID {
		t.Errorf("settlements: %+v", list.Msg.Settlements)
	}

	_, err = env.groups.DeleteSettlement(ctx, as("charlie", &rpc.DeleteSettlementRequest{SettlementID: settlement.ID}))
	if connect.CodeOf(err) != connect.CodePermissionDenied {
		t.Errorf("uninvolved member deleting: expected CodePermissionDenied, got %v", err)
	}
	if _, err := env.groups.DeleteSettlement(ctx, as("alice", &rpc.DeleteSettlementRequest{SettlementID: settlement.ID})); err != nil {
		t.Fatalf("DeleteSettlement failed: %v", err)
	}
	_, err = env.groups.DeleteSettlement(ctx, as("alice", &rpc.DeleteSettlementRequest{SettlementID: settlement.ID}))
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("expected CodeNotFound on second delete, got %v", err)
	}
}

func TestNormalizeCurrency(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		in   string
		want string
		warn bool
	}{
		{in: " usd ", want: "USD"},
		{in: "EUR", want: "EUR"},
		{in: "", want: ""},
		{in: "xyz", want: "XYZ", warn: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			buf.Reset()
			if got := normalizeCurrency(tt.in); got != tt.want {
				t.Errorf("normalizeCurrency(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if warned := strings.Contains(buf.String(), "Unknown currency code"); warned != tt.warn {
				t.Errorf("warned = %v, want %v (log: %q)", warned, tt.warn, buf.String())
			}
		})
	}
}
