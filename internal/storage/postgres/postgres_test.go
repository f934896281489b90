package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/MichealAPI/payly/internal/models"
	"github.com/MichealAPI/payly/internal/storage"
)

// newTestStore connects to PAYLY_TEST_DATABASE_URL and empties every table.
func newTestStore(t *testing.T) *PostgresStore {
	t.Helper()

	url := os.Getenv("PAYLY_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("PAYLY_TEST_DATABASE_URL not set")
	}

	store, err := New(url)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if _, err := store.db.Exec("TRUNCATE users, groups, group_members, expenses, expense_participants, settlements CASCADE"); err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
	return store
}

func float(v float64) *float64 { return &v }

func TestPostgresStore_GroupsAndExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"alice", "bob", "charlie"} {
		user := &models.User{ID: id, Email: id + "@example.com", DisplayName: id, PasswordHash: "x", CreatedAt: 1, UpdatedAt: 1}
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	users, err := store.GetUsersByIDs(ctx, []string{"alice", "charlie", "ghost"})
	if err != nil {
		t.Fatalf("GetUsersByIDs failed: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}

	group := &models.Group{Name: "Trip", Currency: "USD", CreatedBy: "alice", Members: []string{"alice", "bob"}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if err := store.AddGroupMembers(ctx, group.ID, []string{"bob", "charlie"}); err != nil {
		t.Fatalf("AddGroupMembers failed: %v", err)
	}

	groups, err := store.ListGroupsForUser(ctx, "charlie")
	if err != nil {
		t.Fatalf("ListGroupsForUser failed: %v", err)
	}
	if len(groups) != 1 || len(groups[0].Members) != 3 || groups[0].Members[2] != "charlie" {
		t.Fatalf("groups = %+v", groups)
	}

	first := &models.Expense{
		GroupID: group.ID, Description: "Dinner", Amount: 90, Currency: "USD", SplitMethod: "fixed",
		PaidBy: "alice", CreatedBy: "alice",
		Participants: []models.Participant{
			{UserID: "charlie", SplitAmount: float(30), IsEnabled: true},
			{UserID: "bob", SplitAmount: float(60), IsEnabled: false},
		},
	}
	second := &models.Expense{
		GroupID: group.ID, Description: "Taxi", Amount: 20, SplitMethod: "equal",
		PaidBy: "bob", CreatedBy: "bob",
		Participants: []models.Participant{{UserID: "alice", IsEnabled: true}},
	}
	for _, e := range []*models.Expense{first, second} {
		if err := store.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
	}

	first.Amount = 100
	if err := store.UpdateExpense(ctx, first); err != nil {
		t.Fatalf("UpdateExpense failed: %v", err)
	}

	expenses, err := store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListExpensesByGroup failed: %v", err)
	}
	if len(expenses) != 2 || expenses[0].ID != first.ID || expenses[0].Amount != 100 {
		t.Fatalf("expenses = %+v", expenses)
	}
	if p := expenses[0].Participants; len(p) != 2 || p[0].UserID != "charlie" || p[1].IsEnabled {
		t.Errorf("participants = %+v", p)
	}
	if p := expenses[1].Participants; len(p) != 1 || p[0].SplitAmount != nil {
		t.Errorf("equal split participants = %+v", p)
	}

	settlement := &models.Settlement{GroupID: group.ID, FromUserID: "charlie", ToUserID: "alice", Amount: 30, Currency: "USD", CreatedBy: "charlie"}
	if err := store.CreateSettlement(ctx, settlement); err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}

	if err := store.DeleteGroup(ctx, group.ID); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	if _, err := store.GetExpense(ctx, first.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for expense, got %v", err)
	}
	if _, err := store.GetSettlement(ctx, settlement.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for settlement, got %v", err)
	}
	if err := store.DeleteGroup(ctx, group.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
