package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/MichealAPI/payly/internal/models"
	"github.com/MichealAPI/payly/internal/rpc"
	"github.com/MichealAPI/payly/internal/storage"
)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	store storage.Store
}

var _ rpc.ExpenseServiceHandler = (*ExpenseService)(nil)

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// CreateExpense records an expense in a group the caller belongs to.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[rpc.CreateExpenseRequest]) (*connect.Response[rpc.CreateExpenseResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateExpense request received",
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount,
		"split_method", req.Msg.SplitMethod,
		"participants_count", len(req.Msg.Participants),
	)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		slog.Warn("CreateExpense failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}

	expense := &models.Expense{
		GroupID:   group.ID,
		CreatedBy: userID,
	}
	applyExpenseFields(expense, group, userID, req.Msg.Description, req.Msg.Amount, req.Msg.Currency,
		req.Msg.SplitMethod, req.Msg.PaidBy, req.Msg.Participants)

	if err := validateExpense(group, expense); err != nil {
		slog.Warn("CreateExpense failed", "group_id", group.ID, "error", err)
		return nil, connectError(err)
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "error", err)
		return nil, connectError(err)
	}
	checkSplitTotals(expense)

	slog.Info("Expense created", "expense_id", expense.ID, "group_id", group.ID)
	return connect.NewResponse(&rpc.CreateExpenseResponse{Expense: expenseMessage(expense)}), nil
}

// GetExpense retrieves an expense from a group the caller belongs to.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[rpc.GetExpenseRequest]) (*connect.Response[rpc.GetExpenseResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	expense, _, err := s.memberExpense(ctx, req.Msg.ExpenseID, userID)
	if err != nil {
		slog.Warn("GetExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, connectError(err)
	}

	return connect.NewResponse(&rpc.GetExpenseResponse{Expense: expenseMessage(expense)}), nil
}

// UpdateExpense replaces an expense's fields. The expense keeps its group, its
// creator and its position in the group's history.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[rpc.UpdateExpenseRequest]) (*connect.Response[rpc.UpdateExpenseResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, group, err := s.memberExpense(ctx, req.Msg.ExpenseID, userID)
	if err != nil {
		slog.Warn("UpdateExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, connectError(err)
	}

	applyExpenseFields(expense, group, userID, req.Msg.Description, req.Msg.Amount, req.Msg.Currency,
		req.Msg.SplitMethod, req.Msg.PaidBy, req.Msg.Participants)

	if err := validateExpense(group, expense); err != nil {
		slog.Warn("UpdateExpense failed", "expense_id", expense.ID, "error", err)
		return nil, connectError(err)
	}

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		slog.Error("UpdateExpense failed", "expense_id", expense.ID, "error", err)
		return nil, connectError(err)
	}
	checkSplitTotals(expense)

	slog.Info("Expense updated", "expense_id", expense.ID)
	return connect.NewResponse(&rpc.UpdateExpenseResponse{Expense: expenseMessage(expense)}), nil
}

// DeleteExpense removes an expense from a group the caller belongs to.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[rpc.DeleteExpenseRequest]) (*connect.Response[rpc.DeleteExpenseResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, _, err := s.memberExpense(ctx, req.Msg.ExpenseID, userID)
	if err != nil {
		return nil, connectError(err)
	}

	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", expense.ID, "error", err)
		return nil, connectError(err)
	}

	slog.Info("Expense deleted", "expense_id", expense.ID)
	return connect.NewResponse(&rpc.DeleteExpenseResponse{}), nil
}

// ListExpenses returns a group's expenses in the order they were recorded.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[rpc.ListExpensesRequest]) (*connect.Response[rpc.ListExpensesResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID); err != nil {
		return nil, connectError(err)
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListExpenses failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}

	msgs := make([]*rpc.Expense, len(expenses))
	for i, e := range expenses {
		msgs[i] = expenseMessage(e)
	}

	slog.Info("ListExpenses successful", "group_id", req.Msg.GroupID, "count", len(expenses))
	return connect.NewResponse(&rpc.ListExpensesResponse{Expenses: msgs}), nil
}

// memberExpense loads an expense and the group it belongs to, checking membership.
func (s *ExpenseService) memberExpense(ctx context.Context, expenseID, userID string) (*models.Expense, *models.Group, error) {
	if expenseID == "" {
		return nil, nil, invalidArgument("expense_id required")
	}
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, nil, err
	}
	group, err := memberGroup(ctx, s.store, expense.GroupID, userID)
	if err != nil {
		return nil, nil, err
	}
	return expense, group, nil
}

// applyExpenseFields copies request fields onto e. The payer defaults to the
// caller and the currency to the group's.
func applyExpenseFields(e *models.Expense, group *models.Group, userID, description string, amount float64,
	code, splitMethod, paidBy string, participants []*rpc.Participant) {
	e.Description = strings.TrimSpace(description)
	e.Amount = amount
	e.SplitMethod = strings.ToLower(strings.TrimSpace(splitMethod))

	e.Currency = normalizeCurrency(code)
	if e.Currency == "" {
		e.Currency = group.Currency
	}

	e.PaidBy = paidBy
	if e.PaidBy == "" {
		e.PaidBy = userID
	}

	e.Participants = make([]models.Participant, 0, len(participants))
	for _, p := range participants {
		if p == nil {
			continue
		}
		e.Participants = append(e.Participants, models.Participant{
			UserID:      p.UserID,
			SplitAmount: p.SplitAmount,
			IsEnabled:   p.IsEnabled == nil || *p.IsEnabled,
		})
	}
}

func expenseMessage(e *models.Expense) *rpc.Expense {
	participants := make([]*rpc.Participant, len(e.Participants))
	for i, p := range e.Participants {
		enabled := p.IsEnabled
		participants[i] = &rpc.Participant{
			UserID:      p.UserID,
			SplitAmount: p.SplitAmount,
			IsEnabled:   &enabled,
		}
	}
	return &rpc.Expense{
		ID:           e.ID,
		GroupID:      e.GroupID,
		Description:  e.Description,
		Amount:       e.Amount,
		Currency:     e.Currency,
		SplitMethod:  e.SplitMethod,
		PaidBy:       e.PaidBy,
		Participants: participants,
		CreatedBy:    e.CreatedBy,
		CreatedAt:    e.CreatedAt,
	}
}
