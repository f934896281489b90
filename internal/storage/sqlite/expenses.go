package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MichealAPI/payly/internal/models"
)

const expenseColumns = "id, group_id, description, amount, currency, split_method, paid_by, created_by, created_at"

// CreateExpense persists a new expense together with its participants.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		expense.ID, expense.GroupID, expense.Description, expense.Amount, expense.Currency,
		expense.SplitMethod, expense.PaidBy, expense.CreatedBy, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertParticipants(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertParticipants(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	for i, p := range expense.Participants {
		var splitAmount sql.NullFloat64
		if p.SplitAmount != nil {
			splitAmount = sql.NullFloat64{Float64: *p.SplitAmount, Valid: true}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expense_participants (expense_id, user_id, position, split_amount, is_enabled)
			 VALUES (?, ?, ?, ?, ?)`,
			expense.ID, p.UserID, i, splitAmount, p.IsEnabled,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}
	return nil
}

// GetExpense retrieves an expense by ID, including its participants in order.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := scanExpense(s.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?", expenseID))
	if err == sql.ErrNoRows {
		return nil, notFound("expense", expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	participants, err := s.participants(ctx, "ep.expense_id = ?", expenseID)
	if err != nil {
		return nil, err
	}
	expense.Participants = participants[expense.ID]

	return expense, nil
}

// UpdateExpense replaces an expense's fields and participants. The expense keeps its
// original position in the group's ordering.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses SET description = ?, amount = ?, currency = ?, split_method = ?, paid_by = ?
		 WHERE id = ?`,
		expense.Description, expense.Amount, expense.Currency, expense.SplitMethod, expense.PaidBy,
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n == 0 {
		return notFound("expense", expense.ID)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_participants WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to clear participants: %w", err)
	}
	if err := insertParticipants(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteExpense removes an expense; its participants cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	return s.deleteByID(ctx, "expenses", "expense", expenseID)
}

// ListExpensesByGroup retrieves all expenses of a group in insertion order.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE group_id = ? ORDER BY seq",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by group: %w", err)
	}

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	participants, err := s.participants(ctx, "e.group_id = ?", groupID)
	if err != nil {
		return nil, err
	}
	for _, expense := range expenses {
		expense.Participants = participants[expense.ID]
	}

	return expenses, nil
}

// participants loads participant rows matching where, grouped by expense ID and
// ordered by position.
func (s *SQLiteStore) participants(ctx context.Context, where string, arg any) (map[string][]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ep.expense_id, ep.user_id, ep.split_amount, ep.is_enabled
		 FROM expense_participants ep JOIN expenses e ON e.id = ep.expense_id
		 WHERE `+where+` ORDER BY ep.expense_id, ep.position`,
		arg,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	byExpense := make(map[string][]models.Participant)
	for rows.Next() {
		var (
			expenseID   string
			p           models.Participant
			splitAmount sql.NullFloat64
		)
		if err := rows.Scan(&expenseID, &p.UserID, &splitAmount, &p.IsEnabled); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		if splitAmount.Valid {
			v := splitAmount.Float64
			p.SplitAmount = &v
		}
		byExpense[expenseID] = append(byExpense[expenseID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return byExpense, nil
}

func scanExpense(row scanner) (*models.Expense, error) {
	expense := &models.Expense{}
	err := row.Scan(
		&expense.ID,
		&expense.GroupID,
		&expense.Description,
		&expense.Amount,
		&expense.Currency,
		&expense.SplitMethod,
		&expense.PaidBy,
		&expense.CreatedBy,
		&expense.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return expense, nil
}
