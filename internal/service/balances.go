package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/MichealAPI/payly/internal/balance"
	"github.com/MichealAPI/payly/internal/currency"
	"github.com/MichealAPI/payly/internal/metrics"
	"github.com/MichealAPI/payly/internal/models"
	"github.com/MichealAPI/payly/internal/storage"
)

// GroupBalances is one member's view of a group's outstanding debts.
// The embedded Result is the engine output for the viewing member.
type GroupBalances struct {
	balance.Result
	Debts   []balance.Debt   `json:"debts"`
	Ledgers []balance.Ledger `json:"ledgers"`
	Summary []SummaryLine    `json:"summary"`
}

// SummaryLine states what the viewer and one other member owe each other in one
// currency. Amount is positive when the viewer owes.
type SummaryLine struct {
	Member   balance.Member `json:"member"`
	Currency string         `json:"currency"`
	Amount   float64        `json:"amount"`
	Message  string         `json:"message"`
}

// BalanceService loads a group's records and runs them through the balance engine.
type BalanceService struct {
	store storage.Store
}

// NewBalanceService creates a BalanceService reading from store.
func NewBalanceService(store storage.Store) *BalanceService {
	return &BalanceService{store: store}
}

// GroupBalances computes the balances of groupID as seen by viewerID, who must be
// a member. Expenses are fed to the engine in insertion order, followed by settlements.
func (s *BalanceService) GroupBalances(ctx context.Context, groupID, viewerID string) (*GroupBalances, error) {
	group, err := memberGroup(ctx, s.store, groupID, viewerID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	settlements, err := s.store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}

	resolve, err := s.memberResolver(ctx, group, expenses, settlements)
	if err != nil {
		return nil, err
	}

	input := make([]balance.Expense, 0, len(expenses)+len(settlements))
	for _, e := range expenses {
		input = append(input, engineExpense(e, resolve))
	}
	for _, st := range settlements {
		input = append(input, settlementExpense(st, resolve))
	}

	ledgers := balance.Ledgers(input)
	debts := []balance.Debt{}
	for _, ledger := range ledgers {
		debts = append(debts, balance.Simplify(ledger)...)
	}
	result := balance.Viewpoint(debts, viewerID)

	metrics.ObserveBalances(len(debts))
	slog.Debug("Balances computed",
		"group_id", groupID,
		"viewer_id", viewerID,
		"expenses_count", len(expenses),
		"settlements_count", len(settlements),
		"currencies_count", len(ledgers),
		"debts_count", len(debts),
	)

	return &GroupBalances{
		Result:  result,
		Debts:   debts,
		Ledgers: ledgers,
		Summary: summarize(result, debts, viewerID),
	}, nil
}

// memberResolver fetches every user referenced by the group's records in one query
// and returns a lookup producing engine members with display fields filled in.
func (s *BalanceService) memberResolver(ctx context.Context, group *models.Group, expenses []*models.Expense, settlements []*models.Settlement) (func(string) *balance.Member, error) {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, id := range group.Members {
		add(id)
	}
	for _, e := range expenses {
		add(e.PaidBy)
		for _, p := range e.Participants {
			add(p.UserID)
		}
	}
	for _, st := range settlements {
		add(st.FromUserID)
		add(st.ToUserID)
	}

	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve members: %w", err)
	}

	return func(id string) *balance.Member {
		if id == "" {
			return nil
		}
		m := &balance.Member{ID: id, Name: id}
		if u, ok := users[id]; ok {
			m.Name = u.DisplayName
			m.Email = u.Email
		}
		return m
	}, nil
}

func engineExpense(e *models.Expense, resolve func(string) *balance.Member) balance.Expense {
	participants := make([]balance.Participant, len(e.Participants))
	for i, p := range e.Participants {
		enabled := p.IsEnabled
		participants[i] = balance.Participant{
			User:        resolve(p.UserID),
			SplitAmount: p.SplitAmount,
			IsEnabled:   &enabled,
		}
	}
	return balance.Expense{
		ID:           e.ID,
		Amount:       e.Amount,
		Currency:     e.Currency,
		SplitMethod:  balance.SplitMethod(e.SplitMethod),
		PaidBy:       resolve(e.PaidBy),
		Participants: participants,
	}
}

// settlementExpense expresses a payment from From to To as an expense paid by From
// that To owes in full, which moves both members toward zero.
func settlementExpense(st *models.Settlement, resolve func(string) *balance.Member) balance.Expense {
	amount := st.Amount
	return balance.Expense{
		ID:          st.ID,
		Amount:      st.Amount,
		Currency:    st.Currency,
		SplitMethod: balance.SplitFixed,
		PaidBy:      resolve(st.FromUserID),
		Participants: []balance.Participant{
			{User: resolve(st.ToUserID), SplitAmount: &amount},
		},
	}
}

// summarize emits one line per (member, currency) pair of result.Balances, in the
// order the pairs first appear in debts.
func summarize(result balance.Result, debts []balance.Debt, viewerID string) []SummaryLine {
	type key struct{ member, currency string }
	seen := make(map[key]bool)
	lines := []SummaryLine{}

	for _, d := range debts {
		var other balance.Member
		switch viewerID {
		case d.From.ID:
			other = d.To
		case d.To.ID:
			other = d.From
		default:
			continue
		}

		k := key{other.ID, d.Currency}
		if seen[k] {
			continue
		}
		seen[k] = true

		amount := result.Balances[other.ID][d.Currency]
		if math.Abs(amount) <= balance.Tolerance {
			continue
		}
		lines = append(lines, SummaryLine{
			Member:   other,
			Currency: d.Currency,
			Amount:   amount,
			Message:  summaryMessage(other, d.Currency, amount),
		})
	}
	return lines
}

func summaryMessage(other balance.Member, code string, amount float64) string {
	name := other.Name
	if name == "" {
		name = other.ID
	}
	if amount > 0 {
		return fmt.Sprintf("You owe %s %s", name, currency.Format(amount, code))
	}
	return fmt.Sprintf("%s owes you %s", name, currency.Format(-amount, code))
}
