package service

import (
	"log/slog"
	"math"

	"github.com/MichealAPI/payly/internal/balance"
	"github.com/MichealAPI/payly/internal/metrics"
	"github.com/MichealAPI/payly/internal/models"
)

// maxAmount bounds expense, split and settlement amounts so that summed group
// totals stay finite.
const maxAmount = 1e12

// validAmount reports whether v is a positive amount within maxAmount.
func validAmount(v float64) bool {
	return v > 0 && v <= maxAmount
}

// validateExpense checks an expense against its group before it is stored.
func validateExpense(group *models.Group, e *models.Expense) error {
	if !validAmount(e.Amount) {
		return invalidArgument("amount must be positive and at most %.0f", maxAmount)
	}

	method := balance.SplitMethod(e.SplitMethod)
	if !method.Valid() {
		return invalidArgument("unknown split method %q", e.SplitMethod)
	}

	if !group.HasMember(e.PaidBy) {
		return invalidArgument("payer %q is not a group member", e.PaidBy)
	}

	if len(e.Participants) == 0 {
		return invalidArgument("at least one participant required")
	}

	seen := make(map[string]bool, len(e.Participants))
	for _, p := range e.Participants {
		if !group.HasMember(p.UserID) {
			return invalidArgument("participant %q is not a group member", p.UserID)
		}
		if seen[p.UserID] {
			return invalidArgument("participant %q listed twice", p.UserID)
		}
		seen[p.UserID] = true

		if method == balance.SplitEqual || !p.IsEnabled {
			continue
		}
		if p.SplitAmount == nil {
			return invalidArgument("participant %q needs a split amount", p.UserID)
		}
		if v := *p.SplitAmount; !(v >= 0 && v <= maxAmount) {
			return invalidArgument("participant %q has an invalid split amount", p.UserID)
		}
	}

	return nil
}

// checkSplitTotals reports fixed splits that do not add up to the amount and
// percentages that do not add up to 100. Such expenses are still accepted; the
// engine charges exactly the listed shares.
func checkSplitTotals(e *models.Expense) {
	method := balance.SplitMethod(e.SplitMethod)
	var want float64
	switch method {
	case balance.SplitFixed:
		want = e.Amount
	case balance.SplitPercentage:
		want = 100
	default:
		return
	}

	var sum float64
	for _, p := range e.Participants {
		if p.IsEnabled && p.SplitAmount != nil {
			sum += *p.SplitAmount
		}
	}

	if math.Abs(sum-want) > balance.Tolerance {
		slog.Warn("Split amounts do not add up",
			"expense_id", e.ID,
			"split_method", e.SplitMethod,
			"sum", sum,
			"expected", want,
		)
		metrics.SplitMismatch(string(method))
	}
}
