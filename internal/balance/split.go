package balance

// SplitMethod determines how an expense amount is divided among its enabled participants.
type SplitMethod string

const (
	SplitEqual      SplitMethod = "equal"
	SplitFixed      SplitMethod = "fixed"
	SplitPercentage SplitMethod = "percentage"
)

// Valid reports whether m is one of the known split methods.
func (m SplitMethod) Valid() bool {
	switch m {
	case SplitEqual, SplitFixed, SplitPercentage:
		return true
	}
	return false
}

// Share computes how much one enabled participant owes for an expense.
//
//   - equal:      amount / enabledCount
//   - fixed:      splitAmount (a currency amount)
//   - percentage: splitAmount / 100 * amount
//
// A nil splitAmount counts as zero. Unknown methods owe nothing, which leaves the
// whole amount as an unattributed credit to the payer.
func Share(method SplitMethod, amount float64, splitAmount *float64, enabledCount int) float64 {
	var value float64
	if splitAmount != nil {
		value = *splitAmount
	}

	switch method {
	case SplitEqual:
		if enabledCount == 0 {
			return 0
		}
		return amount / float64(enabledCount)
	case SplitFixed:
		return value
	case SplitPercentage:
		return (value / 100) * amount
	default:
		return 0
	}
}
