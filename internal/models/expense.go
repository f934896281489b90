package models

// Expense is an amount fronted by one member and split among participants.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Description is a human-readable label (e.g., "Groceries").
	Description string

	// Amount is the total monetary value of the expense.
	Amount float64

	// Currency is a short code such as "USD". Currencies never net against each other.
	Currency string

	// SplitMethod is one of "equal", "fixed" or "percentage".
	SplitMethod string

	// PaidBy is the user ID of the member who fronted the money.
	PaidBy string

	// Participants are the members sharing the expense, in display order.
	Participants []Participant

	// CreatedBy is the user ID that recorded the expense.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// Participant is one member's slot in an expense split.
type Participant struct {
	UserID string

	// SplitAmount is a currency amount for fixed splits and percentage points for
	// percentage splits. Nil for equal splits.
	SplitAmount *float64

	// IsEnabled false excludes the member from the split entirely.
	IsEnabled bool
}
