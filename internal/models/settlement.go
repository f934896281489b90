package models

// Settlement records that FromUserID paid ToUserID outside the app. Balances
// treat it as an expense paid by FromUserID and owed in full by ToUserID.
type Settlement struct {
	ID         string
	GroupID    string
	FromUserID string
	ToUserID   string
	Amount     float64

	// Currency is the ledger the payment settles. Empty selects the default bucket.
	Currency string

	Note      string
	CreatedBy string
	CreatedAt int64
}

// Involves reports whether userID paid, received or recorded the settlement.
func (s *Settlement) Involves(userID string) bool {
	return userID == s.FromUserID || userID == s.ToUserID || userID == s.CreatedBy
}
