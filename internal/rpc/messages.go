package rpc

import "github.com/MichealAPI/payly/internal/balance"

// User is the public view of an account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	CreatedAt   int64  `json:"createdAt,omitempty"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}

// Group lists members in the order they joined.
type Group struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Currency  string  `json:"currency,omitempty"`
	Members   []*User `json:"members"`
	CreatedBy string  `json:"createdBy"`
	CreatedAt int64   `json:"createdAt"`
}

// CreateGroupRequest adds the caller as the first member; MemberEmails must
// belong to registered users.
type CreateGroupRequest struct {
	Name         string   `json:"name"`
	Currency     string   `json:"currency,omitempty"`
	MemberEmails []string `json:"memberEmails,omitempty"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type AddMembersRequest struct {
	GroupID string   `json:"groupId"`
	Emails  []string `json:"emails"`
}

type AddMembersResponse struct {
	Group *Group `json:"group"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"groupId"`
}

type DeleteGroupResponse struct{}

type GetGroupBalancesRequest struct {
	GroupID string `json:"groupId"`
}

// GetGroupBalancesResponse carries the caller's view of the group (the embedded
// Result), every simplified transfer, the per-currency ledgers and one summary
// line per member and currency.
type GetGroupBalancesResponse struct {
	balance.Result
	Debts   []balance.Debt    `json:"debts"`
	Ledgers []balance.Ledger  `json:"ledgers"`
	Summary []*BalanceSummary `json:"summary"`
}

// BalanceSummary is one line such as "You owe Bob $50.00". Amount is positive
// when the caller owes the member.
type BalanceSummary struct {
	UserID      string  `json:"userId"`
	DisplayName string  `json:"displayName"`
	Currency    string  `json:"currency"`
	Amount      float64 `json:"amount"`
	Message     string  `json:"message"`
}

// Settlement is a recorded payment from one member to another.
type Settlement struct {
	ID         string  `json:"id"`
	GroupID    string  `json:"groupId"`
	FromUserID string  `json:"fromUserId"`
	ToUserID   string  `json:"toUserId"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency,omitempty"`
	Note       string  `json:"note,omitempty"`
	CreatedBy  string  `json:"createdBy"`
	CreatedAt  int64   `json:"createdAt"`
}

// SettleUpRequest records a payment from the caller to ToUserID. Currency
// defaults to the group's currency.
type SettleUpRequest struct {
	GroupID  string  `json:"groupId"`
	ToUserID string  `json:"toUserId"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
	Note     string  `json:"note,omitempty"`
}

type SettleUpResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type ListSettlementsRequest struct {
	GroupID string `json:"groupId"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}

type DeleteSettlementRequest struct {
	SettlementID string `json:"settlementId"`
}

type DeleteSettlementResponse struct{}

// Participant is one member's slot in an expense split. SplitAmount is a
// currency amount for fixed splits and percentage points for percentage splits.
// A nil IsEnabled counts as enabled.
type Participant struct {
	UserID      string   `json:"userId"`
	SplitAmount *float64 `json:"splitAmount,omitempty"`
	IsEnabled   *bool    `json:"isEnabled,omitempty"`
}

type Expense struct {
	ID           string         `json:"id"`
	GroupID      string         `json:"groupId"`
	Description  string         `json:"description"`
	Amount       float64        `json:"amount"`
	Currency     string         `json:"currency,omitempty"`
	SplitMethod  string         `json:"splitMethod"`
	PaidBy       string         `json:"paidBy"`
	Participants []*Participant `json:"participants"`
	CreatedBy    string         `json:"createdBy"`
	CreatedAt    int64          `json:"createdAt"`
}

// CreateExpenseRequest defaults PaidBy to the caller and Currency to the group's.
type CreateExpenseRequest struct {
	GroupID      string         `json:"groupId"`
	Description  string         `json:"description"`
	Amount       float64        `json:"amount"`
	Currency     string         `json:"currency,omitempty"`
	SplitMethod  string         `json:"splitMethod"`
	PaidBy       string         `json:"paidBy,omitempty"`
	Participants []*Participant `json:"participants"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

// UpdateExpenseRequest replaces every field of an existing expense.
type UpdateExpenseRequest struct {
	ExpenseID    string         `json:"expenseId"`
	Description  string         `json:"description"`
	Amount       float64        `json:"amount"`
	Currency     string         `json:"currency,omitempty"`
	SplitMethod  string         `json:"splitMethod"`
	PaidBy       string         `json:"paidBy,omitempty"`
	Participants []*Participant `json:"participants"`
}

type UpdateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type DeleteExpenseResponse struct{}

type ListExpensesRequest struct {
	GroupID string `json:"groupId"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}
