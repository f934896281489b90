// Package balance computes who owes whom within a group of shared expenses.
//
// Every currency is an independent ledger: expenses are bucketed by currency code,
// each bucket is reduced to per-member net balances, and the balances are settled
// with a greedy largest-debtor/largest-creditor matching. Nothing is ever converted
// between currencies.
//
// All functions are pure. They allocate their own accumulators on every call, never
// mutate their input and are safe to call concurrently.
package balance

import (
	"math"
	"sort"
)

const (
	// Tolerance is the amount at or below which a balance counts as settled.
	// Matches below it produce no Debt and advance the matching cursors.
	Tolerance = 0.01

	// DefaultCurrency is the bucket for expenses that carry no currency code.
	DefaultCurrency = "default"
)

// Member identifies a group member. Only ID takes part in the computation;
// the display fields are echoed back untouched in the output.
type Member struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Participant is one member's slot in an expense split.
type Participant struct {
	User *Member `json:"user"`

	// SplitAmount is a currency amount for fixed splits and percentage points
	// (0-100) for percentage splits. Ignored for equal splits.
	SplitAmount *float64 `json:"splitAmount,omitempty"`

	// IsEnabled excludes the participant from the split when explicitly false.
	IsEnabled *bool `json:"isEnabled,omitempty"`
}

// enabled mirrors `isEnabled !== false` plus a resolvable member reference.
func (p Participant) enabled() bool {
	if p.IsEnabled != nil && !*p.IsEnabled {
		return false
	}
	return p.User != nil && p.User.ID != ""
}

// Expense is the engine's input record.
type Expense struct {
	ID           string        `json:"id"`
	Amount       float64       `json:"amount"`
	Currency     string        `json:"currency"`
	SplitMethod  SplitMethod   `json:"splitMethod"`
	PaidBy       *Member       `json:"paidBy"`
	Participants []Participant `json:"participants"`
}

// usable reports whether the expense has a payer and a non-zero amount.
func (e Expense) usable() bool {
	if e.PaidBy == nil || e.PaidBy.ID == "" {
		return false
	}
	return e.Amount != 0 && !math.IsNaN(e.Amount)
}

func (e Expense) currency() string {
	if e.Currency == "" {
		return DefaultCurrency
	}
	return e.Currency
}

// MemberBalance accumulates what one member paid and owes in a single currency.
type MemberBalance struct {
	Member Member  `json:"member"`
	Paid   float64 `json:"paid"`
	Owes   float64 `json:"owes"`
}

// Net is positive when others owe the member, negative when the member owes.
func (b MemberBalance) Net() float64 {
	return b.Paid - b.Owes
}

// Ledger holds the member balances of one currency bucket, in order of first appearance.
type Ledger struct {
	Currency string          `json:"currency"`
	Balances []MemberBalance `json:"balances"`
}

// Debt is a transfer that settles outstanding balances.
type Debt struct {
	From     Member  `json:"from"`
	To       Member  `json:"to"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Result is the viewpoint member's view of the group's debts.
type Result struct {
	UserOwes        []Debt             `json:"userOwes"`
	OwedToUser      []Debt             `json:"owedToUser"`
	TotalUserOwes   map[string]float64 `json:"totalUserOwes"`
	TotalOwedToUser map[string]float64 `json:"totalOwedToUser"`

	// Balances maps other member ID -> currency -> signed amount.
	// Positive: the viewpoint member owes the other member.
	// Negative: the other member owes the viewpoint member.
	Balances map[string]map[string]float64 `json:"balances"`
}

// ComputeBalances settles the given expenses and returns them from the point of view
// of viewpointID. Malformed expenses are skipped rather than reported.
func ComputeBalances(expenses []Expense, viewpointID string) Result {
	return Viewpoint(Debts(expenses), viewpointID)
}

// Debts returns the simplified transfers for every currency, buckets in order of
// first appearance.
func Debts(expenses []Expense) []Debt {
	debts := []Debt{}
	for _, ledger := range Ledgers(expenses) {
		debts = append(debts, Simplify(ledger)...)
	}
	return debts
}

// ledgerBuilder keeps members in first-appearance order so that the stable sort in
// Simplify breaks ties the same way on every run.
type ledgerBuilder struct {
	currency string
	index    map[string]int
	balances []MemberBalance
}

func (l *ledgerBuilder) member(m Member) *MemberBalance {
	if i, ok := l.index[m.ID]; ok {
		return &l.balances[i]
	}
	l.index[m.ID] = len(l.balances)
	l.balances = append(l.balances, MemberBalance{Member: m})
	return &l.balances[len(l.balances)-1]
}

func (l *ledgerBuilder) add(e Expense) {
	// Skip expenses without payer or amount
	if !e.usable() {
		return
	}

	// Payer fronted the full amount
	l.member(*e.PaidBy).Paid += e.Amount

	enabled := make([]Participant, 0, len(e.Participants))
	for _, p := range e.Participants {
		if p.enabled() {
			enabled = append(enabled, p)
		}
	}
	// No debtor: the expense is a pure credit to the payer
	if len(enabled) == 0 {
		return
	}

	for _, p := range enabled {
		owed := Share(e.SplitMethod, e.Amount, p.SplitAmount, len(enabled))
		l.member(*p.User).Owes += owed
	}
}

// Ledgers buckets expenses by currency and accumulates paid/owes per member.
func Ledgers(expenses []Expense) []Ledger {
	var order []*ledgerBuilder
	buckets := make(map[string]*ledgerBuilder)

	for _, e := range expenses {
		cur := e.currency()
		b, ok := buckets[cur]
		if !ok {
			b = &ledgerBuilder{currency: cur, index: make(map[string]int)}
			buckets[cur] = b
			order = append(order, b)
		}
		b.add(e)
	}

	ledgers := make([]Ledger, 0, len(order))
	for _, b := range order {
		balances := b.balances
		if balances == nil {
			balances = []MemberBalance{}
		}
		ledgers = append(ledgers, Ledger{Currency: b.currency, Balances: balances})
	}
	return ledgers
}

type position struct {
	member Member
	amount float64
}

// Simplify settles one currency ledger by repeatedly matching the largest remaining
// debtor with the largest remaining creditor. The result is deterministic but not
// guaranteed to use the minimum number of transfers.
func Simplify(ledger Ledger) []Debt {
	var debtors, creditors []position
	for _, b := range ledger.Balances {
		net := b.Net()
		// Overflowed totals cannot be settled or encoded
		if math.IsInf(net, 0) || math.IsNaN(net) {
			continue
		}
		if net < 0 {
			debtors = append(debtors, position{member: b.Member, amount: -net})
		} else if net > 0 {
			creditors = append(creditors, position{member: b.Member, amount: net})
		}
	}

	// Largest first; equal amounts keep ledger order
	sort.SliceStable(debtors, func(i, j int) bool { return debtors[i].amount > debtors[j].amount })
	sort.SliceStable(creditors, func(i, j int) bool { return creditors[i].amount > creditors[j].amount })

	debts := []Debt{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := math.Min(debtors[i].amount, creditors[j].amount)

		if amount > Tolerance {
			debts = append(debts, Debt{
				From:     debtors[i].member,
				To:       creditors[j].member,
				Amount:   amount,
				Currency: ledger.Currency,
			})
		}

		debtors[i].amount -= amount
		creditors[j].amount -= amount

		// Both cursors may move when the amounts matched exactly. Written so a
		// NaN remainder also advances.
		if !(debtors[i].amount >= Tolerance) {
			i++
		}
		if !(creditors[j].amount >= Tolerance) {
			j++
		}
	}

	return debts
}

// Viewpoint projects a flat debt list onto one member.
func Viewpoint(debts []Debt, viewpointID string) Result {
	res := Result{
		UserOwes:        []Debt{},
		OwedToUser:      []Debt{},
		TotalUserOwes:   make(map[string]float64),
		TotalOwedToUser: make(map[string]float64),
		Balances:        make(map[string]map[string]float64),
	}

	for _, d := range debts {
		switch {
		case d.From.ID == viewpointID:
			res.UserOwes = append(res.UserOwes, d)
			res.TotalUserOwes[d.Currency] += d.Amount
			res.addBalance(d.To.ID, d.Currency, d.Amount)
		case d.To.ID == viewpointID:
			res.OwedToUser = append(res.OwedToUser, d)
			res.TotalOwedToUser[d.Currency] += d.Amount
			res.addBalance(d.From.ID, d.Currency, -d.Amount)
		}
	}

	return res
}

func (r *Result) addBalance(otherID, currency string, amount float64) {
	perCurrency, ok := r.Balances[otherID]
	if !ok {
		perCurrency = make(map[string]float64)
		r.Balances[otherID] = perCurrency
	}
	perCurrency[currency] += amount
}
