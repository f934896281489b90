package cli

import (
	"fmt"
	"strings"

	"github.com/MichealAPI/payly/internal/balance"
	"github.com/MichealAPI/payly/internal/currency"
)

// BalancesMarkdown renders one member's view as markdown.
func BalancesMarkdown(name string, result balance.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Balances for %s\n\n", name)

	b.WriteString("## You owe\n\n")
	writeDebts(&b, result.UserOwes, func(d balance.Debt) balance.Member { return d.To })

	b.WriteString("## Owed to you\n\n")
	writeDebts(&b, result.OwedToUser, func(d balance.Debt) balance.Member { return d.From })

	b.WriteString("## Totals\n\n")
	fmt.Fprintf(&b, "- You owe: %s\n", totals(result.UserOwes, result.TotalUserOwes))
	fmt.Fprintf(&b, "- Owed to you: %s\n", totals(result.OwedToUser, result.TotalOwedToUser))
	return b.String()
}

func writeDebts(b *strings.Builder, debts []balance.Debt, other func(balance.Debt) balance.Member) {
	if len(debts) == 0 {
		b.WriteString("Nothing.\n\n")
		return
	}
	for _, d := range debts {
		fmt.Fprintf(b, "- %s: %s\n", displayName(other(d)), currency.Format(d.Amount, d.Currency))
	}
	b.WriteString("\n")
}

// totals lists the per-currency sums in the order currencies appear in debts.
func totals(debts []balance.Debt, sums map[string]float64) string {
	var parts []string
	seen := make(map[string]bool)
	for _, d := range debts {
		if seen[d.Currency] {
			continue
		}
		seen[d.Currency] = true
		parts = append(parts, currency.Format(sums[d.Currency], d.Currency))
	}
	if len(parts) == 0 {
		return "nothing"
	}
	return strings.Join(parts, ", ")
}

// LedgerMarkdown renders one table per currency bucket.
func LedgerMarkdown(ledgers []balance.Ledger) string {
	if len(ledgers) == 0 {
		return "No expenses.\n"
	}

	var b strings.Builder
	for _, l := range ledgers {
		fmt.Fprintf(&b, "## %s\n\n", l.Currency)
		b.WriteString("| Member | Paid | Owes | Net |\n")
		b.WriteString("|:---|---:|---:|---:|\n")
		for _, mb := range l.Balances {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				displayName(mb.Member),
				currency.Format(mb.Paid, l.Currency),
				currency.Format(mb.Owes, l.Currency),
				currency.Format(mb.Net(), l.Currency),
			)
		}
		b.WriteString("\n")
	}
	return b.String()
}
