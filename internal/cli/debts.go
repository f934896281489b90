package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/MichealAPI/payly/internal/balance"
	"github.com/MichealAPI/payly/internal/currency"
)

// debtsCmd holds the flags for the 'debts' subcommand.
type debtsCmd struct {
	out  io.Writer
	file string
}

func (*debtsCmd) Name() string     { return "debts" }
func (*debtsCmd) Synopsis() string { return "list the transfers that settle the group" }
func (*debtsCmd) Usage() string {
	return `payly debts -f <expenses.json>

  Prints one line per simplified transfer, currency by currency.
`
}

func (c *debtsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "JSON file holding an array of expense records")
}

func (c *debtsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	expenses, err := loadExpenses(c.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading expenses: %v\n", err)
		return subcommands.ExitFailure
	}

	debts := balance.Debts(expenses)
	if len(debts) == 0 {
		fmt.Fprintln(c.out, "All settled up.")
		return subcommands.ExitSuccess
	}
	for _, d := range debts {
		fmt.Fprintf(c.out, "%s pays %s %s\n", displayName(d.From), displayName(d.To), currency.Format(d.Amount, d.Currency))
	}
	return subcommands.ExitSuccess
}
