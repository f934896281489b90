package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/MichealAPI/payly/internal/balance"
)

// ledgerCmd holds the flags for the 'ledger' subcommand.
type ledgerCmd struct {
	out  io.Writer
	file string
}

func (*ledgerCmd) Name() string     { return "ledger" }
func (*ledgerCmd) Synopsis() string { return "show paid, owed and net amounts per member" }
func (*ledgerCmd) Usage() string {
	return `payly ledger -f <expenses.json>

  Prints one table per currency with what every member paid and owes.
`
}

func (c *ledgerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "JSON file holding an array of expense records")
}

func (c *ledgerCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	expenses, err := loadExpenses(c.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading expenses: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := printMarkdown(c.out, LedgerMarkdown(balance.Ledgers(expenses))); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
