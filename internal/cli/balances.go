package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/PaesslerAG/jsonpath"
	"github.com/google/subcommands"

	"github.com/MichealAPI/payly/internal/balance"
)

// balancesCmd holds the flags for the 'balances' subcommand.
type balancesCmd struct {
	out      io.Writer
	file     string
	user     string
	query    string
	markdown bool
}

func (*balancesCmd) Name() string     { return "balances" }
func (*balancesCmd) Synopsis() string { return "show what one member owes and is owed" }
func (*balancesCmd) Usage() string {
	return `payly balances -f <expenses.json> -u <member-id> [-q <jsonpath>] [-md]

  Computes the group's simplified debts and prints them from the member's
  point of view, as JSON by default.
`
}

func (c *balancesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "JSON file holding an array of expense records")
	f.StringVar(&c.user, "u", "", "ID of the member whose view is printed")
	f.StringVar(&c.query, "q", "", "JSONPath query applied to the result, e.g. $.totalUserOwes")
	f.BoolVar(&c.markdown, "md", false, "print a rendered markdown report instead of JSON")
}

func (c *balancesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "Error: missing member id (-u)")
		return subcommands.ExitUsageError
	}

	expenses, err := loadExpenses(c.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading expenses: %v\n", err)
		return subcommands.ExitFailure
	}

	result := balance.ComputeBalances(expenses, c.user)

	switch {
	case c.markdown:
		err = printMarkdown(c.out, BalancesMarkdown(memberName(expenses, c.user), result))
	case c.query != "":
		err = c.printQuery(result)
	default:
		err = writeJSON(c.out, result)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printQuery evaluates the JSONPath query against the result's JSON form.
func (c *balancesCmd) printQuery(result balance.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	value, err := jsonpath.Get(c.query, doc)
	if err != nil {
		return fmt.Errorf("query %q: %w", c.query, err)
	}
	return writeJSON(c.out, value)
}
