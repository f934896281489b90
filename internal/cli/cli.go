// Package cli implements the payly command line: offline balance reports over a
// JSON file of expense records.
package cli

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/MichealAPI/payly/internal/balance"
	"github.com/MichealAPI/payly/pkg/logging"
)

// Commands returns every payly subcommand, writing to stdout.
func Commands() []subcommands.Command {
	return []subcommands.Command{
		&balancesCmd{out: os.Stdout},
		&debtsCmd{out: os.Stdout},
		&ledgerCmd{out: os.Stdout},
	}
}

// Completion describes cmds for shell completion. Flags named "f" complete
// JSON file names.
func Completion(cmds []subcommands.Command) *complete.Command {
	root := &complete.Command{Sub: make(map[string]*complete.Command, len(cmds))}
	for _, c := range cmds {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)

		sub := &complete.Command{Flags: make(map[string]complete.Predictor)}
		fs.VisitAll(func(f *flag.Flag) {
			if f.Name == "f" {
				sub.Flags[f.Name] = predict.Files("*.json")
				return
			}
			sub.Flags[f.Name] = predict.Nothing
		})
		root.Sub[c.Name()] = sub
	}
	return root
}

// loadExpenses reads a JSON array of expense records.
func loadExpenses(path string) ([]balance.Expense, error) {
	if path == "" {
		return nil, errors.New("missing expenses file (-f)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read expenses: %w", err)
	}
	var expenses []balance.Expense
	if err := json.Unmarshal(data, &expenses); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return expenses, nil
}

// printMarkdown renders md for the terminal, or as plain text when w is not one.
func printMarkdown(w io.Writer, md string) error {
	style := glamour.WithStandardStyle("notty")
	if logging.IsTerminal(w) {
		style = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(100))
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// memberName finds the display name of id among the expenses' members.
func memberName(expenses []balance.Expense, id string) string {
	for _, e := range expenses {
		if e.PaidBy != nil && e.PaidBy.ID == id && e.PaidBy.Name != "" {
			return e.PaidBy.Name
		}
		for _, p := range e.Participants {
			if p.User != nil && p.User.ID == id && p.User.Name != "" {
				return p.User.Name
			}
		}
	}
	return id
}

func displayName(m balance.Member) string {
	if strings.TrimSpace(m.Name) != "" {
		return m.Name
	}
	return m.ID
}
