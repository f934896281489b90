package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/MichealAPI/payly/internal/cli"
)

func main() {
	name := path.Base(os.Args[0])
	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	cmds := cli.Commands()
	for _, c := range cmds {
		commander.Register(c, "reports")
	}

	// Exits when invoked by the shell for completion
	cli.Completion(cmds).Complete(name)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
