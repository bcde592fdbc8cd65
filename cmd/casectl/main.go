// casectl opera el store de casos desde la terminal: migraciones, backups,
// tablero y extractos del ledger.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&migrateCmd{}, "store")
	commander.Register(&backupCmd{}, "store")

	commander.Register(&dashboardCmd{}, "cases")
	commander.Register(&statementCmd{}, "cases")

	commander.Register(&classifyCmd{}, "deadlines")
	commander.Register(&deadlineCmd{}, "deadlines")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
