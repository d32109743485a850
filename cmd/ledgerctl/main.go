// Command ledgerctl is the operator CLI of the project ledger. It talks to the
// ledger database directly, using the same configuration as the server.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

var plain = flag.Bool("plain", false, "Print raw markdown instead of rendering it for the terminal")

func main() {
	_ = godotenv.Load()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&materialsCmd{}, "catalog")
	commander.Register(&addMaterialCmd{}, "catalog")
	commander.Register(&reportCmd{}, "ledger")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
