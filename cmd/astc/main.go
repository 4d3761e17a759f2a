// Command astc is the driver surface around the compiler and VM library
// packages: a thin `subcommands`-based CLI wiring lexer.Scan, parser.Parse,
// emit.Compile, and vm.Run together (spec.md §6 "Driver surface"). The
// driver itself is plumbing, not part of the core the spec scopes in.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&compileCmd{}, "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&replCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
