package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"astc/emit"
	"astc/forwarder"
	"astc/vm"
)

// replCmd implements `astc repl`: each line is treated as a translation
// unit fragment, compiled, and executed, printing its exit status — the
// teacher's bufio.Scanner REPL reworked around readline for history and
// line editing.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive compile-and-run session" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive REPL session. Type "exit" to quit.
`
}
func (*replCmd) SetFlags(f *flag.FlagSet) {}

func (*replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to start readline: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	fmt.Println("astc repl — type \"exit\" to quit")
	runREPL(rl)
	return subcommands.ExitSuccess
}

func runREPL(rl *readline.Instance) {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	fw := forwarder.New(log)
	_ = fw.Init()
	defer fw.Cleanup()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" {
			return
		}

		opts := emit.DefaultOptions()
		container, status := compileSource(line, "<repl>", opts)
		if status != subcommands.ExitSuccess {
			continue
		}

		machine := vm.New(fw, log)
		exitStatus, runErr := machine.Run(container)
		if runErr != nil {
			fmt.Fprintf(os.Stderr, "💥 %v\n", runErr)
			continue
		}
		fmt.Printf("=> %d\n", exitStatus)
	}
}
