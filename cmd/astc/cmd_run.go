package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"astc/config"
	"astc/emit"
	"astc/forwarder"
	"astc/store"
	"astc/vm"
)

// runCmd implements `astc run <file>`: accepts either a `.astc` bytecode
// container or a `.c` source file (compiled on the fly), then executes
// it on the stack machine (grounded on the teacher's runCompiledCmd,
// which wires compiler.CompileAST straight into vm.Run).
type runCmd struct {
	configPath string
	verbose    bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Execute a .astc container or compile-and-run a .c source file" }
func (*runCmd) Usage() string {
	return `run [-config astc.yaml] [-v] <file.c|file.astc>:
  Execute compiled bytecode, or compile then execute a source file.
`
}

func (cmd *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.configPath, "config", "astc.yaml", "optional YAML config file")
	f.BoolVar(&cmd.verbose, "v", false, "log VM instrumentation counters to stderr")
}

func (cmd *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 file not provided\n")
		return subcommands.ExitUsageError
	}
	path := args[0]

	var container emit.Container

	if strings.HasSuffix(path, ".astc") {
		c, err := store.ReadContainer(afero.NewOsFs(), path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 failed to read container: %v\n", err)
			return subcommands.ExitFailure
		}
		container = c
	} else {
		opts, err := config.Load(cmd.configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 failed to load config: %v\n", err)
			return subcommands.ExitFailure
		}
		config.BindFlags(f, &opts)

		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 failed to read file: %v\n", err)
			return subcommands.ExitFailure
		}

		c, status := compileSource(string(data), path, opts)
		if status != subcommands.ExitSuccess {
			return status
		}
		container = c
	}

	return cmd.runContainer(container)
}

func (cmd *runCmd) runContainer(container emit.Container) subcommands.ExitStatus {
	log := logrus.New()
	if !cmd.verbose {
		log.SetLevel(logrus.ErrorLevel)
	}

	fw := forwarder.New(log)
	if err := fw.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to initialize forwarder: %v\n", err)
		return subcommands.ExitFailure
	}
	defer fw.Cleanup()

	machine := vm.New(fw, log)
	status, err := machine.Run(container)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}

	if cmd.verbose {
		stats := machine.Stats()
		log.WithFields(logrus.Fields{
			"instructions": stats.InstructionsExecuted,
			"calls":        stats.CallsMade,
			"elapsed":      stats.Elapsed,
		}).Info("run complete")
	}

	if status != 0 {
		return subcommands.ExitStatus(status)
	}
	return subcommands.ExitSuccess
}
