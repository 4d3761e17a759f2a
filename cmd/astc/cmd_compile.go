package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/spf13/afero"

	"astc/config"
	"astc/emit"
	"astc/lexer"
	"astc/parser"
	"astc/store"
)

// compileCmd implements `astc compile <file.c>`: lexes, parses, and
// lowers a translation unit to an ASTC container, writing it alongside
// the source file (grounded on the teacher's emitBytecodeCmd, which
// drives the same lex -> parse -> compile -> dump pipeline for Nilan).
type compileCmd struct {
	configPath  string
	disassemble bool
	output      string
}

func (*compileCmd) Name() string     { return "compile" }
func (*compileCmd) Synopsis() string { return "Compile a C-subset source file to an ASTC bytecode container" }
func (*compileCmd) Usage() string {
	return `compile [-config astc.yaml] [-disassemble] [-o out.astc] <file.c>:
  Lex, parse, and emit bytecode for a source file.
`
}

func (cmd *compileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.configPath, "config", "astc.yaml", "optional YAML config file")
	f.BoolVar(&cmd.disassemble, "disassemble", false, "print the disassembled instruction stream to stdout")
	f.StringVar(&cmd.output, "o", "", "output .astc path (defaults to the source path with its extension replaced)")
}

func (cmd *compileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 file not provided\n")
		return subcommands.ExitUsageError
	}
	srcPath := args[0]

	opts, err := config.Load(cmd.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to load config: %v\n", err)
		return subcommands.ExitFailure
	}
	config.BindFlags(f, &opts)

	data, err := os.ReadFile(srcPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	container, status := compileSource(string(data), srcPath, opts)
	if status != subcommands.ExitSuccess {
		return status
	}

	if cmd.disassemble {
		fmt.Fprint(os.Stdout, emit.Disassemble(container))
	}

	outPath := cmd.output
	if outPath == "" {
		outPath = replaceExt(srcPath, ".astc")
	}
	if err := store.WriteContainer(afero.NewOsFs(), outPath, container); err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to write container: %v\n", err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}

// compileSource runs the lex/parse/emit pipeline shared by the compile
// and run subcommands, printing any accumulated diagnostics to stderr.
func compileSource(src, file string, opts emit.Options) (emit.Container, subcommands.ExitStatus) {
	lx := lexer.New(src, file)
	tokens, lexErrs := lx.Scan()
	for _, e := range lexErrs {
		fmt.Fprintln(os.Stderr, e)
	}

	p := parser.Make(tokens)
	unit, parseErrs := p.Parse()
	if len(parseErrs) > 0 {
		for _, e := range parseErrs {
			fmt.Fprintln(os.Stderr, e)
		}
		return emit.Container{}, subcommands.ExitFailure
	}

	container, emitErrs := emit.Compile(unit, opts)
	for _, e := range emitErrs {
		fmt.Fprintln(os.Stderr, e)
		if opts.WarningsAsErrors {
			return emit.Container{}, subcommands.ExitFailure
		}
	}

	return container, subcommands.ExitSuccess
}

func replaceExt(path, ext string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[:i] + ext
	}
	return path + ext
}
