// Command montyc is the compiler driver's command-line entrypoint: it
// reads a source file, runs it through compile_source, and prints
// either the collected diagnostics or each function's textual Ebb dump.
//
// Grounded on funvibe-funxy/cmd/funxy/main.go's manual os.Args-parsing
// shape (no flag library, a small dispatch over the first argument),
// narrowed to this front-end's single real job: compile one file and
// print its MIR.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/funvibe/montyc/internal/config"
	"github.com/funvibe/montyc/internal/diagnostics"
	"github.com/funvibe/montyc/internal/unit"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: montyc <source-file> [module-name]")
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		usage()
		return 2
	}

	path := args[0]
	moduleName := "__main__"
	if len(args) > 1 {
		moduleName = args[1]
	}

	if !config.HasSourceExt(path) {
		fmt.Fprintf(os.Stderr, "warning: %s does not have the recognized %s extension\n", path, config.SourceFileExt)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "montyc: %v\n", err)
		return 1
	}

	opts, err := config.Load(filepath.Join(filepath.Dir(path), "compiler.yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "montyc: failed to load compiler.yaml: %v\n", err)
		return 1
	}

	u, err := unit.CompileSourceWithOptions(string(src), moduleName, opts)
	if err != nil {
		if ce, ok := err.(*diagnostics.CompilationException); ok {
			diagnostics.Render(os.Stderr, ce.Diagnostics)
			return 1
		}
		fmt.Fprintf(os.Stderr, "montyc: %v\n", err)
		return 1
	}

	printModule(u, moduleName, opts)
	return 0
}

func printModule(u *unit.CompilationUnit, moduleName string, opts config.Options) {
	bundle := u.Modules[moduleName]
	names := make([]string, 0, len(bundle.Functions))
	for name := range bundle.Functions {
		names = append(names, name)
	}
	sort.Strings(names)

	var totalInstrs uint64
	for _, name := range names {
		ebb := bundle.Functions[name]
		fmt.Printf("fn %s.%s:\n", moduleName, name)
		fmt.Print(ebb.String())
		for _, block := range ebb.Blocks {
			totalInstrs += uint64(len(block.Body))
		}
	}

	if opts.DiagnosticVerbosity == "verbose" {
		fmt.Printf("; compilation %s: %d function(s), %s of instruction records\n",
			u.ID, len(names), humanize.Bytes(totalInstrs*instrRecordSize))
	}
}

// instrRecordSize is a rough per-instruction footprint used only for
// the verbose summary line's human-readable size estimate.
const instrRecordSize = 32
