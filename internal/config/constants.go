// Package config carries the compiler's shared constants and its
// optional YAML options file.
//
// Grounded on funvibe-funxy/internal/config/constants.go's role as a
// small shared-constants package (SourceFileExt, recursion limits); the
// language-specific names it held (builtin function/type names for
// funxy's own surface language) have no equivalent here and are
// replaced by this front-end's own constants. The options file is new
// (SPEC_FULL.md §3), parsed with gopkg.in/yaml.v3 — already a direct
// funxy dependency, there used for a `yaml` builtin and repurposed here
// for the compiler's own configuration.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Version is the current montyc version.
var Version = "0.1.0"

// SourceFileExt is the canonical source file extension this front-end
// expects on disk.
const SourceFileExt = ".mtc"

// MaxRecursionDepth is a recursion-depth limit carried over from
// funvibe-funxy's config package; the parser in this module does not
// read it, so expression-parsing recursion is not bounded by it.
const MaxRecursionDepth = 256

// HasSourceExt reports whether path ends with the recognised source extension.
func HasSourceExt(path string) bool {
	return len(path) >= len(SourceFileExt) && path[len(path)-len(SourceFileExt):] == SourceFileExt
}

// Options are the tunables a compiler.yaml file may override. Absence
// of a config file is not an error: Defaults() applies.
type Options struct {
	// DiagnosticVerbosity is "quiet", "normal" (default), or "verbose".
	// Only "verbose" has an effect: cmd/montyc then prints a summary
	// line after the MIR dump. diagnostics.Render does not read it.
	DiagnosticVerbosity string `yaml:"diagnostic_verbosity"`

	// EnableWhileLowering toggles the supplemented While-loop lowering
	// (SPEC_FULL.md §2). Defaults to true; exists so a strict "core
	// spec.md only" build can disable the addition without a code change.
	EnableWhileLowering bool `yaml:"enable_while_lowering"`
}

// Defaults returns the option set used when no compiler.yaml is present.
func Defaults() Options {
	return Options{
		DiagnosticVerbosity: "normal",
		EnableWhileLowering: true,
	}
}

// Load reads and parses a compiler.yaml-style options file at path. A
// missing file is not an error — Defaults() is returned unchanged.
func Load(path string) (Options, error) {
	opts := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, nil
		}
		return opts, err
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, err
	}
	return opts, nil
}
