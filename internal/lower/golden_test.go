package lower

import (
	"path/filepath"
	"testing"

	"golang.org/x/tools/txtar"
)

// TestGoldenMIRDumps re-runs the source.mtc file embedded in each
// testdata/*.txtar fixture through the full parse/scope/typecheck/lower
// pipeline and compares the function named after the fixture against
// its golden f.mir textual dump (spec.md §6's disassembly format).
func TestGoldenMIRDumps(t *testing.T) {
	fixtures := []string{"simple_return.txtar", "param_addition.txtar"}
	for _, name := range fixtures {
		name := name
		t.Run(name, func(t *testing.T) {
			ar, err := txtar.ParseFile(filepath.Join("testdata", name))
			if err != nil {
				t.Fatalf("ParseFile: %v", err)
			}
			var src, want string
			for _, f := range ar.Files {
				switch f.Name {
				case "source.mtc":
					src = string(f.Data)
				case "f.mir":
					want = string(f.Data)
				}
			}
			if src == "" || want == "" {
				t.Fatalf("fixture %s missing source.mtc or f.mir", name)
			}

			ebb := lowerFunc(t, src, "f")
			if got := ebb.String(); got != want {
				t.Errorf("MIR dump mismatch for %s:\ngot:\n%s\nwant:\n%s", name, got, want)
			}
		})
	}
}
