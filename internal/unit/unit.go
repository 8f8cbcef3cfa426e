// Package unit implements the module builder and driver (spec.md §2
// steps 7–8, §6): compile_source's Go equivalent, producing a
// CompilationUnit that maps module name to a {function name → Ebb}
// bundle plus the shared type store.
//
// Grounded on funvibe-funxy/internal/pipeline/pipeline.go's
// Pipeline/Processor staging (generalised into this front-end's own
// parse → scope-build → typecheck → lower stages, see
// internal/pipeline/context.go) and directly on original_source/monty/
// driver.py's CompilationUnit, compile_source and
// ModuleBuilder.lower_into_mir.
package unit

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/funvibe/montyc/internal/config"
	"github.com/funvibe/montyc/internal/diagnostics"
	"github.com/funvibe/montyc/internal/lower"
	"github.com/funvibe/montyc/internal/mir"
	"github.com/funvibe/montyc/internal/parser"
	"github.com/funvibe/montyc/internal/pipeline"
	"github.com/funvibe/montyc/internal/semantic"
	"github.com/funvibe/montyc/internal/typecheck"
	"github.com/funvibe/montyc/internal/typesystem"
)

// ModuleBundle is the finalised {function name → Ebb} map for one module.
type ModuleBundle struct {
	Functions map[string]*mir.Ebb
}

// CompilationUnit is the driver's output (spec.md §6): a correlation id
// for log/diagnostic threading, the shared type store, and a map from
// module name to its finalised bundle.
type CompilationUnit struct {
	ID      uuid.UUID
	TypeCtx *typesystem.Store
	Modules map[string]*ModuleBundle
}

// GetFunction looks up a function item by "module.name" (spec.md §6).
func (u *CompilationUnit) GetFunction(qualifiedName string) (*mir.Ebb, bool) {
	var moduleName, funcName string
	for i, r := range qualifiedName {
		if r == '.' {
			moduleName, funcName = qualifiedName[:i], qualifiedName[i+1:]
			break
		}
	}
	bundle, ok := u.Modules[moduleName]
	if !ok {
		return nil, false
	}
	ebb, ok := bundle.Functions[funcName]
	return ebb, ok
}

// CompileSource is the driver entrypoint (spec.md §6):
// compile_source(input, module_name) → CompilationUnit. input may be a
// string or an io.Reader; any other shape is an input-shape error
// (spec.md §7.1), raised immediately and never collected.
func CompileSource(input interface{}, moduleName string) (*CompilationUnit, error) {
	return CompileSourceWithOptions(input, moduleName, config.Defaults())
}

// CompileSourceWithOptions is CompileSource with an explicit Options set
// (spec.md §6's driver generalised per SPEC_FULL.md §3's configuration
// addition), e.g. to run a strict "core spec.md only" build with
// EnableWhileLowering: false.
func CompileSourceWithOptions(input interface{}, moduleName string, opts config.Options) (*CompilationUnit, error) {
	src, err := readSource(input)
	if err != nil {
		return nil, err
	}
	if moduleName == "" {
		moduleName = "__main__"
	}

	store := typesystem.New()
	ctx := &pipeline.PipelineContext{
		ModuleName: moduleName,
		Source:     src,
		Options:    opts,
		Store:      store,
	}

	pl := pipeline.New(
		&parseProcessor{},
		&scopeProcessor{},
		&typecheckProcessor{},
		&lowerProcessor{},
	)
	ctx = pl.Run(ctx)

	if ctx.Err != nil {
		return nil, ctx.Err
	}
	if len(ctx.Diagnostics) > 0 {
		return nil, &diagnostics.CompilationException{Diagnostics: ctx.Diagnostics}
	}

	unit := &CompilationUnit{
		ID:      uuid.New(),
		TypeCtx: store,
		Modules: map[string]*ModuleBundle{
			moduleName: {Functions: ctx.Functions},
		},
	}
	return unit, nil
}

// readSource normalises input to source text, or returns an
// InputShapeError (spec.md §7.1) for anything else.
func readSource(input interface{}) (string, error) {
	switch v := input.(type) {
	case string:
		return v, nil
	case io.Reader:
		data, err := io.ReadAll(v)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", &diagnostics.InputShapeError{Message: fmt.Sprintf(
			"expected source_input to be a string or text stream, instead got %T", input)}
	}
}

// parseProcessor runs the surface syntax parser (out of scope as a
// core subsystem per spec.md §1, but required for an end-to-end
// driver — see SPEC_FULL.md §1).
type parseProcessor struct{}

func (*parseProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	p, err := parser.New(ctx.Source)
	if err != nil {
		ctx.Err = err
		return ctx
	}
	mod := p.ParseModule(ctx.ModuleName)
	if len(p.Errors) > 0 {
		ctx.Diagnostics = append(ctx.Diagnostics, p.Errors...)
		return ctx
	}
	ctx.Module = mod
	return ctx
}

// scopeProcessor builds the Item/Scope tree and collects validation
// diagnostics (spec.md §4.3, §7.2 — the one batching phase).
type scopeProcessor struct{}

func (*scopeProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Failed() {
		return ctx
	}
	builder := semantic.NewBuilder()
	scope, item := builder.BuildModule(ctx.Module)
	if builder.Diagnostics.HasErrors() {
		if err := builder.Diagnostics.Raise(); err != nil {
			ctx.Diagnostics = append(ctx.Diagnostics, err.(*diagnostics.CompilationException).Diagnostics...)
		}
		return ctx
	}
	ctx.Scope = scope
	ctx.ModuleItem = item
	return ctx
}

// typecheckProcessor resolves annotations, computes function
// signatures, and unifies inferred types against declared ones
// (spec.md §4.3–§4.5). Type errors raise immediately (spec.md §7.3).
type typecheckProcessor struct{}

func (*typecheckProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Failed() {
		return ctx
	}
	checker := typecheck.New(ctx.Store)
	if err := checker.CheckModule(ctx.Scope); err != nil {
		ctx.Err = err
		return ctx
	}
	return ctx
}

// lowerProcessor drives the MIR builder across every function item of
// the module, storing the resulting {name → Ebb} map (spec.md §2 step
// 7, the module builder).
type lowerProcessor struct{}

func (*lowerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Failed() {
		return ctx
	}
	checker := typecheck.New(ctx.Store)
	functions := make(map[string]*mir.Ebb)

	for _, item := range ctx.Scope.Items {
		if item.Function == nil {
			continue
		}
		fnDef := item.Function.Node
		info := ctx.Store.Index(item.Function.TypeId)
		outputType := info.Output

		b := lower.New(checker, item.Scope, ctx.Options.EnableWhileLowering)
		ebb, err := b.LowerFunctionBody(fnDef, outputType)
		if err != nil {
			ctx.Err = err
			return ctx
		}
		functions[item.Function.Name] = ebb
	}

	ctx.Functions = functions
	return ctx
}
