package pipeline

import (
	"github.com/funvibe/montyc/internal/ast"
	"github.com/funvibe/montyc/internal/config"
	"github.com/funvibe/montyc/internal/diagnostics"
	"github.com/funvibe/montyc/internal/mir"
	"github.com/funvibe/montyc/internal/semantic"
	"github.com/funvibe/montyc/internal/typesystem"
)

// PipelineContext threads compiler state through the staged pipeline
// (spec.md §2: parse → scope-build → typecheck → lower → module-build).
// Referenced throughout funvibe-funxy's pipeline package but absent
// from the retrieved pack (see DESIGN.md); authored here from the
// Pipeline/Processor call shape and generalised to this front-end's
// stages.
type PipelineContext struct {
	// Input
	ModuleName string
	Source     string
	Options    config.Options

	// Shared state across every stage.
	Store *typesystem.Store

	// Populated by the parse stage.
	Module *ast.Module

	// Populated by the scope-build stage.
	Scope      *semantic.Scope
	ModuleItem *semantic.Item

	// Populated by the lower stage.
	Functions map[string]*mir.Ebb

	// Diagnostics accumulated by validation (spec.md §7.2); Err carries
	// the first hard error from any non-batching phase (spec.md §7.1,
	// §7.3, §7.4).
	Diagnostics []diagnostics.Diagnostic
	Err         error
}

// Failed reports whether this context has already hit an unrecoverable
// error — later stages should no-op once this is true.
func (c *PipelineContext) Failed() bool {
	return c.Err != nil || len(c.Diagnostics) > 0
}

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

// New builds a Pipeline out of processors, run in order.
func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. Stages are still invoked in order after a
// failure so later stages can see a fully threaded context, but each
// stage must check ctx.Failed() and no-op rather than compound errors —
// validation is the only phase that batches (spec.md §7).
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}
