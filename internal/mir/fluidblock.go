package mir

import "github.com/funvibe/montyc/internal/typesystem"

// FluidBlock is the mutable builder state for an Ebb under construction
// (spec.md §3): a cursor (current BlockId) plus an SSAValue→TypeId side
// table used for typecheck assertions during lowering.
//
// Grounded directly on original_source/monty/mir/ebb.py's FluidBlock
// (create_block/with_block/_emit/switch_to_block/finalize).
type FluidBlock struct {
	blocks     map[BlockId]*BasicBlock
	order      []BlockId
	current    BlockId
	nextSSA    SSAValue
	ssaTypes   map[SSAValue]typesystem.TypeId
	variables  map[VariableId]typesystem.TypeId
	parameters []typesystem.TypeId
	returnType typesystem.TypeId
}

// NewFluidBlock creates a builder with its initial block already open
// (block 0), ready to receive instructions.
func NewFluidBlock(parameters []typesystem.TypeId, returnType typesystem.TypeId) *FluidBlock {
	fb := &FluidBlock{
		blocks:     make(map[BlockId]*BasicBlock),
		ssaTypes:   make(map[SSAValue]typesystem.TypeId),
		variables:  make(map[VariableId]typesystem.TypeId),
		parameters: parameters,
		returnType: returnType,
	}
	fb.current = fb.CreateBlock()
	fb.SwitchToBlock(fb.current)
	return fb
}

// CreateBlock allocates a new, empty block and returns its id without
// switching the cursor to it.
func (fb *FluidBlock) CreateBlock() BlockId {
	id := BlockId(len(fb.order))
	fb.blocks[id] = &BasicBlock{Parameters: make(map[SSAValue]typesystem.TypeId)}
	fb.order = append(fb.order, id)
	return id
}

// SwitchToBlock moves the cursor to id; subsequent Emit calls append there.
func (fb *FluidBlock) SwitchToBlock(id BlockId) { fb.current = id }

// Current returns the cursor's current BlockId.
func (fb *FluidBlock) Current() BlockId { return fb.current }

// WithBlock runs fn with the cursor switched to id, then restores the
// previous cursor — the builder-API analogue of the original's
// `with_block` context manager.
func (fb *FluidBlock) WithBlock(id BlockId, fn func()) {
	prev := fb.current
	fb.SwitchToBlock(id)
	fn()
	fb.SwitchToBlock(prev)
}

// freshSSA allocates the next dense SSA slot and records its type.
func (fb *FluidBlock) freshSSA(t typesystem.TypeId) SSAValue {
	v := fb.nextSSA
	fb.nextSSA++
	fb.ssaTypes[v] = t
	return v
}

// TypeOf returns the recorded type of an SSA slot, for typecheck
// assertions during lowering.
func (fb *FluidBlock) TypeOf(v SSAValue) (typesystem.TypeId, bool) {
	t, ok := fb.ssaTypes[v]
	return t, ok
}

// emit appends instr to the current block.
func (fb *FluidBlock) emit(instr BlockInstr) {
	b := fb.blocks[fb.current]
	b.Body = append(b.Body, instr)
}

// EmitValue emits an instruction that defines a fresh SSA slot of type
// t and returns that slot.
func (fb *FluidBlock) EmitValue(op Op, t typesystem.TypeId, args ...interface{}) SSAValue {
	v := fb.freshSSA(t)
	fb.emit(BlockInstr{Op: op, Args: args, Ret: v})
	return v
}

// EmitBoolSeal emits a BoolConst instruction that re-marks an existing
// SSA slot as boolean in place, rather than defining a new one (spec.md
// §4.7's Compare handling: "emit a BoolConst marking the last SSA slot
// as boolean"), and records its type as boolType.
func (fb *FluidBlock) EmitBoolSeal(v SSAValue, boolType typesystem.TypeId) {
	fb.ssaTypes[v] = boolType
	fb.emit(BlockInstr{Op: BoolConst, Args: []interface{}{true, v}, Ret: nil})
}

// EmitAssign emits Assign(value) → name, binding name's type in the
// variables table; name is the instruction's Ret.
func (fb *FluidBlock) EmitAssign(name VariableId, value SSAValue, t typesystem.TypeId) {
	fb.variables[name] = t
	fb.emit(BlockInstr{Op: Assign, Args: []interface{}{value}, Ret: name})
}

// EmitStmt emits a statement instruction with no definition (Jump,
// BranchIntCmp, Return, NoOp).
func (fb *FluidBlock) EmitStmt(op Op, args ...interface{}) {
	fb.emit(BlockInstr{Op: op, Args: args, Ret: nil})
}

// BindVariable records name's type in the Variables table without
// emitting an instruction — used to seed a function's parameters as
// already-bound variables before the body is lowered.
func (fb *FluidBlock) BindVariable(name VariableId, t typesystem.TypeId) {
	fb.variables[name] = t
}

// Terminated reports whether block id's last instruction is a
// terminator (Jump, BranchIntCmp or Return), so callers can avoid
// appending a second one.
func (fb *FluidBlock) Terminated(id BlockId) bool {
	b := fb.blocks[id]
	if len(b.Body) == 0 {
		return false
	}
	return b.Body[len(b.Body)-1].Op.IsTerminator()
}

// VariableType returns the recorded type of a bound variable.
func (fb *FluidBlock) VariableType(name VariableId) (typesystem.TypeId, bool) {
	t, ok := fb.variables[name]
	return t, ok
}

// Finalize snapshots the builder into an immutable Ebb (spec.md §4.7).
// Every non-terminator block must end with exactly one terminator; this
// is upheld by construction in internal/lower, not re-validated here.
func (fb *FluidBlock) Finalize() *Ebb {
	blocks := make(map[BlockId]BasicBlock, len(fb.blocks))
	for id, b := range fb.blocks {
		blocks[id] = *b
	}
	return &Ebb{
		Parameters:  fb.parameters,
		ReturnValue: fb.returnType,
		Variables:   fb.variables,
		Blocks:      blocks,
	}
}
