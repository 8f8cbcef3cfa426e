package mir

import (
	"testing"

	"github.com/funvibe/montyc/internal/typesystem"
)

func TestBlockInstrStringIntConst(t *testing.T) {
	instr := BlockInstr{Op: IntConst, Args: []interface{}{7, 64}, Ret: SSAValue(3)}
	want := "v3 = iconst.64 7"
	if got := instr.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestBlockInstrStringIAdd(t *testing.T) {
	instr := BlockInstr{Op: IAdd, Args: []interface{}{SSAValue(0), SSAValue(1)}, Ret: SSAValue(2)}
	want := "v2 = iadd v0 v1"
	if got := instr.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestBlockInstrStringReturn(t *testing.T) {
	instr := BlockInstr{Op: Return, Args: []interface{}{SSAValue(3)}}
	want := "return v3"
	if got := instr.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestBlockInstrStringBoolSeal(t *testing.T) {
	instr := BlockInstr{Op: BoolConst, Args: []interface{}{true, SSAValue(2)}}
	want := "bool_const v2"
	if got := instr.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestBlockInstrStringJumpAndBranch(t *testing.T) {
	jmp := BlockInstr{Op: Jump, Args: []interface{}{BlockId(2)}}
	if got, want := jmp.String(), "jump 2"; got != want {
		t.Errorf("jump String() = %q, want %q", got, want)
	}

	br := BlockInstr{Op: BranchIntCmp, Args: []interface{}{"eq", SSAValue(0), BlockId(1), BlockId(2)}}
	if got, want := br.String(), "branchintcmp eq v0 1 2"; got != want {
		t.Errorf("branchintcmp String() = %q, want %q", got, want)
	}
}

func TestFluidBlockEmitValueAllocatesDenseSSA(t *testing.T) {
	store := typesystem.New()
	fb := NewFluidBlock([]typesystem.TypeId{store.Primitives[typesystem.I64]}, store.Primitives[typesystem.I64])

	v0 := fb.EmitValue(IntConst, store.Primitives[typesystem.I64], 1, 64)
	v1 := fb.EmitValue(IntConst, store.Primitives[typesystem.I64], 2, 64)
	if v0 != 0 || v1 != 1 {
		t.Fatalf("expected dense SSA ids 0,1, got %d,%d", v0, v1)
	}

	v2 := fb.EmitValue(IAdd, store.Primitives[typesystem.I64], v0, v1)
	fb.EmitStmt(Return, v2)

	ebb := fb.Finalize()
	block0 := ebb.Blocks[0]
	if len(block0.Body) != 4 {
		t.Fatalf("expected 4 instructions in block0, got %d", len(block0.Body))
	}
	if block0.Body[3].Op != Return {
		t.Errorf("expected last instruction to be Return, got %v", block0.Body[3].Op)
	}
}

func TestFluidBlockTerminatedTracksLastInstruction(t *testing.T) {
	store := typesystem.New()
	fb := NewFluidBlock(nil, store.Primitives[typesystem.I64])
	if fb.Terminated(fb.Current()) {
		t.Fatal("fresh block should not be terminated")
	}
	fb.EmitStmt(Return, fb.EmitValue(IntConst, store.Primitives[typesystem.I64], 1, 64))
	if !fb.Terminated(fb.Current()) {
		t.Fatal("block ending in Return should be terminated")
	}
}

func TestFluidBlockCreateBlockAndWithBlock(t *testing.T) {
	store := typesystem.New()
	fb := NewFluidBlock(nil, store.Primitives[typesystem.I64])
	entry := fb.Current()
	other := fb.CreateBlock()
	if other == entry {
		t.Fatal("CreateBlock should allocate a distinct block id")
	}

	fb.WithBlock(other, func() {
		fb.EmitStmt(NoOp)
	})
	if fb.Current() != entry {
		t.Errorf("WithBlock should restore the cursor, got %d want %d", fb.Current(), entry)
	}

	ebb := fb.Finalize()
	if len(ebb.Blocks[other].Body) != 1 || ebb.Blocks[other].Body[0].Op != NoOp {
		t.Errorf("expected NoOp emitted into block %d", other)
	}
}

func TestEbbStringRendersBlocksInOrder(t *testing.T) {
	store := typesystem.New()
	fb := NewFluidBlock(nil, store.Primitives[typesystem.I64])
	v := fb.EmitValue(IntConst, store.Primitives[typesystem.I64], 7, 64)
	fb.EmitStmt(Return, v)

	ebb := fb.Finalize()
	want := "block0():\n\tv0 = iconst.64 7\n\treturn v0\n"
	if got := ebb.String(); got != want {
		t.Errorf("Ebb.String() = %q, want %q", got, want)
	}
}
