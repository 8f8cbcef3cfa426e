// Package mir implements the Extended Basic Block (EBB) mid-level IR
// data model (spec.md §3) and its closed opcode set (spec.md §4.6): a
// three-address SSA form with typed blocks, plus the textual
// disassembly format tests assert against (spec.md §6).
//
// Grounded on funvibe-funxy/internal/vm/{chunk,opcodes,disasm}.go's
// enum-opcode-plus-textual-disassembly idiom (an Opcode enum, a
// Disassemble function walking a Chunk's instruction stream) and
// directly on original_source/monty/mir/{instr,ebb}.py for the exact
// instruction set and BlockInstr.__str__ textual form. Note: the
// original's FluidBlock.int_sub emits InstrOp.IAdd (a copy-paste bug);
// this implementation emits ISub, since spec.md's own opcode table
// (§4.6) and end-to-end scenarios require correct subtraction.
package mir

import (
	"fmt"
	"sort"
	"strings"

	"github.com/funvibe/montyc/internal/typesystem"
)

// SSAValue is a dense, 0-based, per-function, monotonically increasing
// value slot index (spec.md §3).
type SSAValue int

func (v SSAValue) String() string { return fmt.Sprintf("v%d", int(v)) }

// VariableId is a user-visible variable name within a function's own
// namespace, distinct from SSA (spec.md §3).
type VariableId string

// BlockId is a dense, 0-based, per-function block index (spec.md §3).
type BlockId int

// Op is the closed MIR opcode enumeration (spec.md §4.6).
type Op int

const (
	IntConst Op = iota
	BoolConst
	StrConst
	IAdd
	ISub
	IntCmp
	BInt
	UseVar
	Assign
	Jump
	BranchIntCmp
	Return
	NoOp
	Call
)

func (o Op) String() string {
	switch o {
	case IntConst:
		return "iconst"
	case BoolConst:
		return "bool_const"
	case StrConst:
		return "sconst"
	case IAdd:
		return "iadd"
	case ISub:
		return "isub"
	case IntCmp:
		return "intcmp"
	case BInt:
		return "bint"
	case UseVar:
		return "usevar"
	case Assign:
		return "assign"
	case Jump:
		return "jump"
	case BranchIntCmp:
		return "branchintcmp"
	case Return:
		return "return"
	case NoOp:
		return "noop"
	case Call:
		return "call"
	default:
		return "?"
	}
}

// BlockInstr is one instruction: an opcode, its ordered operand list,
// and an optional definition (spec.md §3). Ret is one of: SSAValue (an
// SSA definition), VariableId (a named-variable definition, Assign
// only), or nil (a pure statement — Jump/BranchIntCmp/Return/NoOp, and
// the BoolConst seal that re-marks an existing slot).
type BlockInstr struct {
	Op   Op
	Args []interface{}
	Ret  interface{}
}

// String renders an instruction per spec.md §6's textual dump format,
// e.g. "v3 = iconst.64 7", "v2 = iadd v0 v1", "return v3".
func (i BlockInstr) String() string {
	switch i.Op {
	case IntConst:
		bits := i.Args[1]
		return fmt.Sprintf("%s = iconst.%v %v", retStr(i.Ret), bits, i.Args[0])
	case BoolConst:
		isSSA := i.Args[0].(bool)
		if isSSA {
			return fmt.Sprintf("bool_const %v", i.Args[1])
		}
		return fmt.Sprintf("%s = bool_const %v", retStr(i.Ret), i.Args[1])
	case StrConst:
		return fmt.Sprintf("%s = sconst %v", retStr(i.Ret), i.Args[0])
	case IAdd:
		return fmt.Sprintf("%s = iadd %v %v", retStr(i.Ret), i.Args[0], i.Args[1])
	case ISub:
		return fmt.Sprintf("%s = isub %v %v", retStr(i.Ret), i.Args[0], i.Args[1])
	case IntCmp:
		return fmt.Sprintf("%s = intcmp %v %v %v", retStr(i.Ret), i.Args[0], i.Args[1], i.Args[2])
	case BInt:
		return fmt.Sprintf("%s = bint.%v %v", retStr(i.Ret), i.Args[0], i.Args[1])
	case UseVar:
		return fmt.Sprintf("%s = usevar %v", retStr(i.Ret), i.Args[0])
	case Assign:
		return fmt.Sprintf("%v = assign %v", i.Ret, i.Args[0])
	case Jump:
		return fmt.Sprintf("jump %v", i.Args[0])
	case BranchIntCmp:
		return fmt.Sprintf("branchintcmp %v %v %v %v", i.Args[0], i.Args[1], i.Args[2], i.Args[3])
	case Return:
		return fmt.Sprintf("return %v", i.Args[0])
	case NoOp:
		return "noop"
	case Call:
		return fmt.Sprintf("%s = call %v", retStr(i.Ret), i.Args[0])
	default:
		return "?"
	}
}

func retStr(ret interface{}) string {
	if ret == nil {
		return "_"
	}
	return fmt.Sprintf("%v", ret)
}

// IsTerminator reports whether op ends a block (spec.md §3's exactly-
// one-terminator-per-block invariant).
func (o Op) IsTerminator() bool {
	return o == Jump || o == BranchIntCmp || o == Return
}

// BasicBlock is an ordered instruction sequence plus the TypeIds of any
// SSA parameters it opens with (spec.md §3).
type BasicBlock struct {
	Body       []BlockInstr
	Parameters map[SSAValue]typesystem.TypeId
}

// Ebb is a finalised, immutable Extended Basic Block set (spec.md §3).
type Ebb struct {
	Parameters  []typesystem.TypeId
	ReturnValue typesystem.TypeId
	Variables   map[VariableId]typesystem.TypeId
	Blocks      map[BlockId]BasicBlock
}

// String renders the whole Ebb per spec.md §6's deterministic textual
// dump: blocks in numeric order, one indented instruction per line.
func (e *Ebb) String() string {
	ids := make([]BlockId, 0, len(e.Blocks))
	for id := range e.Blocks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var sb strings.Builder
	for _, id := range ids {
		block := e.Blocks[id]
		fmt.Fprintf(&sb, "block%d%s:\n", id, paramsStr(block.Parameters))
		for _, instr := range block.Body {
			sb.WriteString("\t")
			sb.WriteString(instr.String())
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func paramsStr(params map[SSAValue]typesystem.TypeId) string {
	if len(params) == 0 {
		return "()"
	}
	ids := make([]SSAValue, 0, len(params))
	for v := range params {
		ids = append(ids, v)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	parts := make([]string, len(ids))
	for i, v := range ids {
		parts[i] = v.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
