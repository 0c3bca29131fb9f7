package rwasm

import (
	"github.com/cockroachdb/errors"
)

// Memory layout shared by translated code and the executor.
const (
	// SPGlobal is the global slot holding the operand stack pointer, a byte
	// offset into the stack region pointing one past the top word.
	SPGlobal = 0

	// NumLocals is the number of scratch locals available to translated code.
	NumLocals = 4
)

// ExitCode is the value a translated program hands to OpReturn.
type ExitCode int64

const (
	ExitOk ExitCode = iota
	ExitReturn
	ExitRevert
	ExitInvalidOpcode
	ExitOpcodeNotFound
)

func (c ExitCode) String() string {
	switch c {
	case ExitOk:
		return "stop"
	case ExitReturn:
		return "return"
	case ExitRevert:
		return "revert"
	case ExitInvalidOpcode:
		return "invalid opcode"
	case ExitOpcodeNotFound:
		return "opcode not found"
	}
	return "unknown exit"
}

var ErrNotBranch = errors.New("instruction is not a branch")

// Instruction is a single target instruction. Branch immediates are
// displacements relative to the branch itself.
type Instruction struct {
	Op  Opcode
	Imm int64
}

// InstructionSet is an append-only instruction sequence. Apart from
// PatchBranch no emitted instruction is ever moved or rewritten.
type InstructionSet struct {
	instrs []Instruction
}

// NewInstructionSet creates an empty set with room for hint instructions.
func NewInstructionSet(hint int) *InstructionSet {
	return &InstructionSet{instrs: make([]Instruction, 0, hint)}
}

// Len returns the number of emitted instructions, which is also the offset
// of the next one.
func (is *InstructionSet) Len() int { return len(is.instrs) }

// Get returns the instruction at offset i.
func (is *InstructionSet) Get(i int) Instruction { return is.instrs[i] }

// Instructions exposes the underlying sequence. Callers must not modify it.
func (is *InstructionSet) Instructions() []Instruction { return is.instrs }

// Push appends an instruction and returns its offset.
func (is *InstructionSet) Push(op Opcode, imm int64) int {
	is.instrs = append(is.instrs, Instruction{Op: op, Imm: imm})
	return len(is.instrs) - 1
}

// PatchBranch points the branch at site to the absolute offset target.
func (is *InstructionSet) PatchBranch(site, target int) error {
	if site < 0 || site >= len(is.instrs) {
		return errors.Newf("patch site %d out of range [0,%d)", site, len(is.instrs))
	}
	if target < 0 || target > len(is.instrs) {
		return errors.Newf("branch target %d out of range [0,%d]", target, len(is.instrs))
	}
	if !is.instrs[site].Op.IsBranch() {
		return errors.Wrapf(ErrNotBranch, "site %d holds %v", site, is.instrs[site].Op)
	}
	is.instrs[site].Imm = int64(target - site)
	return nil
}

// BranchTarget returns the absolute target of the branch at site.
func (is *InstructionSet) BranchTarget(site int) int {
	return site + int(is.instrs[site].Imm)
}

func (is *InstructionSet) OpUnreachable() int         { return is.Push(OpUnreachable, 0) }
func (is *InstructionSet) OpNop() int                 { return is.Push(OpNop, 0) }
func (is *InstructionSet) OpI64Const(v int64) int     { return is.Push(OpI64Const, v) }
func (is *InstructionSet) OpDrop() int                { return is.Push(OpDrop, 0) }
func (is *InstructionSet) OpLocalGet(idx int) int     { return is.Push(OpLocalGet, int64(idx)) }
func (is *InstructionSet) OpLocalSet(idx int) int     { return is.Push(OpLocalSet, int64(idx)) }
func (is *InstructionSet) OpLocalTee(idx int) int     { return is.Push(OpLocalTee, int64(idx)) }
func (is *InstructionSet) OpGlobalGet(idx int) int    { return is.Push(OpGlobalGet, int64(idx)) }
func (is *InstructionSet) OpGlobalSet(idx int) int    { return is.Push(OpGlobalSet, int64(idx)) }
func (is *InstructionSet) OpI64Add() int              { return is.Push(OpI64Add, 0) }
func (is *InstructionSet) OpI64Sub() int              { return is.Push(OpI64Sub, 0) }
func (is *InstructionSet) OpI64And() int              { return is.Push(OpI64And, 0) }
func (is *InstructionSet) OpI64Or() int               { return is.Push(OpI64Or, 0) }
func (is *InstructionSet) OpI64Eqz() int              { return is.Push(OpI64Eqz, 0) }
func (is *InstructionSet) OpI64Load(off int64) int    { return is.Push(OpI64Load, off) }
func (is *InstructionSet) OpI64Store(off int64) int   { return is.Push(OpI64Store, off) }
func (is *InstructionSet) OpBr(rel int64) int         { return is.Push(OpBr, rel) }
func (is *InstructionSet) OpBrIfEqz(rel int64) int    { return is.Push(OpBrIfEqz, rel) }
func (is *InstructionSet) OpBrIfNez(rel int64) int    { return is.Push(OpBrIfNez, rel) }
func (is *InstructionSet) OpCall(fn int64) int        { return is.Push(OpCall, fn) }
func (is *InstructionSet) OpConsumeFuel(n uint64) int { return is.Push(OpConsumeFuel, int64(n)) }
func (is *InstructionSet) OpReturn() int              { return is.Push(OpReturn, 0) }
