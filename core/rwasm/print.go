package rwasm

import (
	"fmt"
	"strings"
)

// CallNamer resolves a call immediate to a readable name.
type CallNamer func(fn int64) string

// String renders the set as one instruction per line.
func (is *InstructionSet) String() string {
	return is.Disassemble(nil)
}

// Disassemble renders the set, resolving call targets with namer when given.
func (is *InstructionSet) Disassemble(namer CallNamer) string {
	var sb strings.Builder
	width := len(fmt.Sprint(len(is.instrs)))
	for i, instr := range is.instrs {
		fmt.Fprintf(&sb, "%*d: %s", width, i, instr.Op)
		switch {
		case instr.Op.IsBranch():
			fmt.Fprintf(&sb, " %+d (-> %d)", instr.Imm, i+int(instr.Imm))
		case instr.Op == OpCall && namer != nil:
			fmt.Fprintf(&sb, " %s", namer(instr.Imm))
		case instr.Op.HasImmediate():
			fmt.Fprintf(&sb, " %d", instr.Imm)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
