package translator

// lowerBuiltin hands the opcode to the runtime builtin of the same number.
// The builtin reads its operands below sp and writes its result at
// sp-32*pops; the stack pointer is adjusted here.
func lowerBuiltin(t *Translator, op OpCode) error {
	operation := t.table[op]
	t.out.OpCall(int64(op))
	t.spAdjust(operation.pushes - operation.pops)
	return nil
}
