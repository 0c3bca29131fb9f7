package translator

import (
	"github.com/bnb-chain/evm-rwasm/core/rwasm"
)

// scan walks the bytecode once, lowering every opcode in order.
func (t *Translator) scan() error {
	code := t.code
	for pc := uint64(0); pc < uint64(len(code)); {
		op := OpCode(code[pc])
		t.pc = pc

		operation := t.table[op]
		if operation == nil {
			t.opcodeNotFound(op)
			return nil
		}
		if op == JUMPDEST {
			t.jumpDests[pc] = t.out.Len()
		}
		t.chargeGas(operation.constantGas)
		if err := operation.lower(t, op); err != nil {
			return err
		}

		t.pcPrev, t.hasPrev = pc, true
		pc += 1 + uint64(op.PushSize())
	}
	return nil
}

// opcodeNotFound ends the scan at an undefined opcode. The program exits
// there with the not-found code.
func (t *Translator) opcodeNotFound(op OpCode) {
	TranslatorDebugInfo("Undefined opcode", "pc", t.pc, "op", op)
	t.status = StatusOpcodeNotFound
	t.notFoundSite = t.out.Len()
	t.emitExit(rwasm.ExitOpcodeNotFound)
}
