package translator

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/bnb-chain/evm-rwasm/core/rwasm"
)

// staticJumpTarget returns the target pc of the jump at t.pc, taken from the
// push that must immediately precede it.
func (t *Translator) staticJumpTarget() (uint64, error) {
	if !t.hasPrev || !OpCode(t.code[t.pcPrev]).IsPush() {
		return 0, t.errorf(t.pc, ErrStaticTargetRequired, "previous opcode is not a push")
	}
	prev := OpCode(t.code[t.pcPrev])
	n := uint64(prev.PushSize())
	if t.pc-t.pcPrev != n+1 {
		return 0, errors.AssertionFailedf("push at pc %d with %d byte immediate does not end at jump pc %d", t.pcPrev, n, t.pc)
	}
	imm := t.code[t.pcPrev+1 : t.pc]

	// Targets that do not fit in 64 bits cannot name a JUMPDEST.
	if len(imm) > 8 {
		for _, b := range imm[:len(imm)-8] {
			if b != 0 {
				return math.MaxUint64, nil
			}
		}
		imm = imm[len(imm)-8:]
	}
	var buf [8]byte
	copy(buf[8-len(imm):], imm)
	return binary.BigEndian.Uint64(buf[:]), nil
}

func lowerJump(t *Translator, op OpCode) error {
	pcTo, err := t.staticJumpTarget()
	if err != nil {
		return err
	}
	t.spDrop(1)
	site := t.out.OpBr(1)
	t.addRelocation(RelocJump, pcTo, site)
	return nil
}

func lowerJumpi(t *Translator, op OpCode) error {
	pcTo, err := t.staticJumpTarget()
	if err != nil {
		return err
	}
	t.spDrop(2)
	// the condition word now sits right at sp
	t.orLimbsAt(0)
	t.out.OpBrIfEqz(2)
	site := t.out.OpBr(1)
	t.addRelocation(RelocJumpI, pcTo, site)
	return nil
}

// lowerJumpdest has nothing to emit. The dispatcher already recorded the
// offset and charged the gas.
func lowerJumpdest(t *Translator, op OpCode) error {
	return nil
}

func lowerStop(t *Translator, op OpCode) error {
	t.emitExit(rwasm.ExitOk)
	return nil
}

func lowerInvalid(t *Translator, op OpCode) error {
	t.emitExit(rwasm.ExitInvalidOpcode)
	return nil
}

func lowerReturn(t *Translator, op OpCode) error {
	t.addExitSite(ExitReturn, t.out.OpBr(1))
	return nil
}

func lowerRevert(t *Translator, op OpCode) error {
	t.addExitSite(ExitRevert, t.out.OpBr(1))
	return nil
}

func lowerUnsupported(t *Translator, op OpCode) error {
	return t.errorf(t.pc, ErrUnsupportedOpcode, "%v", op)
}
