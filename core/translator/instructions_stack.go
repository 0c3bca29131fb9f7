package translator

import (
	"github.com/holiman/uint256"
)

// lowerPush stores the immediate at sp limb by limb and grows the stack.
// A truncated immediate at the end of the code is padded with zeros on the
// right, like the EVM does.
func lowerPush(t *Translator, op OpCode) error {
	var value uint256.Int
	if n := op.PushSize(); n > 0 {
		imm := make([]byte, n)
		start := t.pc + 1
		if start < uint64(len(t.code)) {
			copy(imm, t.code[start:])
		}
		value.SetBytes(imm)
	}
	for i := 0; i < numLimbs; i++ {
		t.spGet()
		t.out.OpI64Const(int64(value[i]))
		t.out.OpI64Store(int64(i * limbBytes))
	}
	t.spGrow(1)
	return nil
}

func lowerPop(t *Translator, op OpCode) error {
	t.spDrop(1)
	return nil
}

// lowerDup copies the word n-1 positions below the top to sp.
func lowerDup(t *Translator, op OpCode) error {
	n := int(op-DUP1) + 1
	t.spCache()
	for i := 0; i < numLimbs; i++ {
		t.out.OpLocalGet(localSP)
		t.out.OpLocalGet(localSP)
		t.out.OpI64Load(wordOffset(n-1, i))
		t.out.OpI64Store(int64(i * limbBytes))
	}
	t.spGrow(1)
	return nil
}

// lowerSwap exchanges the top word with the word n positions below it.
func lowerSwap(t *Translator, op OpCode) error {
	n := int(op-SWAP1) + 1
	t.spCache()
	for i := 0; i < numLimbs; i++ {
		top, deep := wordOffset(0, i), wordOffset(n, i)

		t.out.OpLocalGet(localSP)
		t.out.OpI64Load(top)
		t.out.OpLocalSet(localTmp)

		t.out.OpLocalGet(localSP)
		t.out.OpLocalGet(localSP)
		t.out.OpI64Load(deep)
		t.out.OpI64Store(top)

		t.out.OpLocalGet(localSP)
		t.out.OpLocalGet(localTmp)
		t.out.OpI64Store(deep)
	}
	return nil
}
