package translator

import (
	"github.com/bnb-chain/evm-rwasm/core/rwasm"
	"github.com/bnb-chain/evm-rwasm/params"
)

// The EVM operand stack is emulated in a byte addressed stack region. The
// stack pointer global holds the offset one past the top word; word k below
// the top starts at sp-32*(k+1). A word is four little endian i64 limbs,
// limb 0 being the least significant.

const (
	wordBytes = params.EVMWordBytes
	limbBytes = params.I64Bytes
	numLimbs  = params.WordLimbs

	localSP  = 0 // cached stack pointer
	localTmp = 1 // scratch limb
)

// spGet pushes the stack pointer onto the machine stack.
func (t *Translator) spGet() {
	t.out.OpGlobalGet(rwasm.SPGlobal)
}

// spGrow moves the stack pointer n words up.
func (t *Translator) spGrow(n int) {
	if n == 0 {
		return
	}
	t.spGet()
	t.out.OpI64Const(int64(n * wordBytes))
	t.out.OpI64Add()
	t.out.OpGlobalSet(rwasm.SPGlobal)
}

// spDrop moves the stack pointer n words down.
func (t *Translator) spDrop(n int) {
	if n == 0 {
		return
	}
	t.spGet()
	t.out.OpI64Const(int64(n * wordBytes))
	t.out.OpI64Sub()
	t.out.OpGlobalSet(rwasm.SPGlobal)
}

// spAdjust moves the stack pointer by delta words.
func (t *Translator) spAdjust(delta int) {
	if delta > 0 {
		t.spGrow(delta)
	} else {
		t.spDrop(-delta)
	}
}

// spCache copies the stack pointer into localSP.
func (t *Translator) spCache() {
	t.spGet()
	t.out.OpLocalSet(localSP)
}

// wordOffset is the byte offset, relative to sp, of limb of the word depth
// positions below the top (depth 0 is the top).
func wordOffset(depth, limb int) int64 {
	return int64(-wordBytes*(depth+1) + limbBytes*limb)
}

// orLimbsAt leaves the OR of the four limbs of the word at sp+off on the
// machine stack.
func (t *Translator) orLimbsAt(off int64) {
	for i := 0; i < numLimbs; i++ {
		t.spGet()
		t.out.OpI64Load(off + int64(i*limbBytes))
		if i > 0 {
			t.out.OpI64Or()
		}
	}
}
