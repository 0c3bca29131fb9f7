package translator

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnb-chain/evm-rwasm/core/rwasm"
	"github.com/bnb-chain/evm-rwasm/params"
)

func code(ops ...interface{}) []byte {
	var out []byte
	for _, op := range ops {
		switch v := op.(type) {
		case OpCode:
			out = append(out, byte(v))
		case int:
			out = append(out, byte(v))
		case []byte:
			out = append(out, v...)
		}
	}
	return out
}

func mustTranslate(t *testing.T, bytecode []byte) *Result {
	t.Helper()
	res, err := Translate(bytecode, nil)
	require.NoError(t, err)
	return res
}

func TestStaticGas(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		gas  uint64
	}{
		{"empty", nil, 0},
		{"stop", code(STOP), 0},
		{"jumpdest", code(JUMPDEST), 1},
		{"jump", code(PUSH1, 3, JUMP, JUMPDEST), 3 + 8 + 1},
		{"jumpi", code(PUSH1, 0, PUSH1, 6, JUMPI, STOP, JUMPDEST), 3 + 3 + 10 + 0 + 1},
		{"return", code(PUSH0, PUSH0, RETURN), 2 + 2},
		{"revert", code(PUSH0, PUSH0, REVERT), 2 + 2},
		{"arith", code(PUSH1, 1, PUSH1, 2, ADD, POP), 3 + 3 + 3 + 2},
		{"log2", code(PUSH0, PUSH0, PUSH0, PUSH0, LOG2), 4*2 + 3*375},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustTranslate(t, tt.code)
			assert.Equal(t, tt.gas, res.GasUsed)
			assert.Equal(t, StatusOk, res.Status)
		})
	}
}

func TestGasIsMetered(t *testing.T) {
	res := mustTranslate(t, code(PUSH1, 3, JUMP, JUMPDEST))
	var fuel uint64
	for _, in := range res.Instructions.Instructions() {
		if in.Op == rwasm.OpConsumeFuel {
			fuel += uint64(in.Imm)
		}
	}
	assert.Equal(t, res.GasUsed, fuel)
}

func TestJumpDestMap(t *testing.T) {
	res := mustTranslate(t, code(JUMPDEST, PUSH1, 0, JUMP, JUMPDEST, STOP))
	require.Len(t, res.JumpDests, 2)
	assert.Equal(t, 0, res.JumpDests[0])

	// a JUMPDEST offset points at its fuel charge
	off, ok := res.JumpDests[4]
	require.True(t, ok)
	in := res.Instructions.Get(off)
	assert.Equal(t, rwasm.OpConsumeFuel, in.Op)
	assert.Equal(t, int64(1), in.Imm)
}

func TestPushImmediatesSkipped(t *testing.T) {
	// 0x5b inside push data is not a jump destination
	res := mustTranslate(t, code(PUSH1, JUMPDEST, STOP))
	assert.Empty(t, res.JumpDests)

	for n := 0; n <= 32; n++ {
		op := PUSH0 + OpCode(n)
		imm := make([]byte, n)
		for i := range imm {
			imm[i] = byte(JUMP)
		}
		res := mustTranslate(t, code(op, imm, JUMPDEST))
		assert.Equal(t, map[uint64]int{uint64(n + 1): res.JumpDests[uint64(n+1)]}, res.JumpDests, "PUSH%d", n)
	}
}

func TestTruncatedPush(t *testing.T) {
	res := mustTranslate(t, code(PUSH3, 1))
	assert.Equal(t, StatusOk, res.Status)
	assert.Equal(t, uint64(3), res.GasUsed)

	// the immediate is right padded: 0x010000
	var stored []int64
	for _, in := range res.Instructions.Instructions() {
		if in.Op == rwasm.OpI64Const {
			stored = append(stored, in.Imm)
		}
	}
	require.GreaterOrEqual(t, len(stored), 4)
	assert.Equal(t, []int64{0x010000, 0, 0, 0}, stored[:4])
}

func TestRelocationsPatched(t *testing.T) {
	res := mustTranslate(t, code(
		JUMPDEST,
		PUSH1, 1, PUSH1, 0, JUMPI,
		PUSH1, 11, JUMP,
		STOP, STOP,
		JUMPDEST, PUSH1, 0, JUMP,
	))
	require.Len(t, res.Relocations, 3)
	assert.Equal(t, RelocJumpI, res.Relocations[0].Kind)
	assert.Equal(t, uint64(5), res.Relocations[0].PCFrom)
	assert.Equal(t, RelocJump, res.Relocations[1].Kind)
	for _, r := range res.Relocations {
		in := res.Instructions.Get(r.Site)
		assert.Equal(t, rwasm.OpBr, in.Op)
		assert.Equal(t, res.JumpDests[r.PCTo], res.Instructions.BranchTarget(r.Site))
	}
	// backward jump
	assert.Less(t, res.Instructions.Get(res.Relocations[2].Site).Imm, int64(0))
}

func TestJumpiSkipsOnZero(t *testing.T) {
	res := mustTranslate(t, code(PUSH1, 0, PUSH1, 6, JUMPI, STOP, JUMPDEST))
	site := res.Relocations[0].Site
	prev := res.Instructions.Get(site - 1)
	assert.Equal(t, rwasm.OpBrIfEqz, prev.Op)
	assert.Equal(t, int64(2), prev.Imm)
}

func TestUnresolvedJumpTarget(t *testing.T) {
	for name, bytecode := range map[string][]byte{
		"missing":      code(PUSH1, 7, JUMP, STOP),
		"not jumpdest": code(PUSH1, 0, JUMP),
		"in push data": code(PUSH1, 4, JUMP, PUSH1, JUMPDEST),
		"above 64 bit": code(PUSH9, 1, 0, 0, 0, 0, 0, 0, 0, 0, JUMP, JUMPDEST),
		"jumpi":        code(PUSH1, 1, PUSH1, 9, JUMPI),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Translate(bytecode, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnresolvedJumpTarget), "%v", err)
		})
	}
}

func TestTranslationErrorLocation(t *testing.T) {
	_, err := Translate(code(PUSH1, 7, JUMP, STOP), nil)
	var terr *TranslationError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, uint64(2), terr.PC)
	assert.Equal(t, JUMP, terr.Op)
}

func TestStaticTargetRequired(t *testing.T) {
	for name, bytecode := range map[string][]byte{
		"first":    code(JUMP),
		"after op": code(PUSH1, 3, DUP1, JUMP, JUMPDEST),
		"jumpi":    code(JUMPDEST, JUMPI),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Translate(bytecode, nil)
			assert.True(t, errors.Is(err, ErrStaticTargetRequired), "%v", err)
		})
	}
}

func TestUnsupportedOpcodes(t *testing.T) {
	for _, op := range []OpCode{PC, TLOAD, TSTORE, SELFDESTRUCT} {
		t.Run(op.String(), func(t *testing.T) {
			_, err := Translate(code(PUSH0, PUSH0, op), nil)
			assert.True(t, errors.Is(err, ErrUnsupportedOpcode), "%v", err)
		})
	}
}

func TestOpcodeNotFound(t *testing.T) {
	res := mustTranslate(t, code(PUSH1, 1, 0x0c, JUMPDEST, STOP))
	assert.Equal(t, StatusOpcodeNotFound, res.Status)
	assert.Equal(t, uint64(2), res.StopPC)
	assert.Empty(t, res.JumpDests, "scan stops at the undefined opcode")

	n := res.Instructions.Len()
	assert.Equal(t, rwasm.Instruction{Op: rwasm.OpI64Const, Imm: int64(rwasm.ExitOpcodeNotFound)}, res.Instructions.Get(n-2))
	assert.Equal(t, rwasm.OpReturn, res.Instructions.Get(n-1).Op)
}

func TestJumpPastOpcodeNotFound(t *testing.T) {
	res := mustTranslate(t, code(PUSH1, 5, JUMP, 0x0c, STOP, JUMPDEST))
	require.Len(t, res.Relocations, 1)
	target := res.Instructions.BranchTarget(res.Relocations[0].Site)
	assert.Equal(t, rwasm.Instruction{Op: rwasm.OpI64Const, Imm: int64(rwasm.ExitOpcodeNotFound)}, res.Instructions.Get(target))

	// a JUMPDEST byte inside push data of the tail is not a destination
	res = mustTranslate(t, code(PUSH1, 6, JUMP, 0x0c, PUSH1, JUMPDEST, JUMPDEST))
	target = res.Instructions.BranchTarget(res.Relocations[0].Site)
	assert.Equal(t, rwasm.Instruction{Op: rwasm.OpI64Const, Imm: int64(rwasm.ExitOpcodeNotFound)}, res.Instructions.Get(target))

	for name, bytecode := range map[string][]byte{
		"backwards":    code(PUSH1, 1, JUMP, 0x0c),
		"past end":     code(PUSH1, 0xff, JUMP, 0x0c),
		"not jumpdest": code(PUSH1, 4, JUMP, 0x0c, STOP, JUMPDEST),
		"push data":    code(PUSH1, 5, JUMP, 0x0c, PUSH1, JUMPDEST, JUMPDEST),
		"undefined op": code(PUSH1, 3, JUMP, 0x0c),
	} {
		_, err := Translate(bytecode, nil)
		assert.True(t, errors.Is(err, ErrUnresolvedJumpTarget), name)
	}
}

func TestTranslationDeterministic(t *testing.T) {
	bytecode := code(
		PUSH1, 0, CALLDATALOAD, PUSH1, 11, JUMPI,
		PUSH1, 1, PUSH1, 0, REVERT,
		JUMPDEST, PUSH1, 32, PUSH1, 0, RETURN,
	)
	a, b := mustTranslate(t, bytecode), mustTranslate(t, bytecode)
	assert.Equal(t, a, b)
	assert.Equal(t, rwasm.Encode(a.Instructions), rwasm.Encode(b.Instructions))
	assert.NotEmpty(t, a.Relocations)
	assert.Contains(t, a.JumpDests, uint64(11))
}

func TestExitSubroutineShared(t *testing.T) {
	res := mustTranslate(t, code(PUSH0, PUSH0, RETURN, PUSH0, PUSH0, RETURN, PUSH0, PUSH0, REVERT))
	var calls []int64
	for _, in := range res.Instructions.Instructions() {
		if in.Op == rwasm.OpCall {
			calls = append(calls, in.Imm)
		}
	}
	assert.Equal(t, []int64{int64(RETURN), int64(REVERT)}, calls)

	var targets []int
	for i, in := range res.Instructions.Instructions() {
		if in.Op == rwasm.OpBr {
			targets = append(targets, res.Instructions.BranchTarget(i))
		}
	}
	require.Len(t, targets, 3)
	assert.Equal(t, targets[0], targets[1])
	assert.NotEqual(t, targets[0], targets[2])
	assert.Equal(t, rwasm.OpCall, res.Instructions.Get(targets[0]).Op)
}

func TestCodeSizeLimit(t *testing.T) {
	cfg := params.DefaultConfig.Copy()
	cfg.MaxCodeSize = 4
	host := NewHost(cfg, nil)
	_, err := Translate(make([]byte, 5), host)
	assert.True(t, errors.Is(err, ErrCodeSizeLimit))
	_, err = Translate(make([]byte, 4), host)
	assert.NoError(t, err)
}

func TestTranslatorSingleUse(t *testing.T) {
	tr := NewTranslator(code(STOP), nil)
	_, err := tr.Translate()
	require.NoError(t, err)
	_, err = tr.Translate()
	assert.Error(t, err)
}

func TestCustomGasSchedule(t *testing.T) {
	cfg := params.DefaultConfig.Copy()
	cfg.Gas.JumpDest = 7
	res, err := Translate(code(JUMPDEST, JUMPDEST), NewHost(cfg, nil))
	require.NoError(t, err)
	assert.Equal(t, uint64(14), res.GasUsed)

	// the default table is not affected
	assert.Equal(t, uint64(1), mustTranslate(t, code(JUMPDEST)).GasUsed)
}

type chainID uint64

func (c chainID) ChainID() uint64 { return uint64(c) }

func TestHostConfig(t *testing.T) {
	h := NewHost(nil, chainID(56))
	assert.Equal(t, uint64(56), h.Config().ChainID)
	assert.Same(t, h.Config(), h.Config())
	assert.Equal(t, uint64(1), params.DefaultConfig.ChainID)
}

func TestStackEffect(t *testing.T) {
	pops, pushes, ok := StackEffect(SWAP3)
	require.True(t, ok)
	assert.Equal(t, 4, pops)
	assert.Equal(t, 4, pushes)

	pops, pushes, ok = StackEffect(CALL)
	require.True(t, ok)
	assert.Equal(t, 7, pops)
	assert.Equal(t, 1, pushes)

	_, _, ok = StackEffect(0x0c)
	assert.False(t, ok)
}
