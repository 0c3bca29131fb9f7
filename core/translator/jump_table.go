package translator

import (
	"sync"

	"github.com/bnb-chain/evm-rwasm/params"
)

// lowerFunc emits the target instructions of one opcode. The static gas of
// the opcode has already been charged when it runs.
type lowerFunc func(t *Translator, op OpCode) error

type operation struct {
	lower       lowerFunc
	constantGas uint64
	pops        int // words consumed from the operand stack
	pushes      int // words produced onto the operand stack
}

// JumpTable holds the lowering of every defined opcode. Undefined opcodes
// have a nil entry.
type JumpTable [256]*operation

var defaultJumpTable = sync.OnceValue(func() *JumpTable {
	return newJumpTable(params.DefaultGasSchedule)
})

func jumpTableFor(gas params.GasSchedule) *JumpTable {
	if gas == params.DefaultGasSchedule {
		return defaultJumpTable()
	}
	return newJumpTable(gas)
}

// StackEffect returns the number of words op pops and pushes, and whether op
// is defined at all.
func StackEffect(op OpCode) (pops, pushes int, ok bool) {
	entry := defaultJumpTable()[op]
	if entry == nil {
		return 0, 0, false
	}
	return entry.pops, entry.pushes, true
}

func builtin(gas uint64, pops, pushes int) *operation {
	return &operation{lower: lowerBuiltin, constantGas: gas, pops: pops, pushes: pushes}
}

func unsupported(gas uint64, pops, pushes int) *operation {
	return &operation{lower: lowerUnsupported, constantGas: gas, pops: pops, pushes: pushes}
}

func newJumpTable(gas params.GasSchedule) *JumpTable {
	tbl := &JumpTable{
		STOP:       {lower: lowerStop, constantGas: gas.Zero},
		ADD:        builtin(gas.VeryLow, 2, 1),
		MUL:        builtin(gas.Low, 2, 1),
		SUB:        builtin(gas.VeryLow, 2, 1),
		DIV:        builtin(gas.Low, 2, 1),
		SDIV:       builtin(gas.Low, 2, 1),
		MOD:        builtin(gas.Low, 2, 1),
		SMOD:       builtin(gas.Low, 2, 1),
		ADDMOD:     builtin(gas.Mid, 3, 1),
		MULMOD:     builtin(gas.Mid, 3, 1),
		EXP:        builtin(gas.Exp, 2, 1),
		SIGNEXTEND: builtin(gas.Low, 2, 1),

		LT:     builtin(gas.VeryLow, 2, 1),
		GT:     builtin(gas.VeryLow, 2, 1),
		SLT:    builtin(gas.VeryLow, 2, 1),
		SGT:    builtin(gas.VeryLow, 2, 1),
		EQ:     builtin(gas.VeryLow, 2, 1),
		ISZERO: builtin(gas.VeryLow, 1, 1),
		AND:    builtin(gas.VeryLow, 2, 1),
		OR:     builtin(gas.VeryLow, 2, 1),
		XOR:    builtin(gas.VeryLow, 2, 1),
		NOT:    builtin(gas.VeryLow, 1, 1),
		BYTE:   builtin(gas.VeryLow, 2, 1),
		SHL:    builtin(gas.VeryLow, 2, 1),
		SHR:    builtin(gas.VeryLow, 2, 1),
		SAR:    builtin(gas.VeryLow, 2, 1),

		KECCAK256: builtin(gas.Keccak256, 2, 1),

		ADDRESS:        builtin(gas.Base, 0, 1),
		BALANCE:        builtin(gas.WarmAccess, 1, 1),
		ORIGIN:         builtin(gas.Base, 0, 1),
		CALLER:         builtin(gas.Base, 0, 1),
		CALLVALUE:      builtin(gas.Base, 0, 1),
		CALLDATALOAD:   builtin(gas.VeryLow, 1, 1),
		CALLDATASIZE:   builtin(gas.Base, 0, 1),
		CALLDATACOPY:   builtin(gas.VeryLow, 3, 0),
		CODESIZE:       builtin(gas.Base, 0, 1),
		CODECOPY:       builtin(gas.VeryLow, 3, 0),
		GASPRICE:       builtin(gas.Base, 0, 1),
		EXTCODESIZE:    builtin(gas.WarmAccess, 1, 1),
		EXTCODECOPY:    builtin(gas.WarmAccess, 4, 0),
		RETURNDATASIZE: builtin(gas.Base, 0, 1),
		RETURNDATACOPY: builtin(gas.VeryLow, 3, 0),
		EXTCODEHASH:    builtin(gas.WarmAccess, 1, 1),

		BLOCKHASH:   builtin(gas.Blockhash, 1, 1),
		COINBASE:    builtin(gas.Base, 0, 1),
		TIMESTAMP:   builtin(gas.Base, 0, 1),
		NUMBER:      builtin(gas.Base, 0, 1),
		DIFFICULTY:  builtin(gas.Base, 0, 1),
		GASLIMIT:    builtin(gas.Base, 0, 1),
		CHAINID:     builtin(gas.Base, 0, 1),
		SELFBALANCE: builtin(gas.Low, 0, 1),
		BASEFEE:     builtin(gas.Base, 0, 1),
		BLOBHASH:    builtin(gas.VeryLow, 1, 1),
		BLOBBASEFEE: builtin(gas.Base, 0, 1),

		POP:      {lower: lowerPop, constantGas: gas.Base, pops: 1},
		MLOAD:    builtin(gas.VeryLow, 1, 1),
		MSTORE:   builtin(gas.VeryLow, 2, 0),
		MSTORE8:  builtin(gas.VeryLow, 2, 0),
		SLOAD:    builtin(gas.WarmAccess, 1, 1),
		SSTORE:   builtin(gas.Zero, 2, 0),
		JUMP:     {lower: lowerJump, constantGas: gas.Mid, pops: 1},
		JUMPI:    {lower: lowerJumpi, constantGas: gas.High, pops: 2},
		PC:       unsupported(gas.Base, 0, 1),
		MSIZE:    builtin(gas.Base, 0, 1),
		GAS:      builtin(gas.Base, 0, 1),
		JUMPDEST: {lower: lowerJumpdest, constantGas: gas.JumpDest},
		TLOAD:    unsupported(gas.WarmAccess, 1, 1),
		TSTORE:   unsupported(gas.WarmAccess, 2, 0),
		MCOPY:    builtin(gas.VeryLow, 3, 0),
		PUSH0:    {lower: lowerPush, constantGas: gas.Base, pushes: 1},

		CREATE:       builtin(gas.Create, 3, 1),
		CALL:         builtin(gas.WarmAccess, 7, 1),
		CALLCODE:     builtin(gas.WarmAccess, 7, 1),
		RETURN:       {lower: lowerReturn, constantGas: gas.Zero, pops: 2},
		DELEGATECALL: builtin(gas.WarmAccess, 6, 1),
		CREATE2:      builtin(gas.Create, 4, 1),
		STATICCALL:   builtin(gas.WarmAccess, 6, 1),
		REVERT:       {lower: lowerRevert, constantGas: gas.Zero, pops: 2},
		INVALID:      {lower: lowerInvalid, constantGas: gas.Zero},
		SELFDESTRUCT: unsupported(gas.Zero, 1, 0),
	}
	for op := PUSH1; op <= PUSH32; op++ {
		tbl[op] = &operation{lower: lowerPush, constantGas: gas.VeryLow, pushes: 1}
	}
	for i := 0; i < 16; i++ {
		tbl[DUP1+OpCode(i)] = &operation{lower: lowerDup, constantGas: gas.VeryLow, pops: i + 1, pushes: i + 2}
		tbl[SWAP1+OpCode(i)] = &operation{lower: lowerSwap, constantGas: gas.VeryLow, pops: i + 2, pushes: i + 2}
	}
	for i := 0; i <= 4; i++ {
		// topics cost the same as the base log charge
		tbl[LOG0+OpCode(i)] = builtin(gas.Log*uint64(i+1), i+2, 0)
	}
	return tbl
}
