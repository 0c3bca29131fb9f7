// Copyright 2015 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package exec

import (
	"fmt"
	"math"

	"github.com/holiman/uint256"

	"github.com/bnb-chain/evm-rwasm/core/rwasm"
	"github.com/bnb-chain/evm-rwasm/core/translator"
	"github.com/bnb-chain/evm-rwasm/params"
)

type executionFunc func(m *Machine, f *frame) error

// builtin is the runtime half of an opcode lowered to a call. Its stack
// effect is the one the translator assumed when lowering.
type builtin struct {
	execute executionFunc
	pops    int
	pushes  int
}

var builtins = newBuiltinTable()

func newBuiltinTable() [256]*builtin {
	funcs := map[translator.OpCode]executionFunc{
		translator.ADD:        opAdd,
		translator.MUL:        opMul,
		translator.SUB:        opSub,
		translator.DIV:        opDiv,
		translator.SDIV:       opSdiv,
		translator.MOD:        opMod,
		translator.SMOD:       opSmod,
		translator.ADDMOD:     opAddmod,
		translator.MULMOD:     opMulmod,
		translator.EXP:        opExp,
		translator.SIGNEXTEND: opSignExtend,

		translator.LT:     opLt,
		translator.GT:     opGt,
		translator.SLT:    opSlt,
		translator.SGT:    opSgt,
		translator.EQ:     opEq,
		translator.ISZERO: opIszero,
		translator.AND:    opAnd,
		translator.OR:     opOr,
		translator.XOR:    opXor,
		translator.NOT:    opNot,
		translator.BYTE:   opByte,
		translator.SHL:    opSHL,
		translator.SHR:    opSHR,
		translator.SAR:    opSAR,

		translator.KECCAK256: opKeccak256,

		translator.ADDRESS:        opAddress,
		translator.BALANCE:        opBalance,
		translator.ORIGIN:         opOrigin,
		translator.CALLER:         opCaller,
		translator.CALLVALUE:      opCallValue,
		translator.CALLDATALOAD:   opCallDataLoad,
		translator.CALLDATASIZE:   opCallDataSize,
		translator.CALLDATACOPY:   opCallDataCopy,
		translator.CODESIZE:       opCodeSize,
		translator.CODECOPY:       opCodeCopy,
		translator.GASPRICE:       opGasprice,
		translator.EXTCODESIZE:    opExtCodeSize,
		translator.EXTCODECOPY:    opExtCodeCopy,
		translator.RETURNDATASIZE: opReturnDataSize,
		translator.RETURNDATACOPY: opReturnDataCopy,
		translator.EXTCODEHASH:    opExtCodeHash,

		translator.BLOCKHASH:   opBlockhash,
		translator.COINBASE:    opCoinbase,
		translator.TIMESTAMP:   opTimestamp,
		translator.NUMBER:      opNumber,
		translator.DIFFICULTY:  opDifficulty,
		translator.GASLIMIT:    opGasLimit,
		translator.CHAINID:     opChainID,
		translator.SELFBALANCE: opSelfBalance,
		translator.BASEFEE:     opBaseFee,
		translator.BLOBHASH:    opBlobHash,
		translator.BLOBBASEFEE: opBlobBaseFee,

		translator.MLOAD:   opMload,
		translator.MSTORE:  opMstore,
		translator.MSTORE8: opMstore8,
		translator.SLOAD:   opSload,
		translator.SSTORE:  opSstore,
		translator.MSIZE:   opMsize,
		translator.GAS:     opGas,
		translator.MCOPY:   opMcopy,

		translator.RETURN: makeExit(),
		translator.REVERT: makeExit(),
	}
	for i := 0; i <= 4; i++ {
		funcs[translator.LOG0+translator.OpCode(i)] = makeLog(i)
	}

	var tbl [256]*builtin
	for op, fn := range funcs {
		pops, pushes, ok := translator.StackEffect(op)
		if !ok {
			panic(fmt.Sprintf("builtin for undefined opcode %v", op))
		}
		tbl[op] = &builtin{execute: fn, pops: pops, pushes: pushes}
	}
	for _, op := range []translator.OpCode{
		translator.CREATE, translator.CALL, translator.CALLCODE,
		translator.DELEGATECALL, translator.CREATE2, translator.STATICCALL,
	} {
		pops, pushes, _ := translator.StackEffect(op)
		tbl[op] = &builtin{execute: makeCall(op, pops), pops: pops, pushes: pushes}
	}
	return tbl
}

// call runs the builtin selected by fn against the words below the stack
// pointer.
func (m *Machine) call(fn int64) {
	if fn < 0 || fn >= int64(len(builtins)) || builtins[fn] == nil {
		faultf(ErrMalformedProgram, "no builtin %d", fn)
	}
	b := builtins[fn]
	sp := m.globals[rwasm.SPGlobal]
	base := sp - int64(params.EVMWordBytes*b.pops)
	if base < 0 {
		fault(ErrStackUnderflow)
	}
	if base+int64(params.EVMWordBytes*b.pushes) > int64(len(m.stack)) {
		fault(ErrStackOverflow)
	}
	if err := b.execute(m, &frame{m: m, base: sp}); err != nil {
		fault(err)
	}
}

// memoryRange validates and expands memory for the region [offset,
// offset+size). An empty region needs no memory and ignores the offset.
func (m *Machine) memoryRange(offset, size *uint256.Int) (uint64, uint64, error) {
	if size.IsZero() {
		return 0, 0, nil
	}
	off, overflow := offset.Uint64WithOverflow()
	if overflow {
		return 0, 0, ErrGasUintOverflow
	}
	sz, overflow := size.Uint64WithOverflow()
	if overflow {
		return 0, 0, ErrGasUintOverflow
	}
	end := off + sz
	if end < off {
		return 0, 0, ErrGasUintOverflow
	}
	if end > m.config.MemoryLimit {
		return 0, 0, ErrMemoryLimit
	}
	m.memory.Resize(toWordSize(end) * params.EVMWordBytes)
	return off, sz, nil
}

// toWordSize returns the ceiled word size required for memory expansion.
func toWordSize(size uint64) uint64 {
	if size > math.MaxUint64-31 {
		return math.MaxUint64/32 + 1
	}
	return (size + 31) / 32
}
