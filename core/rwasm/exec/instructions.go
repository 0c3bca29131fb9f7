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
	"math"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/bnb-chain/evm-rwasm/core/translator"
	"github.com/bnb-chain/evm-rwasm/params"
)

// frame is the operand window of a builtin call. Operands are read from the
// top of the stack down; the result goes to the slot of the deepest operand.
// The stack pointer itself is moved by the translated code.
type frame struct {
	m      *Machine
	base   int64
	popped int
}

func (f *frame) pop() uint256.Int {
	f.popped++
	return f.m.loadWord(f.base - int64(params.EVMWordBytes*f.popped))
}

func (f *frame) push(v *uint256.Int) {
	f.m.storeWord(f.base-int64(params.EVMWordBytes*f.popped), v)
}

func opAdd(m *Machine, f *frame) error {
	x, y := f.pop(), f.pop()
	y.Add(&x, &y)
	f.push(&y)
	return nil
}

func opSub(m *Machine, f *frame) error {
	x, y := f.pop(), f.pop()
	y.Sub(&x, &y)
	f.push(&y)
	return nil
}

func opMul(m *Machine, f *frame) error {
	x, y := f.pop(), f.pop()
	y.Mul(&x, &y)
	f.push(&y)
	return nil
}

func opDiv(m *Machine, f *frame) error {
	x, y := f.pop(), f.pop()
	y.Div(&x, &y)
	f.push(&y)
	return nil
}

func opSdiv(m *Machine, f *frame) error {
	x, y := f.pop(), f.pop()
	y.SDiv(&x, &y)
	f.push(&y)
	return nil
}

func opMod(m *Machine, f *frame) error {
	x, y := f.pop(), f.pop()
	y.Mod(&x, &y)
	f.push(&y)
	return nil
}

func opSmod(m *Machine, f *frame) error {
	x, y := f.pop(), f.pop()
	y.SMod(&x, &y)
	f.push(&y)
	return nil
}

func opExp(m *Machine, f *frame) error {
	base, exponent := f.pop(), f.pop()
	exponent.Exp(&base, &exponent)
	f.push(&exponent)
	return nil
}

func opSignExtend(m *Machine, f *frame) error {
	back, num := f.pop(), f.pop()
	num.ExtendSign(&num, &back)
	f.push(&num)
	return nil
}

func opNot(m *Machine, f *frame) error {
	x := f.pop()
	x.Not(&x)
	f.push(&x)
	return nil
}

func opLt(m *Machine, f *frame) error {
	x, y := f.pop(), f.pop()
	if x.Lt(&y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	f.push(&y)
	return nil
}

func opGt(m *Machine, f *frame) error {
	x, y := f.pop(), f.pop()
	if x.Gt(&y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	f.push(&y)
	return nil
}

func opSlt(m *Machine, f *frame) error {
	x, y := f.pop(), f.pop()
	if x.Slt(&y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	f.push(&y)
	return nil
}

func opSgt(m *Machine, f *frame) error {
	x, y := f.pop(), f.pop()
	if x.Sgt(&y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	f.push(&y)
	return nil
}

func opEq(m *Machine, f *frame) error {
	x, y := f.pop(), f.pop()
	if x.Eq(&y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	f.push(&y)
	return nil
}

func opIszero(m *Machine, f *frame) error {
	x := f.pop()
	if x.IsZero() {
		x.SetOne()
	} else {
		x.Clear()
	}
	f.push(&x)
	return nil
}

func opAnd(m *Machine, f *frame) error {
	x, y := f.pop(), f.pop()
	y.And(&x, &y)
	f.push(&y)
	return nil
}

func opOr(m *Machine, f *frame) error {
	x, y := f.pop(), f.pop()
	y.Or(&x, &y)
	f.push(&y)
	return nil
}

func opXor(m *Machine, f *frame) error {
	x, y := f.pop(), f.pop()
	y.Xor(&x, &y)
	f.push(&y)
	return nil
}

func opByte(m *Machine, f *frame) error {
	th, val := f.pop(), f.pop()
	val.Byte(&th)
	f.push(&val)
	return nil
}

func opAddmod(m *Machine, f *frame) error {
	x, y, z := f.pop(), f.pop(), f.pop()
	z.AddMod(&x, &y, &z)
	f.push(&z)
	return nil
}

func opMulmod(m *Machine, f *frame) error {
	x, y, z := f.pop(), f.pop(), f.pop()
	z.MulMod(&x, &y, &z)
	f.push(&z)
	return nil
}

// opSHL implements Shift Left
// The SHL instruction (shift left) pops 2 values from the stack, first arg1 and then arg2,
// and pushes on the stack arg2 shifted to the left by arg1 number of bits.
func opSHL(m *Machine, f *frame) error {
	shift, value := f.pop(), f.pop()
	if shift.LtUint64(256) {
		value.Lsh(&value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	f.push(&value)
	return nil
}

// opSHR implements Logical Shift Right
// The SHR instruction (logical shift right) pops 2 values from the stack, first arg1 and then arg2,
// and pushes on the stack arg2 shifted to the right by arg1 number of bits with zero fill.
func opSHR(m *Machine, f *frame) error {
	shift, value := f.pop(), f.pop()
	if shift.LtUint64(256) {
		value.Rsh(&value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	f.push(&value)
	return nil
}

// opSAR implements Arithmetic Shift Right
// The SAR instruction (arithmetic shift right) pops 2 values from the stack, first arg1 and then arg2,
// and pushes on the stack arg2 shifted to the right by arg1 number of bits with sign extension.
func opSAR(m *Machine, f *frame) error {
	shift, value := f.pop(), f.pop()
	if shift.GtUint64(255) {
		if value.Sign() >= 0 {
			value.Clear()
		} else {
			// Max negative shift: all bits set
			value.SetAllOne()
		}
	} else {
		value.SRsh(&value, uint(shift.Uint64()))
	}
	f.push(&value)
	return nil
}

func opKeccak256(m *Machine, f *frame) error {
	offset, size := f.pop(), f.pop()
	off, sz, err := m.memoryRange(&offset, &size)
	if err != nil {
		return err
	}
	data := m.memory.GetPtr(off, sz)

	if m.hasher == nil {
		m.hasher = crypto.NewKeccakState()
	} else {
		m.hasher.Reset()
	}
	m.hasher.Write(data)
	m.hasher.Read(m.hasherBuf[:])

	size.SetBytes(m.hasherBuf[:])
	f.push(&size)
	return nil
}

func opAddress(m *Machine, f *frame) error {
	f.push(new(uint256.Int).SetBytes(m.contract.Address.Bytes()))
	return nil
}

func opBalance(m *Machine, f *frame) error {
	slot := f.pop()
	load, ok := m.host.Balance(common.Address(slot.Bytes20()))
	if !ok {
		return ErrHostFailure
	}
	f.push(load.Data)
	return nil
}

func opOrigin(m *Machine, f *frame) error {
	f.push(new(uint256.Int).SetBytes(m.host.Env().Origin.Bytes()))
	return nil
}

func opCaller(m *Machine, f *frame) error {
	f.push(new(uint256.Int).SetBytes(m.contract.Caller.Bytes()))
	return nil
}

func opCallValue(m *Machine, f *frame) error {
	f.push(m.contract.Value)
	return nil
}

func opCallDataLoad(m *Machine, f *frame) error {
	x := f.pop()
	if offset, overflow := x.Uint64WithOverflow(); !overflow {
		data := getData(m.contract.Input, offset, 32)
		x.SetBytes(data)
	} else {
		x.Clear()
	}
	f.push(&x)
	return nil
}

func opCallDataSize(m *Machine, f *frame) error {
	f.push(new(uint256.Int).SetUint64(uint64(len(m.contract.Input))))
	return nil
}

func opCallDataCopy(m *Machine, f *frame) error {
	memOffset, dataOffset, length := f.pop(), f.pop(), f.pop()
	dataOffset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		dataOffset64 = math.MaxUint64
	}
	off, sz, err := m.memoryRange(&memOffset, &length)
	if err != nil {
		return err
	}
	m.memory.Set(off, sz, getData(m.contract.Input, dataOffset64, sz))
	return nil
}

func opReturnDataSize(m *Machine, f *frame) error {
	f.push(new(uint256.Int).SetUint64(uint64(len(m.returnData))))
	return nil
}

func opReturnDataCopy(m *Machine, f *frame) error {
	memOffset, dataOffset, length := f.pop(), f.pop(), f.pop()

	offset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		return ErrReturnDataOutOfBounds
	}
	// we can reuse dataOffset now (aliasing it for clarity)
	var end = dataOffset
	end.Add(&dataOffset, &length)
	end64, overflow := end.Uint64WithOverflow()
	if overflow || uint64(len(m.returnData)) < end64 {
		return ErrReturnDataOutOfBounds
	}
	off, sz, err := m.memoryRange(&memOffset, &length)
	if err != nil {
		return err
	}
	m.memory.Set(off, sz, m.returnData[offset64:end64])
	return nil
}

func opExtCodeSize(m *Machine, f *frame) error {
	slot := f.pop()
	load, ok := m.host.Code(common.Address(slot.Bytes20()))
	if !ok {
		return ErrHostFailure
	}
	slot.SetUint64(uint64(len(load.Data)))
	f.push(&slot)
	return nil
}

func opCodeSize(m *Machine, f *frame) error {
	f.push(new(uint256.Int).SetUint64(uint64(len(m.contract.Code))))
	return nil
}

func opCodeCopy(m *Machine, f *frame) error {
	memOffset, codeOffset, length := f.pop(), f.pop(), f.pop()
	uint64CodeOffset, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		uint64CodeOffset = math.MaxUint64
	}
	off, sz, err := m.memoryRange(&memOffset, &length)
	if err != nil {
		return err
	}
	m.memory.Set(off, sz, getData(m.contract.Code, uint64CodeOffset, sz))
	return nil
}

func opExtCodeCopy(m *Machine, f *frame) error {
	a, memOffset, codeOffset, length := f.pop(), f.pop(), f.pop(), f.pop()
	uint64CodeOffset, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		uint64CodeOffset = math.MaxUint64
	}
	load, ok := m.host.Code(common.Address(a.Bytes20()))
	if !ok {
		return ErrHostFailure
	}
	off, sz, err := m.memoryRange(&memOffset, &length)
	if err != nil {
		return err
	}
	m.memory.Set(off, sz, getData(load.Data, uint64CodeOffset, sz))
	return nil
}

// opExtCodeHash returns the code hash of a specified account.
// There are several cases when the function is called, while we can relay everything
// to the host.
//
//  1. Caller tries to get the code hash of a normal contract account, host
//
// should return the relative code hash and set it as the result.
//
//  2. Caller tries to get the code hash of a non-existent account, host should
//
// return common.Hash{} and zero will be set as the result.
//
//  3. Caller tries to get the code hash for an account without contract code, host
//
// should return emptyCodeHash(0xc5d246...) as the result.
func opExtCodeHash(m *Machine, f *frame) error {
	slot := f.pop()
	load, ok := m.host.CodeHash(common.Address(slot.Bytes20()))
	if !ok {
		return ErrHostFailure
	}
	slot.SetBytes(load.Data.Bytes())
	f.push(&slot)
	return nil
}

func opGasprice(m *Machine, f *frame) error {
	f.push(m.host.Env().GasPrice)
	return nil
}

func opBlockhash(m *Machine, f *frame) error {
	num := f.pop()
	num64, overflow := num.Uint64WithOverflow()
	if overflow {
		num.Clear()
		f.push(&num)
		return nil
	}
	var upper, lower uint64
	upper = m.host.Env().BlockNumber
	if upper < 257 {
		lower = 0
	} else {
		lower = upper - 256
	}
	if num64 >= lower && num64 < upper {
		hash, ok := m.host.BlockHash(num64)
		if !ok {
			return ErrHostFailure
		}
		num.SetBytes(hash[:])
	} else {
		num.Clear()
	}
	f.push(&num)
	return nil
}

func opCoinbase(m *Machine, f *frame) error {
	f.push(new(uint256.Int).SetBytes(m.host.Env().Coinbase.Bytes()))
	return nil
}

func opTimestamp(m *Machine, f *frame) error {
	f.push(new(uint256.Int).SetUint64(m.host.Env().Timestamp))
	return nil
}

func opNumber(m *Machine, f *frame) error {
	f.push(new(uint256.Int).SetUint64(m.host.Env().BlockNumber))
	return nil
}

// opDifficulty pushes the randomness beacon once one is set.
func opDifficulty(m *Machine, f *frame) error {
	env := m.host.Env()
	if env.PrevRandao != (common.Hash{}) {
		f.push(new(uint256.Int).SetBytes(env.PrevRandao.Bytes()))
		return nil
	}
	f.push(env.Difficulty)
	return nil
}

func opGasLimit(m *Machine, f *frame) error {
	f.push(new(uint256.Int).SetUint64(m.host.Env().GasLimit))
	return nil
}

func opChainID(m *Machine, f *frame) error {
	f.push(new(uint256.Int).SetUint64(m.host.Env().ChainID))
	return nil
}

func opSelfBalance(m *Machine, f *frame) error {
	load, ok := m.host.Balance(m.contract.Address)
	if !ok {
		return ErrHostFailure
	}
	f.push(load.Data)
	return nil
}

func opBaseFee(m *Machine, f *frame) error {
	f.push(m.host.Env().BaseFee)
	return nil
}

// opBlobHash implements the BLOBHASH opcode
func opBlobHash(m *Machine, f *frame) error {
	index := f.pop()
	hashes := m.host.Env().BlobHashes
	if index.LtUint64(uint64(len(hashes))) {
		blobHash := hashes[index.Uint64()]
		index.SetBytes32(blobHash[:])
	} else {
		index.Clear()
	}
	f.push(&index)
	return nil
}

// opBlobBaseFee implements BLOBBASEFEE opcode
func opBlobBaseFee(m *Machine, f *frame) error {
	f.push(m.host.Env().BlobBaseFee)
	return nil
}

func opMload(m *Machine, f *frame) error {
	v := f.pop()
	off, _, err := m.memoryRange(&v, uint256.NewInt(32))
	if err != nil {
		return err
	}
	v.SetBytes(m.memory.GetPtr(off, 32))
	f.push(&v)
	return nil
}

func opMstore(m *Machine, f *frame) error {
	mStart, val := f.pop(), f.pop()
	off, _, err := m.memoryRange(&mStart, uint256.NewInt(32))
	if err != nil {
		return err
	}
	m.memory.Set32(off, &val)
	return nil
}

func opMstore8(m *Machine, f *frame) error {
	off, val := f.pop(), f.pop()
	start, _, err := m.memoryRange(&off, uint256.NewInt(1))
	if err != nil {
		return err
	}
	m.memory.store[start] = byte(val.Uint64())
	return nil
}

func opMcopy(m *Machine, f *frame) error {
	dst, src, length := f.pop(), f.pop(), f.pop()
	if _, _, err := m.memoryRange(&src, &length); err != nil {
		return err
	}
	if _, _, err := m.memoryRange(&dst, &length); err != nil {
		return err
	}
	// These values are checked for overflow above
	m.memory.Copy(dst.Uint64(), src.Uint64(), length.Uint64())
	return nil
}

func opMsize(m *Machine, f *frame) error {
	f.push(new(uint256.Int).SetUint64(uint64(m.memory.Len())))
	return nil
}

func opGas(m *Machine, f *frame) error {
	f.push(new(uint256.Int).SetUint64(m.fuel))
	return nil
}

func opSload(m *Machine, f *frame) error {
	loc := f.pop()
	load, ok := m.host.SLoad(m.contract.Address, loc.Bytes32())
	if !ok {
		return ErrHostFailure
	}
	loc.SetBytes(load.Data.Bytes())
	f.push(&loc)
	return nil
}

func opSstore(m *Machine, f *frame) error {
	loc, val := f.pop(), f.pop()
	if _, ok := m.host.SStore(m.contract.Address, loc.Bytes32(), val.Bytes32()); !ok {
		return ErrHostFailure
	}
	return nil
}

// makeLog creates the log builtin for LOG0 to LOG4.
func makeLog(size int) executionFunc {
	return func(m *Machine, f *frame) error {
		topics := make([]common.Hash, size)
		mStart, mSize := f.pop(), f.pop()
		for i := 0; i < size; i++ {
			addr := f.pop()
			topics[i] = addr.Bytes32()
		}
		off, sz, err := m.memoryRange(&mStart, &mSize)
		if err != nil {
			return err
		}
		m.host.Log(&types.Log{
			Address: m.contract.Address,
			Topics:  topics,
			Data:    m.memory.GetCopy(off, sz),
			// This is a non-consensus field, but assigned here because
			// core/state doesn't know the current block number.
			BlockNumber: m.host.Env().BlockNumber,
		})
		return nil
	}
}

// makeCall creates the builtin of a call or create opcode. Without a call
// hook every nested call fails and pushes zero.
func makeCall(op translator.OpCode, pops int) executionFunc {
	return func(m *Machine, f *frame) error {
		args := make([]uint256.Int, pops)
		for i := range args {
			args[i] = f.pop()
		}
		var result uint256.Int
		if m.config.CallHook == nil {
			m.returnData = nil
			f.push(&result)
			return nil
		}
		result, ret, err := m.config.CallHook(m, byte(op), args)
		if err != nil {
			return err
		}
		m.returnData = ret
		f.push(&result)
		return nil
	}
}

// makeExit creates the builtin run by the RETURN and REVERT exit
// subroutines. It captures the output from memory.
func makeExit() executionFunc {
	return func(m *Machine, f *frame) error {
		offset, size := f.pop(), f.pop()
		off, sz, err := m.memoryRange(&offset, &size)
		if err != nil {
			return err
		}
		m.output = m.memory.GetCopy(off, sz)
		return nil
	}
}

// getData returns a slice from the data based on the start and size and pads
// up to size with zero's. This function is overflow safe.
func getData(data []byte, start uint64, size uint64) []byte {
	length := uint64(len(data))
	if start > length {
		start = length
	}
	end := start + size
	if end > length {
		end = length
	}
	return common.RightPadBytes(data[start:end], int(size))
}
