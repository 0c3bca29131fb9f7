// Copyright 2014 The go-ethereum Authors
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
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/bnb-chain/evm-rwasm/core/host"
	"github.com/bnb-chain/evm-rwasm/core/rwasm"
	"github.com/bnb-chain/evm-rwasm/params"
)

// CallHook runs a nested call or create on behalf of the executing program.
// It receives the opcode and its operands, top of stack first, and returns
// the word to push and the return data of the sub-call.
type CallHook func(m *Machine, op byte, args []uint256.Int) (uint256.Int, []byte, error)

// Config are the configuration options for the Machine
type Config struct {
	StackLimit  int    // maximum number of EVM words on the operand stack
	MemoryLimit uint64 // maximum size of EVM memory in bytes
	CallHook    CallHook
}

// Contract is the code being run and the frame it runs in.
type Contract struct {
	Address common.Address
	Caller  common.Address
	Value   *uint256.Int
	Input   []byte
	Code    []byte
}

// Machine interprets a translated program. A machine runs once.
type Machine struct {
	program  []rwasm.Instruction
	host     host.Host
	contract *Contract
	config   Config

	stack   []byte // EVM operand stack region
	globals [1]int64
	locals  [rwasm.NumLocals]int64
	values  []int64

	memory     *Memory
	gasLimit   uint64
	fuel       uint64
	returnData []byte
	output     []byte

	hasher    crypto.KeccakState
	hasherBuf common.Hash
}

// NewMachine returns a machine ready to run program with gas available.
func NewMachine(program *rwasm.InstructionSet, h host.Host, contract *Contract, gas uint64, cfg Config) *Machine {
	if cfg.StackLimit <= 0 {
		cfg.StackLimit = params.StackLimit
	}
	if cfg.MemoryLimit == 0 {
		cfg.MemoryLimit = params.MemoryLimit
	}
	if contract == nil {
		contract = new(Contract)
	}
	if contract.Value == nil {
		contract.Value = new(uint256.Int)
	}
	return &Machine{
		program:  program.Instructions(),
		host:     h,
		contract: contract,
		config:   cfg,
		stack:    make([]byte, cfg.StackLimit*params.EVMWordBytes),
		values:   make([]int64, 0, 16),
		memory:   NewMemory(),
		gasLimit: gas,
		fuel:     gas,
	}
}

// Memory returns the EVM memory of the machine.
func (m *Machine) Memory() *Memory { return m.memory }

// Contract returns the frame being executed.
func (m *Machine) Contract() *Contract { return m.contract }

// Host returns the host the machine reads state through.
func (m *Machine) Host() host.Host { return m.host }

// Gas returns the remaining gas.
func (m *Machine) Gas() uint64 { return m.fuel }

// GasUsed returns the gas consumed so far.
func (m *Machine) GasUsed() uint64 { return m.gasLimit - m.fuel }

// StackDepth returns the number of words on the EVM operand stack.
func (m *Machine) StackDepth() int {
	return int(m.globals[rwasm.SPGlobal]) / params.EVMWordBytes
}

// Peek returns the word n positions below the top of the operand stack.
func (m *Machine) Peek(n int) uint256.Int {
	off := m.globals[rwasm.SPGlobal] - int64(params.EVMWordBytes*(n+1))
	if off < 0 {
		fault(ErrStackUnderflow)
	}
	return m.loadWord(off)
}

// Run executes the program until it returns or faults. The result is never
// nil. All gas is consumed on a fault other than a revert.
func (m *Machine) Run() (res *ExecResult, err error) {
	res = new(ExecResult)
	defer func() {
		if r := recover(); r != nil {
			mf, ok := r.(machineFault)
			if !ok {
				panic(r)
			}
			m.fuel = 0
			res.Exit, res.GasUsed, err = rwasm.ExitInvalidOpcode, m.gasLimit, mf.err
		}
	}()
	code := m.loop()
	res.Exit = code
	res.GasUsed = m.GasUsed()
	switch code {
	case rwasm.ExitOk:
	case rwasm.ExitReturn:
		res.ReturnData = m.output
	case rwasm.ExitRevert:
		res.ReturnData = m.output
		err = ErrExecutionReverted
	case rwasm.ExitInvalidOpcode, rwasm.ExitOpcodeNotFound:
		m.fuel = 0
		res.GasUsed = m.gasLimit
		err = ErrInvalidOpcode
	default:
		m.fuel = 0
		res.GasUsed = m.gasLimit
		err = ErrMalformedProgram
	}
	return res, err
}

func (m *Machine) loop() rwasm.ExitCode {
	for pc := 0; ; {
		if pc < 0 || pc >= len(m.program) {
			faultf(ErrMalformedProgram, "instruction offset %d out of range", pc)
		}
		in := m.program[pc]
		switch in.Op {
		case rwasm.OpUnreachable:
			fault(ErrInvalidOpcode)
		case rwasm.OpNop:
		case rwasm.OpI64Const:
			m.push(in.Imm)
		case rwasm.OpDrop:
			m.pop()
		case rwasm.OpLocalGet:
			m.push(*m.local(in.Imm))
		case rwasm.OpLocalSet:
			*m.local(in.Imm) = m.pop()
		case rwasm.OpLocalTee:
			v := m.pop()
			*m.local(in.Imm) = v
			m.push(v)
		case rwasm.OpGlobalGet:
			m.push(*m.global(in.Imm))
		case rwasm.OpGlobalSet:
			m.setGlobal(in.Imm, m.pop())
		case rwasm.OpI64Add:
			b, a := m.pop(), m.pop()
			m.push(a + b)
		case rwasm.OpI64Sub:
			b, a := m.pop(), m.pop()
			m.push(a - b)
		case rwasm.OpI64And:
			b, a := m.pop(), m.pop()
			m.push(a & b)
		case rwasm.OpI64Or:
			b, a := m.pop(), m.pop()
			m.push(a | b)
		case rwasm.OpI64Eqz:
			if m.pop() == 0 {
				m.push(1)
			} else {
				m.push(0)
			}
		case rwasm.OpI64Load:
			addr := m.pop() + in.Imm
			m.push(int64(binary.LittleEndian.Uint64(m.stackBytes(addr))))
		case rwasm.OpI64Store:
			v := m.pop()
			addr := m.pop() + in.Imm
			binary.LittleEndian.PutUint64(m.stackBytes(addr), uint64(v))
		case rwasm.OpBr:
			pc += int(in.Imm)
			continue
		case rwasm.OpBrIfEqz:
			if m.pop() == 0 {
				pc += int(in.Imm)
				continue
			}
		case rwasm.OpBrIfNez:
			if m.pop() != 0 {
				pc += int(in.Imm)
				continue
			}
		case rwasm.OpCall:
			m.call(in.Imm)
		case rwasm.OpConsumeFuel:
			m.useGas(uint64(in.Imm))
		case rwasm.OpReturn:
			return rwasm.ExitCode(m.pop())
		default:
			faultf(ErrMalformedProgram, "unknown instruction %v", in.Op)
		}
		pc++
	}
}

func (m *Machine) useGas(gas uint64) {
	if m.fuel < gas {
		m.fuel = 0
		fault(ErrOutOfGas)
	}
	m.fuel -= gas
}

func (m *Machine) push(v int64) {
	m.values = append(m.values, v)
}

func (m *Machine) pop() int64 {
	n := len(m.values)
	if n == 0 {
		faultf(ErrMalformedProgram, "value stack empty")
	}
	v := m.values[n-1]
	m.values = m.values[:n-1]
	return v
}

func (m *Machine) local(idx int64) *int64 {
	if idx < 0 || idx >= int64(len(m.locals)) {
		faultf(ErrMalformedProgram, "local %d out of range", idx)
	}
	return &m.locals[idx]
}

func (m *Machine) global(idx int64) *int64 {
	if idx < 0 || idx >= int64(len(m.globals)) {
		faultf(ErrMalformedProgram, "global %d out of range", idx)
	}
	return &m.globals[idx]
}

func (m *Machine) setGlobal(idx, v int64) {
	if idx == rwasm.SPGlobal {
		switch {
		case v < 0:
			fault(ErrStackUnderflow)
		case v > int64(len(m.stack)):
			fault(ErrStackOverflow)
		}
	}
	*m.global(idx) = v
}

// stackBytes returns the eight bytes of the stack region at addr.
func (m *Machine) stackBytes(addr int64) []byte {
	switch {
	case addr < 0:
		fault(ErrStackUnderflow)
	case addr+params.I64Bytes > int64(len(m.stack)):
		fault(ErrStackOverflow)
	}
	return m.stack[addr : addr+params.I64Bytes]
}

func (m *Machine) loadWord(off int64) (w uint256.Int) {
	for i := range w {
		w[i] = binary.LittleEndian.Uint64(m.stackBytes(off + int64(i*params.I64Bytes)))
	}
	return w
}

func (m *Machine) storeWord(off int64, w *uint256.Int) {
	for i := range w {
		binary.LittleEndian.PutUint64(m.stackBytes(off+int64(i*params.I64Bytes)), w[i])
	}
}
