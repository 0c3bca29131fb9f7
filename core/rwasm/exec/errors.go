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
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/core/vm"
)

// List execution errors
var (
	ErrOutOfGas              = vm.ErrOutOfGas
	ErrExecutionReverted     = vm.ErrExecutionReverted
	ErrReturnDataOutOfBounds = vm.ErrReturnDataOutOfBounds
	ErrGasUintOverflow       = vm.ErrGasUintOverflow

	ErrStackUnderflow   = errors.New("stack underflow")
	ErrStackOverflow    = errors.New("stack limit reached")
	ErrInvalidOpcode    = errors.New("invalid opcode")
	ErrHostFailure      = errors.New("host failure")
	ErrMemoryLimit      = errors.New("memory limit exceeded")
	ErrMalformedProgram = errors.New("malformed program")
)

// machineFault carries an execution error out of the interpreter loop.
type machineFault struct {
	err error
}

func fault(err error) {
	panic(machineFault{err})
}

func faultf(cause error, format string, args ...interface{}) {
	panic(machineFault{errors.Wrapf(cause, format, args...)})
}
