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

// Package exec runs translated programs against a host.
package exec

import (
	"github.com/cockroachdb/errors"

	"github.com/bnb-chain/evm-rwasm/core/host"
	"github.com/bnb-chain/evm-rwasm/core/rwasm"
	"github.com/bnb-chain/evm-rwasm/core/translator"
)

// ExecResult is the outcome of running a program. Exit is ExitInvalidOpcode
// for every fault that is not a clean program exit.
type ExecResult struct {
	Exit       rwasm.ExitCode
	ReturnData []byte
	GasUsed    uint64
}

// Failed reports whether the program ended in anything but STOP or RETURN.
func (r *ExecResult) Failed() bool {
	return r.Exit != rwasm.ExitOk && r.Exit != rwasm.ExitReturn
}

// RunTranslation executes a finished translation with gas available.
func RunTranslation(res *translator.Result, h host.Host, contract *Contract, gas uint64, cfg Config) (*ExecResult, error) {
	if res == nil || res.Instructions == nil {
		return nil, errors.Wrap(ErrMalformedProgram, "empty translation")
	}
	return NewMachine(res.Instructions, h, contract, gas, cfg).Run()
}
