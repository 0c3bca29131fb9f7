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

package params

import (
	"github.com/ethereum/go-ethereum/core/vm"
	ethparams "github.com/ethereum/go-ethereum/params"
)

const (
	MaxCodeSize = ethparams.MaxCodeSize // Maximum bytecode to permit for a contract
	StackLimit  = 1024                  // Maximum size of the operand stack, in words

	MemoryLimit          = 32 * 1024 * 1024 // Executor memory cap in bytes
	TranslationCacheSize = 4096             // Default number of cached translations

	EVMWordBytes = 32 // Size of one operand stack word
	I64Bytes     = 8  // Size of one limb of a word
	WordLimbs    = EVMWordBytes / I64Bytes
)

// DefaultGasSchedule follows the static step costs of the EVM.
var DefaultGasSchedule = GasSchedule{
	Zero:       0,
	Base:       vm.GasQuickStep,
	VeryLow:    vm.GasFastestStep,
	Low:        vm.GasFastStep,
	Mid:        vm.GasMidStep,
	High:       vm.GasSlowStep,
	Ext:        vm.GasExtStep,
	JumpDest:   ethparams.JumpdestGas,
	WarmAccess: ethparams.WarmStorageReadCostEIP2929,
	Keccak256:  ethparams.Keccak256Gas,
	Exp:        ethparams.ExpGas,
	Log:        ethparams.LogGas,
	Create:     ethparams.CreateGas,
	Blockhash:  vm.GasExtStep,
}
