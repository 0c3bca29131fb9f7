package translator

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/bnb-chain/evm-rwasm/core/rwasm"
)

// Status is the outcome of a translation that did not fail.
type Status uint8

const (
	// StatusOk means the whole bytecode was lowered.
	StatusOk Status = iota
	// StatusOpcodeNotFound means the scan met an undefined opcode and
	// stopped there. Executing up to that point raises the invalid opcode
	// fault.
	StatusOpcodeNotFound
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusOpcodeNotFound:
		return "opcode not found"
	}
	return "unknown"
}

// Result is a finished translation.
type Result struct {
	Instructions *rwasm.InstructionSet
	GasUsed      uint64         // static gas charged across all lowered opcodes
	JumpDests    map[uint64]int // JUMPDEST pc -> offset of its first instruction
	Relocations  []Relocation
	Status       Status
	StopPC       uint64      // pc of the undefined opcode when Status is StatusOpcodeNotFound
	Schedule     common.Hash // ScheduleHash of the gas schedule the program is metered with
}
