package rwasm

import "fmt"

// Opcode is an instruction of the linear register-less target machine. All
// values on the machine stack are 64 bit integers.
type Opcode byte

const (
	OpUnreachable Opcode = iota
	OpNop
	OpI64Const
	OpDrop
	OpLocalGet
	OpLocalSet
	OpLocalTee
	OpGlobalGet
	OpGlobalSet
	OpI64Add
	OpI64Sub
	OpI64And
	OpI64Or
	OpI64Eqz
	OpI64Load
	OpI64Store
	OpBr
	OpBrIfEqz
	OpBrIfNez
	OpCall
	OpConsumeFuel
	OpReturn

	opCount
)

var opcodeNames = [opCount]string{
	OpUnreachable: "unreachable",
	OpNop:         "nop",
	OpI64Const:    "i64.const",
	OpDrop:        "drop",
	OpLocalGet:    "local.get",
	OpLocalSet:    "local.set",
	OpLocalTee:    "local.tee",
	OpGlobalGet:   "global.get",
	OpGlobalSet:   "global.set",
	OpI64Add:      "i64.add",
	OpI64Sub:      "i64.sub",
	OpI64And:      "i64.and",
	OpI64Or:       "i64.or",
	OpI64Eqz:      "i64.eqz",
	OpI64Load:     "i64.load",
	OpI64Store:    "i64.store",
	OpBr:          "br",
	OpBrIfEqz:     "br_if_eqz",
	OpBrIfNez:     "br_if_nez",
	OpCall:        "call",
	OpConsumeFuel: "consume_fuel",
	OpReturn:      "return",
}

func (op Opcode) String() string {
	if op < opCount {
		return opcodeNames[op]
	}
	return fmt.Sprintf("opcode(%#x)", byte(op))
}

// Valid reports whether op is a known instruction.
func (op Opcode) Valid() bool { return op < opCount }

// IsBranch reports whether the immediate of op is a relative displacement.
func (op Opcode) IsBranch() bool {
	return op == OpBr || op == OpBrIfEqz || op == OpBrIfNez
}

// HasImmediate reports whether op carries a meaningful immediate.
func (op Opcode) HasImmediate() bool {
	switch op {
	case OpI64Const, OpLocalGet, OpLocalSet, OpLocalTee, OpGlobalGet, OpGlobalSet,
		OpI64Load, OpI64Store, OpBr, OpBrIfEqz, OpBrIfNez, OpCall, OpConsumeFuel:
		return true
	}
	return false
}
