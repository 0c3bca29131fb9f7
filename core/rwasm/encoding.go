package rwasm

import (
	"bytes"

	"github.com/cockroachdb/errors"
)

const encodingVersion = 1

var (
	encodingMagic = []byte("rwsm")

	ErrBadMagic   = errors.New("rwasm: bad magic")
	ErrBadVersion = errors.New("rwasm: unsupported encoding version")
	ErrBadOpcode  = errors.New("rwasm: unknown opcode")
)

// Encode serializes the set as magic, version, instruction count and then
// one opcode byte plus an optional signed LEB128 immediate per instruction.
func Encode(is *InstructionSet) []byte {
	buf := make([]byte, 0, len(encodingMagic)+1+2*len(is.instrs))
	buf = append(buf, encodingMagic...)
	buf = append(buf, encodingVersion)
	buf = appendUint64LEB128(buf, uint64(len(is.instrs)))
	for _, instr := range is.instrs {
		buf = append(buf, byte(instr.Op))
		if instr.Op.HasImmediate() {
			buf = appendInt64LEB128(buf, instr.Imm)
		}
	}
	return buf
}

// Decode parses the output of Encode.
func Decode(data []byte) (*InstructionSet, error) {
	if !bytes.HasPrefix(data, encodingMagic) {
		return nil, ErrBadMagic
	}
	r := bytes.NewReader(data[len(encodingMagic):])
	version, err := r.ReadByte()
	if err != nil {
		return nil, errors.Wrap(err, "rwasm: read version")
	}
	if version != encodingVersion {
		return nil, errors.Wrapf(ErrBadVersion, "version %d", version)
	}
	count, err := readUint64LEB128(r)
	if err != nil {
		return nil, errors.Wrap(err, "rwasm: read instruction count")
	}
	// every instruction takes at least one byte
	if count > uint64(r.Len()) {
		return nil, errors.Newf("rwasm: instruction count %d exceeds payload", count)
	}
	is := NewInstructionSet(int(count))
	for i := uint64(0); i < count; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return nil, errors.Wrapf(err, "rwasm: read opcode %d", i)
		}
		op := Opcode(b)
		if !op.Valid() {
			return nil, errors.Wrapf(ErrBadOpcode, "%#x at instruction %d", b, i)
		}
		var imm int64
		if op.HasImmediate() {
			if imm, err = readInt64LEB128(r); err != nil {
				return nil, errors.Wrapf(err, "rwasm: read immediate %d", i)
			}
		}
		is.Push(op, imm)
	}
	if r.Len() != 0 {
		return nil, errors.Newf("rwasm: %d trailing bytes", r.Len())
	}
	return is, nil
}
