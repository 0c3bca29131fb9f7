package rwasm

import (
	"io"

	"github.com/cockroachdb/errors"
)

// max64bitLEB128ByteCount is the maximum number of bytes a 64-bit integer
// may be encoded as: ceil(64/7).
const max64bitLEB128ByteCount = 10

var errLEB128Overflow = errors.New("leb128: value overflows 64 bits")

// appendUint64LEB128 appends v in canonical unsigned little endian base 128 format.
func appendUint64LEB128(buf []byte, v uint64) []byte {
	for {
		c := uint8(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		buf = append(buf, c)
		if v == 0 {
			return buf
		}
	}
}

// appendInt64LEB128 appends v in canonical signed little endian base 128 format.
func appendInt64LEB128(buf []byte, v int64) []byte {
	more := true
	for more {
		c := uint8(v & 0x7f)
		sign := uint8(v & 0x40)
		v >>= 7
		more = !((v == 0 && sign == 0) || (v == -1 && sign != 0))
		if more {
			c |= 0x80
		}
		buf = append(buf, c)
	}
	return buf
}

func readUint64LEB128(r io.ByteReader) (uint64, error) {
	var result uint64
	var shift uint
	for i := 0; i < max64bitLEB128ByteCount; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
	return 0, errLEB128Overflow
}

func readInt64LEB128(r io.ByteReader) (int64, error) {
	var result int64
	var shift uint
	for i := 0; i < max64bitLEB128ByteCount; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			// sign extend if the sign bit of the last byte is set
			if shift < 64 && b&0x40 != 0 {
				result |= -1 << shift
			}
			return result, nil
		}
	}
	return 0, errLEB128Overflow
}
