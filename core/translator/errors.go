package translator

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	ErrStaticTargetRequired = errors.New("jump must be immediately preceded by a push")
	ErrUnresolvedJumpTarget = errors.New("unresolved jump target")
	ErrUnsupportedOpcode    = errors.New("unsupported opcode")
	ErrCodeSizeLimit        = errors.New("code size exceeds limit")
	ErrTranslationDisabled  = errors.New("translation is disabled")
)

// TranslationError locates a translation failure in the source bytecode.
type TranslationError struct {
	PC  uint64
	Op  OpCode
	Err error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translate pc=%d op=%v: %v", e.PC, e.Op, e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }

func (t *Translator) errorf(pc uint64, cause error, format string, args ...interface{}) error {
	return &TranslationError{
		PC:  pc,
		Op:  OpCode(t.code[pc]),
		Err: errors.Wrapf(cause, format, args...),
	}
}
