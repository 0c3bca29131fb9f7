package translator

import (
	"github.com/cockroachdb/errors"

	"github.com/bnb-chain/evm-rwasm/core/rwasm"
	"github.com/bnb-chain/evm-rwasm/params"
)

// Translator lowers one bytecode unit. It is single use and not safe for
// concurrent use; independent units need independent translators.
type Translator struct {
	code  []byte
	host  Host
	cfg   *params.Config
	table *JumpTable

	out *rwasm.InstructionSet

	pc      uint64 // start of the opcode being lowered
	pcPrev  uint64 // start of the previously lowered opcode
	hasPrev bool

	gasUsed     uint64
	jumpDests   map[uint64]int
	relocations []Relocation
	exitSites   []exitSite
	exitUsed    [numExitKinds]bool
	exitEntry   [numExitKinds]int

	status       Status
	notFoundSite int

	done bool
}

type exitSite struct {
	kind ExitKind
	site int
}

// NewTranslator prepares a translator for code. A nil host uses the default
// configuration.
func NewTranslator(code []byte, host Host) *Translator {
	if host == nil {
		host = NewHost(nil, nil)
	}
	return &Translator{
		code:      code,
		host:      host,
		out:       rwasm.NewInstructionSet(len(code) * 4),
		jumpDests: make(map[uint64]int),
	}
}

// Translate lowers code with host. See Translator.Translate.
func Translate(code []byte, host Host) (*Result, error) {
	return NewTranslator(code, host).Translate()
}

// Translate runs the scan and the relocation pass. On error no partial
// result is returned.
func (t *Translator) Translate() (*Result, error) {
	if t.done {
		return nil, errors.AssertionFailedf("translator already used")
	}
	t.done = true

	t.cfg = t.host.Config()
	if err := t.cfg.Validate(); err != nil {
		return nil, err
	}
	if len(t.code) > t.cfg.MaxCodeSize {
		return nil, errors.Wrapf(ErrCodeSizeLimit, "size %d, limit %d", len(t.code), t.cfg.MaxCodeSize)
	}
	t.table = jumpTableFor(t.cfg.Gas)

	if err := t.scan(); err != nil {
		TranslatorDebugWarn("Translation failed", "err", err)
		return nil, err
	}
	t.emitEpilogue()
	if err := t.resolve(); err != nil {
		TranslatorDebugWarn("Relocation failed", "err", err)
		return nil, err
	}
	return &Result{
		Instructions: t.out,
		GasUsed:      t.gasUsed,
		JumpDests:    t.jumpDests,
		Relocations:  t.relocations,
		Status:       t.status,
		StopPC:       t.stopPC(),
		Schedule:     ScheduleHash(t.cfg.Gas),
	}, nil
}

func (t *Translator) stopPC() uint64 {
	if t.status == StatusOpcodeNotFound {
		return t.pc
	}
	return uint64(len(t.code))
}

// chargeGas meters a static cost in the output.
func (t *Translator) chargeGas(cost uint64) {
	if cost == 0 {
		return
	}
	t.out.OpConsumeFuel(cost)
	t.gasUsed += cost
}

// emitExit terminates the program with code.
func (t *Translator) emitExit(code rwasm.ExitCode) {
	t.out.OpI64Const(int64(code))
	t.out.OpReturn()
}

// emitEpilogue closes the main body and appends the exit subroutines that
// were referenced during the scan.
func (t *Translator) emitEpilogue() {
	if t.status == StatusOk {
		// falling off the end of the code is a STOP
		t.emitExit(rwasm.ExitOk)
	}
	for kind := ExitKind(0); kind < numExitKinds; kind++ {
		if t.exitUsed[kind] {
			t.exitEntry[kind] = t.out.Len()
			t.host.ExitSequence(t.out, kind)
		}
	}
}
