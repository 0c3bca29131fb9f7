package translator

import (
	"github.com/cockroachdb/errors"
)

// RelocationKind tells which jump produced a relocation.
type RelocationKind uint8

const (
	RelocJump RelocationKind = iota
	RelocJumpI
)

func (k RelocationKind) String() string {
	if k == RelocJumpI {
		return "JUMPI"
	}
	return "JUMP"
}

// Relocation is a jump whose branch operand is fixed up after the scan.
type Relocation struct {
	Kind   RelocationKind
	PCFrom uint64 // pc of the jump opcode
	PCTo   uint64 // raw target pc taken from the preceding push
	Site   int    // offset of the placeholder branch
}

func (t *Translator) addRelocation(kind RelocationKind, pcTo uint64, site int) {
	t.relocations = append(t.relocations, Relocation{
		Kind:   kind,
		PCFrom: t.pc,
		PCTo:   pcTo,
		Site:   site,
	})
}

func (t *Translator) addExitSite(kind ExitKind, site int) {
	t.exitUsed[kind] = true
	t.exitSites = append(t.exitSites, exitSite{kind: kind, site: site})
}

// resolve patches every placeholder branch once the JUMPDEST map and the
// exit subroutines are known.
func (t *Translator) resolve() error {
	for _, r := range t.relocations {
		target, ok := t.jumpDests[r.PCTo]
		if !ok {
			// code past an undefined opcode was never lowered; reaching it
			// raises the same fault as the opcode itself
			if !t.untranslatedJumpDest(r.PCTo) {
				return t.errorf(r.PCFrom, ErrUnresolvedJumpTarget, "%v to pc %d", r.Kind, r.PCTo)
			}
			target = t.notFoundSite
		}
		if err := t.out.PatchBranch(r.Site, target); err != nil {
			return errors.NewAssertionErrorWithWrappedErrf(err, "patch %v at pc %d", r.Kind, r.PCFrom)
		}
	}
	for _, e := range t.exitSites {
		if err := t.out.PatchBranch(e.site, t.exitEntry[e.kind]); err != nil {
			return errors.NewAssertionErrorWithWrappedErrf(err, "patch exit %d", e.kind)
		}
	}
	return nil
}

// untranslatedJumpDest reports whether pc is a JUMPDEST in the tail the scan
// left unlowered after an undefined opcode. Push data is skipped.
func (t *Translator) untranslatedJumpDest(pc uint64) bool {
	if t.status != StatusOpcodeNotFound || pc <= t.pc || pc >= uint64(len(t.code)) {
		return false
	}
	for i := t.pc + 1; i < uint64(len(t.code)); {
		op := OpCode(t.code[i])
		if i == pc {
			return op == JUMPDEST
		}
		if i > pc {
			return false
		}
		if op.IsPush() {
			i += uint64(op.PushSize())
		}
		i++
	}
	return false
}
