package translator

import (
	"sync"

	"github.com/bnb-chain/evm-rwasm/core/rwasm"
	"github.com/bnb-chain/evm-rwasm/params"
)

// ExitKind selects one of the shared exit subroutines.
type ExitKind uint8

const (
	ExitReturn ExitKind = iota
	ExitRevert

	numExitKinds
)

func (k ExitKind) opcode() OpCode {
	if k == ExitRevert {
		return REVERT
	}
	return RETURN
}

// ConfigSource supplies the chain dependent part of the configuration.
type ConfigSource interface {
	ChainID() uint64
}

// Host is the capability object handed to every handler. It carries the
// translation settings and knows how to lower program exits.
type Host interface {
	Config() *params.Config
	ExitSequence(is *rwasm.InstructionSet, kind ExitKind)
}

type defaultHost struct {
	config func() *params.Config
}

// NewHost returns a Host whose configuration is derived from base and src on
// first use. Both may be nil.
func NewHost(base *params.Config, src ConfigSource) Host {
	return &defaultHost{
		config: sync.OnceValue(func() *params.Config {
			if base == nil {
				base = &params.DefaultConfig
			}
			cfg := base.Copy()
			if src != nil {
				cfg.ChainID = src.ChainID()
			}
			return cfg
		}),
	}
}

func (h *defaultHost) Config() *params.Config { return h.config() }

// ExitSequence emits the body of an exit subroutine: the output is captured
// from the top two stack words and the program returns the exit code.
func (h *defaultHost) ExitSequence(is *rwasm.InstructionSet, kind ExitKind) {
	is.OpCall(int64(kind.opcode()))
	if kind == ExitRevert {
		is.OpI64Const(int64(rwasm.ExitRevert))
	} else {
		is.OpI64Const(int64(rwasm.ExitReturn))
	}
	is.OpReturn()
}
