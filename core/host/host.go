// Package host adapts the committed account store to the interface used by
// translated programs at run time.
package host

import (
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

// ErrNotSupported is the panic value of operations the host refuses.
var ErrNotSupported = errors.New("operation not supported by host")

// StateLoad is a loaded value together with its access temperature.
type StateLoad[T any] struct {
	Data   T
	IsCold bool
}

// AccountLoad describes an account access.
type AccountLoad struct {
	IsCold bool
	Exists bool
}

// SStoreResult carries the slot values an SSTORE needs for gas and refunds.
type SStoreResult struct {
	Original common.Hash // value before the current execution
	Present  common.Hash // value before this write
	New      common.Hash // value written
}

// Host is the state and environment access of a running program. A false
// second return value means the underlying store failed and no value is
// available.
type Host interface {
	Env() *Env

	LoadAccount(addr common.Address) (AccountLoad, bool)
	BlockHash(number uint64) (common.Hash, bool)
	Balance(addr common.Address) (StateLoad[*uint256.Int], bool)
	Code(addr common.Address) (StateLoad[[]byte], bool)
	CodeHash(addr common.Address) (StateLoad[common.Hash], bool)

	SLoad(addr common.Address, key common.Hash) (StateLoad[common.Hash], bool)
	SStore(addr common.Address, key, value common.Hash) (StateLoad[SStoreResult], bool)

	// TLoad, TStore and SelfDestruct panic with ErrNotSupported.
	TLoad(addr common.Address, key common.Hash) common.Hash
	TStore(addr common.Address, key, value common.Hash)
	SelfDestruct(addr, target common.Address)

	Log(log *types.Log)
}
