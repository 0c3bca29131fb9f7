package host

import (
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/bnb-chain/evm-rwasm/cachemetrics"
	"github.com/bnb-chain/evm-rwasm/core/state"
	"github.com/bnb-chain/evm-rwasm/params"
)

type slotKey struct {
	addr common.Address
	key  common.Hash
}

// StateHost is a Host over a committed store. Storage writes stay in a dirty
// overlay until Commit. It is not safe for concurrent use.
type StateHost struct {
	env    func() *Env
	reader state.Reader

	warmAccounts mapset.Set[common.Address]
	warmSlots    mapset.Set[slotKey]
	dirty        map[slotKey]common.Hash

	logs []*types.Log
}

// NewStateHost creates a host reading from reader. The environment is built
// from ctx on first use.
func NewStateHost(ctx ExecutionContext, reader state.Reader, cfg *params.Config) *StateHost {
	if cfg == nil {
		cfg = &params.DefaultConfig
	}
	maxCodeSize := cfg.MaxCodeSize
	return &StateHost{
		env: sync.OnceValue(func() *Env {
			return newEnv(ctx, maxCodeSize)
		}),
		reader:       reader,
		warmAccounts: mapset.NewThreadUnsafeSet[common.Address](),
		warmSlots:    mapset.NewThreadUnsafeSet[slotKey](),
		dirty:        make(map[slotKey]common.Hash),
	}
}

func (h *StateHost) Env() *Env { return h.env() }

// Warm marks addresses as already accessed.
func (h *StateHost) Warm(addrs ...common.Address) {
	for _, addr := range addrs {
		h.warmAccounts.Add(addr)
	}
}

// touchAccount marks addr warm and reports whether it was cold.
func (h *StateHost) touchAccount(addr common.Address) bool {
	return h.warmAccounts.Add(addr)
}

func (h *StateHost) account(addr common.Address) (*state.Account, bool) {
	start := time.Now()
	acct, err := h.reader.Account(addr)
	if err != nil {
		log.Warn("Failed to load account", "addr", addr, "err", err)
		return nil, false
	}
	cachemetrics.RecordCacheDepth(cachemetrics.DiskL2ACCOUNT)
	cachemetrics.RecordCacheMetrics(cachemetrics.DiskL2ACCOUNT, start)
	return acct, true
}

func (h *StateHost) LoadAccount(addr common.Address) (AccountLoad, bool) {
	acct, ok := h.account(addr)
	if !ok {
		return AccountLoad{}, false
	}
	return AccountLoad{IsCold: h.touchAccount(addr), Exists: acct != nil}, true
}

// BlockHash always reports the zero hash.
func (h *StateHost) BlockHash(number uint64) (common.Hash, bool) {
	return common.Hash{}, true
}

func (h *StateHost) Balance(addr common.Address) (StateLoad[*uint256.Int], bool) {
	acct, ok := h.account(addr)
	if !ok {
		return StateLoad[*uint256.Int]{}, false
	}
	balance := new(uint256.Int)
	if acct != nil {
		balance.SetFromBig(acct.Balance)
	}
	return StateLoad[*uint256.Int]{Data: balance, IsCold: h.touchAccount(addr)}, true
}

func (h *StateHost) Code(addr common.Address) (StateLoad[[]byte], bool) {
	acct, ok := h.account(addr)
	if !ok {
		return StateLoad[[]byte]{}, false
	}
	var code []byte
	if acct != nil {
		var err error
		code, err = h.reader.Code(common.BytesToHash(acct.CodeHash))
		if err != nil {
			log.Warn("Failed to load code", "addr", addr, "err", err)
			return StateLoad[[]byte]{}, false
		}
	}
	return StateLoad[[]byte]{Data: code, IsCold: h.touchAccount(addr)}, true
}

// CodeHash is zero for missing accounts and the empty code hash for
// accounts without code.
func (h *StateHost) CodeHash(addr common.Address) (StateLoad[common.Hash], bool) {
	acct, ok := h.account(addr)
	if !ok {
		return StateLoad[common.Hash]{}, false
	}
	var hash common.Hash
	if acct != nil && !acct.Empty() {
		hash = common.BytesToHash(acct.CodeHash)
	}
	return StateLoad[common.Hash]{Data: hash, IsCold: h.touchAccount(addr)}, true
}

// committed reads a slot from the store, ignoring the overlay.
func (h *StateHost) committed(slot slotKey) (common.Hash, bool) {
	start := time.Now()
	value, err := h.reader.Storage(slot.addr, slot.key)
	if err != nil {
		log.Warn("Failed to load storage", "addr", slot.addr, "key", slot.key, "err", err)
		return common.Hash{}, false
	}
	cachemetrics.RecordCacheDepth(cachemetrics.DiskL2STORAGE)
	cachemetrics.RecordCacheMetrics(cachemetrics.DiskL2STORAGE, start)
	return value, true
}

func (h *StateHost) SLoad(addr common.Address, key common.Hash) (StateLoad[common.Hash], bool) {
	slot := slotKey{addr, key}
	if value, ok := h.dirty[slot]; ok {
		cachemetrics.RecordCacheDepth(cachemetrics.CacheL1STORAGE)
		return StateLoad[common.Hash]{Data: value, IsCold: h.warmSlots.Add(slot)}, true
	}
	value, ok := h.committed(slot)
	if !ok {
		return StateLoad[common.Hash]{}, false
	}
	return StateLoad[common.Hash]{Data: value, IsCold: h.warmSlots.Add(slot)}, true
}

func (h *StateHost) SStore(addr common.Address, key, value common.Hash) (StateLoad[SStoreResult], bool) {
	slot := slotKey{addr, key}
	original, ok := h.committed(slot)
	if !ok {
		return StateLoad[SStoreResult]{}, false
	}
	present, dirty := h.dirty[slot]
	if !dirty {
		present = original
	}
	h.dirty[slot] = value
	return StateLoad[SStoreResult]{
		Data:   SStoreResult{Original: original, Present: present, New: value},
		IsCold: h.warmSlots.Add(slot),
	}, true
}

func (h *StateHost) TLoad(addr common.Address, key common.Hash) common.Hash {
	panic(ErrNotSupported)
}

func (h *StateHost) TStore(addr common.Address, key, value common.Hash) {
	panic(ErrNotSupported)
}

func (h *StateHost) SelfDestruct(addr, target common.Address) {
	panic(ErrNotSupported)
}

// Log records an emitted log. Nothing is returned to the program.
func (h *StateHost) Log(l *types.Log) {
	h.logs = append(h.logs, l)
}

// Logs returns the logs emitted so far.
func (h *StateHost) Logs() []*types.Log {
	return h.logs
}

// Commit flushes the dirty storage overlay to w.
func (h *StateHost) Commit(w state.Writer) error {
	for slot, value := range h.dirty {
		if err := w.SetStorage(slot.addr, slot.key, value); err != nil {
			return err
		}
	}
	h.dirty = make(map[slotKey]common.Hash)
	return nil
}
