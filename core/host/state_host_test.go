package host

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnb-chain/evm-rwasm/core/state"
)

var (
	alice = common.HexToAddress("0xa11ce")
	bob   = common.HexToAddress("0xb0b")
	slot1 = common.HexToHash("0x01")
)

func newTestHost(t *testing.T) (*StateHost, *state.Store) {
	t.Helper()
	store := state.NewStore(memorydb.New())
	return NewStateHost(&StaticContext{Chain: 97, Number: 10}, store, nil), store
}

func TestWarmCold(t *testing.T) {
	h, store := newTestHost(t)
	require.NoError(t, store.SetBalance(alice, uint256.NewInt(5)))

	load, ok := h.Balance(alice)
	require.True(t, ok)
	assert.True(t, load.IsCold)
	assert.Equal(t, uint64(5), load.Data.Uint64())

	load, ok = h.Balance(alice)
	require.True(t, ok)
	assert.False(t, load.IsCold)

	h.Warm(bob)
	acct, ok := h.LoadAccount(bob)
	require.True(t, ok)
	assert.False(t, acct.IsCold)
	assert.False(t, acct.Exists)

	sl, ok := h.SLoad(alice, slot1)
	require.True(t, ok)
	assert.True(t, sl.IsCold)
	sl, ok = h.SLoad(alice, slot1)
	require.True(t, ok)
	assert.False(t, sl.IsCold)
}

func TestSStoreValues(t *testing.T) {
	h, store := newTestHost(t)
	one, two, three := common.HexToHash("0x01"), common.HexToHash("0x02"), common.HexToHash("0x03")
	require.NoError(t, store.SetStorage(alice, slot1, one))

	res, ok := h.SStore(alice, slot1, two)
	require.True(t, ok)
	assert.True(t, res.IsCold)
	assert.Equal(t, SStoreResult{Original: one, Present: one, New: two}, res.Data)

	res, ok = h.SStore(alice, slot1, three)
	require.True(t, ok)
	assert.False(t, res.IsCold)
	assert.Equal(t, SStoreResult{Original: one, Present: two, New: three}, res.Data)

	got, ok := h.SLoad(alice, slot1)
	require.True(t, ok)
	assert.Equal(t, three, got.Data)

	v, err := store.Storage(alice, slot1)
	require.NoError(t, err)
	assert.Equal(t, one, v)

	require.NoError(t, h.Commit(store))
	v, err = store.Storage(alice, slot1)
	require.NoError(t, err)
	assert.Equal(t, three, v)

	// the committed value is the new original
	res, ok = h.SStore(alice, slot1, one)
	require.True(t, ok)
	assert.Equal(t, three, res.Data.Original)
}

func TestCodeAccess(t *testing.T) {
	h, store := newTestHost(t)
	code := []byte{0x60, 0x00}
	require.NoError(t, store.SetCode(alice, code))
	require.NoError(t, store.SetBalance(bob, uint256.NewInt(1)))

	c, ok := h.Code(alice)
	require.True(t, ok)
	assert.Equal(t, code, c.Data)

	hash, ok := h.CodeHash(alice)
	require.True(t, ok)
	assert.Equal(t, crypto.Keccak256Hash(code), hash.Data)

	// existing account without code
	hash, ok = h.CodeHash(bob)
	require.True(t, ok)
	assert.Equal(t, types.EmptyCodeHash, hash.Data)

	// missing account
	hash, ok = h.CodeHash(common.HexToAddress("0xdead"))
	require.True(t, ok)
	assert.Equal(t, common.Hash{}, hash.Data)
}

func TestBlockHashIsZero(t *testing.T) {
	h, _ := newTestHost(t)
	hash, ok := h.BlockHash(9)
	assert.True(t, ok)
	assert.Equal(t, common.Hash{}, hash)
}

func TestUnsupportedPanics(t *testing.T) {
	h, _ := newTestHost(t)
	assert.PanicsWithValue(t, ErrNotSupported, func() { h.TLoad(alice, slot1) })
	assert.PanicsWithValue(t, ErrNotSupported, func() { h.TStore(alice, slot1, slot1) })
	assert.PanicsWithValue(t, ErrNotSupported, func() { h.SelfDestruct(alice, bob) })
}

func TestLogs(t *testing.T) {
	h, _ := newTestHost(t)
	h.Log(&types.Log{Address: alice})
	h.Log(&types.Log{Address: bob})
	require.Len(t, h.Logs(), 2)
	assert.Equal(t, bob, h.Logs()[1].Address)
}

type countingContext struct {
	StaticContext
	calls int
}

func (c *countingContext) ChainID() uint64 {
	c.calls++
	return c.Chain
}

func TestEnvIsLazy(t *testing.T) {
	ctx := &countingContext{StaticContext: StaticContext{Chain: 56}}
	h := NewStateHost(ctx, state.NewStore(memorydb.New()), nil)
	assert.Equal(t, 0, ctx.calls)

	env := h.Env()
	assert.Equal(t, uint64(56), env.ChainID)
	assert.Same(t, env, h.Env())
	assert.Equal(t, 1, ctx.calls)
	assert.NotNil(t, env.BaseFee)
	assert.True(t, env.GasPrice.IsZero())
}

type failingReader struct{}

var errBroken = errors.New("broken store")

func (failingReader) Account(common.Address) (*state.Account, error) { return nil, errBroken }
func (failingReader) Code(common.Hash) ([]byte, error)               { return nil, errBroken }
func (failingReader) Storage(common.Address, common.Hash) (common.Hash, error) {
	return common.Hash{}, errBroken
}

func TestReaderFailure(t *testing.T) {
	h := NewStateHost(&StaticContext{}, failingReader{}, nil)
	_, ok := h.LoadAccount(alice)
	assert.False(t, ok)
	_, ok = h.Balance(alice)
	assert.False(t, ok)
	_, ok = h.Code(alice)
	assert.False(t, ok)
	_, ok = h.CodeHash(alice)
	assert.False(t, ok)
	_, ok = h.SLoad(alice, slot1)
	assert.False(t, ok)
	_, ok = h.SStore(alice, slot1, slot1)
	assert.False(t, ok)
}
