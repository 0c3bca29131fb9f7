package translator

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnb-chain/evm-rwasm/core/rawdb"
	"github.com/bnb-chain/evm-rwasm/params"
)

func newTestProcessor(t *testing.T, store TranslationStore) *Processor {
	t.Helper()
	p, err := NewProcessor(nil, store)
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func TestProcessorCaches(t *testing.T) {
	db := memorydb.New()
	p := newTestProcessor(t, db)

	bytecode := code(PUSH1, 3, JUMP, JUMPDEST, STOP)
	hash := crypto.Keccak256Hash(bytecode)
	assert.Nil(t, p.Load(hash))

	res, err := p.TryTranslate(hash, bytecode)
	require.NoError(t, err)
	assert.Same(t, res, p.Load(hash))
	assert.True(t, rawdb.HasTranslation(db, hash))

	// a fresh processor finds the persisted copy
	p2 := newTestProcessor(t, db)
	loaded := p2.Load(hash)
	require.NotNil(t, loaded)
	assert.Equal(t, res.GasUsed, loaded.GasUsed)
	assert.Equal(t, res.Instructions.Instructions(), loaded.Instructions.Instructions())

	p.Delete(hash)
	assert.Nil(t, p.Load(hash))
	assert.False(t, rawdb.HasTranslation(db, hash))
}

func TestProcessorDisabled(t *testing.T) {
	p := newTestProcessor(t, nil)
	bytecode := code(STOP)
	hash := crypto.Keccak256Hash(bytecode)
	_, err := p.TryTranslate(hash, bytecode)
	require.NoError(t, err)

	p.Disable()
	assert.False(t, p.IsEnabled())
	assert.Nil(t, p.Load(hash))
	_, err = p.Retranslate(hash, bytecode)
	assert.True(t, errors.Is(err, ErrTranslationDisabled))

	p.Enable()
	assert.NotNil(t, p.Load(hash))
}

func TestProcessorErrorsNotCached(t *testing.T) {
	p := newTestProcessor(t, nil)
	bytecode := code(PUSH1, 9, JUMP)
	hash := crypto.Keccak256Hash(bytecode)
	_, err := p.TryTranslate(hash, bytecode)
	assert.True(t, errors.Is(err, ErrUnresolvedJumpTarget))
	assert.Nil(t, p.Load(hash))
}

func TestProcessorAsync(t *testing.T) {
	p := newTestProcessor(t, nil)
	bytecode := code(JUMPDEST, PUSH0, JUMP)
	hash := crypto.Keccak256Hash(bytecode)

	p.TranslateAsync(hash, bytecode)
	require.Eventually(t, func() bool {
		return p.Load(hash) != nil && p.Pending() == 0
	}, 5*time.Second, 10*time.Millisecond)

	// cached code is not scheduled again
	p.TranslateAsync(hash, bytecode)
	assert.Equal(t, 0, p.Pending())
}

func TestProcessorBatch(t *testing.T) {
	p := newTestProcessor(t, nil)
	codes := [][]byte{
		code(STOP),
		code(PUSH1, 3, JUMP, JUMPDEST),
		code(PUSH1, 1, 0x0c),
	}
	results, err := p.TranslateBatch(context.Background(), codes)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, uint64(0), results[0].GasUsed)
	assert.Equal(t, uint64(12), results[1].GasUsed)
	assert.Equal(t, StatusOpcodeNotFound, results[2].Status)

	_, err = p.TranslateBatch(context.Background(), append(codes, code(JUMP)))
	assert.True(t, errors.Is(err, ErrStaticTargetRequired))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.TranslateBatch(ctx, codes)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessorRejectsBadConfig(t *testing.T) {
	cfg := params.DefaultConfig.Copy()
	cfg.MaxCodeSize = 0
	_, err := NewProcessor(NewHost(cfg, nil), nil)
	assert.Error(t, err)
}

func TestStoredResultRoundTrip(t *testing.T) {
	res := mustTranslate(t, code(
		JUMPDEST, PUSH1, 1, PUSH1, 0, JUMPI,
		PUSH0, PUSH0, RETURN, 0x0c,
	))
	enc, err := EncodeResult(res)
	require.NoError(t, err)
	dec, err := DecodeResult(enc)
	require.NoError(t, err)

	assert.Equal(t, res.Instructions.Instructions(), dec.Instructions.Instructions())
	assert.Equal(t, res.JumpDests, dec.JumpDests)
	assert.Equal(t, res.Relocations, dec.Relocations)
	assert.Equal(t, res.Status, dec.Status)
	assert.Equal(t, res.StopPC, dec.StopPC)
	assert.Equal(t, res.GasUsed, dec.GasUsed)
	assert.Equal(t, ScheduleHash(params.DefaultGasSchedule), dec.Schedule)

	_, err = DecodeResult([]byte{0x01, 0x02})
	assert.Error(t, err)
}

func TestCorruptedStoreIgnored(t *testing.T) {
	db := memorydb.New()
	bytecode := code(STOP)
	hash := crypto.Keccak256Hash(bytecode)
	rawdb.WriteTranslation(db, hash, []byte("garbage"))

	p := newTestProcessor(t, db)
	assert.Nil(t, p.Load(hash))
	res, err := p.TryTranslate(hash, bytecode)
	require.NoError(t, err)
	assert.NotNil(t, res)
}

func TestStoredTranslationCompressed(t *testing.T) {
	db := memorydb.New()
	p := newTestProcessor(t, db)
	bytecode := code(PUSH1, 1, PUSH1, 2, ADD, PUSH1, 3, MUL, POP, STOP)
	hash := crypto.Keccak256Hash(bytecode)
	res, err := p.TryTranslate(hash, bytecode)
	require.NoError(t, err)

	blob := rawdb.ReadTranslation(db, hash)
	data, err := snappy.Decode(nil, blob)
	require.NoError(t, err)
	enc, err := EncodeResult(res)
	require.NoError(t, err)
	assert.Equal(t, enc, data)

	// an uncompressed record is treated as corrupted
	rawdb.WriteTranslation(db, hash, enc)
	assert.Nil(t, newTestProcessor(t, db).Load(hash))
}

func TestStoredTranslationScheduleMismatch(t *testing.T) {
	db := memorydb.New()
	bytecode := code(JUMPDEST, STOP)
	hash := crypto.Keccak256Hash(bytecode)
	_, err := newTestProcessor(t, db).TryTranslate(hash, bytecode)
	require.NoError(t, err)

	cfg := params.DefaultConfig.Copy()
	cfg.Gas.JumpDest = 7
	p, err := NewProcessor(NewHost(cfg, nil), db)
	require.NoError(t, err)
	defer p.Close()
	assert.Nil(t, p.Load(hash))

	res, err := p.TryTranslate(hash, bytecode)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), res.GasUsed)
	assert.Equal(t, ScheduleHash(cfg.Gas), res.Schedule)

	// the store now holds the new schedule, which the default one rejects
	assert.Nil(t, newTestProcessor(t, db).Load(hash))
}

func TestTranslationCacheEvicts(t *testing.T) {
	c := NewTranslationCache(1)
	a, b := crypto.Keccak256Hash([]byte{1}), crypto.Keccak256Hash([]byte{2})
	c.Add(a, &Result{})
	c.Add(b, &Result{})
	assert.Equal(t, 1, c.Len())
	assert.Nil(t, c.Get(a))
	assert.NotNil(t, c.Get(b))
}
