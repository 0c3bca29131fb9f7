package host

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Env is the block and transaction environment visible to a program.
type Env struct {
	ChainID     uint64
	MaxCodeSize int

	BlockNumber uint64
	Coinbase    common.Address
	Timestamp   uint64
	GasLimit    uint64
	BaseFee     *uint256.Int
	Difficulty  *uint256.Int
	PrevRandao  common.Hash
	BlobBaseFee *uint256.Int

	Origin     common.Address
	GasPrice   *uint256.Int
	BlobHashes []common.Hash
}

// ExecutionContext is where the environment is read from.
type ExecutionContext interface {
	ChainID() uint64
	BlockNumber() uint64
	BlockCoinbase() common.Address
	BlockTimestamp() uint64
	BlockGasLimit() uint64
	BlockBaseFee() *uint256.Int
	BlockDifficulty() *uint256.Int
	BlockPrevRandao() common.Hash
	BlockBlobBaseFee() *uint256.Int
	TxOrigin() common.Address
	TxGasPrice() *uint256.Int
	TxBlobHashes() []common.Hash
}

// StaticContext is an ExecutionContext backed by plain values.
type StaticContext struct {
	Chain       uint64
	Number      uint64
	Coinbase    common.Address
	Time        uint64
	GasLimit    uint64
	BaseFee     *uint256.Int
	Difficulty  *uint256.Int
	Random      common.Hash
	BlobBaseFee *uint256.Int
	Origin      common.Address
	GasPrice    *uint256.Int
	BlobHashes  []common.Hash
}

func (c *StaticContext) ChainID() uint64                { return c.Chain }
func (c *StaticContext) BlockNumber() uint64            { return c.Number }
func (c *StaticContext) BlockCoinbase() common.Address  { return c.Coinbase }
func (c *StaticContext) BlockTimestamp() uint64         { return c.Time }
func (c *StaticContext) BlockGasLimit() uint64          { return c.GasLimit }
func (c *StaticContext) BlockBaseFee() *uint256.Int     { return orZero(c.BaseFee) }
func (c *StaticContext) BlockDifficulty() *uint256.Int  { return orZero(c.Difficulty) }
func (c *StaticContext) BlockPrevRandao() common.Hash   { return c.Random }
func (c *StaticContext) BlockBlobBaseFee() *uint256.Int { return orZero(c.BlobBaseFee) }
func (c *StaticContext) TxOrigin() common.Address       { return c.Origin }
func (c *StaticContext) TxGasPrice() *uint256.Int       { return orZero(c.GasPrice) }
func (c *StaticContext) TxBlobHashes() []common.Hash    { return c.BlobHashes }

func orZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}

func newEnv(ctx ExecutionContext, maxCodeSize int) *Env {
	return &Env{
		ChainID:     ctx.ChainID(),
		MaxCodeSize: maxCodeSize,
		BlockNumber: ctx.BlockNumber(),
		Coinbase:    ctx.BlockCoinbase(),
		Timestamp:   ctx.BlockTimestamp(),
		GasLimit:    ctx.BlockGasLimit(),
		BaseFee:     new(uint256.Int).Set(ctx.BlockBaseFee()),
		Difficulty:  new(uint256.Int).Set(ctx.BlockDifficulty()),
		PrevRandao:  ctx.BlockPrevRandao(),
		BlobBaseFee: new(uint256.Int).Set(ctx.BlockBlobBaseFee()),
		Origin:      ctx.TxOrigin(),
		GasPrice:    new(uint256.Int).Set(ctx.TxGasPrice()),
		BlobHashes:  ctx.TxBlobHashes(),
	}
}
