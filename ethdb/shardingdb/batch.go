package shardingdb

import (
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/ethdb"
	"golang.org/x/sync/errgroup"
)

// batch keeps one engine batch per shard, created on first use.
type batch struct {
	db      *Database
	batches []ethdb.Batch
	size    int
}

// NewBatch creates a write-only batch spanning all shards.
func (db *Database) NewBatch() ethdb.Batch {
	return &batch{db: db, batches: make([]ethdb.Batch, len(db.shards))}
}

// NewBatchWithSize creates a batch; engines size their own buffers.
func (db *Database) NewBatchWithSize(int) ethdb.Batch {
	return db.NewBatch()
}

func (b *batch) shard(key []byte) ethdb.Batch {
	i := b.db.index(key)
	if b.batches[i] == nil {
		b.batches[i] = b.db.shards[i].NewBatch()
	}
	return b.batches[i]
}

func (b *batch) Put(key []byte, value []byte) error {
	if err := b.shard(key).Put(key, value); err != nil {
		return err
	}
	b.size += len(key) + len(value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	if err := b.shard(key).Delete(key); err != nil {
		return err
	}
	b.size += len(key)
	return nil
}

func (b *batch) ValueSize() int { return b.size }

// Write flushes the shard batches concurrently. Shards are independent
// stores, so a failure leaves the other shards written.
func (b *batch) Write() error {
	var g errgroup.Group
	for i, sb := range b.batches {
		if sb == nil {
			continue
		}
		i, sb := i, sb
		g.Go(func() error {
			return errors.Wrapf(sb.Write(), "write shard %d", i)
		})
	}
	return g.Wait()
}

func (b *batch) Reset() {
	for i := range b.batches {
		b.batches[i] = nil
	}
	b.size = 0
}

// Replay replays the shard batches in shard order.
func (b *batch) Replay(w ethdb.KeyValueWriter) error {
	for _, sb := range b.batches {
		if sb == nil {
			continue
		}
		if err := sb.Replay(w); err != nil {
			return err
		}
	}
	return nil
}
