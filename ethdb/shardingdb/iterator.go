package shardingdb

import (
	"bytes"

	"github.com/ethereum/go-ethereum/ethdb"
)

// mergeIterator merges the ordered shard iterators into one ascending
// sequence. Each key lives in one shard, so there are no duplicates.
type mergeIterator struct {
	iters   []ethdb.Iterator
	live    []bool // iterator sits on an entry not yet returned
	started bool
	cur     int // shard of the current entry, -1 when none
}

// NewIterator iterates over all shards in key order. The iterator is not
// safe for concurrent use.
func (db *Database) NewIterator(prefix []byte, start []byte) ethdb.Iterator {
	it := &mergeIterator{
		iters: make([]ethdb.Iterator, len(db.shards)),
		live:  make([]bool, len(db.shards)),
		cur:   -1,
	}
	for i, shard := range db.shards {
		it.iters[i] = shard.NewIterator(prefix, start)
	}
	return it
}

func (it *mergeIterator) Next() bool {
	if !it.started {
		it.started = true
		for i, sub := range it.iters {
			it.live[i] = sub.Next()
		}
	} else if it.cur >= 0 {
		it.live[it.cur] = it.iters[it.cur].Next()
	}
	it.cur = -1
	for i, sub := range it.iters {
		if !it.live[i] {
			continue
		}
		if it.cur < 0 || bytes.Compare(sub.Key(), it.iters[it.cur].Key()) < 0 {
			it.cur = i
		}
	}
	return it.cur >= 0
}

func (it *mergeIterator) Error() error {
	for _, sub := range it.iters {
		if err := sub.Error(); err != nil {
			return err
		}
	}
	return nil
}

func (it *mergeIterator) Key() []byte {
	if it.cur < 0 {
		return nil
	}
	return it.iters[it.cur].Key()
}

func (it *mergeIterator) Value() []byte {
	if it.cur < 0 {
		return nil
	}
	return it.iters[it.cur].Value()
}

func (it *mergeIterator) Release() {
	for _, sub := range it.iters {
		sub.Release()
	}
	it.cur = -1
}
