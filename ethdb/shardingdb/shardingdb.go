// Package shardingdb spreads a key-value store over several engine instances.
package shardingdb

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/ethdb/pebble"
	"github.com/ethereum/go-ethereum/log"

	"github.com/bnb-chain/evm-rwasm/ethdb/bboltdb"
)

// Per shard floors for the cache (MB) and file handle budgets.
const (
	minShardCache   = 16
	minShardHandles = 16
)

// ShardIndexFunc maps a key to one of shardNum shards.
type ShardIndexFunc func(key []byte, shardNum int) int

// LastByteShardIndex routes by the last key byte. Every key of the state
// schema ends in a hash or an address, so the bytes are evenly spread.
func LastByteShardIndex(key []byte, shardNum int) int {
	if len(key) == 0 {
		return 0
	}
	return int(key[len(key)-1]) % shardNum
}

// Database routes every key to exactly one shard.
type Database struct {
	cfg            *Config
	shards         []ethdb.KeyValueStore
	shardIndexFunc ShardIndexFunc
}

// New opens all shards described by cfg, splitting the cache and handle
// budgets between them. A nil f routes by LastByteShardIndex.
func New(cfg *Config, cache int, handles int, readonly bool, f ShardIndexFunc) (*Database, error) {
	if err := cfg.SanityCheck(); err != nil {
		return nil, err
	}
	layout, err := cfg.parseShards()
	if err != nil {
		return nil, err
	}
	if f == nil {
		f = LastByteShardIndex
	}
	cache = max(cache/len(layout), minShardCache)
	handles = max(handles/len(layout), minShardHandles)

	db := &Database{cfg: cfg, shardIndexFunc: f}
	for _, shard := range layout {
		kv, err := openShard(cfg, shard.DBPath, cache, handles, readonly)
		if err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "open shard %s", shard.DBPath)
		}
		db.shards = append(db.shards, kv)
	}
	log.Info("Opened sharding database", "type", cfg.DBType, "shards", len(db.shards), "path", cfg.DBPath)
	return db, nil
}

func openShard(cfg *Config, path string, cache, handles int, readonly bool) (ethdb.KeyValueStore, error) {
	switch cfg.DBType {
	case DBTypePebble:
		return pebble.New(path, cache, handles, cfg.Namespace, readonly, false)
	case DBTypeLeveldb:
		return leveldb.New(path, cache, handles, cfg.Namespace, readonly)
	case DBTypeBbolt:
		return bboltdb.New(path, readonly, false)
	case DBTypeMemory:
		return memorydb.New(), nil
	}
	return nil, errors.Newf("unsupported db type: %s", cfg.DBType)
}

// Close closes every shard and reports the first failure.
func (db *Database) Close() error {
	var first error
	for _, shard := range db.shards {
		if err := shard.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ShardNum returns the number of shards.
func (db *Database) ShardNum() int { return len(db.shards) }

func (db *Database) index(key []byte) int {
	return db.shardIndexFunc(key, len(db.shards))
}

// Shard returns the shard holding key.
func (db *Database) Shard(key []byte) ethdb.KeyValueStore {
	return db.shards[db.index(key)]
}

func (db *Database) Has(key []byte) (bool, error) { return db.Shard(key).Has(key) }

func (db *Database) Get(key []byte) ([]byte, error) { return db.Shard(key).Get(key) }

func (db *Database) Put(key []byte, value []byte) error { return db.Shard(key).Put(key, value) }

func (db *Database) Delete(key []byte) error { return db.Shard(key).Delete(key) }

// Stat concatenates the statistics of all shards, each under a
// "[shard i]" heading.
func (db *Database) Stat(property string) (string, error) {
	var b strings.Builder
	for i, shard := range db.shards {
		stat, err := shard.Stat(property)
		if err != nil {
			return "", errors.Wrapf(err, "stat shard %d", i)
		}
		fmt.Fprintf(&b, "[shard %d]\n%s\n", i, strings.TrimRight(stat, "\n"))
	}
	return b.String(), nil
}

// Compact compacts the given key range on every shard.
func (db *Database) Compact(start []byte, limit []byte) error {
	for i, shard := range db.shards {
		if err := shard.Compact(start, limit); err != nil {
			return errors.Wrapf(err, "compact shard %d", i)
		}
	}
	return nil
}

// NewSnapshot snapshots all shards. Shards are captured one after the
// other, so a concurrent writer may be seen by some shards only.
func (db *Database) NewSnapshot() (ethdb.Snapshot, error) {
	snap := &snapshot{db: db}
	for _, shard := range db.shards {
		s, err := shard.NewSnapshot()
		if err != nil {
			snap.Release()
			return nil, err
		}
		snap.shards = append(snap.shards, s)
	}
	return snap, nil
}

type snapshot struct {
	db     *Database
	shards []ethdb.Snapshot
}

func (s *snapshot) Has(key []byte) (bool, error) { return s.shards[s.db.index(key)].Has(key) }

func (s *snapshot) Get(key []byte) ([]byte, error) { return s.shards[s.db.index(key)].Get(key) }

func (s *snapshot) Release() {
	for _, shard := range s.shards {
		shard.Release()
	}
}
