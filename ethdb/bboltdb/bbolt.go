// Package bboltdb implements the key-value database layer based on bbolt.
package bboltdb

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"go.etcd.io/bbolt"
)

const (
	// fileName is the database file created inside the data directory.
	fileName = "bbolt.db"

	// initialMmapSize avoids remapping while readers are open.
	initialMmapSize = 64 * 1024 * 1024
)

var (
	bucketName = []byte("ethdb")

	// ErrNotFound is returned by Get for missing keys.
	ErrNotFound = errors.New("not found")

	errNoBucket         = errors.New("bucket missing")
	errSnapshotReleased = errors.New("snapshot released")

	getTimer        = metrics.NewRegisteredTimer("ethdb/bbolt/get/time", nil)
	putTimer        = metrics.NewRegisteredTimer("ethdb/bbolt/put/time", nil)
	deleteTimer     = metrics.NewRegisteredTimer("ethdb/bbolt/delete/time", nil)
	batchWriteTimer = metrics.NewRegisteredTimer("ethdb/bbolt/batch/write/time", nil)
)

// Database is a persistent key-value store based on the bbolt storage engine.
// All keys live in a single bucket.
type Database struct {
	fn string    // filename for reporting
	db *bbolt.DB // underlying bbolt storage engine

	closeOnce sync.Once
	log       log.Logger // contextual logger tracking the database path
}

// New opens or creates a database in the directory file.
func New(file string, readonly bool, ephemeral bool) (*Database, error) {
	if err := os.MkdirAll(file, 0o755); err != nil {
		return nil, errors.Wrap(err, "create bbolt directory")
	}
	path := filepath.Join(file, fileName)
	logger := log.New("database", path)

	inner, err := bbolt.Open(path, 0o600, &bbolt.Options{
		Timeout:         time.Second,
		ReadOnly:        readonly,
		NoSync:          ephemeral,
		InitialMmapSize: initialMmapSize,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open bbolt database %s", path)
	}
	if !readonly {
		err = inner.Update(func(tx *bbolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(bucketName)
			return err
		})
		if err != nil {
			inner.Close()
			return nil, errors.Wrap(err, "create default bucket")
		}
	}
	logger.Info("Allocated bbolt database", "readonly", readonly, "nosync", ephemeral)
	return &Database{fn: path, db: inner, log: logger}, nil
}

// Close closes the database file.
func (d *Database) Close() error {
	var err error
	d.closeOnce.Do(func() {
		err = d.db.Close()
		if err != nil {
			d.log.Error("Failed to close database", "err", err)
		}
	})
	return err
}

func (d *Database) view(fn func(b *bbolt.Bucket) error) error {
	return d.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return errNoBucket
		}
		return fn(b)
	})
}

// lookup returns the value of key in b and whether the key exists.
func lookup(b *bbolt.Bucket, key []byte) ([]byte, bool) {
	k, v := b.Cursor().Seek(key)
	if k == nil || !bytes.Equal(k, key) {
		return nil, false
	}
	return v, true
}

// Has checks if the given key exists in the database.
func (d *Database) Has(key []byte) (bool, error) {
	var exists bool
	err := d.view(func(b *bbolt.Bucket) error {
		_, exists = lookup(b, key)
		return nil
	})
	return exists, err
}

// Get retrieves the value corresponding to the specified key from the database.
func (d *Database) Get(key []byte) ([]byte, error) {
	defer getTimer.UpdateSince(time.Now())

	var result []byte
	err := d.view(func(b *bbolt.Bucket) error {
		v, ok := lookup(b, key)
		if !ok {
			return ErrNotFound
		}
		result = append([]byte{}, v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Put adds the given value under the specified key to the database.
func (d *Database) Put(key []byte, value []byte) error {
	defer putTimer.UpdateSince(time.Now())

	return d.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put(key, value)
	})
}

// Delete removes the specified key from the database.
func (d *Database) Delete(key []byte) error {
	defer deleteTimer.UpdateSince(time.Now())

	return d.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Delete(key)
	})
}

// Stat returns a particular internal stat of the database.
func (d *Database) Stat(property string) (string, error) {
	stats := d.db.Stats()
	return fmt.Sprintf("%+v", stats), nil
}

// Compact is a no-op; bbolt reuses freed pages without compaction.
func (d *Database) Compact(start []byte, limit []byte) error {
	return nil
}

// Path returns the path to the database file.
func (d *Database) Path() string {
	return d.fn
}

// NewBatch creates a write-only key-value store that buffers changes to its host
// database until a final write is called.
func (d *Database) NewBatch() ethdb.Batch {
	return &batch{db: d}
}

// NewBatchWithSize creates a write-only database batch with pre-allocated buffer.
func (d *Database) NewBatchWithSize(size int) ethdb.Batch {
	return &batch{db: d, writes: make([]keyvalue, 0, size)}
}

// NewIterator creates a binary-alphabetical iterator over a subset
// of database content with a particular key prefix, starting at a particular
// initial key (or after, if it does not exist).
//
// The iterator works on a copy of the matching pairs taken in a single read
// transaction.
func (d *Database) NewIterator(prefix []byte, start []byte) ethdb.Iterator {
	it := &iterator{index: -1}
	it.err = d.view(func(b *bbolt.Bucket) error {
		c := b.Cursor()
		seek := append(append([]byte{}, prefix...), start...)
		for k, v := c.Seek(seek); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			it.keys = append(it.keys, append([]byte{}, k...))
			it.values = append(it.values, append([]byte{}, v...))
		}
		return nil
	})
	return it
}

// NewSnapshot creates a database snapshot based on the current state.
// The created snapshot will not be affected by all following mutations
// happened on the database.
func (d *Database) NewSnapshot() (ethdb.Snapshot, error) {
	snap := &snapshot{db: make(map[string][]byte)}
	err := d.view(func(b *bbolt.Bucket) error {
		return b.ForEach(func(k, v []byte) error {
			snap.db[string(k)] = append([]byte{}, v...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// keyvalue is a key-value tuple tagged with a deletion field to allow creating
// database write batches.
type keyvalue struct {
	key    []byte
	value  []byte
	delete bool
}

// batch is a write-only bbolt batch that commits changes to its host
// database when Write is called. A batch cannot be used concurrently.
type batch struct {
	db     *Database
	writes []keyvalue
	size   int
}

// Put inserts the given value into the batch for later committing.
func (b *batch) Put(key, value []byte) error {
	b.writes = append(b.writes, keyvalue{append([]byte{}, key...), append([]byte{}, value...), false})
	b.size += len(key) + len(value)
	return nil
}

// Delete inserts the key removal into the batch for later committing.
func (b *batch) Delete(key []byte) error {
	b.writes = append(b.writes, keyvalue{append([]byte{}, key...), nil, true})
	b.size += len(key)
	return nil
}

// ValueSize retrieves the amount of data queued up for writing.
func (b *batch) ValueSize() int {
	return b.size
}

// Write flushes any accumulated data to disk in one transaction.
func (b *batch) Write() error {
	defer batchWriteTimer.UpdateSince(time.Now())

	return b.db.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		for _, kv := range b.writes {
			var err error
			if kv.delete {
				err = bucket.Delete(kv.key)
			} else {
				err = bucket.Put(kv.key, kv.value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Reset resets the batch for reuse.
func (b *batch) Reset() {
	b.writes = b.writes[:0]
	b.size = 0
}

// Replay replays the batch contents.
func (b *batch) Replay(w ethdb.KeyValueWriter) error {
	for _, kv := range b.writes {
		if kv.delete {
			if err := w.Delete(kv.key); err != nil {
				return err
			}
			continue
		}
		if err := w.Put(kv.key, kv.value); err != nil {
			return err
		}
	}
	return nil
}

// iterator walks a sorted copy of the database content.
type iterator struct {
	index  int
	keys   [][]byte
	values [][]byte
	err    error
}

// Next moves the iterator to the next key/value pair. It returns whether the
// iterator is exhausted.
func (it *iterator) Next() bool {
	if it.err != nil || it.index >= len(it.keys) {
		return false
	}
	it.index++
	return it.index < len(it.keys)
}

// Error returns any accumulated error.
func (it *iterator) Error() error {
	return it.err
}

// Key returns the key of the current key/value pair, or nil if done.
func (it *iterator) Key() []byte {
	if it.index < 0 || it.index >= len(it.keys) {
		return nil
	}
	return it.keys[it.index]
}

// Value returns the value of the current key/value pair, or nil if done.
func (it *iterator) Value() []byte {
	if it.index < 0 || it.index >= len(it.values) {
		return nil
	}
	return it.values[it.index]
}

// Release releases associated resources.
func (it *iterator) Release() {
	it.index, it.keys, it.values = -1, nil, nil
}

// snapshot wraps a copy of the database content taken in one read
// transaction.
type snapshot struct {
	db   map[string][]byte
	lock sync.RWMutex
}

// Has retrieves if a key is present in the snapshot backing by a key-value
// data store.
func (snap *snapshot) Has(key []byte) (bool, error) {
	snap.lock.RLock()
	defer snap.lock.RUnlock()

	if snap.db == nil {
		return false, errSnapshotReleased
	}
	_, ok := snap.db[string(key)]
	return ok, nil
}

// Get retrieves the given key if it's present in the snapshot backing by
// key-value data store.
func (snap *snapshot) Get(key []byte) ([]byte, error) {
	snap.lock.RLock()
	defer snap.lock.RUnlock()

	if snap.db == nil {
		return nil, errSnapshotReleased
	}
	if entry, ok := snap.db[string(key)]; ok {
		return append([]byte{}, entry...), nil
	}
	return nil, ErrNotFound
}

// Release releases associated resources.
func (snap *snapshot) Release() {
	snap.lock.Lock()
	defer snap.lock.Unlock()

	snap.db = nil
}
