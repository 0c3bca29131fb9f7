package shardingdb

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/dbtest"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testShardIndexFunc(key []byte, shardNum int) int {
	if len(key) == 0 {
		return 0
	}
	return int(key[0]) % shardNum
}

func newMemoryShards(n int) *Database {
	shards := make([]ethdb.KeyValueStore, n)
	for i := range shards {
		shards[i] = memorydb.New()
	}
	return &Database{
		cfg:            &Config{DBType: DBTypeMemory},
		shards:         shards,
		shardIndexFunc: testShardIndexFunc,
	}
}

func TestParseShardIndexes(t *testing.T) {
	tests := []struct {
		src      string
		shardNum int
		want     []int
		wantErr  bool
	}{
		{src: "0", shardNum: 8, want: []int{0}},
		{src: "0-7", shardNum: 8, want: []int{0, 1, 2, 3, 4, 5, 6, 7}},
		{src: "0-1,6-7", shardNum: 8, want: []int{0, 1, 6, 7}},
		{src: "2,3,4,5", shardNum: 8, want: []int{2, 3, 4, 5}},
		{src: "-1,0", shardNum: 8, wantErr: true},
		{src: "7-0", shardNum: 8, wantErr: true},
		{src: "0-7,8", shardNum: 8, wantErr: true},
		{src: "0->7", shardNum: 8, wantErr: true},
		{src: "1,,2", shardNum: 8, wantErr: true},
	}
	for _, test := range tests {
		got, err := parseShardIndexes(test.src, test.shardNum)
		if test.wantErr {
			assert.Error(t, err, test.src)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, test.want, got)
	}
}

func TestShardConfig(t *testing.T) {
	cfg := &Config{
		DBType:   DBTypeLeveldb,
		ShardNum: 4,
		DBPath:   "/disk0/evmtrans/state/",
		Shards: []ShardConfig{
			{DBPath: "/disk0/state/", Indexes: "0-2"},
			{Indexes: "3"},
		},
		EnableSharding: true,
	}
	require.NoError(t, cfg.SanityCheck())
	got, err := cfg.parseShards()
	require.NoError(t, err)
	assert.Equal(t, []ShardConfig{
		{DBPath: "/disk0/state/shard0000"},
		{DBPath: "/disk0/state/shard0001"},
		{DBPath: "/disk0/state/shard0002"},
		{DBPath: "/disk0/evmtrans/state/shard0003"},
	}, got)

	cfg.Shards[1].Indexes = "2-3"
	_, err = cfg.parseShards()
	assert.Error(t, err, "index conflict")

	cfg.Shards = cfg.Shards[:1]
	_, err = cfg.parseShards()
	assert.Error(t, err, "missing index")
}

func TestSanityCheck(t *testing.T) {
	assert.NoError(t, (&Config{DBType: DBTypeMemory}).SanityCheck())
	assert.Error(t, (&Config{DBType: DBTypePebble}).SanityCheck())
	assert.Error(t, (&Config{}).SanityCheck())
	assert.Error(t, (&Config{DBType: DBTypeMemory, ShardNum: 2}).SanityCheck())
	assert.Error(t, (&Config{DBType: DBTypeMemory, EnableSharding: true}).SanityCheck())
}

func TestUnsupportedType(t *testing.T) {
	_, err := New(&Config{DBType: "rocksdb", DBPath: t.TempDir()}, 0, 0, false, nil)
	assert.Error(t, err)
}

func TestSingleShardSuite(t *testing.T) {
	dbtest.TestDatabaseSuite(t, func() ethdb.KeyValueStore {
		db, err := New(&Config{DBType: DBTypeMemory}, 0, 0, false, nil)
		if err != nil {
			t.Fatal(err)
		}
		return db
	})
}

func TestShardedSuite(t *testing.T) {
	dbtest.TestDatabaseSuite(t, func() ethdb.KeyValueStore {
		db, err := New(&Config{
			DBType:         DBTypeMemory,
			EnableSharding: true,
			ShardNum:       4,
			Shards:         []ShardConfig{{Indexes: "0-3"}},
		}, 0, 0, false, nil)
		if err != nil {
			t.Fatal(err)
		}
		return db
	})
}

func TestShardingIteratorStart(t *testing.T) {
	db := newMemoryShards(3)
	for i := 0; i < 10; i++ {
		require.NoError(t, db.Put([]byte{byte(i)}, []byte{byte(i)}))
	}
	it := db.NewIterator(nil, []byte{4})
	defer it.Release()
	var got []byte
	for it.Next() {
		got = append(got, it.Value()[0])
	}
	assert.Equal(t, []byte{4, 5, 6, 7, 8, 9}, got)
}

func TestShardRouting(t *testing.T) {
	db := newMemoryShards(4)
	for i := 0; i < 16; i++ {
		require.NoError(t, db.Put([]byte{byte(i), 0xff}, []byte{byte(i)}))
	}
	for i, shard := range db.shards {
		for k := 0; k < 16; k++ {
			has, err := shard.Has([]byte{byte(k), 0xff})
			require.NoError(t, err)
			assert.Equal(t, k%4 == i, has, "key %d shard %d", k, i)
		}
	}
	v, err := db.Get([]byte{5, 0xff})
	require.NoError(t, err)
	assert.Equal(t, []byte{5}, v)

	require.NoError(t, db.Delete([]byte{5, 0xff}))
	has, err := db.Has([]byte{5, 0xff})
	require.NoError(t, err)
	assert.False(t, has)
}

func TestShardingBatch(t *testing.T) {
	db := newMemoryShards(3)
	batch := db.NewBatch()
	for i := 0; i < 9; i++ {
		require.NoError(t, batch.Put([]byte{byte(i)}, []byte("v")))
	}
	require.NoError(t, batch.Delete([]byte{4}))
	assert.Equal(t, 9*2+1, batch.ValueSize())

	has, _ := db.Has([]byte{1})
	assert.False(t, has, "not written before Write")
	require.NoError(t, batch.Write())
	for i := 0; i < 9; i++ {
		has, err := db.Has([]byte{byte(i)})
		require.NoError(t, err)
		assert.Equal(t, i != 4, has)
	}

	replica := memorydb.New()
	require.NoError(t, batch.Replay(replica))
	assert.Equal(t, 8, replica.Len())

	batch.Reset()
	assert.Equal(t, 0, batch.ValueSize())
}

func TestShardingIterator(t *testing.T) {
	db := newMemoryShards(3)
	var want []string
	for i := 0; i < 12; i++ {
		key := []byte(fmt.Sprintf("k%02d", i))
		require.NoError(t, db.Put(key, key))
		want = append(want, string(key))
	}
	require.NoError(t, db.Put([]byte("other"), nil))

	it := db.NewIterator([]byte("k"), nil)
	defer it.Release()
	var got []string
	for it.Next() {
		assert.True(t, bytes.Equal(it.Key(), it.Value()))
		got = append(got, string(it.Key()))
	}
	require.NoError(t, it.Error())
	assert.Equal(t, want, got, "keys come back in global order")
	assert.False(t, it.Next())
	assert.Nil(t, it.Key())
}

func TestShardingSnapshot(t *testing.T) {
	db := newMemoryShards(2)
	require.NoError(t, db.Put([]byte{1}, []byte("a")))
	snap, err := db.NewSnapshot()
	require.NoError(t, err)
	defer snap.Release()

	require.NoError(t, db.Put([]byte{1}, []byte("b")))
	require.NoError(t, db.Put([]byte{2}, []byte("c")))

	v, err := snap.Get([]byte{1})
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), v)
	has, err := snap.Has([]byte{2})
	require.NoError(t, err)
	assert.False(t, has)
}

func TestOpenShards(t *testing.T) {
	for _, typ := range []string{DBTypeLeveldb, DBTypePebble, DBTypeBbolt} {
		t.Run(typ, func(t *testing.T) {
			cfg := &Config{
				DBType:         typ,
				DBPath:         t.TempDir(),
				EnableSharding: true,
				ShardNum:       2,
				Shards:         []ShardConfig{{Indexes: "0-1"}},
			}
			db, err := New(cfg, 32, 32, false, nil)
			require.NoError(t, err)
			require.NoError(t, db.Put([]byte{0x01}, []byte{0x01}))
			require.NoError(t, db.Put([]byte{0x02}, []byte{0x02}))
			assert.Equal(t, 2, db.ShardNum())
			stat, err := db.Stat("")
			require.NoError(t, err)
			assert.Contains(t, stat, "[shard 1]")
			require.NoError(t, db.Close())
		})
	}
}
