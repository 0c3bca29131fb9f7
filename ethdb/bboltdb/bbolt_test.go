package bboltdb

import (
	"testing"

	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoltDB(t *testing.T) {
	t.Run("DatabaseSuite", func(t *testing.T) {
		dbtest.TestDatabaseSuite(t, func() ethdb.KeyValueStore {
			db, err := New(t.TempDir(), false, true)
			if err != nil {
				t.Fatal(err)
			}
			return db
		})
	})
}

func TestReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := New(dir, false, false)
	require.NoError(t, err)
	require.NoError(t, db.Put([]byte("k"), []byte("v")))
	require.NoError(t, db.Close())
	require.NoError(t, db.Close())

	db, err = New(dir, true, false)
	require.NoError(t, err)
	defer db.Close()
	v, err := db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	_, err = db.Get([]byte("missing"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Error(t, db.Put([]byte("k"), []byte("w")))
}
