// Copyright 2020 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package rawdb

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
)

// ReadAccountRLP retrieves the encoded account of addr.
func ReadAccountRLP(db ethdb.KeyValueReader, addr common.Address) []byte {
	data, _ := db.Get(accountKey(addr))
	return data
}

// WriteAccountRLP stores the encoded account of addr.
func WriteAccountRLP(db ethdb.KeyValueWriter, addr common.Address, entry []byte) {
	if err := db.Put(accountKey(addr), entry); err != nil {
		log.Crit("Failed to store account", "err", err)
	}
}

// DeleteAccount removes the account of addr.
func DeleteAccount(db ethdb.KeyValueWriter, addr common.Address) {
	if err := db.Delete(accountKey(addr)); err != nil {
		log.Crit("Failed to delete account", "err", err)
	}
}

// ReadCode retrieves the bytecode with the given hash.
func ReadCode(db ethdb.KeyValueReader, hash common.Hash) []byte {
	data, _ := db.Get(codeKey(hash))
	return data
}

// HasCode checks if the bytecode with the given hash is present.
func HasCode(db ethdb.KeyValueReader, hash common.Hash) bool {
	ok, _ := db.Has(codeKey(hash))
	return ok
}

// WriteCode writes the provided bytecode to the database.
func WriteCode(db ethdb.KeyValueWriter, hash common.Hash, code []byte) {
	if err := db.Put(codeKey(hash), code); err != nil {
		log.Crit("Failed to store contract code", "err", err)
	}
}

// DeleteCode deletes the specified contract code from the database.
func DeleteCode(db ethdb.KeyValueWriter, hash common.Hash) {
	if err := db.Delete(codeKey(hash)); err != nil {
		log.Crit("Failed to delete contract code", "err", err)
	}
}

// ReadStorage retrieves a storage slot. Missing slots read as zero.
func ReadStorage(db ethdb.KeyValueReader, addr common.Address, slot common.Hash) common.Hash {
	data, _ := db.Get(storageKey(addr, slot))
	return common.BytesToHash(data)
}

// WriteStorage stores a storage slot, deleting it when value is zero.
func WriteStorage(db ethdb.KeyValueWriter, addr common.Address, slot, value common.Hash) {
	var err error
	if value == (common.Hash{}) {
		err = db.Delete(storageKey(addr, slot))
	} else {
		err = db.Put(storageKey(addr, slot), value.Bytes())
	}
	if err != nil {
		log.Crit("Failed to store storage slot", "err", err)
	}
}
