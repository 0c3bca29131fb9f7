// Copyright 2025 The go-ethereum Authors
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

// ReadTranslation retrieves the encoded translation of the code with the
// given hash.
func ReadTranslation(db ethdb.KeyValueReader, codeHash common.Hash) []byte {
	data, _ := db.Get(translationKey(codeHash))
	return data
}

// HasTranslation checks if a translation of the code is stored.
func HasTranslation(db ethdb.KeyValueReader, codeHash common.Hash) bool {
	ok, _ := db.Has(translationKey(codeHash))
	return ok
}

// WriteTranslation stores the encoded translation of the code.
func WriteTranslation(db ethdb.KeyValueWriter, codeHash common.Hash, entry []byte) {
	if err := db.Put(translationKey(codeHash), entry); err != nil {
		log.Crit("Failed to store translation", "err", err)
	}
}

// DeleteTranslation removes the translation of the code.
func DeleteTranslation(db ethdb.KeyValueWriter, codeHash common.Hash) {
	if err := db.Delete(translationKey(codeHash)); err != nil {
		log.Crit("Failed to delete translation", "err", err)
	}
}
