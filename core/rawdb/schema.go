// Copyright 2018 The go-ethereum Authors
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

// Package rawdb contains the low level key schema and accessors of the
// account store and the persisted translation cache.
package rawdb

import (
	"github.com/ethereum/go-ethereum/common"
)

// The fields below define the low level database schema prefixing.
var (
	// databaseVersionKey tracks the current database version.
	databaseVersionKey = []byte("DatabaseVersion")

	accountPrefix     = []byte("a") // accountPrefix + address -> rlp(account)
	codePrefix        = []byte("c") // codePrefix + code hash -> bytecode
	storagePrefix     = []byte("o") // storagePrefix + address + slot -> slot value
	translationPrefix = []byte("T") // translationPrefix + code hash -> rlp(translation)
)

// accountKey = accountPrefix + address
func accountKey(addr common.Address) []byte {
	return append(append([]byte{}, accountPrefix...), addr.Bytes()...)
}

// codeKey = codePrefix + hash
func codeKey(hash common.Hash) []byte {
	return append(append([]byte{}, codePrefix...), hash.Bytes()...)
}

// storageKey = storagePrefix + address + slot
func storageKey(addr common.Address, slot common.Hash) []byte {
	buf := make([]byte, len(storagePrefix)+common.AddressLength+common.HashLength)
	n := copy(buf, storagePrefix)
	n += copy(buf[n:], addr.Bytes())
	copy(buf[n:], slot.Bytes())
	return buf
}

// translationKey = translationPrefix + code hash
func translationKey(hash common.Hash) []byte {
	return append(append([]byte{}, translationPrefix...), hash.Bytes()...)
}
