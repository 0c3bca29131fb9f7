// Copyright 2014 The go-ethereum Authors
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

// Package state provides the committed account store read by the runtime
// host.
package state

import (
	"bytes"
	"math/big"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/bnb-chain/evm-rwasm/core/rawdb"
)

var ErrMissingCode = errors.New("code not found")

// Account is the consensus representation of an account as kept by Store.
type Account struct {
	Nonce    uint64
	Balance  *big.Int
	CodeHash []byte
}

// NewEmptyAccount returns an account without balance or code.
func NewEmptyAccount() *Account {
	return &Account{
		Balance:  new(big.Int),
		CodeHash: types.EmptyCodeHash.Bytes(),
	}
}

// Empty returns whether the account is considered empty.
func (a *Account) Empty() bool {
	return a.Nonce == 0 && a.Balance.Sign() == 0 && bytes.Equal(a.CodeHash, types.EmptyCodeHash.Bytes())
}

// Reader is the read side of the store used during execution.
type Reader interface {
	Account(addr common.Address) (*Account, error)
	Code(codeHash common.Hash) ([]byte, error)
	Storage(addr common.Address, slot common.Hash) (common.Hash, error)
}

// Writer persists the storage changes of an execution.
type Writer interface {
	SetStorage(addr common.Address, slot, value common.Hash) error
}

// codeCacheSize is the byte budget of the clean code cache.
const codeCacheSize = 16 * 1024 * 1024

// Store keeps accounts, code and storage in a key-value database.
type Store struct {
	db    ethdb.KeyValueStore
	codes *fastcache.Cache // code hash -> code, entries never go stale
}

// NewStore creates a store on top of db.
func NewStore(db ethdb.KeyValueStore) *Store {
	return &Store{db: db, codes: fastcache.New(codeCacheSize)}
}

// Account returns the account of addr, or nil if it does not exist.
func (s *Store) Account(addr common.Address) (*Account, error) {
	enc := rawdb.ReadAccountRLP(s.db, addr)
	if len(enc) == 0 {
		return nil, nil
	}
	acct := new(Account)
	if err := rlp.DecodeBytes(enc, acct); err != nil {
		return nil, errors.Wrapf(err, "decode account %x", addr)
	}
	if acct.Balance == nil {
		acct.Balance = new(big.Int)
	}
	return acct, nil
}

// SetAccount writes the account of addr.
func (s *Store) SetAccount(addr common.Address, acct *Account) error {
	enc, err := rlp.EncodeToBytes(acct)
	if err != nil {
		return errors.Wrapf(err, "encode account %x", addr)
	}
	rawdb.WriteAccountRLP(s.db, addr, enc)
	return nil
}

// Code returns the bytecode with the given hash.
func (s *Store) Code(codeHash common.Hash) ([]byte, error) {
	if codeHash == types.EmptyCodeHash || codeHash == (common.Hash{}) {
		return nil, nil
	}
	if code, ok := s.codes.HasGet(nil, codeHash.Bytes()); ok {
		return code, nil
	}
	code := rawdb.ReadCode(s.db, codeHash)
	if len(code) == 0 {
		return nil, errors.Wrapf(ErrMissingCode, "hash %x", codeHash)
	}
	s.codes.Set(codeHash.Bytes(), code)
	return code, nil
}

// SetCode stores code and points the account of addr at it, creating the
// account if needed.
func (s *Store) SetCode(addr common.Address, code []byte) error {
	acct, err := s.accountOrEmpty(addr)
	if err != nil {
		return err
	}
	hash := crypto.Keccak256Hash(code)
	if len(code) > 0 {
		rawdb.WriteCode(s.db, hash, code)
		s.codes.Set(hash.Bytes(), code)
	}
	acct.CodeHash = hash.Bytes()
	return s.SetAccount(addr, acct)
}

// SetBalance overwrites the balance of addr, creating the account if needed.
func (s *Store) SetBalance(addr common.Address, amount *uint256.Int) error {
	acct, err := s.accountOrEmpty(addr)
	if err != nil {
		return err
	}
	acct.Balance = amount.ToBig()
	return s.SetAccount(addr, acct)
}

// Storage returns a storage slot of addr. Missing slots read as zero.
func (s *Store) Storage(addr common.Address, slot common.Hash) (common.Hash, error) {
	return rawdb.ReadStorage(s.db, addr, slot), nil
}

// SetStorage writes a storage slot of addr.
func (s *Store) SetStorage(addr common.Address, slot, value common.Hash) error {
	rawdb.WriteStorage(s.db, addr, slot, value)
	return nil
}

func (s *Store) accountOrEmpty(addr common.Address) (*Account, error) {
	acct, err := s.Account(addr)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		acct = NewEmptyAccount()
	}
	return acct, nil
}
