package translator

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/golang/snappy"

	"github.com/bnb-chain/evm-rwasm/core/rawdb"
	"github.com/bnb-chain/evm-rwasm/core/rwasm"
	"github.com/bnb-chain/evm-rwasm/params"
)

// TranslationStore is the persistent layer below the in-memory cache.
type TranslationStore interface {
	ethdb.KeyValueReader
	ethdb.KeyValueWriter
}

type storedJumpDest struct {
	PC     uint64
	Offset uint64
}

type storedRelocation struct {
	Kind   uint8
	PCFrom uint64
	PCTo   uint64
	Site   uint64
}

// storedTranslation is the RLP layout of a persisted Result.
type storedTranslation struct {
	Status      uint8
	GasUsed     uint64
	StopPC      uint64
	Schedule    common.Hash
	Program     []byte
	JumpDests   []storedJumpDest
	Relocations []storedRelocation
}

// ScheduleHash identifies a gas schedule. Persisted translations metered
// with another schedule are not reused.
func ScheduleHash(gas params.GasSchedule) common.Hash {
	enc, err := rlp.EncodeToBytes(&gas)
	if err != nil {
		panic(err) // all fields are uint64
	}
	return crypto.Keccak256Hash(enc)
}

// EncodeResult serializes a result for persistence.
func EncodeResult(res *Result) ([]byte, error) {
	enc := storedTranslation{
		Status:   uint8(res.Status),
		GasUsed:  res.GasUsed,
		StopPC:   res.StopPC,
		Schedule: res.Schedule,
		Program:  rwasm.Encode(res.Instructions),
	}
	for pc, off := range res.JumpDests {
		enc.JumpDests = append(enc.JumpDests, storedJumpDest{PC: pc, Offset: uint64(off)})
	}
	sort.Slice(enc.JumpDests, func(i, j int) bool { return enc.JumpDests[i].PC < enc.JumpDests[j].PC })
	for _, r := range res.Relocations {
		enc.Relocations = append(enc.Relocations, storedRelocation{
			Kind:   uint8(r.Kind),
			PCFrom: r.PCFrom,
			PCTo:   r.PCTo,
			Site:   uint64(r.Site),
		})
	}
	return rlp.EncodeToBytes(&enc)
}

// DecodeResult parses the output of EncodeResult.
func DecodeResult(data []byte) (*Result, error) {
	var dec storedTranslation
	if err := rlp.DecodeBytes(data, &dec); err != nil {
		return nil, errors.Wrap(err, "decode stored translation")
	}
	program, err := rwasm.Decode(dec.Program)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Instructions: program,
		GasUsed:      dec.GasUsed,
		StopPC:       dec.StopPC,
		Schedule:     dec.Schedule,
		Status:       Status(dec.Status),
		JumpDests:    make(map[uint64]int, len(dec.JumpDests)),
	}
	for _, jd := range dec.JumpDests {
		res.JumpDests[jd.PC] = int(jd.Offset)
	}
	for _, r := range dec.Relocations {
		res.Relocations = append(res.Relocations, Relocation{
			Kind:   RelocationKind(r.Kind),
			PCFrom: r.PCFrom,
			PCTo:   r.PCTo,
			Site:   int(r.Site),
		})
	}
	return res, nil
}

// Persisted translations are snappy compressed.
func readStoredResult(db ethdb.KeyValueReader, hash common.Hash) *Result {
	blob := rawdb.ReadTranslation(db, hash)
	if len(blob) == 0 {
		return nil
	}
	res, err := decodeStored(blob)
	if err != nil {
		TranslatorDebugWarn("Dropping corrupted translation", "hash", hash, "err", err)
		return nil
	}
	return res
}

func decodeStored(blob []byte) (*Result, error) {
	data, err := snappy.Decode(nil, blob)
	if err != nil {
		return nil, errors.Wrap(err, "decompress stored translation")
	}
	return DecodeResult(data)
}

func writeStoredResult(db ethdb.KeyValueWriter, hash common.Hash, res *Result) error {
	data, err := EncodeResult(res)
	if err != nil {
		return err
	}
	rawdb.WriteTranslation(db, hash, snappy.Encode(nil, data))
	return nil
}
