package main

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/urfave/cli/v2"

	"github.com/bnb-chain/evm-rwasm/core/host"
	"github.com/bnb-chain/evm-rwasm/core/rawdb"
	"github.com/bnb-chain/evm-rwasm/core/rwasm/exec"
	"github.com/bnb-chain/evm-rwasm/core/state"
	"github.com/bnb-chain/evm-rwasm/core/translator"
	"github.com/bnb-chain/evm-rwasm/ethdb/shardingdb"
)

var runCommand = &cli.Command{
	Action:    runCmd,
	Name:      "run",
	Usage:     "Translate and execute bytecode",
	ArgsUsage: "[<hex code>]",
	Flags: append(append([]cli.Flag{
		InputFlag,
		GasFlag,
		ValueFlag,
		ReceiverFlag,
		SenderFlag,
		BlockNumberFlag,
	}, codeFlags...), databaseFlags...),
	Description: `
The run command installs the code at the receiver address, translates it
through the translation cache and executes it. Without code the code already
stored at the receiver is run. With --datadir the state and the translations
persist across runs; storage is committed only when the execution succeeds.`,
}

// openDatabase opens the persistent store under --datadir, or a memory
// database without one.
func openDatabase(ctx *cli.Context) (ethdb.KeyValueStore, error) {
	dir := ctx.String(DataDirFlag.Name)
	if dir == "" {
		return memorydb.New(), nil
	}
	cfg := &shardingdb.Config{
		Namespace: "evmtrans/db/",
		DBType:    ctx.String(DBEngineFlag.Name),
		DBPath:    dir,
	}
	if n := ctx.Int(DBShardsFlag.Name); n > 0 {
		cfg.EnableSharding = true
		cfg.ShardNum = n
		cfg.Shards = []shardingdb.ShardConfig{{Indexes: fmt.Sprintf("0-%d", n-1)}}
		if n == 1 {
			cfg.Shards[0].Indexes = "0"
		}
	}
	db, err := shardingdb.New(cfg, ctx.Int(CacheFlag.Name), 256, false, nil)
	if err != nil {
		return nil, err
	}
	if version := rawdb.ReadDatabaseVersion(db); version == nil {
		rawdb.WriteDatabaseVersion(db, rawdb.DatabaseVersion)
	} else if *version != rawdb.DatabaseVersion {
		db.Close()
		return nil, errors.Newf("database version %d, want %d", *version, rawdb.DatabaseVersion)
	}
	return db, nil
}

func runCmd(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	input, err := hexutil.Decode(prefixed(ctx.String(InputFlag.Name)))
	if err != nil {
		return errors.Wrap(err, "invalid --input")
	}
	if !common.IsHexAddress(ctx.String(ReceiverFlag.Name)) || !common.IsHexAddress(ctx.String(SenderFlag.Name)) {
		return errors.New("invalid --receiver or --sender address")
	}
	receiver := common.HexToAddress(ctx.String(ReceiverFlag.Name))
	sender := common.HexToAddress(ctx.String(SenderFlag.Name))

	db, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	store := state.NewStore(db)

	code, err := installCode(ctx, store, receiver)
	if err != nil {
		return err
	}
	processor, err := translator.NewProcessor(translator.NewHost(cfg, nil), db)
	if err != nil {
		return err
	}
	defer processor.Close()

	start := time.Now()
	res, err := processor.TryTranslate(crypto.Keccak256Hash(code), code)
	if err != nil {
		return err
	}
	log.Debug("Translated code", "size", len(code), "instructions", res.Instructions.Len(), "elapsed", time.Since(start))

	gas := ctx.Uint64(GasFlag.Name)
	env := &host.StaticContext{
		Chain:    cfg.ChainID,
		Number:   ctx.Uint64(BlockNumberFlag.Name),
		Time:     uint64(time.Now().Unix()),
		GasLimit: gas,
		Origin:   sender,
	}
	h := host.NewStateHost(env, store, cfg)
	h.Warm(receiver, sender)

	contract := &exec.Contract{
		Address: receiver,
		Caller:  sender,
		Value:   uint256.NewInt(ctx.Uint64(ValueFlag.Name)),
		Input:   input,
		Code:    code,
	}
	execCfg := exec.Config{StackLimit: cfg.StackLimit, MemoryLimit: cfg.MemoryLimit}
	out, runErr := exec.RunTranslation(res, h, contract, gas, execCfg)
	if out == nil {
		return runErr
	}

	w := ctx.App.Writer
	fmt.Fprintf(w, "exit:     %v\n", out.Exit)
	fmt.Fprintf(w, "gas used: %d\n", out.GasUsed)
	fmt.Fprintf(w, "output:   %s\n", hexutil.Encode(out.ReturnData))
	if runErr != nil {
		fmt.Fprintf(w, "error:    %v\n", runErr)
	}
	for i, l := range h.Logs() {
		fmt.Fprintf(w, "log %d: topics=%v data=%s\n", i, l.Topics, hexutil.Encode(l.Data))
	}
	if runErr == nil {
		return h.Commit(store)
	}
	return nil
}

// installCode stores the code from the command line at addr, or loads the
// code already there.
func installCode(ctx *cli.Context, store *state.Store, addr common.Address) ([]byte, error) {
	code, err := codeFromContext(ctx)
	if err == nil {
		return code, store.SetCode(addr, code)
	}
	acct, aerr := store.Account(addr)
	if aerr != nil {
		return nil, aerr
	}
	if acct == nil {
		return nil, err
	}
	return store.Code(common.BytesToHash(acct.CodeHash))
}

func prefixed(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s
	}
	return "0x" + s
}
