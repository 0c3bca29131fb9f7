package main

import (
	"github.com/urfave/cli/v2"

	"github.com/bnb-chain/evm-rwasm/ethdb/shardingdb"
	"github.com/bnb-chain/evm-rwasm/params"
)

var (
	ConfigFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	VerbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value: 3,
	}
	ChainIDFlag = &cli.Uint64Flag{
		Name:  "chainid",
		Usage: "Chain identifier reported by CHAINID (overrides the config file)",
	}
	DebugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable translator debug logs",
	}

	CodeFlag = &cli.StringFlag{
		Name:  "code",
		Usage: "Contract bytecode as hex (with or without 0x prefix)",
	}
	CodeFileFlag = &cli.StringFlag{
		Name:  "codefile",
		Usage: "File containing contract bytecode as hex",
	}
	OutputFlag = &cli.StringFlag{
		Name:  "out",
		Usage: "Write the encoded program to this file",
	}
	QuietFlag = &cli.BoolFlag{
		Name:  "quiet",
		Usage: "Print only the translation summary",
	}

	InputFlag = &cli.StringFlag{
		Name:  "input",
		Usage: "Call data as hex",
	}
	GasFlag = &cli.Uint64Flag{
		Name:  "gas",
		Usage: "Gas available to the execution",
		Value: 10_000_000,
	}
	ValueFlag = &cli.Uint64Flag{
		Name:  "value",
		Usage: "Call value in wei",
	}
	ReceiverFlag = &cli.StringFlag{
		Name:  "receiver",
		Usage: "Address of the executed contract",
		Value: "0x00000000000000000000000000000000000c0de0",
	}
	SenderFlag = &cli.StringFlag{
		Name:  "sender",
		Usage: "Caller and origin of the execution",
		Value: "0x000000000000000000000000000000000000ca11",
	}
	BlockNumberFlag = &cli.Uint64Flag{
		Name:  "block.number",
		Usage: "Block number visible to the program",
	}

	DataDirFlag = &cli.StringFlag{
		Name:  "datadir",
		Usage: "Data directory for state and translations (in memory when empty)",
	}
	DBEngineFlag = &cli.StringFlag{
		Name:  "db.engine",
		Usage: "Backing database implementation to use ('pebble', 'leveldb' or 'bbolt')",
		Value: shardingdb.DBTypePebble,
	}
	DBShardsFlag = &cli.IntFlag{
		Name:  "db.shards",
		Usage: "Number of database shards, 0 disables sharding",
	}
	CacheFlag = &cli.IntFlag{
		Name:  "cache",
		Usage: "Megabytes of memory allocated to the database",
		Value: 256,
	}
	TranslationCacheFlag = &cli.IntFlag{
		Name:  "cache.translations",
		Usage: "Number of translations kept in memory (overrides the config file)",
		Value: params.TranslationCacheSize,
	}
)

var (
	globalFlags = []cli.Flag{
		ConfigFileFlag,
		VerbosityFlag,
		ChainIDFlag,
		DebugFlag,
	}
	codeFlags = []cli.Flag{
		CodeFlag,
		CodeFileFlag,
	}
	databaseFlags = []cli.Flag{
		DataDirFlag,
		DBEngineFlag,
		DBShardsFlag,
		CacheFlag,
		TranslationCacheFlag,
	}
)
