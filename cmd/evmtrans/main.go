// evmtrans translates EVM bytecode to rWasm and runs the result.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/bnb-chain/evm-rwasm/core/translator"
	"github.com/bnb-chain/evm-rwasm/params"
)

var app = newApp()

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "evmtrans"
	app.Usage = "EVM to rWasm ahead-of-time translator"
	app.Flags = globalFlags
	app.Before = setupLogging
	app.Commands = []*cli.Command{
		translateCommand,
		runCommand,
		dumpConfigCommand,
	}
	return app
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(ctx *cli.Context) error {
	var (
		level    = log.FromLegacyLevel(ctx.Int(VerbosityFlag.Name))
		output   = io.Writer(os.Stderr)
		useColor = (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
	)
	if useColor {
		output = colorable.NewColorableStderr()
	}
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(output, level, useColor)))
	if ctx.Bool(DebugFlag.Name) {
		translator.EnableDebugLogs(true)
	}
	return nil
}

// loadConfig builds the effective configuration from the defaults, the
// config file and the command line.
func loadConfig(ctx *cli.Context) (*params.Config, error) {
	cfg := params.DefaultConfig.Copy()
	if file := ctx.String(ConfigFileFlag.Name); file != "" {
		var err error
		if cfg, err = params.LoadConfig(file); err != nil {
			return nil, err
		}
	}
	if ctx.IsSet(ChainIDFlag.Name) {
		cfg.ChainID = ctx.Uint64(ChainIDFlag.Name)
	}
	if ctx.IsSet(TranslationCacheFlag.Name) {
		cfg.CacheSize = ctx.Int(TranslationCacheFlag.Name)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
