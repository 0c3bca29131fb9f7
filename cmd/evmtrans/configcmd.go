package main

import (
	"github.com/urfave/cli/v2"
)

var dumpConfigCommand = &cli.Command{
	Action:      dumpConfig,
	Name:        "dumpconfig",
	Usage:       "Export configuration values in a TOML format",
	ArgsUsage:   "",
	Flags:       []cli.Flag{TranslationCacheFlag},
	Description: `Export configuration values in TOML format (to stdout by default).`,
}

func dumpConfig(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	out, err := cfg.MarshalTOML()
	if err != nil {
		return err
	}
	_, err = ctx.App.Writer.Write(out)
	return err
}
