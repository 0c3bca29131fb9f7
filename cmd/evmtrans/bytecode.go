package main

import (
	"bufio"
	"encoding/hex"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
)

// codeFromContext reads the bytecode given by --code, --codefile or the
// first argument.
func codeFromContext(ctx *cli.Context) ([]byte, error) {
	hexArg, fileArg := ctx.String(CodeFlag.Name), ctx.String(CodeFileFlag.Name)
	if hexArg == "" && fileArg == "" {
		hexArg = ctx.Args().First()
	}
	if hexArg == "" && fileArg == "" {
		return nil, errors.New("one of --code or --codefile is required")
	}
	return loadBytecode(hexArg, fileArg)
}

func loadBytecode(hexArg, fileArg string) ([]byte, error) {
	if hexArg != "" {
		return decodeHexString(hexArg)
	}
	// Read file and concatenate non-whitespace characters
	f, err := os.Open(fileArg)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var b strings.Builder
	rd := bufio.NewReader(f)
	for {
		line, err := rd.ReadString('\n')
		b.WriteString(line)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return decodeHexString(b.String())
}

func decodeHexString(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "0x")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	if len(s)%2 == 1 { // odd length hex
		return nil, errors.Newf("hex string has odd length: %d", len(s))
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "decode hex")
	}
	return data, nil
}
