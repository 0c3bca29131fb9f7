package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnb-chain/evm-rwasm/core/rwasm"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a := newApp()
	var out bytes.Buffer
	a.Writer = &out
	err := a.Run(append([]string{"evmtrans", "--verbosity", "0"}, args...))
	return out.String(), err
}

func TestDecodeHexString(t *testing.T) {
	b, err := decodeHexString(" 0x6001 6002\n01\r\n")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x01, 0x60, 0x02, 0x01}, b)

	_, err = decodeHexString("0x600")
	assert.Error(t, err)
	_, err = decodeHexString("zz")
	assert.Error(t, err)
}

func TestLoadBytecodeFromFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "code.hex")
	require.NoError(t, os.WriteFile(file, []byte("0x6001\n6002\n01"), 0o600))
	b, err := loadBytecode("", file)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x01, 0x60, 0x02, 0x01}, b)
}

func TestTranslateCommand(t *testing.T) {
	file := filepath.Join(t.TempDir(), "prog.bin")
	// PUSH1 4 JUMP INVALID JUMPDEST STOP
	out, err := runApp(t, "translate", "--out", file, "0x600456fe5b00")
	require.NoError(t, err)
	assert.Contains(t, out, "status:       ok")
	assert.Regexp(t, `\|\s+4\s+\|`, out)
	assert.Regexp(t, `JUMP\s+\|\s+2\s+\|\s+4\s+\|`, out)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	is, err := rwasm.Decode(data)
	require.NoError(t, err)
	assert.NotZero(t, is.Len())
}

func TestTranslateCommandErrors(t *testing.T) {
	_, err := runApp(t, "translate")
	assert.Error(t, err)

	// JUMP without a preceding PUSH
	_, err = runApp(t, "translate", "--quiet", "0x56")
	assert.Error(t, err)
}

func TestRunCommand(t *testing.T) {
	// PUSH1 2 PUSH1 3 ADD PUSH1 0 MSTORE PUSH1 32 PUSH1 0 RETURN
	code := "0x600260030160005260206000f3"
	out, err := runApp(t, "run", "--gas", "100000", code)
	require.NoError(t, err)
	assert.Contains(t, out, "exit:     return")
	assert.Contains(t, out, "0x0000000000000000000000000000000000000000000000000000000000000005")
}

func TestRunCommandRevert(t *testing.T) {
	// PUSH1 0 PUSH1 0 REVERT
	out, err := runApp(t, "run", "0x60006000fd")
	require.NoError(t, err)
	assert.Contains(t, out, "exit:     revert")
	assert.Contains(t, out, "error:")
}

func TestRunCommandPersistsStorage(t *testing.T) {
	dir := t.TempDir()
	// PUSH1 0 SLOAD PUSH1 1 ADD PUSH1 0 SSTORE PUSH1 0 SLOAD PUSH1 0 MSTORE PUSH1 32 PUSH1 0 RETURN
	code := "0x60005460010160005560005460005260206000f3"
	args := []string{"run", "--datadir", dir, "--db.engine", "bbolt"}

	out, err := runApp(t, append(args, code)...)
	require.NoError(t, err)
	assert.Contains(t, out, "0x0000000000000000000000000000000000000000000000000000000000000001")

	// Second run executes the stored code against the committed slot.
	out, err = runApp(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "0x0000000000000000000000000000000000000000000000000000000000000002")
}

func TestDumpConfig(t *testing.T) {
	out, err := runApp(t, "--chainid", "56", "dumpconfig")
	require.NoError(t, err)
	assert.Contains(t, out, "ChainID = 56")
}
