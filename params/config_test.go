// Copyright 2017 The go-ethereum Authors
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

package params

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultGasSchedule(t *testing.T) {
	gas := DefaultGasSchedule
	assert.Equal(t, uint64(2), gas.Base)
	assert.Equal(t, uint64(3), gas.VeryLow)
	assert.Equal(t, uint64(8), gas.Mid)
	assert.Equal(t, uint64(10), gas.High)
	assert.Equal(t, uint64(1), gas.JumpDest)
	assert.Equal(t, uint64(0), gas.Zero)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		ok     bool
	}{
		{"default", func(c *Config) {}, true},
		{"zero code size", func(c *Config) { c.MaxCodeSize = 0 }, false},
		{"zero stack", func(c *Config) { c.StackLimit = 0 }, false},
		{"negative cache", func(c *Config) { c.CacheSize = -1 }, false},
		{"negative workers", func(c *Config) { c.Workers = -2 }, false},
		{"free jumpdest", func(c *Config) { c.Gas.JumpDest = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig.Copy()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestConfigTOMLRoundTrip(t *testing.T) {
	cfg := DefaultConfig.Copy()
	cfg.ChainID = 1337
	cfg.Gas.Mid = 9

	out, err := cfg.MarshalTOML()
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(file, out, 0644))

	loaded, err := LoadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadConfigUnknownField(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(file, []byte("ChainID = 5\nBogus = 1\n"), 0644))

	_, err := LoadConfig(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bogus")
}

func TestDefaultConfigUntouchedByCopy(t *testing.T) {
	cfg := DefaultConfig.Copy()
	cfg.StackLimit = 1
	assert.Equal(t, StackLimit, DefaultConfig.StackLimit)
}
