// Copyright 2016 The go-ethereum Authors
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
	"bufio"
	"bytes"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/cockroachdb/errors"
	"github.com/naoina/toml"
)

// Config holds the settings shared by the translator, the executor and the
// translation cache.
type Config struct {
	ChainID     uint64 // Chain identifier reported by CHAINID
	MaxCodeSize int    // Largest bytecode accepted for translation
	StackLimit  int    // Depth of the emulated operand stack, in words
	MemoryLimit uint64 // Upper bound of executor memory, in bytes

	CacheSize int // Number of translations kept in the in-memory cache
	Workers   int // Background translation workers, 0 picks a default

	Gas GasSchedule
}

// GasSchedule lists the static cost tiers charged by translated code.
type GasSchedule struct {
	Zero       uint64
	Base       uint64
	VeryLow    uint64
	Low        uint64
	Mid        uint64
	High       uint64
	Ext        uint64
	JumpDest   uint64
	WarmAccess uint64
	Keccak256  uint64
	Exp        uint64
	Log        uint64
	Create     uint64
	Blockhash  uint64
}

// DefaultConfig contains the settings used when no config file is given.
var DefaultConfig = Config{
	ChainID:     1,
	MaxCodeSize: MaxCodeSize,
	StackLimit:  StackLimit,
	MemoryLimit: MemoryLimit,
	CacheSize:   TranslationCacheSize,
	Workers:     0,
	Gas:         DefaultGasSchedule,
}

// Copy returns a deep copy of the config.
func (c *Config) Copy() *Config {
	cpy := *c
	return &cpy
}

// Validate checks the config for values the translator cannot work with.
func (c *Config) Validate() error {
	switch {
	case c.MaxCodeSize <= 0:
		return errors.Newf("invalid MaxCodeSize %d", c.MaxCodeSize)
	case c.StackLimit <= 0:
		return errors.Newf("invalid StackLimit %d", c.StackLimit)
	case c.CacheSize < 0:
		return errors.Newf("invalid CacheSize %d", c.CacheSize)
	case c.Workers < 0:
		return errors.Newf("invalid Workers %d", c.Workers)
	}
	if c.Gas.JumpDest == 0 {
		return errors.New("gas schedule must charge for JUMPDEST")
	}
	return nil
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return errors.Newf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// LoadConfig reads a TOML file on top of the default config.
func LoadConfig(file string) (*Config, error) {
	cfg := DefaultConfig.Copy()
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config file %s", file)
	}
	return cfg, nil
}

// MarshalTOML renders the config in the format accepted by LoadConfig.
func (c *Config) MarshalTOML() ([]byte, error) {
	out, err := tomlSettings.Marshal(c)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString("# evmtrans configuration\n\n")
	buf.Write(out)
	return buf.Bytes(), nil
}
