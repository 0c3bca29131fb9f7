package shardingdb

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Supported storage engines of a shard.
const (
	DBTypePebble  = "pebble"
	DBTypeLeveldb = "leveldb"
	DBTypeBbolt   = "bbolt"
	DBTypeMemory  = "memorydb"
)

// Config is the configuration of the sharding db
type Config struct {
	Namespace      string // metrics namespace of the shards
	EnableSharding bool   // whether to enable sharding
	DBType         string // the engine of every shard, such as "leveldb" or "pebble"
	DBPath         string // the default root path of the shards
	ShardNum       int    // the number of shards
	Shards         []ShardConfig
}

// ShardConfig is the configuration of a shard
type ShardConfig struct {
	// the specific root path of the shard
	// the shard path will be {DBPath}/shard0000, {DBPath}/shard0001, ...
	DBPath string
	// Supports multiple shard index formats to simplify configuration,
	// such as "0-7" or "0-1,6-7" or "2,3,4,5"
	Indexes string
}

func (c *Config) SanityCheck() error {
	if c.DBType == "" {
		return errors.New("dbtype must be set")
	}
	if c.DBType != DBTypeMemory && c.DBPath == "" {
		return errors.New("dbpath must be set")
	}
	if c.EnableSharding {
		if c.ShardNum <= 0 {
			return errors.New("shardnum must be greater than 0")
		}
		if len(c.Shards) == 0 || len(c.Shards) > c.ShardNum {
			return errors.New("shards must be set and less than or equal to shardnum")
		}
		for _, shard := range c.Shards {
			if shard.Indexes == "" {
				return errors.New("indexes in shards must be set")
			}
		}
	} else {
		if c.ShardNum != 0 || len(c.Shards) > 0 {
			return errors.New("shards must be empty when enable sharding is false")
		}
	}
	return nil
}

// parseShards parses the shards from the config
func (c *Config) parseShards() ([]ShardConfig, error) {
	if !c.EnableSharding {
		return []ShardConfig{{DBPath: c.DBPath}}, nil
	}
	shards := make(map[int]ShardConfig)
	for _, shard := range c.Shards {
		indexes, err := parseShardIndexes(shard.Indexes, c.ShardNum)
		if err != nil {
			return nil, err
		}
		for _, index := range indexes {
			if _, ok := shards[index]; ok {
				return nil, errors.Newf("shard index %d conflict in %v", index, shard)
			}
			path := shard.DBPath
			if path == "" {
				path = c.DBPath
			}
			// the index is useless later, so ignore it
			shards[index] = ShardConfig{
				DBPath: filepath.Join(path, fmt.Sprintf("shard%04d", index)),
			}
		}
	}
	if len(shards) != c.ShardNum {
		return nil, errors.Newf("shard num not match, expect %d, got %d", c.ShardNum, len(shards))
	}
	ret := make([]ShardConfig, 0, len(shards))
	for i := 0; i < c.ShardNum; i++ {
		ret = append(ret, shards[i])
	}
	return ret, nil
}

// parseShardIndexes parses the shard indexes from the string
func parseShardIndexes(src string, shardNum int) ([]int, error) {
	items := strings.Split(src, ",")
	ret := make([]int, 0, len(items))
	for _, item := range items {
		abbrs := strings.Split(item, "-")
		if len(abbrs) > 2 {
			return nil, errors.Newf("invalid shard format: %s", item)
		}
		from, err := parseShardIndex(abbrs[0], shardNum)
		if err != nil {
			return nil, err
		}
		if len(abbrs) == 1 {
			ret = append(ret, from)
			continue
		}
		to, err := parseShardIndex(abbrs[1], shardNum)
		if err != nil {
			return nil, err
		}
		if from >= to {
			return nil, errors.Newf("invalid shard format: %s", item)
		}
		for ; from <= to; from++ {
			ret = append(ret, from)
		}
	}
	return ret, nil
}

func parseShardIndex(s string, shardNum int) (int, error) {
	index, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Newf("invalid shard format: %s", s)
	}
	if index < 0 || index >= shardNum {
		return 0, errors.Newf("shard index %d out of range, expect [0, %d)", index, shardNum)
	}
	return index, nil
}
