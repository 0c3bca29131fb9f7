package translator

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/lru"
)

// TranslationCache keeps finished translations keyed by code hash.
type TranslationCache struct {
	results *lru.Cache[common.Hash, *Result]
}

// NewTranslationCache creates a cache holding up to size translations.
func NewTranslationCache(size int) *TranslationCache {
	if size <= 0 {
		size = 1
	}
	return &TranslationCache{
		results: lru.NewCache[common.Hash, *Result](size),
	}
}

func (c *TranslationCache) Get(hash common.Hash) *Result {
	res, _ := c.results.Get(hash)
	return res
}

func (c *TranslationCache) Add(hash common.Hash, res *Result) {
	c.results.Add(hash, res)
}

func (c *TranslationCache) Remove(hash common.Hash) {
	c.results.Remove(hash)
}

func (c *TranslationCache) Len() int {
	return c.results.Len()
}
