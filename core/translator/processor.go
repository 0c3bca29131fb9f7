package translator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/errgroup"

	"github.com/bnb-chain/evm-rwasm/cachemetrics"
	"github.com/bnb-chain/evm-rwasm/common/gopool"
	"github.com/bnb-chain/evm-rwasm/core/rawdb"
)

// Processor serves translations from a two level cache and produces
// missing ones on demand or in the background.
type Processor struct {
	host     Host
	enabled  atomic.Bool
	cache    *TranslationCache
	store    TranslationStore // optional persistent layer
	schedule common.Hash      // gas schedule stored translations must match
	pool     *gopool.Pool

	lock     sync.Mutex // protects inflight
	inflight map[common.Hash]struct{}
}

// NewProcessor creates an enabled processor. store may be nil.
func NewProcessor(host Host, store TranslationStore) (*Processor, error) {
	if host == nil {
		host = NewHost(nil, nil)
	}
	cfg := host.Config()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pool, err := gopool.New(cfg.Workers)
	if err != nil {
		return nil, err
	}
	p := &Processor{
		host:     host,
		cache:    NewTranslationCache(cfg.CacheSize),
		store:    store,
		schedule: ScheduleHash(cfg.Gas),
		pool:     pool,
		inflight: make(map[common.Hash]struct{}),
	}
	p.enabled.Store(true)
	return p, nil
}

func (p *Processor) Enable()         { p.enabled.Store(true) }
func (p *Processor) Disable()        { p.enabled.Store(false) }
func (p *Processor) IsEnabled() bool { return p.enabled.Load() }

// Close stops the background workers.
func (p *Processor) Close() {
	p.pool.Release()
}

// Load returns a cached translation, or nil.
func (p *Processor) Load(hash common.Hash) *Result {
	if !p.IsEnabled() {
		return nil
	}
	start := time.Now()
	if res := p.cache.Get(hash); res != nil {
		cachemetrics.RecordCacheDepth(cachemetrics.CacheL1TRANSLATION)
		cachemetrics.RecordCacheMetrics(cachemetrics.CacheL1TRANSLATION, start)
		return res
	}
	if p.store == nil {
		return nil
	}
	if res := readStoredResult(p.store, hash); res != nil {
		if res.Schedule != p.schedule {
			staleCounter.Inc(1)
			TranslatorDebugInfo("Ignoring translation metered with another gas schedule", "hash", hash)
			return nil
		}
		cachemetrics.RecordCacheDepth(cachemetrics.DiskL2TRANSLATION)
		cachemetrics.RecordCacheMetrics(cachemetrics.DiskL2TRANSLATION, start)
		p.cache.Add(hash, res)
		return res
	}
	return nil
}

// TryTranslate returns the cached translation of code or translates it.
func (p *Processor) TryTranslate(hash common.Hash, code []byte) (*Result, error) {
	if res := p.Load(hash); res != nil {
		return res, nil
	}
	return p.Retranslate(hash, code)
}

// Retranslate translates code and refreshes both cache levels.
func (p *Processor) Retranslate(hash common.Hash, code []byte) (*Result, error) {
	if !p.IsEnabled() {
		return nil, ErrTranslationDisabled
	}
	start := time.Now()
	res, err := Translate(code, p.host)
	translateTimer.UpdateSince(start)
	if err != nil {
		failedCounter.Inc(1)
		return nil, err
	}
	cachemetrics.RecordCacheDepth(cachemetrics.MissTRANSLATION)
	cachemetrics.RecordCacheMetrics(cachemetrics.MissTRANSLATION, start)
	translatedCounter.Inc(1)
	if res.Status == StatusOpcodeNotFound {
		notFoundCounter.Inc(1)
	}
	p.cache.Add(hash, res)
	if p.store != nil {
		if err := writeStoredResult(p.store, hash, res); err != nil {
			log.Warn("Failed to persist translation", "hash", hash, "err", err)
		}
	}
	return res, nil
}

// TranslateAsync schedules a translation of code in the background. It is
// a no-op when the code is cached or already being translated.
func (p *Processor) TranslateAsync(hash common.Hash, code []byte) {
	if !p.IsEnabled() || p.cache.Get(hash) != nil {
		return
	}
	p.lock.Lock()
	if _, ok := p.inflight[hash]; ok {
		p.lock.Unlock()
		return
	}
	p.inflight[hash] = struct{}{}
	p.lock.Unlock()

	err := p.pool.Submit(func() {
		defer p.finish(hash)
		if _, err := p.TryTranslate(hash, code); err != nil {
			TranslatorDebugWarn("Background translation failed", "hash", hash, "err", err)
		}
	})
	if err != nil {
		asyncDropCounter.Inc(1)
		p.finish(hash)
	}
}

func (p *Processor) finish(hash common.Hash) {
	p.lock.Lock()
	delete(p.inflight, hash)
	p.lock.Unlock()
}

// Pending returns the number of background translations in flight.
func (p *Processor) Pending() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return len(p.inflight)
}

// Delete flushes the translation of hash from both cache levels.
func (p *Processor) Delete(hash common.Hash) {
	p.cache.Remove(hash)
	if p.store != nil {
		rawdb.DeleteTranslation(p.store, hash)
	}
}

// TranslateBatch translates independent code units concurrently, each with
// its own translator. Results are in input order; the first error cancels
// the remaining work.
func (p *Processor) TranslateBatch(ctx context.Context, codes [][]byte) ([]*Result, error) {
	results := make([]*Result, len(codes))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(gopool.Threads(len(codes)))
	for i, code := range codes {
		i, code := i, code
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := p.TryTranslate(crypto.Keccak256Hash(code), code)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
