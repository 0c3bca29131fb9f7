package translator

import "github.com/ethereum/go-ethereum/metrics"

var (
	translatedCounter = metrics.NewRegisteredCounter("translator/translated", nil)
	failedCounter     = metrics.NewRegisteredCounter("translator/failed", nil)
	notFoundCounter   = metrics.NewRegisteredCounter("translator/opcodenotfound", nil)
	translateTimer    = metrics.NewRegisteredTimer("translator/duration", nil)
	asyncDropCounter  = metrics.NewRegisteredCounter("translator/async/dropped", nil)
	staleCounter      = metrics.NewRegisteredCounter("translator/store/stale", nil)
)
