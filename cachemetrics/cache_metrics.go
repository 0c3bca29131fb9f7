package cachemetrics

import (
	"time"

	"github.com/ethereum/go-ethereum/metrics"
)

type cacheLayerName string

const (
	CacheL1TRANSLATION cacheLayerName = "CACHE_L1_TRANSLATION"
	DiskL2TRANSLATION  cacheLayerName = "DISK_L2_TRANSLATION"
	MissTRANSLATION    cacheLayerName = "MISS_TRANSLATION"
	CacheL1ACCOUNT     cacheLayerName = "CACHE_L1_ACCOUNT"
	DiskL2ACCOUNT      cacheLayerName = "DISK_L2_ACCOUNT"
	CacheL1STORAGE     cacheLayerName = "CACHE_L1_STORAGE"
	DiskL2STORAGE      cacheLayerName = "DISK_L2_STORAGE"
)

var (
	cacheL1TranslationTimer = metrics.NewRegisteredTimer("cache/cost/translation/layer1", nil)
	diskL2TranslationTimer  = metrics.NewRegisteredTimer("cache/cost/translation/layer2", nil)
	missTranslationTimer    = metrics.NewRegisteredTimer("cache/cost/translation/miss", nil)
	cacheL1AccountTimer     = metrics.NewRegisteredTimer("cache/cost/account/layer1", nil)
	diskL2AccountTimer      = metrics.NewRegisteredTimer("cache/cost/account/layer2", nil)
	cacheL1StorageTimer     = metrics.NewRegisteredTimer("cache/cost/storage/layer1", nil)
	diskL2StorageTimer      = metrics.NewRegisteredTimer("cache/cost/storage/layer2", nil)

	cacheL1TranslationCounter = metrics.NewRegisteredCounter("cache/count/translation/layer1", nil)
	diskL2TranslationCounter  = metrics.NewRegisteredCounter("cache/count/translation/layer2", nil)
	missTranslationCounter    = metrics.NewRegisteredCounter("cache/count/translation/miss", nil)
	cacheL1AccountCounter     = metrics.NewRegisteredCounter("cache/count/account/layer1", nil)
	diskL2AccountCounter      = metrics.NewRegisteredCounter("cache/count/account/layer2", nil)
	cacheL1StorageCounter     = metrics.NewRegisteredCounter("cache/count/storage/layer1", nil)
	diskL2StorageCounter      = metrics.NewRegisteredCounter("cache/count/storage/layer2", nil)
)

// mark the info of total hit counts of each layers
func RecordCacheDepth(metricsName cacheLayerName) {
	if counter := depthCounter(metricsName); counter != nil {
		counter.Inc(1)
	}
}

// mark the delays of each layers
func RecordCacheMetrics(metricsName cacheLayerName, start time.Time) {
	if timer := costTimer(metricsName); timer != nil {
		timer.UpdateSince(start)
	}
}

func depthCounter(metricsName cacheLayerName) metrics.Counter {
	switch metricsName {
	case CacheL1TRANSLATION:
		return cacheL1TranslationCounter
	case DiskL2TRANSLATION:
		return diskL2TranslationCounter
	case MissTRANSLATION:
		return missTranslationCounter
	case CacheL1ACCOUNT:
		return cacheL1AccountCounter
	case DiskL2ACCOUNT:
		return diskL2AccountCounter
	case CacheL1STORAGE:
		return cacheL1StorageCounter
	case DiskL2STORAGE:
		return diskL2StorageCounter
	}
	return nil
}

func costTimer(metricsName cacheLayerName) metrics.Timer {
	switch metricsName {
	case CacheL1TRANSLATION:
		return cacheL1TranslationTimer
	case DiskL2TRANSLATION:
		return diskL2TranslationTimer
	case MissTRANSLATION:
		return missTranslationTimer
	case CacheL1ACCOUNT:
		return cacheL1AccountTimer
	case DiskL2ACCOUNT:
		return diskL2AccountTimer
	case CacheL1STORAGE:
		return cacheL1StorageTimer
	case DiskL2STORAGE:
		return diskL2StorageTimer
	}
	return nil
}
