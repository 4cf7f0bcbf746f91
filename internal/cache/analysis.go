package cache

import (
	"fmt"

	"github.com/dgraph-io/ristretto"
	"github.com/jason-s-yu/chinchon/internal/engine"
	"github.com/jason-s-yu/chinchon/internal/models"
)

// Analysis is the order-independent part of a hand's analysis.
type Analysis struct {
	Slots   engine.Slots
	Missing engine.CardSet
	Advice  engine.FinishAdvice
}

// AnalysisCache memoizes Analyze by the set of cards held. Hand order never changes the
// result, so the key is the hand's card mask plus the flexible-ending flag.
type AnalysisCache struct {
	cache *ristretto.Cache
}

// NewAnalysisCache creates a cache bounded by maxCost entries.
func NewAnalysisCache(maxCost int64) (*AnalysisCache, error) {
	if maxCost <= 0 {
		maxCost = 1 << 20
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxCost * 10,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("creating analysis cache: %w", err)
	}
	return &AnalysisCache{cache: c}, nil
}

func analysisKey(hand []models.Card, flexible bool) uint64 {
	key := uint64(engine.NewCardSet(hand...))
	if flexible {
		// Card keys stop at bit 48.
		key |= 1 << 63
	}
	return key
}

// Analyze returns the cached analysis of hand, computing and storing it on a miss.
// hit reports whether the value came from the cache.
func (a *AnalysisCache) Analyze(hand []models.Card, flexible bool) (res Analysis, hit bool) {
	key := analysisKey(hand, flexible)
	if v, ok := a.cache.Get(key); ok {
		if res, ok := v.(Analysis); ok {
			return res, true
		}
	}

	res = Compute(hand, flexible)
	a.cache.Set(key, res, 1)
	return res, false
}

// Compute analyzes hand without touching any cache.
func Compute(hand []models.Card, flexible bool) Analysis {
	slots := engine.Analyze(hand)
	l0, l1 := slots.Lengths()
	return Analysis{
		Slots:   slots,
		Missing: engine.MissingCards(slots, hand),
		Advice:  engine.AdviseToFinish(l0, l1, flexible),
	}
}

// Wait blocks until pending writes are visible to Get.
func (a *AnalysisCache) Wait() {
	a.cache.Wait()
}

func (a *AnalysisCache) Close() {
	a.cache.Close()
}
