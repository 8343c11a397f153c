package reconcile

import (
	"context"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/figdex/figdex/internal/cache"
	"github.com/figdex/figdex/internal/model"
	"github.com/figdex/figdex/pkg/bricklink"
)

// PriceFetcher is the slice of the BrickLink client the reconciler needs.
type PriceFetcher interface {
	PriceFor(ctx context.Context, id string) (bricklink.PriceResult, error)
}

// CachedPrice is the persisted API result for one BrickLink id. A nil entry
// in the cache marks a failed fetch; a non-nil entry with nil fields marks an
// id the guide has no data for. Both count as done.
type CachedPrice struct {
	ValueNew  *float64 `json:"valueNew"`
	ValueUsed *float64 `json:"valueUsed"`
}

// PriceStats summarizes one price reconciliation pass.
type PriceStats struct {
	UniqueIDs int
	Fetched   int
	Errors    int
	Updated   int
	Kept      int
}

// PriceReconciler refreshes price values from the BrickLink API for every
// unique id referenced by the price map.
type PriceReconciler struct {
	Fetcher PriceFetcher
	Cache   *cache.Cache[*CachedPrice]
	Delay   time.Duration
}

// Run fetches prices for all uncached ids, then merges the cached results
// into the price map. The first uncached id doubles as a credential probe;
// a failure there aborts the run before burning rate-limited calls.
func (r *PriceReconciler) Run(ctx context.Context, prices model.PriceMap) (model.PriceMap, PriceStats, error) {
	var stats PriceStats

	ids := uniqueExternalIDs(prices)
	stats.UniqueIDs = len(ids)

	probe := true
	bar := progressbar.Default(int64(len(ids)), "fetch prices")
	for _, id := range ids {
		_ = bar.Add(1)
		if _, done := r.Cache.Get(id); done {
			continue
		}

		res, err := r.Fetcher.PriceFor(ctx, id)
		if err != nil {
			if probe {
				return nil, stats, eris.Wrapf(err, "reconcile: credential probe on %s", id)
			}
			if ctx.Err() != nil {
				return nil, stats, ctx.Err()
			}
			stats.Errors++
			zap.L().Warn("reconcile: price fetch failed", zap.String("id", id), zap.Error(err))
			if err := r.Cache.Put(id, nil); err != nil {
				return nil, stats, eris.Wrap(err, "reconcile: persist price cache")
			}
			continue
		}
		probe = false
		stats.Fetched++

		entry := &CachedPrice{ValueNew: res.AvgNew, ValueUsed: res.AvgUsed}
		if err := r.Cache.Put(id, entry); err != nil {
			return nil, stats, eris.Wrap(err, "reconcile: persist price cache")
		}

		select {
		case <-ctx.Done():
			return nil, stats, ctx.Err()
		case <-time.After(r.Delay):
		}
	}
	if err := r.Cache.Flush(); err != nil {
		return nil, stats, eris.Wrap(err, "reconcile: flush price cache")
	}

	merged := make(model.PriceMap, len(prices))
	for entityID, rec := range prices {
		entry, done := r.Cache.Get(rec.BricklinkID)
		if done && entry != nil && (entry.ValueNew != nil || entry.ValueUsed != nil) {
			// Authoritative result: both fields take the API values, a nil
			// side means the guide has no data for that condition.
			rec.ValueNew = entry.ValueNew
			rec.ValueUsed = entry.ValueUsed
			stats.Updated++
		} else {
			stats.Kept++
		}
		merged[entityID] = rec
	}

	zap.L().Info("price reconciliation done",
		zap.Int("unique_ids", stats.UniqueIDs),
		zap.Int("fetched", stats.Fetched),
		zap.Int("errors", stats.Errors),
		zap.Int("updated", stats.Updated),
		zap.Int("kept", stats.Kept))

	return merged, stats, nil
}

// uniqueExternalIDs returns the distinct BrickLink ids in the price map,
// sorted so resumed runs walk the same order.
func uniqueExternalIDs(prices model.PriceMap) []string {
	seen := map[string]struct{}{}
	for _, rec := range prices {
		if rec.BricklinkID == "" {
			continue
		}
		seen[rec.BricklinkID] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
