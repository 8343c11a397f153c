// Package reconcile implements the two correction passes that run after the
// bulk name match: BrickLink identifier lookup via Rebrickable detail pages,
// and price refresh via the BrickLink API.
package reconcile

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/figdex/figdex/internal/cache"
	"github.com/figdex/figdex/internal/match"
	"github.com/figdex/figdex/internal/model"
	"github.com/figdex/figdex/pkg/rebrickable"
)

// IDStats summarizes one identifier reconciliation pass.
type IDStats struct {
	Processed  int
	Fetched    int
	Extracted  int
	FetchErrs  int
	Corrected  int
	Added      int
	Renamed    int
	WithoutID  int
	UniqueIDs  int
	Duplicates int
}

// DetailFetcher is the slice of the Rebrickable client the reconciler needs.
type DetailFetcher interface {
	MinifigPage(ctx context.Context, figNum string) (string, error)
}

// IDReconciler re-derives the BrickLink id for every catalog entity from its
// Rebrickable detail page and folds corrections back into the price map.
type IDReconciler struct {
	Client DetailFetcher
	// Cache maps catalog id to the extracted BrickLink id; nil marks an
	// entity whose page yielded nothing, so it is not retried.
	Cache *cache.Cache[*string]
	Delay time.Duration
}

// Run walks the whole catalog. The returned catalog carries authoritative
// names from the external pool; the returned price map has corrected ids and
// refreshed values. Only cache write failures and context cancellation abort.
func (r *IDReconciler) Run(ctx context.Context, catalog []model.Minifig, prices model.PriceMap, pool []match.Record) ([]model.Minifig, model.PriceMap, IDStats, error) {
	var stats IDStats

	bar := progressbar.Default(int64(len(catalog)), "reconcile ids")
	for _, m := range catalog {
		stats.Processed++
		_ = bar.Add(1)
		if _, done := r.Cache.Get(m.ID); done {
			continue
		}

		id, err := r.lookup(ctx, m.ID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, stats, ctx.Err()
			}
			stats.FetchErrs++
			zap.L().Warn("reconcile: detail page fetch failed", zap.String("id", m.ID), zap.Error(err))
		} else {
			stats.Fetched++
		}
		if err := r.Cache.Put(m.ID, id); err != nil {
			return nil, nil, stats, eris.Wrap(err, "reconcile: persist id cache")
		}

		select {
		case <-ctx.Done():
			return nil, nil, stats, ctx.Err()
		case <-time.After(r.Delay):
		}
	}
	if err := r.Cache.Flush(); err != nil {
		return nil, nil, stats, eris.Wrap(err, "reconcile: flush id cache")
	}

	byExternalID := make(map[string]match.Record, len(pool))
	for _, rec := range pool {
		byExternalID[rec.BricklinkID] = rec
	}

	out := make([]model.Minifig, len(catalog))
	copy(out, catalog)
	merged := make(model.PriceMap, len(prices))
	for k, v := range prices {
		merged[k] = v
	}

	for i, m := range out {
		extracted, _ := r.Cache.Get(m.ID)
		if extracted == nil {
			stats.WithoutID++
			continue
		}
		stats.Extracted++

		rec, exists := merged[m.ID]
		external, inPool := byExternalID[*extracted]
		switch {
		case !exists:
			rec = model.PriceRecord{BricklinkID: *extracted}
			if inPool {
				rec.ValueNew = external.ValueNew
				rec.ValueUsed = external.ValueUsed
			}
			merged[m.ID] = rec
			stats.Added++
		case rec.BricklinkID != *extracted:
			rec.BricklinkID = *extracted
			// Refresh values from the external pool when it knows the
			// corrected id; otherwise the old values stand until the price
			// stage revisits them.
			if inPool {
				rec.ValueNew = external.ValueNew
				rec.ValueUsed = external.ValueUsed
			}
			merged[m.ID] = rec
			stats.Corrected++
		}

		if inPool && external.Name != "" && external.Name != m.Name {
			out[i].Name = external.Name
			stats.Renamed++
		}
	}

	seen := map[string]int{}
	for _, rec := range merged {
		seen[rec.BricklinkID]++
	}
	stats.UniqueIDs = len(seen)
	for _, n := range seen {
		if n > 1 {
			stats.Duplicates++
		}
	}

	zap.L().Info("identifier reconciliation done",
		zap.Int("processed", stats.Processed),
		zap.Int("extracted", stats.Extracted),
		zap.Int("fetch_errors", stats.FetchErrs),
		zap.Int("corrected", stats.Corrected),
		zap.Int("added", stats.Added),
		zap.Int("renamed", stats.Renamed),
		zap.Int("without_id", stats.WithoutID),
		zap.Int("unique_ids", stats.UniqueIDs),
		zap.Int("duplicate_ids", stats.Duplicates))

	return out, merged, stats, nil
}

// lookup fetches one detail page and extracts the BrickLink id. A fetch error
// or an extraction miss both yield nil, recorded as a negative cache entry.
func (r *IDReconciler) lookup(ctx context.Context, figNum string) (*string, error) {
	html, err := r.Client.MinifigPage(ctx, figNum)
	if err != nil {
		return nil, err
	}
	id, ok := rebrickable.ExtractBricklinkID(html)
	if !ok {
		return nil, nil
	}
	return &id, nil
}
