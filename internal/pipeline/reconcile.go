package pipeline

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/figdex/figdex/internal/artifact"
	"github.com/figdex/figdex/internal/cache"
	"github.com/figdex/figdex/internal/match"
	"github.com/figdex/figdex/internal/reconcile"
	"github.com/figdex/figdex/pkg/bricklink"
	"github.com/figdex/figdex/pkg/rebrickable"
)

// RunReconcile re-derives BrickLink ids for the whole catalog and folds the
// corrections into both artifacts.
func (p *Pipeline) RunReconcile(ctx context.Context) (reconcile.IDStats, error) {
	catalog, err := artifact.ReadCatalog(p.catalogPath())
	if err != nil {
		return reconcile.IDStats{}, eris.Wrap(err, "pipeline: reconcile needs the catalog stage first")
	}
	prices, err := artifact.ReadPrices(p.pricesPath())
	if err != nil {
		return reconcile.IDStats{}, err
	}

	// The match stage's assembled pool, when present, supplies values and
	// authoritative names for corrected ids.
	var pool []match.Record
	if err := artifact.ReadJSON(p.cachePath(bricksetRecordsFile), &pool); err != nil {
		if !os.IsNotExist(eris.Cause(err)) {
			return reconcile.IDStats{}, err
		}
		zap.L().Warn("pipeline: no scraped pool on disk, reconciling ids only")
	}

	r := &reconcile.IDReconciler{
		Client: rebrickable.NewClient(p.Fetch, rebrickable.Config{
			CDNBaseURL:  p.Cfg.Rebrickable.CDNBaseURL,
			SiteBaseURL: p.Cfg.Rebrickable.SiteBaseURL,
		}),
		Cache: cache.Load[*string](p.cachePath("bricklink-ids.json"), p.Cfg.Rebrickable.FlushEvery),
		Delay: p.Cfg.Rebrickable.ItemDelay,
	}

	outCatalog, outPrices, stats, err := r.Run(ctx, catalog, prices, pool)
	if err != nil {
		return stats, err
	}
	if err := artifact.WriteJSON(p.catalogPath(), outCatalog); err != nil {
		return stats, err
	}
	if err := artifact.WriteJSON(p.pricesPath(), outPrices); err != nil {
		return stats, err
	}
	return stats, nil
}

// RunPrices refreshes values from the BrickLink API, then applies the manual
// overrides file. Requires configured credentials.
func (p *Pipeline) RunPrices(ctx context.Context) (reconcile.PriceStats, error) {
	if !p.Cfg.Bricklink.Credentials.Configured() {
		return reconcile.PriceStats{}, eris.New("pipeline: bricklink credentials not configured")
	}

	prices, err := artifact.ReadPrices(p.pricesPath())
	if err != nil {
		return reconcile.PriceStats{}, err
	}

	r := &reconcile.PriceReconciler{
		Fetcher: bricklink.NewClient(bricklink.Config{
			BaseURL:     p.Cfg.Bricklink.BaseURL,
			Credentials: p.Cfg.Bricklink.Credentials,
			PairDelay:   p.Cfg.Bricklink.PairDelay,
		}),
		Cache: cache.Load[*reconcile.CachedPrice](p.cachePath("bricklink-prices.json"), p.Cfg.Bricklink.FlushEvery),
		Delay: p.Cfg.Bricklink.ItemDelay,
	}

	merged, stats, err := r.Run(ctx, prices)
	if err != nil {
		return stats, err
	}

	overrides, err := reconcile.LoadOverrides(p.Cfg.Paths.Overrides)
	if err != nil {
		return stats, err
	}
	final, _ := reconcile.ApplyOverrides(merged, overrides)

	if err := artifact.WriteJSON(p.pricesPath(), final); err != nil {
		return stats, err
	}
	return stats, nil
}
