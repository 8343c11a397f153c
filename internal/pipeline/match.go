package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/figdex/figdex/internal/artifact"
	"github.com/figdex/figdex/internal/match"
	"github.com/figdex/figdex/internal/model"
	"github.com/figdex/figdex/pkg/brickset"
)

const bricksetRecordsFile = "brickset-records.json"

// MatchStats summarizes one bulk match stage.
type MatchStats struct {
	Pages      int
	PageErrors int
	PoolSize   int
	Matched    int
	Unmatched  int
	ByStrategy map[match.Strategy]int
}

// RunMatch scrapes the price-source listing pages, resolves every catalog
// entity against the pool, and seeds data/prices.json for matched entities.
// useCache reuses raw pages from the sqlite page cache instead of refetching.
func (p *Pipeline) RunMatch(ctx context.Context, useCache bool) (MatchStats, error) {
	stats := MatchStats{ByStrategy: map[match.Strategy]int{}}

	catalog, err := artifact.ReadCatalog(p.catalogPath())
	if err != nil {
		return stats, eris.Wrap(err, "pipeline: match needs the catalog stage first")
	}

	pool, err := p.scrapePool(ctx, useCache, &stats)
	if err != nil {
		return stats, err
	}
	stats.PoolSize = len(pool)
	// The reconcile stage reuses the assembled pool without rescraping.
	if err := artifact.WriteJSON(p.cachePath(bricksetRecordsFile), pool); err != nil {
		return stats, err
	}

	idx := match.NewIndex(pool)
	prices := model.PriceMap{}
	for _, m := range catalog {
		res := idx.Resolve(m.Name)
		stats.ByStrategy[res.Strategy]++
		if !res.Matched() {
			stats.Unmatched++
			continue
		}
		stats.Matched++
		prices[m.ID] = model.PriceRecord{
			BricklinkID: res.Record.BricklinkID,
			ValueNew:    res.Record.ValueNew,
			ValueUsed:   res.Record.ValueUsed,
		}
	}

	if err := artifact.WriteJSON(p.pricesPath(), prices); err != nil {
		return stats, err
	}

	zap.L().Info("bulk match done",
		zap.Int("pool", stats.PoolSize),
		zap.Int("matched", stats.Matched),
		zap.Int("unmatched", stats.Unmatched),
		zap.Any("by_strategy", stats.ByStrategy))

	return stats, nil
}

// scrapePool walks the listing pages and parses them into the match pool.
// Page fetch failures are counted and skipped; a later run retries them.
func (p *Pipeline) scrapePool(ctx context.Context, useCache bool, stats *MatchStats) ([]match.Record, error) {
	client := brickset.NewClient(p.Fetch, brickset.Config{
		BaseURL:    p.Cfg.Brickset.BaseURL,
		TotalPages: p.Cfg.Brickset.TotalPages,
	})

	if err := p.Store.MigratePageCache(ctx); err != nil {
		return nil, err
	}

	var pool []match.Record
	bar := progressbar.Default(int64(client.TotalPages()), "scrape listings")
	for page := 1; page <= client.TotalPages(); page++ {
		_ = bar.Add(1)
		stats.Pages++

		html := ""
		if useCache {
			cached, ok, err := p.Store.GetPage(ctx, "brickset", page)
			if err != nil {
				return nil, err
			}
			if ok {
				html = cached
			}
		}
		if html == "" {
			fetched, err := client.ListingPage(ctx, page)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				stats.PageErrors++
				zap.L().Warn("pipeline: listing page fetch failed", zap.Int("page", page), zap.Error(err))
				continue
			}
			html = fetched
			if err := p.Store.PutPage(ctx, "brickset", page, html); err != nil {
				return nil, err
			}

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(p.Cfg.Brickset.PageDelay):
			}
		}

		pool = append(pool, brickset.ParseListing(html)...)
	}
	return pool, nil
}
