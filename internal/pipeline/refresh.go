package pipeline

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/figdex/figdex/internal/artifact"
	"github.com/figdex/figdex/internal/model"
)

// Report is the consistency summary printed after a refresh.
type Report struct {
	CatalogSize   int
	Priced        int
	Coverage      float64
	MissingSample []string
}

const missingSampleCap = 10

// RunRefresh executes the full stage sequence. Without useCache the cache
// directory is cleared first so every source is refetched; the sqlite page
// cache is refreshed in place by the match stage.
func (p *Pipeline) RunRefresh(ctx context.Context, useCache bool) (*Report, error) {
	if !useCache {
		if err := os.RemoveAll(p.Cfg.Paths.CacheDir); err != nil {
			return nil, eris.Wrap(err, "pipeline: clear cache dir")
		}
	}

	run, err := p.Store.CreateRun(ctx, "refresh")
	if err != nil {
		return nil, err
	}

	type stage struct {
		name string
		fn   func(context.Context) (string, error)
	}
	stages := []stage{
		{"catalog", func(ctx context.Context) (string, error) {
			s, err := p.RunCatalog(ctx)
			return fmt.Sprintf("%d minifigs, %d sets", s.Minifigs, s.SetsRetained), err
		}},
		{"match", func(ctx context.Context) (string, error) {
			s, err := p.RunMatch(ctx, useCache)
			return fmt.Sprintf("%d matched, %d unmatched, pool %d", s.Matched, s.Unmatched, s.PoolSize), err
		}},
		{"reconcile", func(ctx context.Context) (string, error) {
			s, err := p.RunReconcile(ctx)
			return fmt.Sprintf("%d corrected, %d added, %d without id", s.Corrected, s.Added, s.WithoutID), err
		}},
		{"prices", func(ctx context.Context) (string, error) {
			s, err := p.RunPrices(ctx)
			return fmt.Sprintf("%d updated, %d kept, %d errors", s.Updated, s.Kept, s.Errors), err
		}},
	}

	for _, st := range stages {
		rec, err := p.Store.StartStage(ctx, run.ID, st.name)
		if err != nil {
			return nil, err
		}
		detail, err := st.fn(ctx)
		if err != nil {
			_ = p.Store.FinishStage(ctx, rec.ID, model.StageStatusFailed, err.Error())
			_ = p.Store.FinishRun(ctx, run.ID, model.RunStatusFailed, &model.RunSummary{Error: err.Error()})
			return nil, eris.Wrapf(err, "pipeline: stage %s", st.name)
		}
		if err := p.Store.FinishStage(ctx, rec.ID, model.StageStatusComplete, detail); err != nil {
			return nil, err
		}
	}

	report, err := p.BuildReport()
	if err != nil {
		return nil, err
	}
	summary := &model.RunSummary{
		CatalogSize:    report.CatalogSize,
		PricesResolved: report.Priced,
		MissingPrices:  report.CatalogSize - report.Priced,
		MissingSample:  report.MissingSample,
	}
	if err := p.Store.FinishRun(ctx, run.ID, model.RunStatusComplete, summary); err != nil {
		return nil, err
	}

	zap.L().Info("refresh complete",
		zap.Int("catalog", report.CatalogSize),
		zap.Int("priced", report.Priced),
		zap.Float64("coverage", report.Coverage))

	return report, nil
}

// BuildReport reads both artifacts and computes price coverage with a short
// sample of still-unpriced entities.
func (p *Pipeline) BuildReport() (*Report, error) {
	catalog, err := artifact.ReadCatalog(p.catalogPath())
	if err != nil {
		return nil, err
	}
	prices, err := artifact.ReadPrices(p.pricesPath())
	if err != nil {
		return nil, err
	}
	return buildReport(catalog, prices), nil
}

func buildReport(catalog []model.Minifig, prices model.PriceMap) *Report {
	r := &Report{CatalogSize: len(catalog)}
	var missing []string
	for _, m := range catalog {
		if rec, ok := prices[m.ID]; ok && rec.HasPrice() {
			r.Priced++
			continue
		}
		missing = append(missing, m.ID)
	}
	if r.CatalogSize > 0 {
		r.Coverage = float64(r.Priced) / float64(r.CatalogSize) * 100
	}
	sort.Strings(missing)
	if len(missing) > missingSampleCap {
		missing = missing[:missingSampleCap]
	}
	r.MissingSample = missing
	return r
}

// Print writes the human-readable report to stdout.
func (r *Report) Print() {
	fmt.Printf("catalog: %d minifigs\n", r.CatalogSize)
	fmt.Printf("priced:  %d (%.1f%%)\n", r.Priced, r.Coverage)
	if len(r.MissingSample) > 0 {
		fmt.Printf("missing prices (sample of %d):\n", len(r.MissingSample))
		for _, id := range r.MissingSample {
			fmt.Printf("  %s\n", id)
		}
	}
}
