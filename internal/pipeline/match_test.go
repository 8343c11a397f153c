package pipeline

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/figdex/figdex/internal/artifact"
	"github.com/figdex/figdex/internal/config"
	"github.com/figdex/figdex/internal/match"
	"github.com/figdex/figdex/internal/model"
	"github.com/figdex/figdex/internal/store"
)

// fakeFetcher serves canned text bodies by URL substring.
type fakeFetcher struct {
	bodies  map[string]string
	fetches int
}

func (f *fakeFetcher) FetchText(_ context.Context, rawURL string) (string, error) {
	f.fetches++
	for key, body := range f.bodies {
		if strings.Contains(rawURL, key) {
			return body, nil
		}
	}
	return "", eris.Errorf("no body for %s", rawURL)
}

func (f *fakeFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	body, err := f.FetchText(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (f *fakeFetcher) DownloadToFile(_ context.Context, rawURL, _ string) (int64, error) {
	return 0, eris.Errorf("unexpected download of %s", rawURL)
}

const listingPage = `
<article class='set'>
  <div class='meta'>
    <h1><a href='/m'><span>SW0001A: </span> Luke Skywalker, Tatooine (Light Nougat Hands)</a></h1>
  </div>
  <dt>Value new</dt> <dd><a href='#'>~$40.00</a></dd>
  <dt>Value used</dt> <dd><a href='#'>~$25.00</a></dd>
</article>`

func newTestPipeline(t *testing.T, f *fakeFetcher) *Pipeline {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Paths.DataDir = filepath.Join(dir, "data")
	cfg.Paths.CacheDir = filepath.Join(dir, ".cache")
	cfg.Paths.DatabasePath = filepath.Join(dir, "figdex.db")
	cfg.Brickset.TotalPages = 1
	cfg.Brickset.PageDelay = 0

	st, err := store.Open(cfg.Paths.DatabasePath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	return New(cfg, f, st)
}

func TestRunMatchSeedsPrices(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{"page-1": listingPage}}
	p := newTestPipeline(t, f)

	catalog := []model.Minifig{
		{ID: "fig-000123", Name: "Luke Skywalker, Tatooine (Light Nougat Hands)"},
		{ID: "fig-999999", Name: "Completely Unknown Figure Xyzzy"},
	}
	require.NoError(t, artifact.WriteJSON(filepath.Join(p.Cfg.Paths.DataDir, "catalog.json"), catalog))

	stats, err := p.RunMatch(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PoolSize)
	assert.Equal(t, 1, stats.Matched)
	assert.Equal(t, 1, stats.Unmatched)
	assert.Equal(t, 1, stats.ByStrategy[match.StrategyExact])

	prices, err := artifact.ReadPrices(filepath.Join(p.Cfg.Paths.DataDir, "prices.json"))
	require.NoError(t, err)
	rec, ok := prices["fig-000123"]
	require.True(t, ok)
	assert.Equal(t, "sw0001a", rec.BricklinkID)
	require.NotNil(t, rec.ValueNew)
	assert.Equal(t, 40.0, *rec.ValueNew)
	_, ok = prices["fig-999999"]
	assert.False(t, ok, "unmatched entity stays out of the price map")

	// The assembled pool is persisted for the reconcile stage.
	var pool []match.Record
	require.NoError(t, artifact.ReadJSON(p.cachePath(bricksetRecordsFile), &pool))
	assert.Len(t, pool, 1)
}

func TestRunMatchUsesPageCache(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{"page-1": listingPage}}
	p := newTestPipeline(t, f)

	catalog := []model.Minifig{{ID: "fig-000123", Name: "Luke Skywalker, Tatooine (Light Nougat Hands)"}}
	require.NoError(t, artifact.WriteJSON(filepath.Join(p.Cfg.Paths.DataDir, "catalog.json"), catalog))

	_, err := p.RunMatch(context.Background(), false)
	require.NoError(t, err)
	fetchesAfterFirst := f.fetches

	_, err = p.RunMatch(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, fetchesAfterFirst, f.fetches, "cached page is not refetched")
}

func TestRunMatchPageErrorNonFatal(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{}} // every page fails
	p := newTestPipeline(t, f)

	require.NoError(t, artifact.WriteJSON(filepath.Join(p.Cfg.Paths.DataDir, "catalog.json"), []model.Minifig{{ID: "x", Name: "Y"}}))

	stats, err := p.RunMatch(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PageErrors)
	assert.Equal(t, 0, stats.PoolSize)
	assert.Equal(t, 1, stats.Unmatched)
}
