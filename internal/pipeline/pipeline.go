// Package pipeline wires the refresh stages together: catalog build, bulk
// name match, identifier reconciliation, price reconciliation, and manual
// overrides. Each stage persists its output so any stage can be re-run alone.
package pipeline

import (
	"path/filepath"

	"github.com/figdex/figdex/internal/config"
	"github.com/figdex/figdex/internal/fetcher"
	"github.com/figdex/figdex/internal/store"
)

// Pipeline holds the shared collaborators for all stages.
type Pipeline struct {
	Cfg   *config.Config
	Fetch fetcher.Fetcher
	Store *store.Store
}

// New builds a Pipeline over the loaded configuration.
func New(cfg *config.Config, f fetcher.Fetcher, st *store.Store) *Pipeline {
	return &Pipeline{Cfg: cfg, Fetch: f, Store: st}
}

func (p *Pipeline) catalogPath() string {
	return filepath.Join(p.Cfg.Paths.DataDir, "catalog.json")
}

func (p *Pipeline) pricesPath() string {
	return filepath.Join(p.Cfg.Paths.DataDir, "prices.json")
}

func (p *Pipeline) cachePath(name string) string {
	return filepath.Join(p.Cfg.Paths.CacheDir, name)
}

func (p *Pipeline) csvCacheDir() string {
	return filepath.Join(p.Cfg.Paths.CacheDir, "csv")
}
