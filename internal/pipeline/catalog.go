package pipeline

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/figdex/figdex/internal/artifact"
	"github.com/figdex/figdex/internal/catalog"
	"github.com/figdex/figdex/pkg/rebrickable"
)

// RunCatalog downloads the Rebrickable dumps and rebuilds data/catalog.json.
func (p *Pipeline) RunCatalog(ctx context.Context) (catalog.Stats, error) {
	client := rebrickable.NewClient(p.Fetch, rebrickable.Config{
		CDNBaseURL:  p.Cfg.Rebrickable.CDNBaseURL,
		SiteBaseURL: p.Cfg.Rebrickable.SiteBaseURL,
	})

	tables, err := client.DownloadTables(ctx, p.csvCacheDir())
	if err != nil {
		return catalog.Stats{}, eris.Wrap(err, "pipeline: download tables")
	}

	built, stats := catalog.Build(*tables)
	if err := artifact.WriteJSON(p.catalogPath(), built); err != nil {
		return stats, err
	}
	return stats, nil
}
