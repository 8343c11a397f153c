package main

import (
	"context"
	"time"

	"github.com/figdex/figdex/internal/fetcher"
	"github.com/figdex/figdex/internal/pipeline"
	"github.com/figdex/figdex/internal/store"
)

// env bundles the collaborators a stage command needs.
type env struct {
	Pipeline *pipeline.Pipeline
	Store    *store.Store
}

func (e *env) Close() {
	_ = e.Store.Close()
}

// initEnv opens the run database and builds the pipeline over the shared
// fetcher. The listing scrape needs a browser user agent; the CDN and the
// API do not care, so one fetcher serves all hosts.
func initEnv(ctx context.Context) (*env, error) {
	st, err := store.Open(cfg.Paths.DatabasePath)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  cfg.Brickset.UserAgent,
		Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Fetch.MaxRetries,
	})

	return &env{
		Pipeline: pipeline.New(cfg, f, st),
		Store:    st,
	}, nil
}
