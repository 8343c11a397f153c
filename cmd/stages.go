package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/figdex/figdex/internal/model"
)

var matchUseCache bool

// runStage executes one stage body with a run record around it.
func runStage(ctx context.Context, name string, fn func(ctx context.Context, e *env) (string, error)) error {
	e, err := initEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	run, err := e.Store.CreateRun(ctx, name)
	if err != nil {
		return err
	}
	detail, err := fn(ctx, e)
	if err != nil {
		_ = e.Store.FinishRun(ctx, run.ID, model.RunStatusFailed, &model.RunSummary{Error: err.Error()})
		return err
	}
	if err := e.Store.FinishRun(ctx, run.ID, model.RunStatusComplete, nil); err != nil {
		return err
	}
	fmt.Println(detail)
	return nil
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Rebuild data/catalog.json from the Rebrickable dumps",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStage(cmd.Context(), "catalog", func(ctx context.Context, e *env) (string, error) {
			s, err := e.Pipeline.RunCatalog(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("catalog: %d minifigs from %d sets (%d-%d)", s.Minifigs, s.SetsRetained, s.MinYear, s.MaxYear), nil
		})
	},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Scrape price listings and match catalog entries by name",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStage(cmd.Context(), "match", func(ctx context.Context, e *env) (string, error) {
			s, err := e.Pipeline.RunMatch(ctx, matchUseCache)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("match: %d matched, %d unmatched (pool %d, page errors %d)",
				s.Matched, s.Unmatched, s.PoolSize, s.PageErrors), nil
		})
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Re-derive BrickLink ids from Rebrickable detail pages",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStage(cmd.Context(), "reconcile", func(ctx context.Context, e *env) (string, error) {
			s, err := e.Pipeline.RunReconcile(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("reconcile: %d corrected, %d added, %d renamed, %d without id, %d duplicate ids",
				s.Corrected, s.Added, s.Renamed, s.WithoutID, s.Duplicates), nil
		})
	},
}

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Refresh price values through the BrickLink API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStage(cmd.Context(), "prices", func(ctx context.Context, e *env) (string, error) {
			s, err := e.Pipeline.RunPrices(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("prices: %d updated, %d kept, %d fetch errors", s.Updated, s.Kept, s.Errors), nil
		})
	},
}

var refreshUseCache bool

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Run the full pipeline: catalog, match, reconcile, prices",
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		report, err := e.Pipeline.RunRefresh(cmd.Context(), refreshUseCache)
		if err != nil {
			return err
		}
		report.Print()
		return nil
	},
}

func init() {
	matchCmd.Flags().BoolVar(&matchUseCache, "use-cache", false, "reuse cached listing pages instead of refetching")
	refreshCmd.Flags().BoolVar(&refreshUseCache, "use-cache", false, "keep all caches and reuse them")
	rootCmd.AddCommand(catalogCmd, matchCmd, reconcileCmd, pricesCmd, refreshCmd)
}
