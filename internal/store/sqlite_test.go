package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/figdex/figdex/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "figdex.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestRunLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "refresh")
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	summary := &model.RunSummary{CatalogSize: 1250, Matched: 1100, Unmatched: 150}
	require.NoError(t, s.FinishRun(ctx, run.ID, model.RunStatusComplete, summary))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Summary)
	assert.Equal(t, 1250, got.Summary.CatalogSize)
	assert.Equal(t, 150, got.Summary.Unmatched)
}

func TestFinishUnknownRun(t *testing.T) {
	s := newTestStore(t)
	err := s.FinishRun(context.Background(), "no-such-id", model.RunStatusFailed, nil)
	require.Error(t, err)
}

func TestStageLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "refresh")
	require.NoError(t, err)

	catalog, err := s.StartStage(ctx, run.ID, "catalog")
	require.NoError(t, err)
	match, err := s.StartStage(ctx, run.ID, "match")
	require.NoError(t, err)

	require.NoError(t, s.FinishStage(ctx, catalog.ID, model.StageStatusComplete, "1250 minifigs"))
	require.NoError(t, s.FinishStage(ctx, match.ID, model.StageStatusFailed, "brickset unreachable"))

	stages, err := s.ListStages(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, stages, 2)
	assert.Equal(t, "catalog", stages[0].Name)
	assert.Equal(t, model.StageStatusComplete, stages[0].Status)
	assert.Equal(t, "1250 minifigs", stages[0].Detail)
	require.NotNil(t, stages[0].EndedAt)
	assert.Equal(t, model.StageStatusFailed, stages[1].Status)
}

func TestListRunsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, cmd := range []string{"catalog", "match", "prices"} {
		_, err := s.CreateRun(ctx, cmd)
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	all, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
