package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCacheRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.MigratePageCache(ctx))

	_, ok, err := s.GetPage(ctx, "brickset", 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.PutPage(ctx, "brickset", 1, "<html>page one</html>"))
	body, ok, err := s.GetPage(ctx, "brickset", 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "<html>page one</html>", body)

	// Replacement keeps one row per source+page.
	require.NoError(t, s.PutPage(ctx, "brickset", 1, "<html>fresher</html>"))
	body, ok, err = s.GetPage(ctx, "brickset", 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "<html>fresher</html>", body)
}
