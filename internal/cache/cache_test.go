package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	c := Load[string](filepath.Join(t.TempDir(), "nope.json"), 0)
	assert.Equal(t, 0, c.Len())
}

func TestLoadCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	c := Load[string](path, 0)
	assert.Equal(t, 0, c.Len())
}

func TestPutGetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.json")
	c := Load[*string](path, 0)

	id := "sw0001a"
	require.NoError(t, c.Put("fig-1", &id))
	require.NoError(t, c.Put("fig-2", nil)) // negative entry
	require.NoError(t, c.Flush())

	re := Load[*string](path, 0)
	got, ok := re.Get("fig-1")
	require.True(t, ok)
	require.NotNil(t, got)
	assert.Equal(t, "sw0001a", *got)

	// Negative entries survive the round trip and still count as done.
	neg, ok := re.Get("fig-2")
	require.True(t, ok)
	assert.Nil(t, neg)

	_, ok = re.Get("fig-3")
	assert.False(t, ok)
}

func TestIntervalFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.json")
	c := Load[int](path, 3)

	require.NoError(t, c.Put("a", 1))
	require.NoError(t, c.Put("b", 2))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "no flush before the interval")

	require.NoError(t, c.Put("c", 3))
	_, err = os.Stat(path)
	require.NoError(t, err, "third put reaches the interval")

	assert.Equal(t, 3, Load[int](path, 3).Len())
}

func TestResumeSkipsRecordedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.json")
	c := Load[*string](path, 0)
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Put(k, nil))
	}
	require.NoError(t, c.Flush())

	// A fresh run over five keys only needs to fetch the two new ones.
	re := Load[*string](path, 0)
	fetched := 0
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		if _, done := re.Get(k); done {
			continue
		}
		fetched++
		require.NoError(t, re.Put(k, nil))
	}
	assert.Equal(t, 2, fetched)
	assert.Equal(t, 5, re.Len())
}
