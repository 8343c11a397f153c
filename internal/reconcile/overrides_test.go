package reconcile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/figdex/figdex/internal/model"
)

func TestLoadOverridesMissingFile(t *testing.T) {
	overrides, err := LoadOverrides(filepath.Join(t.TempDir(), "overrides.yaml"))
	require.NoError(t, err)
	assert.Empty(t, overrides)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
fig-000123:
  value_new: 25.5
  value_used: 18
  bricklink_id: sw0001a
fig-000456:
  value_used: 9.99
`), 0o644))

	overrides, err := LoadOverrides(path)
	require.NoError(t, err)
	require.Len(t, overrides, 2)
	assert.Equal(t, 25.5, overrides["fig-000123"].ValueNew)
	assert.Equal(t, "sw0001a", overrides["fig-000123"].BricklinkID)
	assert.Equal(t, 9.99, overrides["fig-000456"].ValueUsed)
}

func TestLoadOverridesRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fig: [unclosed"), 0o644))
	_, err := LoadOverrides(path)
	require.Error(t, err)
}

func TestApplyOverridesNeverClobbersNumbers(t *testing.T) {
	prices := model.PriceMap{
		"fig-priced": {BricklinkID: "sw0100", ValueNew: model.Float64Ptr(5)},
		"fig-empty":  {BricklinkID: "sw0101"},
	}
	overrides := map[string]model.Override{
		"fig-priced": {ValueNew: 99},
		"fig-empty":  {ValueNew: 12, ValueUsed: 8},
	}

	out, applied := ApplyOverrides(prices, overrides)
	assert.Equal(t, 1, applied)

	// Fetched number survives the override attempt.
	require.NotNil(t, out["fig-priced"].ValueNew)
	assert.Equal(t, 5.0, *out["fig-priced"].ValueNew)

	require.NotNil(t, out["fig-empty"].ValueNew)
	assert.Equal(t, 12.0, *out["fig-empty"].ValueNew)
	require.NotNil(t, out["fig-empty"].ValueUsed)
	assert.Equal(t, 8.0, *out["fig-empty"].ValueUsed)
}

func TestApplyOverridesPerEntityForSharedExternalID(t *testing.T) {
	// Two catalog entities share sw0320; only the big-fig entry is empty and
	// only it receives the override.
	prices := model.PriceMap{
		"fig-wampa":     {BricklinkID: "sw0320", ValueNew: model.Float64Ptr(60)},
		"fig-wampa-big": {BricklinkID: "sw0320"},
	}
	overrides := map[string]model.Override{
		"fig-wampa-big": {ValueNew: 45, ValueUsed: 30},
	}

	out, applied := ApplyOverrides(prices, overrides)
	assert.Equal(t, 1, applied)
	assert.Equal(t, 60.0, *out["fig-wampa"].ValueNew)
	assert.Equal(t, 45.0, *out["fig-wampa-big"].ValueNew)
}

func TestApplyOverridesReplacesStaleExternalID(t *testing.T) {
	// A landed override carries the authoritative id, replacing whatever the
	// fuzzy match left behind. Priced entries keep their id untouched.
	prices := model.PriceMap{
		"fig-empty":  {BricklinkID: "sw9999"},
		"fig-priced": {BricklinkID: "sw9999", ValueUsed: model.Float64Ptr(7)},
	}
	overrides := map[string]model.Override{
		"fig-empty":  {ValueNew: 53.74, ValueUsed: 38, BricklinkID: "wampa"},
		"fig-priced": {ValueNew: 53.74, ValueUsed: 38, BricklinkID: "wampa"},
	}

	out, applied := ApplyOverrides(prices, overrides)
	assert.Equal(t, 1, applied)
	assert.Equal(t, "wampa", out["fig-empty"].BricklinkID)
	assert.Equal(t, "sw9999", out["fig-priced"].BricklinkID)
}

func TestApplyOverridesCreatesMissingEntry(t *testing.T) {
	out, applied := ApplyOverrides(model.PriceMap{}, map[string]model.Override{
		"fig-new": {ValueUsed: 3.5, BricklinkID: "sw0777"},
	})
	assert.Equal(t, 1, applied)
	rec := out["fig-new"]
	assert.Equal(t, "sw0777", rec.BricklinkID)
	assert.Nil(t, rec.ValueNew)
	require.NotNil(t, rec.ValueUsed)
	assert.Equal(t, 3.5, *rec.ValueUsed)
}
