package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/figdex/figdex/internal/model"
)

func TestBuildReport(t *testing.T) {
	catalog := []model.Minifig{
		{ID: "fig-a"}, {ID: "fig-b"}, {ID: "fig-c"}, {ID: "fig-d"},
	}
	prices := model.PriceMap{
		"fig-a": {BricklinkID: "sw1", ValueNew: model.Float64Ptr(1)},
		"fig-b": {BricklinkID: "sw2", ValueUsed: model.Float64Ptr(2)},
		// Entry without any value does not count as priced.
		"fig-c": {BricklinkID: "sw3"},
	}

	r := buildReport(catalog, prices)
	assert.Equal(t, 4, r.CatalogSize)
	assert.Equal(t, 2, r.Priced)
	assert.InDelta(t, 50.0, r.Coverage, 0.001)
	assert.Equal(t, []string{"fig-c", "fig-d"}, r.MissingSample)
}

func TestBuildReportSampleCap(t *testing.T) {
	var catalog []model.Minifig
	for i := 0; i < 25; i++ {
		catalog = append(catalog, model.Minifig{ID: string(rune('a' + i))})
	}
	r := buildReport(catalog, model.PriceMap{})
	assert.Equal(t, 25, r.CatalogSize)
	assert.Equal(t, 0, r.Priced)
	assert.Len(t, r.MissingSample, missingSampleCap)
}

func TestBuildReportEmptyCatalog(t *testing.T) {
	r := buildReport(nil, model.PriceMap{})
	require.NotNil(t, r)
	assert.Zero(t, r.Coverage)
}
