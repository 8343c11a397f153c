package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/figdex/figdex/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID: "run-1", Command: "refresh", Status: model.RunStatusComplete, CreatedAt: created,
			Summary: &model.RunSummary{CatalogSize: 1250, PricesResolved: 1100},
		},
		{
			ID: "run-2", Command: "prices", Status: model.RunStatusFailed, CreatedAt: created,
			Summary: &model.RunSummary{Error: "credential probe failed"},
		},
		{ID: "run-3", Command: "catalog", Status: model.RunStatusRunning, CreatedAt: created},
	}

	var sb strings.Builder
	formatRunsList(&sb, runs)
	out := sb.String()

	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "1250 minifigs, 1100 priced")
	assert.Contains(t, out, "credential probe failed")
	assert.Contains(t, out, "2026-08-01T12:00:00Z")
	assert.Equal(t, 4, strings.Count(out, "\n"), "header plus one line per run")
}
