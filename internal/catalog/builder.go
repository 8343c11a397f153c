// Package catalog derives the Star Wars minifig catalog from the Rebrickable
// CSV dumps.
package catalog

import (
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/figdex/figdex/internal/model"
	"github.com/figdex/figdex/pkg/rebrickable"
)

// Root theme ids for the closure. 158 is the Star Wars tree; 18 picks up a
// handful of sets the dump still files under the retired root.
var rootThemeIDs = []string{"158", "18"}

// Stats summarizes one catalog build.
type Stats struct {
	Themes        int
	SetsRetained  int
	Minifigs      int
	SkippedRows   int
	YearFallbacks int
	MinYear       int
	MaxYear       int
	Factions      map[string]int
}

// Build joins the five Rebrickable tables into the minifig catalog. Malformed
// rows are skipped and counted rather than failing the build.
func Build(tables rebrickable.Tables) ([]model.Minifig, Stats) {
	stats := Stats{Factions: map[string]int{}}

	themes := themeClosure(tables.Themes)
	stats.Themes = len(themes)

	// Sets inside the theme closure, keyed by set_num.
	sets := make(map[string]rebrickable.SetRow)
	for _, s := range tables.Sets {
		if s.SetNum == "" {
			stats.SkippedRows++
			continue
		}
		if _, ok := themes[s.ThemeID]; ok {
			sets[s.SetNum] = s
		}
	}
	stats.SetsRetained = len(sets)

	// One inventory per set: version 1 wins, otherwise first seen.
	invToSet := make(map[string]string)
	setToInv := make(map[string]string)
	setInvVersion := make(map[string]string)
	for _, inv := range tables.Inventories {
		if inv.ID == "" || inv.SetNum == "" {
			stats.SkippedRows++
			continue
		}
		if _, ok := sets[inv.SetNum]; !ok {
			continue
		}
		prev, seen := setToInv[inv.SetNum]
		if seen {
			if inv.Version != "1" || setInvVersion[inv.SetNum] == "1" {
				continue
			}
			delete(invToSet, prev)
		}
		setToInv[inv.SetNum] = inv.ID
		setInvVersion[inv.SetNum] = inv.Version
		invToSet[inv.ID] = inv.SetNum
	}

	// fig_num -> set_nums via the inventory join, deduplicated. Row order is
	// kept so same-year memberships sort reproducibly across builds.
	figSets := make(map[string][]string)
	figSeen := make(map[string]map[string]struct{})
	for _, im := range tables.InventoryMinifigs {
		setNum, ok := invToSet[im.InventoryID]
		if !ok {
			continue
		}
		if im.FigNum == "" {
			stats.SkippedRows++
			continue
		}
		if figSeen[im.FigNum] == nil {
			figSeen[im.FigNum] = map[string]struct{}{}
		}
		if _, dup := figSeen[im.FigNum][setNum]; dup {
			continue
		}
		figSeen[im.FigNum][setNum] = struct{}{}
		figSets[im.FigNum] = append(figSets[im.FigNum], setNum)
	}

	var out []model.Minifig
	for _, fig := range tables.Minifigs {
		memberships, ok := figSets[fig.FigNum]
		if !ok {
			continue
		}

		refs := make([]model.SetRef, 0, len(memberships))
		minYear := 0
		for _, setNum := range memberships {
			s := sets[setNum]
			year, err := strconv.Atoi(s.Year)
			if err != nil || year <= 0 {
				stats.SkippedRows++
				year = 0
			}
			if year > 0 && (minYear == 0 || year < minYear) {
				minYear = year
			}
			refs = append(refs, model.SetRef{ID: s.SetNum, Name: s.Name, Year: year})
		}
		sort.SliceStable(refs, func(i, j int) bool { return refs[i].Year < refs[j].Year })

		if minYear == 0 {
			minYear = model.FallbackYear
			stats.YearFallbacks++
		}

		faction := ClassifyFaction(fig.Name)
		out = append(out, model.Minifig{
			ID:       fig.FigNum,
			Name:     fig.Name,
			ImageURL: fig.ImgURL,
			Year:     minYear,
			Sets:     refs,
			Faction:  faction,
			NumSets:  len(refs),
		})

		stats.Factions[faction]++
		if stats.MinYear == 0 || minYear < stats.MinYear {
			stats.MinYear = minYear
		}
		if minYear > stats.MaxYear {
			stats.MaxYear = minYear
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	stats.Minifigs = len(out)

	zap.L().Info("catalog built",
		zap.Int("themes", stats.Themes),
		zap.Int("sets", stats.SetsRetained),
		zap.Int("minifigs", stats.Minifigs),
		zap.Int("skipped_rows", stats.SkippedRows),
		zap.Int("year_fallbacks", stats.YearFallbacks),
		zap.Int("min_year", stats.MinYear),
		zap.Int("max_year", stats.MaxYear),
		zap.Any("factions", stats.Factions))

	return out, stats
}

// themeClosure returns every theme id reachable from the root themes by
// following parent_id pointers downward, computed by fixed-point iteration.
func themeClosure(themes []rebrickable.ThemeRow) map[string]struct{} {
	closure := make(map[string]struct{}, len(rootThemeIDs))
	for _, id := range rootThemeIDs {
		closure[id] = struct{}{}
	}
	for {
		grew := false
		for _, t := range themes {
			if _, ok := closure[t.ID]; ok {
				continue
			}
			if _, ok := closure[t.ParentID]; ok {
				closure[t.ID] = struct{}{}
				grew = true
			}
		}
		if !grew {
			return closure
		}
	}
}
