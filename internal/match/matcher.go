package match

import (
	"math"

	"github.com/agext/levenshtein"
)

// Strategy identifies which cascade step produced a match.
type Strategy string

const (
	StrategyNone         Strategy = "none"
	StrategyExact        Strategy = "exact"
	StrategyBaseName     Strategy = "base-name"
	StrategyWeighted     Strategy = "weighted"
	StrategyEditDistance Strategy = "edit-distance"
)

// Record is one row scraped from the community price reference. Records are
// immutable after the bulk fetch; the matcher only reads them.
type Record struct {
	BricklinkID string   `json:"bricklinkId"`
	Name        string   `json:"name"`
	ValueNew    *float64 `json:"valueNew"`
	ValueUsed   *float64 `json:"valueUsed"`
}

// Result is the outcome of resolving one catalog name against the pool. At
// most one record is retained; the cascade stops at the first strategy that
// accepts. Confidence holds the similarity score for strategies 2-3,
// Distance the edit distance for strategy 4.
type Result struct {
	Record     *Record
	Strategy   Strategy
	Confidence float64
	Distance   int
}

// Matched reports whether any strategy accepted a record.
func (r Result) Matched() bool { return r.Record != nil }

// Index holds the lookup structures built once over the record pool. Build
// order matters for reproducibility: on duplicate normalized names the
// last-seen record wins, matching the historical behavior.
type Index struct {
	byExactName map[string]*Record
	byBaseName  map[string][]*Record
	pool        []*Record
}

// NewIndex builds the exact-name and base-name indexes over the pool.
func NewIndex(pool []Record) *Index {
	idx := &Index{
		byExactName: make(map[string]*Record, len(pool)),
		byBaseName:  make(map[string][]*Record),
		pool:        make([]*Record, len(pool)),
	}
	for i := range pool {
		rec := &pool[i]
		idx.pool[i] = rec
		idx.byExactName[Normalize(rec.Name)] = rec
		bn := BaseName(rec.Name)
		idx.byBaseName[bn] = append(idx.byBaseName[bn], rec)
	}
	return idx
}

// Size returns the number of records in the pool.
func (ix *Index) Size() int { return len(ix.pool) }

// Resolve runs the four-strategy cascade for one catalog name. Deterministic:
// candidates improve only on strictly better scores, so the first-seen best
// candidate wins ties.
func (ix *Index) Resolve(catalogName string) Result {
	// Strategy 1: exact normalized name.
	if rec, ok := ix.byExactName[Normalize(catalogName)]; ok {
		return Result{Record: rec, Strategy: StrategyExact, Confidence: 1}
	}

	base := BaseName(catalogName)

	// Strategy 2: same base name, best full-name similarity. Candidates that
	// share no base-name token are filtered before scoring.
	if candidates := ix.byBaseName[base]; len(candidates) > 0 {
		var best *Record
		bestSim := 0.0
		for _, c := range candidates {
			if !sharesBaseToken(catalogName, c.Name) {
				continue
			}
			if sim := Jaccard(catalogName, c.Name); sim > bestSim {
				bestSim, best = sim, c
			}
		}
		if best != nil && bestSim >= baseNameThreshold {
			return Result{Record: best, Strategy: StrategyBaseName, Confidence: bestSim}
		}
	}

	// Strategy 3: weighted similarity over the whole pool.
	var best *Record
	bestSim := 0.0
	for _, c := range ix.pool {
		if sim := WeightedSimilarity(catalogName, c.Name); sim > bestSim {
			bestSim, best = sim, c
		}
	}
	if best != nil && bestSim >= weightedThreshold {
		return Result{Record: best, Strategy: StrategyWeighted, Confidence: bestSim}
	}

	// Strategy 4: edit distance on base names, short names only. Jaccard on
	// whole words is too coarse for single-token names like "Wicket".
	if len(base) <= editDistanceMaxBaseLen {
		bestDist := math.MaxInt
		var bestRec *Record
		for _, c := range ix.pool {
			if d := levenshtein.Distance(base, BaseName(c.Name), nil); d < bestDist {
				bestDist, bestRec = d, c
			}
		}
		limit := math.Max(editDistanceFloor, float64(len(base))*editDistanceRatio)
		if bestRec != nil && float64(bestDist) <= limit {
			return Result{Record: bestRec, Strategy: StrategyEditDistance, Distance: bestDist}
		}
	}

	return Result{Strategy: StrategyNone}
}
