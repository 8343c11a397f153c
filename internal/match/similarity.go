package match

// Similarity weights and acceptance thresholds. These are calibration
// constants tuned against real catalog/Brickset data; do not adjust them
// without re-validating match coverage.
const (
	baseNameWeight = 0.7
	fullNameWeight = 0.3

	baseNameThreshold = 0.2
	weightedThreshold = 0.4

	editDistanceMaxBaseLen = 15
	editDistanceFloor      = 2.0
	editDistanceRatio      = 0.3
)

// Jaccard computes word-level Jaccard similarity (intersection over union of
// tokens of length > 1) between the normalized forms of a and b.
func Jaccard(a, b string) float64 {
	return jaccardSets(tokenSet(a), tokenSet(b))
}

func jaccardSets(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}

// WeightedSimilarity scores a candidate record name against a catalog name,
// weighting base-name overlap over full-name overlap. Returns 0 outright when
// the catalog base name has tokens but shares none with the candidate's base
// name, so unrelated characters can never accumulate a passing score from
// variant words alone.
func WeightedSimilarity(catalogName, recordName string) float64 {
	catBase := tokenSet(BaseName(catalogName))
	recBase := tokenSet(BaseName(recordName))

	inter := 0
	for w := range catBase {
		if _, ok := recBase[w]; ok {
			inter++
		}
	}
	if len(catBase) > 0 && inter == 0 {
		return 0
	}

	baseSim := jaccardSets(catBase, recBase)
	fullSim := Jaccard(catalogName, recordName)
	return baseNameWeight*baseSim + fullNameWeight*fullSim
}

// sharesBaseToken reports whether the two names share at least one base-name
// token. Vacuously true when the catalog base name has no scorable tokens.
func sharesBaseToken(catalogName, recordName string) bool {
	catBase := tokenSet(BaseName(catalogName))
	if len(catBase) == 0 {
		return true
	}
	recBase := tokenSet(BaseName(recordName))
	for w := range catBase {
		if _, ok := recBase[w]; ok {
			return true
		}
	}
	return false
}
