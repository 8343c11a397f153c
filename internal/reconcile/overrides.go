package reconcile

import (
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/figdex/figdex/internal/model"
)

// LoadOverrides reads the manual price overrides file, keyed by catalog
// entity id. A missing file is not an error; an unreadable one is, since a
// typo in hand-maintained data should not be silently ignored.
func LoadOverrides(path string) (map[string]model.Override, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]model.Override{}, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "reconcile: read overrides %s", path)
	}
	overrides := map[string]model.Override{}
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, eris.Wrapf(err, "reconcile: decode overrides %s", path)
	}
	return overrides, nil
}

// ApplyOverrides fills prices from the manual overrides, per catalog entity
// id. An override only lands where both values are still nil; fetched
// numbers are never clobbered. When it lands, its BrickLink id also replaces
// the one on file, since hand-maintained overrides carry the authoritative
// id for entities the API cannot price. Entities sharing a BrickLink id are
// overridden independently.
func ApplyOverrides(prices model.PriceMap, overrides map[string]model.Override) (model.PriceMap, int) {
	out := make(model.PriceMap, len(prices))
	for k, v := range prices {
		out[k] = v
	}

	applied := 0
	for entityID, o := range overrides {
		rec, ok := out[entityID]
		if !ok {
			rec = model.PriceRecord{BricklinkID: o.BricklinkID}
		}
		if rec.ValueNew != nil || rec.ValueUsed != nil {
			continue
		}
		if o.ValueNew > 0 {
			rec.ValueNew = model.Float64Ptr(o.ValueNew)
		}
		if o.ValueUsed > 0 {
			rec.ValueUsed = model.Float64Ptr(o.ValueUsed)
		}
		if o.BricklinkID != "" {
			rec.BricklinkID = o.BricklinkID
		}
		out[entityID] = rec
		applied++
	}

	if applied > 0 {
		zap.L().Info("manual overrides applied", zap.Int("count", applied))
	}
	return out, applied
}
