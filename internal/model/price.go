package model

// PriceRecord is the reconciled price state for one catalog entry, keyed by
// Minifig.ID in prices.json. BricklinkID is the resolved cross-source
// identifier; it is corrected over multiple passes.
type PriceRecord struct {
	ValueNew    *float64 `json:"valueNew"`
	ValueUsed   *float64 `json:"valueUsed"`
	BricklinkID string   `json:"bricklinkId"`
}

// HasPrice reports whether either condition has a value.
func (p PriceRecord) HasPrice() bool {
	return p.ValueNew != nil || p.ValueUsed != nil
}

// PriceMap maps Minifig.ID to its reconciled price record.
type PriceMap map[string]PriceRecord

// Override is a manually curated price for an item the pricing API cannot
// price (big figs, animals). Applied per catalog entry id, never per
// BrickLink id, and only when both fetched values are absent.
type Override struct {
	ValueNew    float64 `yaml:"value_new" json:"valueNew"`
	ValueUsed   float64 `yaml:"value_used" json:"valueUsed"`
	BricklinkID string  `yaml:"bricklink_id" json:"bricklinkId"`
}

// Float64Ptr returns a pointer to v. Convenience for literal price values.
func Float64Ptr(v float64) *float64 { return &v }
