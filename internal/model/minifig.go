// Package model defines the catalog and pricing data shapes shared by every
// pipeline stage.
package model

// SetRef is one set a minifigure appears in.
type SetRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Year int    `json:"year"`
}

// Minifig is one catalog entry. ID is the Rebrickable fig number and is
// immutable once assigned at catalog build; Name and Faction may be
// overwritten by later stages.
type Minifig struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	ImageURL string   `json:"imageUrl"`
	Year     int      `json:"year"`
	Sets     []SetRef `json:"sets"`
	Faction  string   `json:"faction"`
	NumSets  int      `json:"numSets"`
}

// FallbackYear is used when none of a minifig's sets resolve to a year.
const FallbackYear = 2000
