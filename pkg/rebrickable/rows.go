// Package rebrickable downloads the Rebrickable CSV data dumps and scrapes
// minifig detail pages for cross-catalog identifiers.
package rebrickable

// Row types mirror the Rebrickable CSV dump columns. All fields stay strings;
// numeric parsing happens downstream so a malformed row can be skipped
// instead of failing the whole decode.

// ThemeRow is one row of themes.csv.
type ThemeRow struct {
	ID       string `csv:"id"`
	Name     string `csv:"name"`
	ParentID string `csv:"parent_id"`
}

// MinifigRow is one row of minifigs.csv.
type MinifigRow struct {
	FigNum   string `csv:"fig_num"`
	Name     string `csv:"name"`
	NumParts string `csv:"num_parts"`
	ImgURL   string `csv:"img_url"`
}

// SetRow is one row of sets.csv.
type SetRow struct {
	SetNum   string `csv:"set_num"`
	Name     string `csv:"name"`
	Year     string `csv:"year"`
	ThemeID  string `csv:"theme_id"`
	NumParts string `csv:"num_parts"`
	ImgURL   string `csv:"img_url"`
}

// InventoryRow is one row of inventories.csv. A set may have several
// inventory versions.
type InventoryRow struct {
	ID      string `csv:"id"`
	Version string `csv:"version"`
	SetNum  string `csv:"set_num"`
}

// InventoryMinifigRow is one row of inventory_minifigs.csv, linking an
// inventory to the minifigs it contains.
type InventoryMinifigRow struct {
	InventoryID string `csv:"inventory_id"`
	FigNum      string `csv:"fig_num"`
	Quantity    string `csv:"quantity"`
}

// Tables holds all five decoded CSV dumps.
type Tables struct {
	Themes            []ThemeRow
	Minifigs          []MinifigRow
	Sets              []SetRow
	Inventories       []InventoryRow
	InventoryMinifigs []InventoryMinifigRow
}
