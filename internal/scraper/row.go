package scraper

import "strconv"

// ColumnKey addresses a column by its header text and its position within a
// run of repeated headers. Offset 0 is the first occurrence.
type ColumnKey struct {
	Group  string
	Offset int
}

// Label renders the key the way duplicate headers are disambiguated:
// "GROUP", "GROUP.1", "GROUP.2", ...
func (k ColumnKey) Label() string {
	if k.Offset == 0 {
		return k.Group
	}
	return k.Group + "." + strconv.Itoa(k.Offset)
}

// RawSheetRow is one data row of a sheet table. Only non-blank cells are kept.
type RawSheetRow struct {
	cells map[string]string
}

// NewRawSheetRow builds a row from label → cell text. Blank cells are dropped.
func NewRawSheetRow(cells map[string]string) RawSheetRow {
	row := RawSheetRow{cells: make(map[string]string, len(cells))}
	for label, value := range cells {
		if value != "" {
			row.cells[label] = value
		}
	}
	return row
}

// Get returns the cell under key, if present and non-blank.
func (r RawSheetRow) Get(key ColumnKey) (string, bool) {
	v, ok := r.cells[key.Label()]
	return v, ok
}

// Empty reports whether every cell in the row is blank.
func (r RawSheetRow) Empty() bool {
	return len(r.cells) == 0
}
