package scraper

import "errors"

// Structural failures. Any of these means the upstream page no longer has
// the shape the extractor depends on.
var (
	ErrFrameNotFound = errors.New("schedule frame not found on index page")
	ErrNoSheetsFound = errors.New("no sheet entries found in frame script")
	ErrTableNotFound = errors.New("no table found on sheet page")
)
