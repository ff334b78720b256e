package scraper

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultHeaderRow is the row index holding column captions on published
// sheets. Row 0 is the viewer's column-letter bar.
const DefaultHeaderRow = 1

// ParseFirstTable reads the first <table> of a sheet page into rows keyed by
// the captions found on headerRow. Repeated captions are suffixed ".1",
// ".2", ... and blank ones become "Unnamed: <i>". Merged cells are expanded
// so that every covered column carries the cell text.
func ParseFirstTable(page string, headerRow int) ([]RawSheetRow, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse sheet html: %w", err)
	}

	table := findFirst(doc, atom.Table)
	if table == nil {
		return nil, ErrTableNotFound
	}

	grid := expandGrid(collectRows(table))
	if len(grid) <= headerRow {
		return nil, fmt.Errorf("%w: %d rows, header expected on row %d", ErrTableNotFound, len(grid), headerRow)
	}

	width := 0
	for _, r := range grid {
		if len(r) > width {
			width = len(r)
		}
	}
	labels := columnLabels(grid[headerRow], width)

	rows := make([]RawSheetRow, 0, len(grid)-headerRow-1)
	for _, r := range grid[headerRow+1:] {
		cells := make(map[string]string, len(r))
		for i, text := range r {
			cells[labels[i]] = text
		}
		rows = append(rows, NewRawSheetRow(cells))
	}
	return rows, nil
}

func columnLabels(header []string, width int) []string {
	labels := make([]string, width)
	seen := make(map[string]int, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = header[i]
		}
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			labels[i] = name + "." + strconv.Itoa(n+1)
			continue
		}
		seen[name] = 0
		labels[i] = name
	}
	return labels
}

type rawCell struct {
	text    string
	colspan int
	rowspan int
}

type pendingSpan struct {
	text string
	left int
}

// expandGrid lays cells out on a rectangular-ish grid honouring colspan and
// rowspan.
func expandGrid(rows [][]rawCell) [][]string {
	grid := make([][]string, 0, len(rows))
	pending := map[int]*pendingSpan{}

	for _, cells := range rows {
		var line []string
		col := 0
		fill := func() {
			for p, ok := pending[col]; ok; p, ok = pending[col] {
				line = append(line, p.text)
				p.left--
				if p.left == 0 {
					delete(pending, col)
				}
				col++
			}
		}

		for _, c := range cells {
			fill()
			for k := 0; k < c.colspan; k++ {
				line = append(line, c.text)
				if c.rowspan > 1 {
					pending[col] = &pendingSpan{text: c.text, left: c.rowspan - 1}
				}
				col++
			}
		}
		fill()

		// A short row still consumes spans from earlier rows that sit
		// beyond its last cell; gaps before them stay blank.
		last := -1
		for c := range pending {
			if c >= col && c > last {
				last = c
			}
		}
		for ; col <= last; col++ {
			p, ok := pending[col]
			if !ok {
				line = append(line, "")
				continue
			}
			line = append(line, p.text)
			p.left--
			if p.left == 0 {
				delete(pending, col)
			}
		}
		grid = append(grid, line)
	}
	return grid
}

func collectRows(table *html.Node) [][]rawCell {
	var rows [][]rawCell
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Table:
				// nested tables belong to their cell, not to this grid
			case atom.Tr:
				rows = append(rows, rowCells(c))
			default:
				walk(c)
			}
		}
	}
	walk(table)
	return rows
}

func rowCells(tr *html.Node) []rawCell {
	var cells []rawCell
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
			continue
		}
		cells = append(cells, rawCell{
			text:    textContent(c),
			colspan: spanAttr(c, "colspan"),
			rowspan: spanAttr(c, "rowspan"),
		})
	}
	return cells
}

func spanAttr(n *html.Node, key string) int {
	for _, a := range n.Attr {
		if a.Key != key {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSpace(a.Val))
		if err != nil || v < 1 {
			return 1
		}
		return v
	}
	return 1
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}
