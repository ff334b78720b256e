package scraper

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Sheet is one published data tab discovered in the frame's router script.
type Sheet struct {
	Label string
	URL   string
	GID   string
}

// The published viewer registers each tab with
// items.push({name: "<label>", pageUrl: "<url>", gid: "<id>"...
var sheetItemPattern = regexp.MustCompile(`items\.push\(\{name: "(.*?)", pageUrl: "(.*?)", gid: "(.*?)"`)

// LocateFrame returns the cleaned source URL of the first iframe in the
// index page. Only the gid query parameter survives cleaning.
func LocateFrame(indexHTML string) (string, error) {
	src, found := firstFrameSource(indexHTML)
	if !found || strings.TrimSpace(src) == "" {
		return "", ErrFrameNotFound
	}
	return cleanFrameURL(src)
}

func firstFrameSource(doc string) (string, bool) {
	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return "", false
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.DataAtom != atom.Iframe {
				continue
			}
			for _, attr := range tok.Attr {
				if attr.Key == "src" {
					return attr.Val, true
				}
			}
			return "", true
		}
	}
}

func cleanFrameURL(src string) (string, error) {
	// The tokenizer already decoded one level of entities; some pages
	// double-escape the attribute.
	raw := html.UnescapeString(strings.TrimSpace(src))

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse frame url %q: %w", raw, err)
	}

	query := url.Values{}
	if gid := u.Query().Get("gid"); gid != "" {
		query.Set("gid", gid)
	}
	u.RawQuery = query.Encode()

	return u.String(), nil
}

// DiscoverSheets extracts the sheet list from the frame page's inline script.
func DiscoverSheets(frameHTML string) ([]Sheet, error) {
	matches := sheetItemPattern.FindAllStringSubmatch(frameHTML, -1)
	if len(matches) == 0 {
		return nil, ErrNoSheetsFound
	}

	sheets := make([]Sheet, 0, len(matches))
	for _, m := range matches {
		sheets = append(sheets, Sheet{
			Label: unescapeScript(m[1]),
			URL:   unescapeScript(m[2]),
			GID:   m[3],
		})
	}
	return sheets, nil
}

// unescapeScript undoes the escaping of JS string literals in the viewer
// script: "\/" and "\xHH". Unknown escapes are kept verbatim.
func unescapeScript(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		switch next := s[i+1]; {
		case next == '/':
			b.WriteByte('/')
			i++
		case next == 'x' && i+3 < len(s):
			v, err := strconv.ParseUint(s[i+2:i+4], 16, 8)
			if err != nil {
				b.WriteByte(s[i])
				continue
			}
			b.WriteByte(byte(v))
			i += 3
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
