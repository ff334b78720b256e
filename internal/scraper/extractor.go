package scraper

import (
	"context"
	"fmt"
	"net/url"

	"doctor-duty-notifier/internal/domain/entity"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/iter"
)

// DefaultSourceURL is the public page embedding the schedule spreadsheet.
const DefaultSourceURL = "https://iitj.ac.in/health-center/en/doctors-schedule"

type ExtractorConfig struct {
	SourceURL           string
	MaxConcurrentSheets int
	HeaderRow           int
	Layout              Layout
}

// Extractor walks index page → frame → sheets and returns clean duty records.
type Extractor struct {
	cfg     ExtractorConfig
	fetcher Fetcher
	log     *logrus.Logger
}

func NewExtractor(cfg ExtractorConfig, fetcher Fetcher, log *logrus.Logger) *Extractor {
	if cfg.SourceURL == "" {
		cfg.SourceURL = DefaultSourceURL
	}
	if cfg.MaxConcurrentSheets <= 0 {
		cfg.MaxConcurrentSheets = 4
	}
	if cfg.HeaderRow <= 0 {
		cfg.HeaderRow = DefaultHeaderRow
	}
	if len(cfg.Layout) == 0 {
		cfg.Layout = DefaultLayout
	}
	return &Extractor{
		cfg:     cfg,
		fetcher: fetcher,
		log:     log,
	}
}

type sheetResult struct {
	sheet Sheet
	rows  []RawSheetRow
	err   error
}

// Extract runs one full extraction. A returned error means the page
// structure itself is broken; a failing sheet is logged and skipped, so an
// empty result with a nil error just means there was nothing to publish.
func (e *Extractor) Extract(ctx context.Context) ([]entity.DutyRecord, error) {
	sheets, err := e.discover(ctx)
	if err != nil {
		return nil, err
	}
	e.log.Infof("Discovered %d schedule sheets", len(sheets))

	mapper := iter.Mapper[Sheet, sheetResult]{MaxGoroutines: e.cfg.MaxConcurrentSheets}
	results := mapper.Map(sheets, func(s *Sheet) sheetResult {
		rows, err := e.fetchSheet(ctx, *s)
		return sheetResult{sheet: *s, rows: rows, err: err}
	})

	records := make([]entity.DutyRecord, 0)
	for _, res := range results {
		if res.err != nil {
			e.log.Warnf("Failed to fetch/parse sheet %q: %+v", res.sheet.Label, res.err)
			continue
		}

		kept := 0
		for _, row := range res.rows {
			if row.Empty() {
				continue
			}
			recs := Normalize(row, res.sheet.Label, e.cfg.Layout)
			kept += len(recs)
			records = append(records, recs...)
		}
		e.log.Debugf("Sheet %q: %d rows, %d duty records", res.sheet.Label, len(res.rows), kept)
	}

	e.log.Infof("Extracted %d duty records from %d sheets", len(records), len(sheets))
	return records, nil
}

func (e *Extractor) discover(ctx context.Context) ([]Sheet, error) {
	index, err := e.fetcher.Fetch(ctx, e.cfg.SourceURL)
	if err != nil {
		return nil, fmt.Errorf("fetch index page: %w", err)
	}

	frameURL, err := LocateFrame(index)
	if err != nil {
		return nil, err
	}
	frameURL, err = resolveURL(e.cfg.SourceURL, frameURL)
	if err != nil {
		return nil, err
	}
	e.log.Debugf("Found schedule frame: %s", frameURL)

	frame, err := e.fetcher.Fetch(ctx, frameURL)
	if err != nil {
		return nil, fmt.Errorf("fetch schedule frame: %w", err)
	}

	sheets, err := DiscoverSheets(frame)
	if err != nil {
		return nil, err
	}
	for i := range sheets {
		if sheets[i].URL, err = resolveURL(frameURL, sheets[i].URL); err != nil {
			return nil, err
		}
	}
	return sheets, nil
}

func (e *Extractor) fetchSheet(ctx context.Context, sheet Sheet) ([]RawSheetRow, error) {
	page, err := e.fetcher.Fetch(ctx, sheet.URL)
	if err != nil {
		return nil, err
	}
	return ParseFirstTable(page, e.cfg.HeaderRow)
}

func resolveURL(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", base, err)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", ref, err)
	}
	return b.ResolveReference(r).String(), nil
}
