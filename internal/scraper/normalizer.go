package scraper

import (
	"strings"

	"doctor-duty-notifier/internal/domain/entity"
)

// Header cells that leak into data rows because the sheet repeats its
// column captions under the merged title row.
var namePlaceholders = map[string]struct{}{
	"DOCTOR'S NAME": {},
	"S.NO":          {},
}

const timingPlaceholder = "TIMING"

// Normalize extracts the duty records carried by one sheet row: at most one
// per role in layout. Blank and header rows yield nothing.
func Normalize(row RawSheetRow, sheetLabel string, layout Layout) []entity.DutyRecord {
	var records []entity.DutyRecord
	for _, role := range layout {
		if rec, ok := normalizeRole(row, sheetLabel, role); ok {
			records = append(records, rec)
		}
	}
	return records
}

func normalizeRole(row RawSheetRow, sheetLabel string, role ColumnRole) (entity.DutyRecord, bool) {
	name, _ := row.Get(role.NameKey())
	name = strings.TrimSpace(name)
	if name == "" {
		return entity.DutyRecord{}, false
	}
	if _, isHeader := namePlaceholders[strings.ToUpper(name)]; isHeader {
		return entity.DutyRecord{}, false
	}

	timing, _ := row.Get(role.TimingKey())
	timing = strings.TrimSpace(timing)
	if timing == "" || strings.ToUpper(timing) == timingPlaceholder {
		return entity.DutyRecord{}, false
	}

	room, _ := row.Get(role.RoomKey())

	return entity.DutyRecord{
		DateLabel:     sheetLabel,
		DoctorName:    name,
		TimeRangeText: timing,
		Category:      role.Category,
		Room:          strings.TrimSpace(room),
	}, true
}
