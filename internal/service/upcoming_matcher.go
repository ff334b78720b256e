package service

import (
	"strings"
	"time"

	"doctor-duty-notifier/internal/domain/entity"
	"doctor-duty-notifier/pkg/timerange"
)

const (
	// UpcomingWindow is how far ahead a duty start counts as "starting soon".
	UpcomingWindow = 60 * time.Minute

	// SheetDateLayout is the day-first date embedded in sheet labels.
	SheetDateLayout = "02/01/2006"
)

// MatchUpcoming returns, in input order, the records dated on now's calendar
// day whose start lies in [now, now+UpcomingWindow]. Records with an
// unreadable time range are skipped.
func MatchUpcoming(records []entity.DutyRecord, now time.Time) []entity.UpcomingAlert {
	today := now.Format(SheetDateLayout)

	var alerts []entity.UpcomingAlert
	for _, rec := range records {
		if !strings.Contains(rec.DateLabel, today) {
			continue
		}

		tr, ok := timerange.Parse(rec.TimeRangeText)
		if !ok {
			continue
		}

		start := tr.StartOn(now)
		until := start.Sub(now)
		if until < 0 || until > UpcomingWindow {
			continue
		}

		alerts = append(alerts, entity.UpcomingAlert{
			DoctorName:      rec.DoctorName,
			Category:        rec.Category,
			StartsInMinutes: int(until.Minutes()),
			TimeRangeText:   rec.TimeRangeText,
			StartsAt:        start,
			EndsAt:          tr.EndOn(now),
			Overnight:       tr.Overnight(),
			DateLabel:       rec.DateLabel,
		})
	}
	return alerts
}
