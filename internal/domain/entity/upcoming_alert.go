package entity

import "time"

// UpcomingAlert is a duty record whose start falls within the next hour.
// It is derived on every matching pass and never stored.
// An overnight duty ends on the day after it starts.
type UpcomingAlert struct {
	DoctorName      string       `json:"name"`
	Category        DutyCategory `json:"category"`
	StartsInMinutes int          `json:"starts_in_minutes"`
	TimeRangeText   string       `json:"time_range"`
	StartsAt        time.Time    `json:"starts_at"`
	EndsAt          time.Time    `json:"ends_at"`
	Overnight       bool         `json:"overnight"`
	DateLabel       string       `json:"-"`
}
