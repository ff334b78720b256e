package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type ScheduleQuery struct {
	Date       string `json:"date" validate:"omitempty,sheetdate"` // Format: DD/MM/YYYY
	DoctorName string `json:"doctor_name" validate:"omitempty,max=255"`
	Category   string `json:"category" validate:"omitempty,oneof='Regular/Dentist' 'Visiting Specialist'"`
}

// Response DTOs

type DutyRecordResponse struct {
	ID       int    `json:"id,omitempty"`
	Date     string `json:"date"`
	Name     string `json:"name"`
	Timing   string `json:"timing"`
	Category string `json:"category"`
	Room     string `json:"room"`
}

type ScheduleListResponse struct {
	Schedules []DutyRecordResponse `json:"schedules"`
	Total     int                  `json:"total"`
}

type UpcomingAlertResponse struct {
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	StartsInMinutes int       `json:"starts_in_minutes"`
	TimeRange       string    `json:"time_range"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
	Overnight       bool      `json:"overnight"`
}

type UpcomingResponse struct {
	Alerts          []UpcomingAlertResponse `json:"alerts"`
	Total           int                     `json:"total"`
	CheckedAt       time.Time               `json:"checked_at"`
	SnapshotVersion uint64                  `json:"snapshot_version"`
	SnapshotTakenAt *time.Time              `json:"snapshot_taken_at,omitempty"`
}

type IngestResponse struct {
	RunID     uuid.UUID `json:"run_id"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Count     int       `json:"count"`
	StartedAt time.Time `json:"started_at"`
}

type ScrapeRunResponse struct {
	ID        uuid.UUID `json:"id"`
	Trigger   string    `json:"trigger"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Count     int       `json:"count"`
	StartedAt time.Time `json:"started_at"`
	CreatedAt time.Time `json:"created_at"`
}

type ScrapeRunListResponse struct {
	Runs  []ScrapeRunResponse `json:"runs"`
	Total int                 `json:"total"`
}
