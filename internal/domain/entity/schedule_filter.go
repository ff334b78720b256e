package entity

// ScheduleFilter is a domain-level filter for querying stored duty records.
// Used by repository layer to avoid coupling with delivery DTOs.
type ScheduleFilter struct {
	Date       string // Format: DD/MM/YYYY, matched as substring of the sheet label
	DoctorName string // Filter by doctor name (ILIKE)
	Category   DutyCategory
}
