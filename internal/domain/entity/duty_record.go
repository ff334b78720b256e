package entity

import "time"

// DutyCategory names the sub-table a duty record was read from.
type DutyCategory string

const (
	DutyCategoryRegular  DutyCategory = "Regular/Dentist"
	DutyCategoryVisiting DutyCategory = "Visiting Specialist"
)

// DutyRecord is one doctor's slot on one sheet.
// DateLabel is the opaque sheet label (e.g. "31/01/2026 SATURDAY") and is only
// ever matched by substring, never parsed.
type DutyRecord struct {
	ID            int          `gorm:"primaryKey;autoIncrement" json:"id,omitempty"`
	DateLabel     string       `gorm:"column:date;type:varchar(100);not null;index" json:"date"`
	DoctorName    string       `gorm:"column:name;type:varchar(255);not null" json:"name"`
	TimeRangeText string       `gorm:"column:timing;type:varchar(100);not null" json:"timing"`
	Category      DutyCategory `gorm:"type:varchar(50);not null" json:"category"`
	Room          string       `gorm:"type:varchar(255)" json:"room"`
	CreatedAt     time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DutyRecord) TableName() string {
	return "schedules"
}
