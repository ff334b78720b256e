package scraper

import "doctor-duty-notifier/internal/domain/entity"

// ColumnRole locates one sub-table on a sheet. Offsets count repeated
// occurrences of Group in the header row.
type ColumnRole struct {
	Category     entity.DutyCategory
	Group        string
	NameOffset   int
	RoomOffset   int
	TimingOffset int
}

func (r ColumnRole) NameKey() ColumnKey   { return ColumnKey{Group: r.Group, Offset: r.NameOffset} }
func (r ColumnRole) RoomKey() ColumnKey   { return ColumnKey{Group: r.Group, Offset: r.RoomOffset} }
func (r ColumnRole) TimingKey() ColumnKey { return ColumnKey{Group: r.Group, Offset: r.TimingOffset} }

// Layout is the set of sub-tables expected on every sheet, in output order.
type Layout []ColumnRole

// DefaultLayout matches the published health-center sheets: a merged title
// cell spans each sub-table, so its text repeats across the group's columns
// (S.NO, name, room, ..., timing).
// The room offset is a best guess; nothing upstream guarantees it.
var DefaultLayout = Layout{
	{
		Category:     entity.DutyCategoryRegular,
		Group:        "REGULAR DOCTORS/ DENTIST",
		NameOffset:   1,
		RoomOffset:   2,
		TimingOffset: 3,
	},
	{
		Category:     entity.DutyCategoryVisiting,
		Group:        "VISITING SPECIALISTS DOCTORS",
		NameOffset:   1,
		RoomOffset:   2,
		TimingOffset: 4,
	},
}
