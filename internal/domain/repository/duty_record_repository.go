package repository

import (
	"doctor-duty-notifier/internal/domain/entity"

	"gorm.io/gorm"
)

type DutyRecordRepository interface {
	// ReplaceAll deletes every stored record and inserts records. Callers pass a transaction.
	ReplaceAll(db *gorm.DB, records []entity.DutyRecord) error
	FindAll(db *gorm.DB, filter *entity.ScheduleFilter) ([]entity.DutyRecord, error)
}
