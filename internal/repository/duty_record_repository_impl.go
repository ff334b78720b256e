package repository

import (
	"doctor-duty-notifier/internal/domain/entity"
	domainRepo "doctor-duty-notifier/internal/domain/repository"

	"gorm.io/gorm"
)

const dutyRecordBatchSize = 200

type dutyRecordRepository struct{}

func NewDutyRecordRepository() domainRepo.DutyRecordRepository {
	return &dutyRecordRepository{}
}

func (r *dutyRecordRepository) ReplaceAll(db *gorm.DB, records []entity.DutyRecord) error {
	if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entity.DutyRecord{}).Error; err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	rows := make([]entity.DutyRecord, len(records))
	copy(rows, records)
	for i := range rows {
		rows[i].ID = 0
	}
	return db.CreateInBatches(&rows, dutyRecordBatchSize).Error
}

// FindAll keeps sheet order (insertion order). Date matches as a substring of the label.
func (r *dutyRecordRepository) FindAll(db *gorm.DB, filter *entity.ScheduleFilter) ([]entity.DutyRecord, error) {
	var records []entity.DutyRecord
	query := db.Model(&entity.DutyRecord{})

	if filter != nil {
		if filter.Date != "" {
			query = query.Where("date LIKE ?", "%"+filter.Date+"%")
		}
		if filter.DoctorName != "" {
			query = query.Where("name ILIKE ?", "%"+filter.DoctorName+"%")
		}
		if filter.Category != "" {
			query = query.Where("category = ?", filter.Category)
		}
	}

	err := query.Order("id ASC").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
