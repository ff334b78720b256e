package repository

import (
	"doctor-duty-notifier/internal/domain/entity"

	"gorm.io/gorm"
)

type ScrapeRunRepository interface {
	Create(db *gorm.DB, run *entity.ScrapeRun) error
	FindRecent(db *gorm.DB, limit int) ([]entity.ScrapeRun, error)
	FindLatest(db *gorm.DB) (*entity.ScrapeRun, error)
}
