package repository

import (
	"errors"

	"doctor-duty-notifier/internal/domain/entity"
	domainRepo "doctor-duty-notifier/internal/domain/repository"

	"gorm.io/gorm"
)

type scrapeRunRepository struct{}

func NewScrapeRunRepository() domainRepo.ScrapeRunRepository {
	return &scrapeRunRepository{}
}

func (r *scrapeRunRepository) Create(db *gorm.DB, run *entity.ScrapeRun) error {
	return db.Create(run).Error
}

func (r *scrapeRunRepository) FindRecent(db *gorm.DB, limit int) ([]entity.ScrapeRun, error) {
	var runs []entity.ScrapeRun
	err := db.Order("created_at DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *scrapeRunRepository) FindLatest(db *gorm.DB) (*entity.ScrapeRun, error) {
	var run entity.ScrapeRun
	err := db.Order("created_at DESC").First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}
