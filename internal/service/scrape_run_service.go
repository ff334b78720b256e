package service

import (
	"context"
	"time"

	"doctor-duty-notifier/internal/domain/entity"
	"doctor-duty-notifier/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ScrapeRunService writes the outcome of every extraction cycle so the API can
// report when the schedule was last refreshed and why a refresh was skipped.
type ScrapeRunService interface {
	RecordSuccess(ctx context.Context, tx *gorm.DB, trigger string, startedAt time.Time, count int, metadata entity.JSON) (*entity.ScrapeRun, error)
	RecordWarning(ctx context.Context, tx *gorm.DB, trigger string, startedAt time.Time, message string) (*entity.ScrapeRun, error)
	RecordFailure(ctx context.Context, tx *gorm.DB, trigger string, startedAt time.Time, cause error) (*entity.ScrapeRun, error)
}

type scrapeRunService struct {
	log           *logrus.Logger
	scrapeRunRepo repository.ScrapeRunRepository
}

func NewScrapeRunService(log *logrus.Logger, scrapeRunRepo repository.ScrapeRunRepository) ScrapeRunService {
	return &scrapeRunService{
		log:           log,
		scrapeRunRepo: scrapeRunRepo,
	}
}

func (s *scrapeRunService) RecordSuccess(ctx context.Context, tx *gorm.DB, trigger string, startedAt time.Time, count int, metadata entity.JSON) (*entity.ScrapeRun, error) {
	return s.record(tx, &entity.ScrapeRun{
		Trigger:   trigger,
		Status:    entity.ScrapeStatusSuccess,
		Message:   "schedule refreshed",
		Count:     count,
		Metadata:  metadata,
		StartedAt: startedAt,
	})
}

func (s *scrapeRunService) RecordWarning(ctx context.Context, tx *gorm.DB, trigger string, startedAt time.Time, message string) (*entity.ScrapeRun, error) {
	return s.record(tx, &entity.ScrapeRun{
		Trigger:   trigger,
		Status:    entity.ScrapeStatusWarning,
		Message:   message,
		StartedAt: startedAt,
	})
}

func (s *scrapeRunService) RecordFailure(ctx context.Context, tx *gorm.DB, trigger string, startedAt time.Time, cause error) (*entity.ScrapeRun, error) {
	message := "unknown error"
	if cause != nil {
		message = cause.Error()
	}
	return s.record(tx, &entity.ScrapeRun{
		Trigger:   trigger,
		Status:    entity.ScrapeStatusError,
		Message:   message,
		StartedAt: startedAt,
	})
}

func (s *scrapeRunService) record(tx *gorm.DB, run *entity.ScrapeRun) (*entity.ScrapeRun, error) {
	run.ID = uuid.New()
	if err := s.scrapeRunRepo.Create(tx, run); err != nil {
		s.log.Warnf("Failed to create scrape run: %+v", err)
		return nil, err
	}
	return run, nil
}
