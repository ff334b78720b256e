package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"doctor-duty-notifier/internal/converter"
	"doctor-duty-notifier/internal/delivery/dto"
	"doctor-duty-notifier/internal/domain/entity"
	"doctor-duty-notifier/internal/domain/repository"
	"doctor-duty-notifier/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultScrapeRunLimit = 20
	maxScrapeRunLimit     = 100
)

var (
	ErrScrapeFailed      = errors.New("schedule scrape failed")
	ErrIngestInProgress  = errors.New("schedule ingest already in progress")
	ErrScheduleStoreFail = errors.New("failed to store schedule")
)

// ScheduleExtractor produces a fresh, complete set of duty records.
type ScheduleExtractor interface {
	Extract(ctx context.Context) ([]entity.DutyRecord, error)
}

type ScheduleUsecase interface {
	Ingest(ctx context.Context, trigger string) (*dto.IngestResponse, error)
	GetSchedules(ctx context.Context, query *dto.ScheduleQuery) (*dto.ScheduleListResponse, error)
	GetUpcoming(ctx context.Context, now time.Time) (*dto.UpcomingResponse, error)
	LoadSnapshot(ctx context.Context) (int, error)
	GetScrapeRuns(ctx context.Context, limit int) (*dto.ScrapeRunListResponse, error)
}

type ScheduleUsecaseConfig struct {
	// OutputJSONPath, when set, receives a flat JSON copy of every ingested schedule.
	OutputJSONPath string
}

type scheduleUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	transactor       repository.Transactor
	extractor        ScheduleExtractor
	snapshots        *service.SnapshotStore
	dutyRecordRepo   repository.DutyRecordRepository
	scrapeRunRepo    repository.ScrapeRunRepository
	scrapeRunService service.ScrapeRunService
	config           ScheduleUsecaseConfig
	now              func() time.Time

	ingestMu sync.Mutex
}

func NewScheduleUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	transactor repository.Transactor,
	extractor ScheduleExtractor,
	snapshots *service.SnapshotStore,
	dutyRecordRepo repository.DutyRecordRepository,
	scrapeRunRepo repository.ScrapeRunRepository,
	scrapeRunService service.ScrapeRunService,
	config ScheduleUsecaseConfig,
) ScheduleUsecase {
	return &scheduleUsecase{
		db:               db,
		log:              log,
		transactor:       transactor,
		extractor:        extractor,
		snapshots:        snapshots,
		dutyRecordRepo:   dutyRecordRepo,
		scrapeRunRepo:    scrapeRunRepo,
		scrapeRunService: scrapeRunService,
		config:           config,
		now:              time.Now,
	}
}

// Ingest scrapes the schedule and replaces the stored set. An empty scrape
// is recorded as a warning and leaves the previous schedule in place.
func (u *scheduleUsecase) Ingest(ctx context.Context, trigger string) (*dto.IngestResponse, error) {
	if !u.ingestMu.TryLock() {
		return nil, ErrIngestInProgress
	}
	defer u.ingestMu.Unlock()

	startedAt := u.now()
	u.log.Infof("Starting schedule ingest (trigger=%s)", trigger)

	records, err := u.extractor.Extract(ctx)
	if err != nil {
		u.log.Warnf("Failed to extract schedule: %+v", err)
		u.recordFailure(ctx, trigger, startedAt, err)
		return nil, fmt.Errorf("%w: %v", ErrScrapeFailed, err)
	}

	if len(records) == 0 {
		u.log.Warn("Scraper returned no schedule rows, keeping stored schedule")
		var run *entity.ScrapeRun
		err := u.transactor.Transaction(ctx, func(tx *gorm.DB) error {
			var err error
			run, err = u.scrapeRunService.RecordWarning(ctx, tx, trigger, startedAt, "no schedule data extracted")
			return err
		})
		if err != nil {
			u.log.Warnf("Failed to record scrape warning: %+v", err)
		}
		return ingestResponse(run, entity.ScrapeStatusWarning, "no schedule data extracted", 0, startedAt), nil
	}

	var run *entity.ScrapeRun
	err = u.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		if err := u.dutyRecordRepo.ReplaceAll(tx, records); err != nil {
			return err
		}
		var err error
		run, err = u.scrapeRunService.RecordSuccess(ctx, tx, trigger, startedAt, len(records), scrapeMetadata(records))
		return err
	})
	if err != nil {
		u.log.Warnf("Failed to store schedule: %+v", err)
		u.recordFailure(ctx, trigger, startedAt, err)
		return nil, fmt.Errorf("%w: %v", ErrScheduleStoreFail, err)
	}

	snapshot := u.snapshots.Replace(records, u.now())
	u.log.Infof("Stored %d schedule rows (snapshot v%d)", len(records), snapshot.Version)

	if u.config.OutputJSONPath != "" {
		if err := writeScheduleFile(u.config.OutputJSONPath, records); err != nil {
			u.log.Warnf("Failed to write schedule file %s: %+v", u.config.OutputJSONPath, err)
		}
	}

	return ingestResponse(run, entity.ScrapeStatusSuccess, fmt.Sprintf("ingested %d schedule rows", len(records)), len(records), startedAt), nil
}

func (u *scheduleUsecase) GetSchedules(ctx context.Context, query *dto.ScheduleQuery) (*dto.ScheduleListResponse, error) {
	records, err := u.dutyRecordRepo.FindAll(u.db, converter.ScheduleQueryToFilter(query))
	if err != nil {
		u.log.Warnf("Failed to find schedules: %+v", err)
		return nil, err
	}

	return &dto.ScheduleListResponse{
		Schedules: converter.DutyRecordsToResponses(records),
		Total:     len(records),
	}, nil
}

func (u *scheduleUsecase) GetUpcoming(ctx context.Context, now time.Time) (*dto.UpcomingResponse, error) {
	snapshot := u.snapshots.Current()
	alerts := service.MatchUpcoming(snapshot.Records, now)

	response := &dto.UpcomingResponse{
		Alerts:          converter.AlertsToResponses(alerts),
		Total:           len(alerts),
		CheckedAt:       now,
		SnapshotVersion: snapshot.Version,
	}
	if snapshot.Version > 0 {
		takenAt := snapshot.TakenAt
		response.SnapshotTakenAt = &takenAt
	}
	return response, nil
}

// LoadSnapshot seeds the in-memory snapshot from storage and returns the row count.
func (u *scheduleUsecase) LoadSnapshot(ctx context.Context) (int, error) {
	records, err := u.dutyRecordRepo.FindAll(u.db, nil)
	if err != nil {
		u.log.Warnf("Failed to load stored schedule: %+v", err)
		return 0, err
	}

	takenAt := u.now()
	latest, err := u.scrapeRunRepo.FindLatest(u.db)
	if err != nil {
		u.log.Warnf("Failed to find latest scrape run: %+v", err)
	} else if latest != nil {
		takenAt = latest.CreatedAt
	}

	snapshot := u.snapshots.Replace(records, takenAt)
	u.log.Infof("Loaded %d stored schedule rows (snapshot v%d)", len(records), snapshot.Version)
	return len(records), nil
}

func (u *scheduleUsecase) GetScrapeRuns(ctx context.Context, limit int) (*dto.ScrapeRunListResponse, error) {
	if limit <= 0 {
		limit = defaultScrapeRunLimit
	}
	if limit > maxScrapeRunLimit {
		limit = maxScrapeRunLimit
	}

	runs, err := u.scrapeRunRepo.FindRecent(u.db, limit)
	if err != nil {
		u.log.Warnf("Failed to find scrape runs: %+v", err)
		return nil, err
	}

	return &dto.ScrapeRunListResponse{
		Runs:  converter.ScrapeRunsToResponses(runs),
		Total: len(runs),
	}, nil
}

func (u *scheduleUsecase) recordFailure(ctx context.Context, trigger string, startedAt time.Time, cause error) {
	err := u.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		_, err := u.scrapeRunService.RecordFailure(ctx, tx, trigger, startedAt, cause)
		return err
	})
	if err != nil {
		u.log.Warnf("Failed to record scrape failure: %+v", err)
	}
}

func ingestResponse(run *entity.ScrapeRun, status entity.ScrapeStatus, message string, count int, startedAt time.Time) *dto.IngestResponse {
	response := &dto.IngestResponse{
		Status:    string(status),
		Message:   message,
		Count:     count,
		StartedAt: startedAt,
	}
	if run != nil {
		response.RunID = run.ID
	}
	return response
}

func scrapeMetadata(records []entity.DutyRecord) entity.JSON {
	sheets := make(map[string]struct{})
	perCategory := make(map[entity.DutyCategory]int)
	for _, record := range records {
		sheets[record.DateLabel] = struct{}{}
		perCategory[record.Category]++
	}
	return entity.JSON{
		"sheets":   len(sheets),
		"regular":  perCategory[entity.DutyCategoryRegular],
		"visiting": perCategory[entity.DutyCategoryVisiting],
	}
}

// writeScheduleFile replaces path atomically with a JSON array of records.
func writeScheduleFile(path string, records []entity.DutyRecord) error {
	payload, err := json.MarshalIndent(converter.DutyRecordsToResponses(records), "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".schedule-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
