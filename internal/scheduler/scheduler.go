package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"doctor-duty-notifier/internal/delivery/dto"
	"doctor-duty-notifier/internal/domain/entity"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const defaultJobTimeout = 5 * time.Minute

// Ingester refreshes the stored schedule.
type Ingester interface {
	Ingest(ctx context.Context, trigger string) (*dto.IngestResponse, error)
}

// Notifier fans out alerts for duties about to start.
type Notifier interface {
	CheckAndNotify(ctx context.Context, now time.Time) (*dto.NotifyReport, error)
}

type Config struct {
	ScrapeInterval   time.Duration
	NotifyInterval   time.Duration
	RunScrapeOnStart bool
	Location         *time.Location
	JobTimeout       time.Duration
}

// Scheduler runs the periodic scrape and notify jobs.
type Scheduler struct {
	config   Config
	ingester Ingester
	notifier Notifier
	log      *logrus.Logger
	now      func() time.Time

	mu      sync.Mutex
	c       *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

func New(config Config, ingester Ingester, notifier Notifier, log *logrus.Logger) *Scheduler {
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = defaultJobTimeout
	}
	return &Scheduler{
		config:   config,
		ingester: ingester,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Start registers both jobs and starts the cron runner. Calling Start on a
// running scheduler is a no-op.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if s.config.ScrapeInterval <= 0 || s.config.NotifyInterval <= 0 {
		return errors.New("scheduler intervals must be positive")
	}

	cronLogger := cron.PrintfLogger(s.log)
	s.c = cron.New(
		cron.WithLocation(s.config.Location),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.c.Schedule(cron.Every(s.config.ScrapeInterval), cron.FuncJob(s.RunIngest))
	s.c.Schedule(cron.Every(s.config.NotifyInterval), cron.FuncJob(s.RunNotify))
	s.c.Start()
	s.running = true

	s.log.WithFields(logrus.Fields{
		"scrape_interval": s.config.ScrapeInterval.String(),
		"notify_interval": s.config.NotifyInterval.String(),
		"timezone":        s.config.Location.String(),
	}).Info("Scheduler started")

	if s.config.RunScrapeOnStart {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.RunIngest()
		}()
	}

	return nil
}

// Stop cancels in-flight jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	stopped := s.c.Stop()
	s.mu.Unlock()

	<-stopped.Done()
	s.wg.Wait()
	s.log.Info("Scheduler stopped")
}

func (s *Scheduler) jobContext() (context.Context, context.CancelFunc) {
	s.mu.Lock()
	parent := s.ctx
	s.mu.Unlock()
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, s.config.JobTimeout)
}

// RunIngest performs one scheduled scrape.
func (s *Scheduler) RunIngest() {
	ctx, cancel := s.jobContext()
	defer cancel()

	result, err := s.ingester.Ingest(ctx, entity.ScrapeTriggerSchedule)
	if err != nil {
		s.log.Warnf("Scheduled ingest failed: %+v", err)
		return
	}
	s.log.WithFields(logrus.Fields{
		"run_id": result.RunID.String(),
		"status": result.Status,
		"count":  result.Count,
	}).Info("Scheduled ingest finished")
}

// RunNotify performs one upcoming-duty check at the current wall time.
func (s *Scheduler) RunNotify() {
	ctx, cancel := s.jobContext()
	defer cancel()

	report, err := s.notifier.CheckAndNotify(ctx, s.now().In(s.config.Location))
	if err != nil {
		s.log.Warnf("Notification check failed: %+v", err)
		return
	}
	if report.New > 0 {
		s.log.WithFields(logrus.Fields{
			"matched": report.Matched,
			"new":     report.New,
			"sent":    report.Sent,
			"failed":  report.Failed,
			"skipped": report.Skipped,
		}).Info("Upcoming duty alerts dispatched")
	}
}
