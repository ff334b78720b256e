package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"doctor-duty-notifier/config"
	deliveryHttp "doctor-duty-notifier/internal/delivery/http"
	"doctor-duty-notifier/internal/delivery/http/handler"
	"doctor-duty-notifier/internal/delivery/http/middleware"
	"doctor-duty-notifier/internal/infrastructure/cache"
	"doctor-duty-notifier/internal/infrastructure/database"
	"doctor-duty-notifier/internal/notifier"
	"doctor-duty-notifier/internal/repository"
	"doctor-duty-notifier/internal/scheduler"
	"doctor-duty-notifier/internal/scraper"
	"doctor-duty-notifier/internal/service"
	"doctor-duty-notifier/internal/usecase"
	"doctor-duty-notifier/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
	Scheduler   *scheduler.Scheduler

	log          *logrus.Logger
	memoryDedup  *service.MemoryAlertDeduplicator
	scheduleCase usecase.ScheduleUsecase
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	app.log = setupLogger(cfg.App.LogLevel)
	app.log.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Timezone, cfg.App.Env == "development")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	app.log.Info("Database connected successfully")

	if cfg.DB.AutoMigrate {
		sqlDB, err := db.DB()
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to get database instance: %w", err)
		}
		if err := database.RunMigrations(sqlDB, app.log); err != nil {
			app.Close()
			return nil, err
		}
	}

	// Initialize Redis
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		app.RedisClient = redisClient
		app.log.Info("Redis connected successfully")
	} else {
		app.log.Warn("REDIS_HOST not set, alert de-duplication is kept in memory")
	}

	// Initialize all layers
	if err := app.initialize(); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) *logrus.Logger {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)

	return logrus.StandardLogger()
}

// initialize wires scraper, storage, notifier, usecases, HTTP and scheduler.
func (app *App) initialize() error {
	cfg := app.Config
	log := app.log
	location := cfg.App.Location()

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	transactor := repository.NewTransactor(app.DB)
	dutyRecordRepo := repository.NewDutyRecordRepository()
	scrapeRunRepo := repository.NewScrapeRunRepository()
	subscriptionRepo := repository.NewSubscriptionRepository()
	fcmTokenRepo := repository.NewFCMTokenRepository()
	doctorSubscriptionRepo := repository.NewDoctorSubscriptionRepository()

	// Initialize scraper
	fetcher := scraper.NewHTTPFetcher(scraper.HTTPFetcherConfig{
		Timeout:            cfg.Scraper.HTTPTimeout,
		UserAgent:          cfg.Scraper.UserAgent,
		InsecureSkipVerify: cfg.Scraper.InsecureSkipVerify,
	})
	extractor := scraper.NewExtractor(scraper.ExtractorConfig{
		SourceURL:           cfg.Scraper.SourceURL,
		MaxConcurrentSheets: cfg.Scraper.MaxConcurrentSheets,
	}, fetcher, log)

	// Initialize services
	snapshots := service.NewSnapshotStore()
	scrapeRunService := service.NewScrapeRunService(log, scrapeRunRepo)

	var dedup service.AlertDeduplicator
	if app.RedisClient != nil {
		dedup = service.NewRedisAlertDeduplicator(app.RedisClient, log)
	} else {
		app.memoryDedup = service.NewMemoryAlertDeduplicator(log)
		dedup = app.memoryDedup
	}

	// Initialize notifier transports
	fcmSender := newFCMSender(cfg.Notifier, log)
	emailSender := notifier.NewEmailSender(notifier.EmailConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, log)
	webPushSender := notifier.NewWebPushSender(notifier.WebPushConfig{
		PublicKey:  cfg.Notifier.VAPIDPublicKey,
		PrivateKey: cfg.Notifier.VAPIDPrivateKey,
		Subscriber: cfg.Notifier.VAPIDSubscriber,
	}, log)
	dispatcher := notifier.NewDispatcher(cfg.Notifier.RatePerSecond, emailSender, webPushSender, fcmSender, log)

	// Initialize usecases
	scheduleUsecase := usecase.NewScheduleUsecase(app.DB, log, transactor, extractor, snapshots, dutyRecordRepo, scrapeRunRepo, scrapeRunService, usecase.ScheduleUsecaseConfig{
		OutputJSONPath: cfg.Scraper.OutputJSONPath,
	})
	notificationUsecase := usecase.NewNotificationUsecase(app.DB, log, snapshots, subscriptionRepo, fcmTokenRepo, doctorSubscriptionRepo, dedup, dispatcher, cfg.Notifier.DedupTTL)
	deviceUsecase := usecase.NewDeviceUsecase(app.DB, log, fcmTokenRepo, doctorSubscriptionRepo)
	app.scheduleCase = scheduleUsecase

	// Initialize handlers
	scheduleHandler := handler.NewScheduleHandler(scheduleUsecase, customValidator, location)
	notificationHandler := handler.NewNotificationHandler(notificationUsecase, customValidator)
	deviceHandler := handler.NewDeviceHandler(deviceUsecase, customValidator)

	// Initialize middleware
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.AllowedOrigins)

	// Initialize router
	router := deliveryHttp.NewRouter(scheduleHandler, notificationHandler, deviceHandler, corsMiddleware)

	// Create server
	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Initialize scheduler
	app.Scheduler = scheduler.New(scheduler.Config{
		ScrapeInterval:   cfg.Scheduler.ScrapeInterval,
		NotifyInterval:   cfg.Scheduler.NotifyInterval,
		RunScrapeOnStart: cfg.Scheduler.RunScrapeOnStart,
		Location:         location,
		JobTimeout:       cfg.Scraper.HTTPTimeout * 4,
	}, scheduleUsecase, notificationUsecase, log)

	return nil
}

// newFCMSender returns nil when no usable service account is configured;
// a nil sender reports itself disabled.
func newFCMSender(cfg config.NotifierConfig, log *logrus.Logger) *notifier.FCMSender {
	if cfg.FCMCredentialsPath == "" {
		log.Warn("FCM_CREDENTIALS_PATH not set, mobile push disabled")
		return nil
	}

	account, err := notifier.LoadServiceAccount(cfg.FCMCredentialsPath)
	if err != nil {
		log.Warnf("Failed to load FCM service account, mobile push disabled: %+v", err)
		return nil
	}

	sender, err := notifier.NewFCMSender(account, notifier.FCMConfig{ProjectID: cfg.FCMProjectID}, log)
	if err != nil {
		log.Warnf("Failed to initialize FCM sender, mobile push disabled: %+v", err)
		return nil
	}

	log.WithField("project_id", account.ProjectID).Info("FCM sender initialized")
	return sender
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Seed the in-memory snapshot from the last stored scrape
	count, err := app.scheduleCase.LoadSnapshot(context.Background())
	if err != nil {
		app.log.Warnf("Failed to load stored schedule: %+v", err)
	} else {
		app.log.WithField("count", count).Info("Stored schedule loaded")
	}

	if err := app.Scheduler.Start(); err != nil {
		app.log.Fatalf("Failed to start scheduler: %v", err)
	}

	// Start server in goroutine
	go func() {
		app.log.Infof("Server starting on port %s", app.Config.App.Port)
		app.log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.log.Errorf("Server forced to shutdown: %v", err)
	}

	// Stop background jobs before closing their connections
	if app.Scheduler != nil {
		app.Scheduler.Stop()
	}

	// Close connections
	app.Close()

	app.log.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	if app.memoryDedup != nil {
		app.memoryDedup.Stop()
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
