package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Scraper   ScraperConfig
	Scheduler SchedulerConfig
	Notifier  NotifierConfig
	SMTP      SMTPConfig
}

type AppConfig struct {
	Port           string
	Env            string
	LogLevel       string
	Timezone       string
	AllowedOrigins []string
}

type DBConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis host is configured.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type ScraperConfig struct {
	SourceURL           string
	HTTPTimeout         time.Duration
	UserAgent           string
	InsecureSkipVerify  bool
	MaxConcurrentSheets int
	OutputJSONPath      string
}

type SchedulerConfig struct {
	ScrapeInterval   time.Duration
	NotifyInterval   time.Duration
	RunScrapeOnStart bool
}

type NotifierConfig struct {
	RatePerSecond      float64
	DedupTTL           time.Duration
	FCMCredentialsPath string
	FCMProjectID       string
	VAPIDPublicKey     string
	VAPIDPrivateKey    string
	VAPIDSubscriber    string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Location resolves App.Timezone, falling back to UTC.
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "doctor_duty")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SCRAPER_SOURCE_URL", "https://iitj.ac.in/health-center/en/doctors-schedule")
	v.SetDefault("SCRAPER_HTTP_TIMEOUT", "30s")
	v.SetDefault("SCRAPER_USER_AGENT", "Mozilla/5.0 (compatible; doctor-duty-notifier/1.0)")
	v.SetDefault("SCRAPER_INSECURE_SKIP_VERIFY", false)
	v.SetDefault("SCRAPER_MAX_CONCURRENT_SHEETS", 4)

	v.SetDefault("SCHEDULER_SCRAPE_INTERVAL", "6h")
	v.SetDefault("SCHEDULER_NOTIFY_INTERVAL", "1m")
	v.SetDefault("SCHEDULER_RUN_SCRAPE_ON_START", true)

	v.SetDefault("NOTIFIER_RATE_PER_SECOND", 10)
	v.SetDefault("NOTIFIER_DEDUP_TTL", "2h")
	v.SetDefault("VAPID_SUBSCRIBER", "mailto:admin@example.com")

	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
}

// LoadConfig reads ./.env when present, then the process environment.
func LoadConfig() (*Config, error) {
	return Load(".env")
}

func Load(envFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	config := &Config{
		App: AppConfig{
			Port:           v.GetString("APP_PORT"),
			Env:            v.GetString("APP_ENV"),
			LogLevel:       v.GetString("LOG_LEVEL"),
			Timezone:       v.GetString("APP_TIMEZONE"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			Name:        v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Scraper: ScraperConfig{
			SourceURL:           v.GetString("SCRAPER_SOURCE_URL"),
			HTTPTimeout:         v.GetDuration("SCRAPER_HTTP_TIMEOUT"),
			UserAgent:           v.GetString("SCRAPER_USER_AGENT"),
			InsecureSkipVerify:  v.GetBool("SCRAPER_INSECURE_SKIP_VERIFY"),
			MaxConcurrentSheets: v.GetInt("SCRAPER_MAX_CONCURRENT_SHEETS"),
			OutputJSONPath:      v.GetString("SCRAPER_OUTPUT_JSON_PATH"),
		},
		Scheduler: SchedulerConfig{
			ScrapeInterval:   v.GetDuration("SCHEDULER_SCRAPE_INTERVAL"),
			NotifyInterval:   v.GetDuration("SCHEDULER_NOTIFY_INTERVAL"),
			RunScrapeOnStart: v.GetBool("SCHEDULER_RUN_SCRAPE_ON_START"),
		},
		Notifier: NotifierConfig{
			RatePerSecond:      v.GetFloat64("NOTIFIER_RATE_PER_SECOND"),
			DedupTTL:           v.GetDuration("NOTIFIER_DEDUP_TTL"),
			FCMCredentialsPath: v.GetString("FCM_CREDENTIALS_PATH"),
			FCMProjectID:       v.GetString("FCM_PROJECT_ID"),
			VAPIDPublicKey:     v.GetString("VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey:    v.GetString("VAPID_PRIVATE_KEY"),
			VAPIDSubscriber:    v.GetString("VAPID_SUBSCRIBER"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.Scheduler.ScrapeInterval <= 0 {
		return fmt.Errorf("SCHEDULER_SCRAPE_INTERVAL must be positive")
	}
	if c.Scheduler.NotifyInterval <= 0 {
		return fmt.Errorf("SCHEDULER_NOTIFY_INTERVAL must be positive")
	}
	if c.Scraper.SourceURL == "" {
		return fmt.Errorf("SCRAPER_SOURCE_URL is required")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE %q: %w", c.App.Timezone, err)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
