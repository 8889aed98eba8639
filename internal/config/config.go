package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	Telegram     TelegramConfig
	Geocode      GeocodeConfig
	SMTP         SMTPConfig
	Schedule     ScheduleConfig
	Notification NotificationConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
	// TrustProxy makes the router honour X-Forwarded-For / X-Real-IP when
	// resolving the client address used by the network check.
	TrustProxy  bool
	CORSOrigins []string
}

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string

	MongoURI  string
	MongoName string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

type TelegramConfig struct {
	BotToken          string
	ChatID            string
	TopicAttendanceID string
	TopicSecurityID   string
	TopicReportID     string
}

type GeocodeConfig struct {
	BaseURL   string
	UserAgent string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	FromName   string
	Recipients []string
}

// ScheduleConfig describes when the reconciliation jobs fire, in Location.
type ScheduleConfig struct {
	Timezone      string
	Location      *time.Location
	RestDay       time.Weekday
	BackfillAt    ClockTime
	SweepAt       ClockTime
	ReportAt      ClockTime
	LeaveRejectAt ClockTime
	PurgeInterval time.Duration
}

type NotificationConfig struct {
	Workers    int
	QueueSize  int
	MaxRetries int
}

// ClockTime is a wall-clock time of day.
type ClockTime struct {
	Hour   int
	Minute int
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Minutes returns the offset from midnight.
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

// ParseClockTime parses an "HH:MM" value.
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid clock time %q, expected HH:MM", s)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, using process environment")
	}

	config := &Config{}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		TrustProxy:  getEnvBool("APP_TRUST_PROXY", false),
		CORSOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}
	if len(config.App.CORSOrigins) == 0 {
		config.App.CORSOrigins = []string{"http://localhost:3000"}
	}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Driver:    strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		Host:      getEnv("DB_HOST", "localhost"),
		Port:      dbPort,
		User:      getEnv("DB_USER", "postgres"),
		Password:  getEnv("DB_PASSWORD", ""),
		Name:      getEnv("DB_NAME", "attendance"),
		SSLMode:   getEnv("DB_SSL_MODE", "disable"),
		MongoURI:  getEnv("MONGODB_URI", ""),
		MongoName: getEnv("MONGODB_NAME", "attendance"),
	}

	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	config.Telegram = TelegramConfig{
		BotToken:          getEnv("TELEGRAM_BOT_TOKEN", ""),
		ChatID:            getEnv("TELEGRAM_CHAT_ID", ""),
		TopicAttendanceID: getEnv("TELEGRAM_TOPIC_ATTENDANCE_ID", ""),
		TopicSecurityID:   getEnv("TELEGRAM_TOPIC_SECURITY_ID", ""),
		TopicReportID:     getEnv("TELEGRAM_TOPIC_REPORT_ID", getEnv("TELEGRAM_TOPIC_ATTENDANCE_ID", "")),
	}

	config.Geocode = GeocodeConfig{
		BaseURL:   getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		UserAgent: getEnv("NOMINATIM_USER_AGENT", "attendance-backend"),
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	config.SMTP = SMTPConfig{
		Host:       getEnv("SMTP_HOST", ""),
		Port:       smtpPort,
		Username:   getEnv("SMTP_USERNAME", ""),
		Password:   getEnv("SMTP_PASSWORD", ""),
		From:       getEnv("SMTP_FROM", ""),
		FromName:   getEnv("SMTP_FROM_NAME", "Attendance"),
		Recipients: getEnvSlice("REPORT_RECIPIENTS"),
	}

	schedule, err := loadSchedule()
	if err != nil {
		return nil, err
	}
	config.Schedule = schedule

	workers, err := strconv.Atoi(getEnv("NOTIFICATION_WORKERS", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_WORKERS: %w", err)
	}
	queueSize, err := strconv.Atoi(getEnv("NOTIFICATION_QUEUE_SIZE", "256"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_QUEUE_SIZE: %w", err)
	}
	maxRetries, err := strconv.Atoi(getEnv("NOTIFICATION_MAX_RETRIES", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_MAX_RETRIES: %w", err)
	}

	config.Notification = NotificationConfig{
		Workers:    workers,
		QueueSize:  queueSize,
		MaxRetries: maxRetries,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadSchedule() (ScheduleConfig, error) {
	s := ScheduleConfig{Timezone: getEnv("APP_TIMEZONE", "Asia/Jakarta")}

	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return s, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	s.Location = loc

	restDay, ok := weekdays[strings.ToLower(getEnv("SCHEDULE_REST_DAY", "sunday"))]
	if !ok {
		return s, errors.New("invalid SCHEDULE_REST_DAY")
	}
	s.RestDay = restDay

	clocks := []struct {
		env      string
		fallback string
		dst      *ClockTime
	}{
		{"SCHEDULE_BACKFILL_AT", "17:00", &s.BackfillAt},
		{"SCHEDULE_SWEEP_AT", "19:00", &s.SweepAt},
		{"SCHEDULE_REPORT_AT", "19:30", &s.ReportAt},
		{"SCHEDULE_LEAVE_REJECT_AT", "01:00", &s.LeaveRejectAt},
	}
	for _, c := range clocks {
		v, err := ParseClockTime(getEnv(c.env, c.fallback))
		if err != nil {
			return s, fmt.Errorf("invalid %s: %w", c.env, err)
		}
		*c.dst = v
	}

	purge, err := time.ParseDuration(getEnv("SCHEDULE_TOKEN_PURGE_INTERVAL", "15m"))
	if err != nil {
		return s, fmt.Errorf("invalid SCHEDULE_TOKEN_PURGE_INTERVAL: %w", err)
	}
	s.PurgeInterval = purge

	return s, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case DriverMongo:
		if c.Database.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required when DB_DRIVER=mongo")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("DB_DRIVER must be one of postgres, mongo, memory")
	}

	if err := c.Schedule.Validate(); err != nil {
		return err
	}

	if c.Notification.Workers < 1 {
		return fmt.Errorf("NOTIFICATION_WORKERS must be at least 1")
	}
	if c.SMTP.Host != "" && c.SMTP.From == "" {
		return fmt.Errorf("SMTP_FROM is required when SMTP_HOST is set")
	}
	return nil
}

// Validate rejects a schedule whose jobs would not run as backfill, sweep, report.
func (s ScheduleConfig) Validate() error {
	if s.Location == nil {
		return fmt.Errorf("APP_TIMEZONE is required")
	}
	if s.BackfillAt.Minutes() >= s.SweepAt.Minutes() {
		return fmt.Errorf("SCHEDULE_BACKFILL_AT (%s) must be before SCHEDULE_SWEEP_AT (%s)", s.BackfillAt, s.SweepAt)
	}
	if s.SweepAt.Minutes() >= s.ReportAt.Minutes() {
		return fmt.Errorf("SCHEDULE_SWEEP_AT (%s) must be before SCHEDULE_REPORT_AT (%s)", s.SweepAt, s.ReportAt)
	}
	if s.PurgeInterval <= 0 {
		return fmt.Errorf("SCHEDULE_TOKEN_PURGE_INTERVAL must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			result = append(result, p)
		}
	}
	return result
}
