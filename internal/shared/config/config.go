package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Scheduler SchedulerConfig
	SMTP      SMTPConfig
	KurrentDB KurrentDBConfig
	LIS       LISConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

type AuthConfig struct {
	JWTSecret string
}

// SchedulerConfig holds the tunables of the check-up reminder scanner.
type SchedulerConfig struct {
	// ScanInterval is how often the scanner walks the active patients
	ScanInterval time.Duration
	// ReminderWindow is how long before the due date a reminder is generated
	ReminderWindow time.Duration
}

// SMTPConfig holds credentials for the e-mail notification channel.
// An empty username disables real delivery and the channel falls back
// to a logging stub.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
}

func (s SMTPConfig) Configured() bool {
	return s.Username != "" && s.Password != ""
}

// KurrentDBConfig holds configuration for KurrentDB (EventStoreDB).
type KurrentDBConfig struct {
	Host     string
	Port     int
	Insecure bool
	Username string
	Password string
}

// LISConfig configures the legacy lab information system import
// (SQL Server). Disabled unless a host is configured.
type LISConfig struct {
	Enabled      bool
	Host         string
	Port         int
	Database     string
	User         string
	Password     string
	SSLMode      string
	ResultsTable string
	// SyncSchedule is a cron expression for the nightly import
	SyncSchedule string
}

type LoggingConfig struct {
	Level string
	// ElasticsearchURL enables the ECS sink when set
	ElasticsearchURL string
}

func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port: getEnvInt("SERVER_PORT", 8080),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "crmclinica"),
			Password: getEnv("DB_PASSWORD", "crmclinica"),
			Database: getEnv("DB_NAME", "crmclinica"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-in-prod"),
		},
		Scheduler: SchedulerConfig{
			ScanInterval:   getEnvDuration("SCHEDULER_SCAN_INTERVAL", time.Hour),
			ReminderWindow: getEnvDuration("SCHEDULER_REMINDER_WINDOW", 7*24*time.Hour),
		},
		SMTP: SMTPConfig{
			Host:      getEnv("SMTP_HOST", "localhost"),
			Port:      getEnvInt("SMTP_PORT", 587),
			Username:  getEnv("SMTP_USERNAME", ""),
			Password:  getEnv("SMTP_PASSWORD", ""),
			FromName:  getEnv("SMTP_FROM_NAME", "CRM Clínica"),
			FromEmail: getEnv("SMTP_FROM_EMAIL", "nao-responda@crmclinica.com.br"),
		},
		KurrentDB: KurrentDBConfig{
			Host:     getEnv("KURRENTDB_HOST", "localhost"),
			Port:     getEnvInt("KURRENTDB_PORT", 2113),
			Insecure: getEnvBool("KURRENTDB_INSECURE", true),
			Username: getEnv("KURRENTDB_USERNAME", ""),
			Password: getEnv("KURRENTDB_PASSWORD", ""),
		},
		LIS: LISConfig{
			Enabled:      getEnv("LIS_HOST", "") != "",
			Host:         getEnv("LIS_HOST", ""),
			Port:         getEnvInt("LIS_PORT", 1433),
			Database:     getEnv("LIS_DATABASE", "lis"),
			User:         getEnv("LIS_USER", ""),
			Password:     getEnv("LIS_PASSWORD", ""),
			SSLMode:      getEnv("LIS_SSLMODE", "disable"),
			ResultsTable: getEnv("LIS_RESULTS_TABLE", "dbo.ExamResults"),
			SyncSchedule: getEnv("LIS_SYNC_SCHEDULE", "0 2 * * *"),
		},
		Logging: LoggingConfig{
			Level:            getEnv("LOG_LEVEL", "info"),
			ElasticsearchURL: getEnv("LOG_ELASTICSEARCH_URL", ""),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
