package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const feedURLFormat = "https://letterboxd.com/%s/rss/"

// Fetch modes understood by FEED_FETCH_MODE.
const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Username        string
	FeedURL         string
	FetchMode       string
	FeedMaxAttempts int
	FeedTimeoutSec  int
	ChromeBin       string

	DatasetPath   string
	BootstrapPath string

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	ReportEnabled bool
	LogLevel      string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() *Config {
	cfg := &Config{
		Username:        getEnv("LETTERBOXD_USERNAME", "cramey14"),
		FeedURL:         getEnv("FEED_URL", ""),
		FetchMode:       strings.ToLower(getEnv("FEED_FETCH_MODE", FetchModeHTTP)),
		FeedMaxAttempts: getEnvInt("FEED_MAX_ATTEMPTS", 1),
		FeedTimeoutSec:  getEnvInt("FEED_TIMEOUT_SEC", 30),
		ChromeBin:       getEnv("CHROME_BIN", ""),

		DatasetPath:   getEnv("DATASET_PATH", "letterboxd.csv"),
		BootstrapPath: getEnv("BOOTSTRAP_PATH", ""),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "letterboxd"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "letterboxd"),
		PostgresDB:       getEnv("POSTGRES_DB", "letterboxd"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		ReportEnabled: getEnvBool("REPORT_ENABLED", false),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
	if cfg.FeedURL == "" {
		cfg.FeedURL = fmt.Sprintf(feedURLFormat, cfg.Username)
	}
	if cfg.FeedMaxAttempts < 1 {
		cfg.FeedMaxAttempts = 1
	}
	return cfg
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
