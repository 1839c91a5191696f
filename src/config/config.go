package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type GlobalConfig struct {
	APIBaseURL     string
	LogLevel       string
	HTTPTimeout    time.Duration
	CourseCacheTTL time.Duration
	SessionFile    string
	SessionHashKey string
}

// NewConfig loads configuration from the environment. A .env file in the
// working directory is merged in first when present; real environment
// variables always win.
func NewConfig() (GlobalConfig, error) {
	// Ignore a missing .env file, it is optional for local runs
	_ = godotenv.Load()

	apiBaseURL := os.Getenv("API_BASE_URL")
	if apiBaseURL == "" {
		return GlobalConfig{}, fmt.Errorf("API_BASE_URL environment variable is required")
	}

	sessionHashKey := os.Getenv("SESSION_HASH_KEY")
	if sessionHashKey == "" {
		return GlobalConfig{}, fmt.Errorf("SESSION_HASH_KEY environment variable is required")
	}

	httpTimeout, err := secondsEnv("HTTP_TIMEOUT_SECONDS", 15)
	if err != nil {
		return GlobalConfig{}, err
	}

	cacheTTL, err := secondsEnv("COURSE_CACHE_TTL_SECONDS", 300)
	if err != nil {
		return GlobalConfig{}, err
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	sessionFile := os.Getenv("SESSION_FILE")
	if sessionFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return GlobalConfig{}, fmt.Errorf("SESSION_FILE not set and home directory unavailable: %w", err)
		}
		sessionFile = home + "/.course-client-session"
	}

	return GlobalConfig{
		APIBaseURL:     apiBaseURL,
		LogLevel:       logLevel,
		HTTPTimeout:    httpTimeout,
		CourseCacheTTL: cacheTTL,
		SessionFile:    sessionFile,
		SessionHashKey: sessionHashKey,
	}, nil
}

func secondsEnv(name string, fallback int) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return time.Duration(fallback) * time.Second, nil
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer number of seconds", name)
	}
	return time.Duration(seconds) * time.Second, nil
}
