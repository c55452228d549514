package worker

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds process settings for the scorer
type Config struct {
	ConfigPath      string
	Workers         int
	Batched         bool
	ListenAddr      string
	JaegerEndpoint  string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	CacheSize       int
	ScoreRPM        int
	ScoreBurst      int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	config := &Config{
		ConfigPath:      getEnv("CONFIG", "fitness.yaml"),
		Workers:         getEnvInt("WORKERS", 0),
		Batched:         getEnvBool("BATCHED", false),
		ListenAddr:      getEnv("METRICS_ADDR", ""),
		JaegerEndpoint:  getEnv("JAEGER_ENDPOINT", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", "5s"),
		CacheSize:       getEnvInt("COMPLEXITY_CACHE_SIZE", 10000),
		ScoreRPM:        getEnvInt("SCORE_RPM", 0),
		ScoreBurst:      getEnvInt("SCORE_BURST", 0),
	}

	return config
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
