package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Clinic API configuration
	APIBaseURL string
	APITimeout time.Duration

	// Facility / station scope
	FacilityID string
	CounterID  string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// Display refresh configuration
	PollInterval   time.Duration
	DebounceWindow time.Duration

	// Rate limiting
	StationRatePerMinute int

	// Monitoring
	EnableMetrics bool
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8091"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Clinic API
		APIBaseURL: getEnv("CLINIC_API_URL", "http://localhost:8080"),
		APITimeout: getEnvAsDuration("CLINIC_API_TIMEOUT", "5s"),

		// Scope
		FacilityID: getEnv("FACILITY_ID", ""),
		CounterID:  getEnv("COUNTER_ID", ""),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// Display refresh
		PollInterval:   getEnvAsDuration("POLL_INTERVAL", "3s"),
		DebounceWindow: getEnvAsDuration("DEBOUNCE_WINDOW", "250ms"),

		// Rate limiting
		StationRatePerMinute: getEnvAsInt("STATION_RATE_PER_MINUTE", 60),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
