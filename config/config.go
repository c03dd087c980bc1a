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

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// Conference configuration
	ConferenceDomain string
	JWTSecret        string
	JWTIssuer        string
	TokenTTL         time.Duration

	// Recording configuration
	RecordingTimeout time.Duration

	// Virtual table configuration
	TableMinCapacity int
	TableMaxCapacity int

	// Presence configuration
	PresenceUpdate time.Duration // presence metrics collection cadence
	PresenceTTL    time.Duration

	// Blob storage configuration
	StorageBackend   string // "local" or "s3"
	StorageDir       string
	StorageBaseURL   string
	S3Bucket         string
	S3Region         string
	S3Endpoint       string
	S3AccessKey      string
	S3Secret         string
	S3ForcePathStyle bool

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// Conference
		ConferenceDomain: getEnv("CONFERENCE_DOMAIN", "meet.econnect.local"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTIssuer:        getEnv("JWT_ISSUER", "econnect"),
		TokenTTL:         getEnvAsDuration("TOKEN_TTL", "1h"),

		// Recording
		RecordingTimeout: getEnvAsDuration("RECORDING_TIMEOUT", "10s"),

		// Virtual tables
		TableMinCapacity: getEnvAsInt("TABLE_MIN_CAPACITY", 1),
		TableMaxCapacity: getEnvAsInt("TABLE_MAX_CAPACITY", 50),

		// Presence
		PresenceUpdate: getEnvAsDuration("PRESENCE_UPDATE", "30s"),
		PresenceTTL:    getEnvAsDuration("PRESENCE_TTL", "24h"),

		// Blob storage
		StorageBackend:   getEnv("STORAGE_BACKEND", "local"),
		StorageDir:       getEnv("STORAGE_DIR", "./pb_data/recordings"),
		StorageBaseURL:   getEnv("STORAGE_BASE_URL", "http://localhost:8090/files"),
		S3Bucket:         getEnv("S3_BUCKET", ""),
		S3Region:         getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:       getEnv("S3_ENDPOINT", ""),
		S3AccessKey:      getEnv("S3_ACCESS_KEY", ""),
		S3Secret:         getEnv("S3_SECRET", ""),
		S3ForcePathStyle: getEnvAsBool("S3_FORCE_PATH_STYLE", false),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
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
