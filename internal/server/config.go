package server

import (
	"os"
	"strconv"
	"time"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreDynamoDB = "dynamodb"
	StoreSQLite   = "sqlite"
)

// Config holds server configuration from environment variables.
type Config struct {
	Port                string
	GRPCPort            string
	APIKey              string
	AllowInsecureNoAuth bool

	Store          string
	AWSRegion      string
	AWSEndpointURL string // For LocalStack
	DynamoDBTable  string
	SQLitePath     string

	EventsQueueURL string
	EventsFIFO     bool

	ConfigURL        string
	ConfigToken      string
	ConfigFile       string
	ConfigRefresh    string // cron spec; empty disables
	ConfigMaxRetries int
	ConfigTimeout    time.Duration

	OTelEnabled  bool
	OTelEndpoint string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// LoadConfig reads configuration from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		Port:                getEnv("TALLER_PORT", "8080"),
		GRPCPort:            getEnv("TALLER_GRPC_PORT", "9090"),
		APIKey:              getEnv("TALLER_API_KEY", ""),
		AllowInsecureNoAuth: getEnvBool("TALLER_ALLOW_INSECURE_NO_AUTH", false),

		Store:          getEnv("TALLER_STORE", StoreMemory),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""), // Empty = real AWS
		DynamoDBTable:  getEnv("DYNAMODB_TABLE", "taller-status"),
		SQLitePath:     getEnv("TALLER_SQLITE_PATH", "taller-status.db"),

		EventsQueueURL: getEnv("TALLER_EVENTS_QUEUE_URL", ""),
		EventsFIFO:     getEnvBool("TALLER_EVENTS_FIFO", false),

		ConfigURL:        getEnv("TALLER_CONFIG_URL", ""),
		ConfigToken:      getEnv("TALLER_CONFIG_TOKEN", ""),
		ConfigFile:       getEnv("TALLER_CONFIG_FILE", ""),
		ConfigRefresh:    getEnv("TALLER_CONFIG_REFRESH", "@every 10m"),
		ConfigMaxRetries: getEnvInt("TALLER_CONFIG_MAX_RETRIES", 3),
		ConfigTimeout:    getEnvDuration("TALLER_CONFIG_TIMEOUT", 5*time.Second),

		OTelEnabled:  getEnvBool("TALLER_OTEL_ENABLED", false),
		OTelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		ReadTimeout:     getEnvDuration("TALLER_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:    getEnvDuration("TALLER_WRITE_TIMEOUT", 0),
		IdleTimeout:     getEnvDuration("TALLER_IDLE_TIMEOUT", 120*time.Second),
		ShutdownTimeout: getEnvDuration("TALLER_SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
