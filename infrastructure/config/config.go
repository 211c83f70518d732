package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Storage drivers
const (
	StorageDynamoDB = "dynamodb"
	StorageSQLite   = "sqlite"
	StorageMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress   string
	Environment     string
	ShutdownTimeout time.Duration

	// Storage
	StorageDriver string
	SQLitePath    string

	// AWS configuration
	AWSRegion        string
	DynamoDBTable    string
	EventBusName     string
	MetricsNamespace string

	// Lambda configuration
	IsLambda           bool
	LambdaFunctionName string

	// Logging
	LogLevel string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Rate limits, requests per second per caller
	RateLimitRPS   float64
	RateLimitBurst int

	// Metrics thresholds overlay, empty to use the built-in defaults
	MetricsConfigPath string
	WatchMetrics      bool

	// Tracing
	OTLPEndpoint      string
	TracingSampleRate float64

	// Feature flags
	EnableMetrics bool
	EnableTracing bool
	EnableCORS    bool
	CORSOrigins   []string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress:   getEnv("SERVER_ADDRESS", ":8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		ShutdownTimeout: time.Duration(getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 15)) * time.Second,

		StorageDriver: getEnv("STORAGE_DRIVER", StorageDynamoDB),
		SQLitePath:    getEnv("SQLITE_PATH", "data/observador.db"),

		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		DynamoDBTable:    getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", "observador")),
		EventBusName:     getEnv("EVENT_BUS_NAME", ""),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "Observador"),

		IsLambda:           getEnvBool("IS_LAMBDA", false),
		LambdaFunctionName: getEnv("AWS_LAMBDA_FUNCTION_NAME", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "observador-backend"),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 20),

		MetricsConfigPath: getEnv("METRICS_CONFIG_PATH", ""),
		WatchMetrics:      getEnvBool("WATCH_METRICS_CONFIG", true),

		OTLPEndpoint:      getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TracingSampleRate: getEnvFloat("TRACING_SAMPLE_RATE", 0.1),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
		CORSOrigins:   []string{getEnv("CORS_ORIGIN", "*")},
	}

	// Lambdas always talk to DynamoDB
	if cfg.LambdaFunctionName != "" {
		cfg.IsLambda = true
		cfg.StorageDriver = StorageDynamoDB
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageDynamoDB:
		if c.DynamoDBTable == "" {
			return fmt.Errorf("TABLE_NAME is required for the dynamodb driver")
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATE must be within [0, 1]")
	}

	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.StorageDriver == StorageMemory {
			return fmt.Errorf("the memory driver is not allowed in production")
		}
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
