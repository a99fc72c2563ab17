package config

import (
	"os"
	"strconv"
	"time"
)

// PlantNet holds configuration for the PlantNet identification API
type PlantNet struct {
	APIKey   string
	Project  string
	Endpoint string
}

// HuggingFace holds configuration for the Hugging Face inference API
type HuggingFace struct {
	Token    string
	Endpoint string
}

// Watering holds watering-check policy configuration
type Watering struct {
	// DedupWindow suppresses a repeated due-today/overdue notification for the
	// same plant within the window. Zero means emit on every pass.
	DedupWindow time.Duration
}

// Config holds all runtime configuration loaded from the environment
type Config struct {
	Port        string
	Environment string
	LogLevel    string
	LogFile     string

	JWTSecret string

	PlantNet    PlantNet
	HuggingFace HuggingFace
	Watering    Watering

	RedisHost     string
	RedisPort     string
	RedisPassword string

	TracingEnabled      bool
	OTLPEndpoint        string
	TracingSamplingRate float64
}

// Load reads configuration from environment variables, applying defaults.
// Database settings are read separately by the database package.
func Load() *Config {
	return &Config{
		Port:        getEnvOrDefault("PORT", "8787"),
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:     getEnvOrDefault("LOG_FILE", "server.log"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		PlantNet: PlantNet{
			APIKey:   os.Getenv("PLANTNET_API_KEY"),
			Project:  getEnvOrDefault("PLANTNET_API_PROJECT", "all"),
			Endpoint: getEnvOrDefault("PLANTNET_API_ENDPOINT", "https://my-api.plantnet.org/v2/identify"),
		},
		HuggingFace: HuggingFace{
			Token:    os.Getenv("HUGGING_FACE_TOKEN"),
			Endpoint: getEnvOrDefault("HUGGING_FACE_ENDPOINT", "https://api-inference.huggingface.co"),
		},
		Watering: Watering{
			DedupWindow: getEnvDuration("WATERING_DEDUP_WINDOW", 0),
		},

		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		TracingEnabled:      getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:        getEnvOrDefault("OTLP_ENDPOINT", "localhost:4318"),
		TracingSamplingRate: getEnvFloat("TRACING_SAMPLING_RATE", 1.0),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
