package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every setting the server reads from the environment
type Config struct {
	Port        string `validate:"required,numeric"`
	Env         string `validate:"required,oneof=development staging production test"`
	MetricsPort string `validate:"required,numeric"`
	LogLevel    string

	MongoURI      string `validate:"required"`
	MongoDatabase string `validate:"required"`
	PostgresURL   string `validate:"required"`
	RedisURL      string `validate:"required"`

	DBConnectAttempts int           `validate:"min=1"`
	DBConnectDelay    time.Duration `validate:"min=0"`

	JWTSecret string        `validate:"required"`
	JWTTTL    time.Duration `validate:"required"`

	FirebaseCredentialsPath string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	GeminiAPIKey string
	GeminiModel  string

	CORSOrigins        []string
	RateLimitPerSecond float64 `validate:"gt=0"`
	RateLimitBurst     int     `validate:"gt=0"`

	StoryTTL time.Duration `validate:"required"`

	// EnvFileLoaded reports whether a .env file seeded the environment
	EnvFileLoaded bool
}

// Load reads configuration from the environment, seeding it from .env when present
func Load() *Config {
	envFileLoaded := godotenv.Load() == nil

	return &Config{
		EnvFileLoaded: envFileLoaded,

		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		MetricsPort: getEnv("METRICS_PORT", "9090"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "onyxdrift"),
		PostgresURL:   getEnv("POSTGRES_CONN_STR", ""),
		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379/0"),

		DBConnectAttempts: getEnvAsInt("DB_CONNECT_ATTEMPTS", 5),
		DBConnectDelay:    getEnvAsDuration("DB_CONNECT_DELAY", 2*time.Second),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTTTL:    getEnvAsDuration("JWT_TTL", 72*time.Hour),

		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),

		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		CORSOrigins:        getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		RateLimitPerSecond: getEnvAsFloat("RATE_LIMIT_PER_SECOND", 10),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 30),

		StoryTTL: getEnvAsDuration("STORY_TTL", 24*time.Hour),
	}
}

// Validate reports the first missing or malformed setting
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// IsDevelopment reports whether the server runs with development defaults
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
