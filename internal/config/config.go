package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App        AppConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Logger     LoggerConfig
	Auth       AuthConfig
	Triage     TriageConfig
	Attachment AttachmentConfig
	Presence   PresenceConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// TriageConfig points at the classification service endpoints.
type TriageConfig struct {
	BaseURL        string
	TimeoutSeconds int
	LLMAPIKey      string
	LLMBaseURL     string
	LLMModel       string
}

// AttachmentConfig bounds uploads and locates stored blobs.
type AttachmentConfig struct {
	Dir           string
	PublicBaseURL string
	MaxSizeBytes  int64
	AllowedTypes  []string
}

// PresenceConfig tunes the typing indicator.
type PresenceConfig struct {
	TypingTTLSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "support-engine"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Triage: TriageConfig{
			BaseURL:        getEnv("TRIAGE_BASE_URL", "http://127.0.0.1:8080"),
			TimeoutSeconds: getEnvAsInt("TRIAGE_TIMEOUT_SECONDS", 20),
			LLMAPIKey:      os.Getenv("GROQ_API_KEY"),
			LLMBaseURL:     getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
			LLMModel:       getEnv("LLM_MODEL", "llama-3.1-8b-instant"),
		},
		Attachment: AttachmentConfig{
			Dir:           getEnv("ATTACHMENT_DIR", "uploads"),
			PublicBaseURL: getEnv("ATTACHMENT_PUBLIC_BASE_URL", "/uploads"),
			MaxSizeBytes:  getEnvAsInt64("ATTACHMENT_MAX_SIZE_BYTES", 10*1024*1024),
			AllowedTypes: splitCSV(getEnv("ATTACHMENT_ALLOWED_TYPES",
				"image/,video/,application/pdf,application/msword,application/vnd.openxmlformats-officedocument.wordprocessingml.document")),
		},
		Presence: PresenceConfig{
			TypingTTLSeconds: getEnvAsInt("PRESENCE_TYPING_TTL_SECONDS", 3),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the classification call timeout.
func (t TriageConfig) Timeout() time.Duration {
	if t.TimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// TypingTTL returns how long a remote typing indicator stays lit without a
// fresh event.
func (p PresenceConfig) TypingTTL() time.Duration {
	if p.TypingTTLSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(p.TypingTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsInt64(key string, fallback int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
