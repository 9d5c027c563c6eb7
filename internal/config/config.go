package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	AI           AIConfig
	Assist       AssistConfig
	Notification NotificationConfig
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

// AuthConfig defines the shared secret used to verify service-to-service
// tokens on the internal trigger endpoints.
type AuthConfig struct {
	ServiceTokenSecret string
}

// AIConfig selects and configures the model provider.
type AIConfig struct {
	Provider        string
	BaseURL         string
	APIKey          string
	ChatModel       string
	EmbeddingModel  string
	EmbeddingDim    int
	TimeoutSeconds  int
	GenTemperature  float64
	EvalTemperature float64
}

// AssistConfig tunes the response pipeline.
type AssistConfig struct {
	RetrievalK       int
	ExcerptChars     int
	LeaseTTLSeconds  int
	AssistantUserID  string
	KBArticleBaseURL string
}

// NotificationConfig tunes the dispatch queue.
type NotificationConfig struct {
	BatchSize       int
	MaxRetries      int
	IntervalSeconds int
	ClaimTTLSeconds int
	EmailFrom       string
	SMTPAddr        string
	SMTPUser        string
	SMTPPassword    string
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
			Name:                  getEnv("APP_NAME", "helpdesk-core"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 90),
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
			ServiceTokenSecret: getEnv("AUTH_SERVICE_TOKEN_SECRET", "dev-secret"),
		},
		AI: AIConfig{
			Provider:        getEnv("AI_PROVIDER", "openai"),
			BaseURL:         getEnv("AI_BASE_URL", "https://api.openai.com/v1"),
			APIKey:          os.Getenv("AI_API_KEY"),
			ChatModel:       getEnv("AI_CHAT_MODEL", "gpt-4o-mini"),
			EmbeddingModel:  getEnv("AI_EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDim:    getEnvAsInt("AI_EMBEDDING_DIM", 1536),
			TimeoutSeconds:  getEnvAsInt("AI_TIMEOUT_SECONDS", 45),
			GenTemperature:  getEnvAsFloat("AI_GEN_TEMPERATURE", 0.7),
			EvalTemperature: getEnvAsFloat("AI_EVAL_TEMPERATURE", 0.0),
		},
		Assist: AssistConfig{
			RetrievalK:       getEnvAsInt("ASSIST_RETRIEVAL_K", 3),
			ExcerptChars:     getEnvAsInt("ASSIST_KB_EXCERPT_CHARS", 200),
			LeaseTTLSeconds:  getEnvAsInt("ASSIST_LEASE_TTL_SECONDS", 90),
			AssistantUserID:  getEnv("ASSIST_ASSISTANT_USER_ID", ""),
			KBArticleBaseURL: getEnv("ASSIST_KB_ARTICLE_BASE_URL", "/kb"),
		},
		Notification: NotificationConfig{
			BatchSize:       getEnvAsInt("NOTIFY_BATCH_SIZE", 50),
			MaxRetries:      getEnvAsInt("NOTIFY_MAX_RETRIES", 3),
			IntervalSeconds: getEnvAsInt("NOTIFY_INTERVAL_SECONDS", 120),
			ClaimTTLSeconds: getEnvAsInt("NOTIFY_CLAIM_TTL_SECONDS", 60),
			EmailFrom:       getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			SMTPAddr:        getEnv("NOTIFY_SMTP_ADDR", ""),
			SMTPUser:        os.Getenv("NOTIFY_SMTP_USER"),
			SMTPPassword:    os.Getenv("NOTIFY_SMTP_PASSWORD"),
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

// Timeout returns the bounded per-call provider timeout.
func (c AIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 45 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LeaseTTL returns the pipeline lease duration.
func (c AssistConfig) LeaseTTL() time.Duration {
	if c.LeaseTTLSeconds <= 0 {
		return 90 * time.Second
	}
	return time.Duration(c.LeaseTTLSeconds) * time.Second
}

// Interval returns the cadence of the background dispatch worker.
func (c NotificationConfig) Interval() time.Duration {
	if c.IntervalSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(c.IntervalSeconds) * time.Second
}

// ClaimTTL returns how long a batch claim excludes an entry from other runs.
func (c NotificationConfig) ClaimTTL() time.Duration {
	if c.ClaimTTLSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.ClaimTTLSeconds) * time.Second
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

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
