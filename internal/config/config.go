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
	App        AppConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Logger     LoggerConfig
	Auth       AuthConfig
	Classifier ClassifierConfig
	SMTP       SMTPConfig
	Queue      QueueConfig
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

// ClassifierConfig points at the text-analysis collaborator.
type ClassifierConfig struct {
	URL            string
	APIKey         string
	Model          string
	TimeoutSeconds int
}

// SMTPConfig holds mail delivery settings. SupportEmail is the default
// sender when no explicit from-address is supplied.
type SMTPConfig struct {
	Host         string
	Port         int
	Username     string
	Password     string
	UseTLS       bool
	SupportEmail string
	SenderName   string
}

// QueueConfig controls the Redis Streams event queue.
type QueueConfig struct {
	StreamPrefix    string
	Group           string
	Consumer        string
	MaxDeliveries   int
	BlockSeconds    int
	ClaimIdleSec    int
	ClaimIntervalMS int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "ticketflow-worker"
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "ticketflow"),
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
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 10),
		},
		Classifier: ClassifierConfig{
			URL:            getEnv("CLASSIFIER_URL", ""),
			APIKey:         os.Getenv("CLASSIFIER_API_KEY"),
			Model:          getEnv("CLASSIFIER_MODEL", "gemini-1.5-flash"),
			TimeoutSeconds: getEnvAsInt("CLASSIFIER_TIMEOUT_SECONDS", 20),
		},
		SMTP: SMTPConfig{
			Host:         getEnv("SMTP_HOST", ""),
			Port:         getEnvAsInt("SMTP_PORT", 587),
			Username:     os.Getenv("SMTP_USER"),
			Password:     os.Getenv("SMTP_PASS"),
			UseTLS:       getEnvAsBool("SMTP_USE_TLS", true),
			SupportEmail: getEnv("SUPPORT_EMAIL", "support@ticketflow.dev"),
			SenderName:   getEnv("SMTP_SENDER_NAME", "TicketFlow Support"),
		},
		Queue: QueueConfig{
			StreamPrefix:    getEnv("QUEUE_STREAM_PREFIX", "ticketflow:events"),
			Group:           getEnv("QUEUE_GROUP", "ticketflow-workers"),
			Consumer:        getEnv("QUEUE_CONSUMER", hostname),
			MaxDeliveries:   getEnvAsInt("QUEUE_MAX_DELIVERIES", 3),
			BlockSeconds:    getEnvAsInt("QUEUE_BLOCK_SECONDS", 5),
			ClaimIdleSec:    getEnvAsInt("QUEUE_CLAIM_IDLE_SECONDS", 30),
			ClaimIntervalMS: getEnvAsInt("QUEUE_CLAIM_INTERVAL_MS", 10000),
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

// Timeout returns the collaborator call timeout.
func (c ClassifierConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
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
