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
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Mongo     MongoConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Socket    SocketConfig
	ImageHost ImageHostConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	CORSAllowOrigins      string
	Timezone              string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr             string
	Password         string
	DB               int
	BroadcastChannel string
}

// MongoConfig points the admin command at a document store.
type MongoConfig struct {
	URI      string
	Database string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level    string
	Encoding string // json or console
	Output   string // stdout, stderr or a file path
	Service  string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// SocketConfig tunes the real-time gateway.
type SocketConfig struct {
	RequestTimeoutSeconds  int
	ListLoadTimeoutSeconds int
	SendBufferSize        int
	PingIntervalSeconds   int
	MaxMessageBytes       int64
}

// ImageHostConfig configures the third-party image upload relay.
type ImageHostConfig struct {
	Endpoint       string
	APIKey         string
	TimeoutSeconds int
	MaxBytes       int64
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "hr-console"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			CORSAllowOrigins:      getEnv("CORS_ALLOW_ORIGINS", "*"),
			Timezone:              getEnv("APP_TIMEZONE", "UTC"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:             getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:         os.Getenv("REDIS_PASSWORD"),
			DB:               redisDB,
			BroadcastChannel: getEnv("REDIS_BROADCAST_CHANNEL", "hr-console:broadcast"),
		},
		Mongo: MongoConfig{
			URI:      os.Getenv("MONGO_URI"),
			Database: getEnv("MONGO_DB", "hrms"),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "json"),
			Output:   getEnv("LOG_OUTPUT", "stdout"),
			Service:  getEnv("APP_NAME", "hr-console"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Socket: SocketConfig{
			RequestTimeoutSeconds:  getEnvAsInt("SOCKET_REQUEST_TIMEOUT_SECONDS", 30),
			ListLoadTimeoutSeconds: getEnvAsInt("SOCKET_LIST_LOAD_TIMEOUT_SECONDS", 30),
			SendBufferSize:         getEnvAsInt("SOCKET_SEND_BUFFER", 64),
			PingIntervalSeconds:    getEnvAsInt("SOCKET_PING_INTERVAL_SECONDS", 25),
			MaxMessageBytes:        int64(getEnvAsInt("SOCKET_MAX_MESSAGE_BYTES", 1<<20)),
		},
		ImageHost: ImageHostConfig{
			Endpoint:       getEnv("IMAGE_HOST_ENDPOINT", "https://api.imgbb.com/1/upload"),
			APIKey:         os.Getenv("IMAGE_HOST_API_KEY"),
			TimeoutSeconds: getEnvAsInt("IMAGE_HOST_TIMEOUT_SECONDS", 20),
			MaxBytes:       int64(getEnvAsInt("IMAGE_HOST_MAX_BYTES", 5<<20)),
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

// Location resolves the configured timezone, falling back to UTC.
func (a AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RequestTimeout bounds a single socket request.
func (s SocketConfig) RequestTimeout() time.Duration {
	if s.RequestTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// ListLoadTimeout bounds the initial load of a list view. It never exceeds
// the request timeout.
func (s SocketConfig) ListLoadTimeout() time.Duration {
	d := time.Duration(s.ListLoadTimeoutSeconds) * time.Second
	if d <= 0 || d > s.RequestTimeout() {
		return s.RequestTimeout()
	}
	return d
}

// PingInterval returns the keepalive interval.
func (s SocketConfig) PingInterval() time.Duration {
	if s.PingIntervalSeconds <= 0 {
		return 25 * time.Second
	}
	return time.Duration(s.PingIntervalSeconds) * time.Second
}

// Timeout returns the upload timeout.
func (i ImageHostConfig) Timeout() time.Duration {
	if i.TimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(i.TimeoutSeconds) * time.Second
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
