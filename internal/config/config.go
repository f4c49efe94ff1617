package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMemory   = `memory`
	DriverSQLite   = `sqlite`
	DriverPostgres = `postgres`
	DriverRedis    = `redis`
)

type Config struct {
	HTTPAddr string

	StorageDriver string
	SQLitePath    string
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	TokenTTL  time.Duration

	LogLevel slog.Level
}

// Load reads the environment, after merging an optional .env file from the
// working directory. Variables already set win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:      getEnv(`HTTP_ADDR`, `:8080`),
		StorageDriver: getEnv(`STORAGE_DRIVER`, DriverMemory),
		SQLitePath:    getEnv(`SQLITE_PATH`, `verify.db`),
		PostgresDSN:   getEnv(`POSTGRES_DSN`, `user=postgres password=postgres dbname=verify host=localhost port=5432 sslmode=disable`),
		RedisAddr:     getEnv(`REDIS_ADDR`, `localhost:6379`),
		RedisPassword: getEnv(`REDIS_PASSWORD`, ``),
		JWTSecret:     getEnv(`JWT_SECRET`, `B2iDZ6286IOLg8O1/f81Zdzh1BglfKTdLVw6twOqZGs=`),
	}

	var err error
	if cfg.RedisDB, err = strconv.Atoi(getEnv(`REDIS_DB`, `0`)); err != nil {
		return nil, fmt.Errorf(`REDIS_DB: %w`, err)
	}
	if cfg.TokenTTL, err = time.ParseDuration(getEnv(`TOKEN_TTL`, `48h`)); err != nil {
		return nil, fmt.Errorf(`TOKEN_TTL: %w`, err)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv(`LOG_LEVEL`, `info`))); err != nil {
		return nil, fmt.Errorf(`LOG_LEVEL: %w`, err)
	}

	switch cfg.StorageDriver {
	case DriverMemory, DriverSQLite, DriverPostgres, DriverRedis:
	default:
		return nil, fmt.Errorf(`STORAGE_DRIVER: unknown driver %q`, cfg.StorageDriver)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != `` {
		return value
	}
	return fallback
}
