package config

import (
	"os"
	"strconv"
	"time"
)

// Store drivers
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	StoreDriver string // postgres | memory
	AutoMigrate bool
	CORSOrigins string
	// Auth
	JWKSURL   string // Production verifier (RS256/ES256 via JWKS)
	JWTSecret string // HS256 fallback for dev/test when no JWKS URL is set
	// Pool sizing
	DBMaxConns int32
	DBMinConns int32
	// Logging
	LogDir      string // Empty disables file logging
	LogMaxFiles int
	// Shutdown
	ShutdownTimeout time.Duration
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     env,
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		StoreDriver:     getEnv("STORE_DRIVER", StoreDriverPostgres),
		AutoMigrate:     getEnv("AUTO_MIGRATE", getDefaultAutoMigrate(env)) == "true",
		CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:3000"),
		JWKSURL:         getEnv("AUTH_JWKS_URL", ""),
		JWTSecret:       getEnv("AUTH_JWT_SECRET", ""),
		DBMaxConns:      int32(getEnvInt("DB_MAX_CONNS", 25)),
		DBMinConns:      int32(getEnvInt("DB_MIN_CONNS", 5)),
		LogDir:          getEnv("LOG_DIR", ""),
		LogMaxFiles:     getEnvInt("LOG_MAX_FILES", 10),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// getDefaultAutoMigrate migrates on startup everywhere except prod
func getDefaultAutoMigrate(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
