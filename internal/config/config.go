package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DBDriver       string
	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int
	SessionSecret  string
	SessionName    string
	LogLevel       string
	GinMode        string
	CORSOrigins    []string
	UserCacheSize  int

	// DotEnvLoaded reports whether a .env file was read. Load runs before the
	// logger exists, so the caller logs it.
	DotEnvLoaded bool
}

// Load reads .env when present and then the process environment.
func Load() Config {
	dotEnvErr := godotenv.Load()

	return Config{
		DotEnvLoaded:   dotEnvErr == nil,
		Port:           getenv("PORT", "8080"),
		DBDriver:       strings.ToLower(getenv("DB_DRIVER", "postgres")),
		DatabaseURL:    getenv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=agora port=5432 sslmode=disable TimeZone=UTC"),
		DBMaxOpenConns: getenvInt("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns: getenvInt("DB_MAX_IDLE_CONNS", 10),
		SessionSecret:  getenv("SESSION_SECRET", "secret_key_change_me"),
		SessionName:    getenv("SESSION_NAME", "agora_session"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		GinMode:        getenv("GIN_MODE", "release"),
		CORSOrigins:    splitList(getenv("CORS_ORIGINS", "http://localhost:5173")),
		UserCacheSize:  getenvInt("USER_CACHE_SIZE", 500),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
