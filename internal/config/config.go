package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultInformationURL = "https://api.maravia.pe/servicio/ws_informacion_ia.php"
	defaultBookingURL     = "https://api.maravia.pe/servicio/n8n/ws_agendar_reunion.php"
)

// Config holds all application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string
	// LogFormat is "json" (default) or "text".
	LogFormat string

	// Timezone is the single operating zone used for every tenant.
	Timezone string

	// Upstream endpoints and per-call timeout.
	InformationURL string
	BookingURL     string
	APITimeout     time.Duration

	// ScheduleCacheTTL is configured in whole minutes.
	ScheduleCacheTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	RateLimitRPS   float64
	RateLimitBurst int

	CORSAllowedOrigins []string
	AdminJWTSecret     string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		Timezone: getEnv("TIMEZONE", "America/Lima"),

		InformationURL: getEnv("API_INFORMACION_URL", defaultInformationURL),
		BookingURL:     getEnv("API_AGENDAR_REUNION_URL", defaultBookingURL),
		APITimeout:     getEnvAsSeconds("API_TIMEOUT", 10*time.Second),

		ScheduleCacheTTL: time.Duration(getEnvAsInt("SCHEDULE_CACHE_TTL_MINUTES", 5)) * time.Minute,

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 20),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsSeconds accepts either a bare number of seconds ("10") or a Go
// duration string ("1500ms").
func getEnvAsSeconds(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if secs, err := strconv.ParseFloat(valueStr, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
