package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	DBURL string

	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OTLPEndpoint string

	CORSOrigins []string

	RateLimit       int
	RateLimitWindow time.Duration

	AdminEmail    string
	AdminPassword string
	AdminName     string
	AdminRole     string
}

func Load() Config {
	// a local .env is a dev convenience; real env always wins
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "dev")
	port := getEnvInt("PORT", 8080)
	dbURL := buildDBURL()

	return Config{
		Env:   env,
		Port:  port,
		DBURL: dbURL,

		JWTSecret:  getEnv("JWT_SECRET", "dev-secret-change-me"),
		AccessTTL:  getEnvDuration("JWT_ACCESS_TTL", 15*time.Minute),
		RefreshTTL: getEnvDuration("JWT_REFRESH_TTL", 30*24*time.Hour),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),

		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),

		RateLimit:       getEnvInt("RATE_LIMIT", 120),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminName:     getEnv("ADMIN_NAME", "Admin"),
		AdminRole:     getEnv("ADMIN_ROLE", "admin"),
	}
}

func buildDBURL() string {
	// a fully formed url wins over the individual parts
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "lifehub")
	pass := getEnv("DB_PASSWORD", "lifehub")
	name := getEnv("DB_NAME", "lifehub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return d
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)

	if v == "" {
		return fallback
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	if len(out) == 0 {
		return fallback
	}

	return out
}
