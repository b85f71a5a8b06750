package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	DBURL      string
	JWTSecret  string
	CORSOrigin string
	AppEnv     string

	CacheTTL      time.Duration
	CacheLocalTTL time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AssetBucket      string
	AssetSignerEmail string
	AssetSignerKey   string
	AssetURLTTL      time.Duration

	// AdminName and AdminPassword seed the first admin account when both are set.
	AdminName     string
	AdminPassword string
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		DBURL:            os.Getenv("DB_URL"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		CORSOrigin:       getEnv("CORS_ORIGIN", "http://localhost:5173"),
		AppEnv:           getEnv("APP_ENV", "development"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		AssetBucket:      os.Getenv("ASSET_BUCKET"),
		AssetSignerEmail: os.Getenv("ASSET_SIGNER_EMAIL"),
		AssetSignerKey:   os.Getenv("ASSET_SIGNER_KEY_FILE"),
		AdminName:        os.Getenv("ADMIN_NAME"),
		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
	}

	var err error
	if cfg.CacheTTL, err = durationEnv("CACHE_TTL", 30*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.CacheLocalTTL, err = durationEnv("CACHE_LOCAL_TTL", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.AssetURLTTL, err = durationEnv("ASSET_URL_TTL", time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		return Config{}, err
	}

	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("missing required environment variable: DB_URL")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("missing required environment variable: JWT_SECRET")
	}
	return cfg, nil
}

// Production reports whether APP_ENV asks for production behaviour.
func (c Config) Production() bool { return c.AppEnv == "production" }

// SigningEnabled reports whether asset references should be turned into signed URLs.
func (c Config) SigningEnabled() bool {
	return c.AssetBucket != "" && c.AssetSignerEmail != "" && c.AssetSignerKey != ""
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
