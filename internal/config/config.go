package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverOxiDB  = "oxidb"
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	HTTPAddr string

	StoreDriver  string
	StoreTimeout time.Duration
	OxiDBHost    string
	OxiDBPort    int
	PoolSize     int
	MongoURI     string
	MongoDB      string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret  string
	SessionTTL time.Duration
	AdminEmail string
	AdminPass  string

	LogLevel string
	GelfAddr string

	Timezone       string
	SpreadsheetURL string
}

// Load reads the environment, after merging an optional .env file.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}
	return &Config{
		HTTPAddr:       getEnv("APP_ADDR", ":8080"),
		StoreDriver:    getEnv("STORE_DRIVER", DriverOxiDB),
		StoreTimeout:   getEnvDuration("STORE_TIMEOUT", 5*time.Second),
		OxiDBHost:      getEnv("OXIDB_HOST", "127.0.0.1"),
		OxiDBPort:      getEnvInt("OXIDB_PORT", 4444),
		PoolSize:       getEnvInt("OXIDB_POOL_SIZE", 3),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getEnv("MONGO_DB", "suratdesa"),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		JWTSecret:      getEnv("JWT_SECRET", "suratdesa-dev-secret-change-me"),
		SessionTTL:     getEnvDuration("SESSION_TTL", 24*time.Hour),
		AdminEmail:     getEnv("ADMIN_EMAIL", "admin@waygalih.desa.id"),
		AdminPass:      getEnv("ADMIN_PASS", "admin123"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		GelfAddr:       getEnv("GELF_ADDR", ""),
		Timezone:       getEnv("TIMEZONE", "Asia/Jakarta"),
		SpreadsheetURL: getEnv("SPREADSHEET_URL", ""),
	}
}

// Location resolves Timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
