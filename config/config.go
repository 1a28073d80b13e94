package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppSettings
	FilmsAPI FilmsAPIConfig
	Store    StoreConfig
	Queue    QueueConfig
	Tracker  TrackerConfig
	Database DatabaseConfig
	Redis    RedisConfig
}

type AppSettings struct {
	Addr        string
	FirstFilmID int
	LogLevel    string
}

type FilmsAPIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// StoreConfig 選擇 override 的持久化後端: redis | postgres | memory
type StoreConfig struct {
	Backend string
}

// QueueConfig 選擇 PATCH 佇列: memory | redis
type QueueConfig struct {
	Backend    string
	BufferSize int
	// Redis stream 的 consumer 名稱，固定後重啟可領回未 ack 的 PATCH
	ConsumerID string
}

type TrackerConfig struct {
	ReconcilePatch bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	QueueMemory = "memory"
	QueueRedis  = "redis"
)

var AppConfig *Config

func LoadConfig() *Config {
	// .env 不存在時直接使用環境變數
	_ = godotenv.Load()

	AppConfig = &Config{
		App:      GetAppConfig(),
		FilmsAPI: GetFilmsAPIConfig(),
		Store:    StoreConfig{Backend: strings.ToLower(getEnv("OVERRIDE_STORE", StoreRedis))},
		Queue: QueueConfig{
			Backend:    strings.ToLower(getEnv("PATCH_QUEUE", QueueMemory)),
			BufferSize: getEnvInt("PATCH_QUEUE_BUFFER", 64),
			ConsumerID: getEnv("PATCH_QUEUE_CONSUMER", "filmdesk"),
		},
		Tracker:  TrackerConfig{ReconcilePatch: getEnvBool("RECONCILE_PATCH", true)},
		Database: GetDatabaseConfig(),
		Redis:    GetRedisConfig(),
	}

	return AppConfig
}

func LoadTestConfig() *Config {
	testConfig := &DatabaseConfig{
		Host:     "localhost",
		Port:     "5433", // 測試 DB 用 5433 port
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_db",
		SSLMode:  "disable",
	}

	testRedisConfig := RedisConfig{
		Host:     "localhost",
		Port:     "6380", // 測試 Redis 用 6380 port
		Password: "",
		DB:       1,
	}

	return &Config{
		App: AppSettings{
			Addr:        ":0",
			FirstFilmID: 1,
			LogLevel:    "debug",
		},
		FilmsAPI: FilmsAPIConfig{
			BaseURL: "http://localhost:3000",
			Timeout: 2 * time.Second,
		},
		Store:    StoreConfig{Backend: StoreMemory},
		Queue:    QueueConfig{Backend: QueueMemory, BufferSize: 16, ConsumerID: "test"},
		Tracker:  TrackerConfig{ReconcilePatch: true},
		Database: *testConfig,
		Redis:    testRedisConfig,
	}
}

func GetAppConfig() AppSettings {
	return AppSettings{
		Addr:        getEnv("APP_ADDR", ":8080"),
		FirstFilmID: getEnvInt("FIRST_FILM_ID", 1),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
}

func GetFilmsAPIConfig() FilmsAPIConfig {
	timeout, err := time.ParseDuration(getEnv("FILMS_API_TIMEOUT", "10s"))
	if err != nil {
		panic(err)
	}

	return FilmsAPIConfig{
		BaseURL: strings.TrimRight(getEnv("FILMS_API_URL", "http://localhost:3000"), "/"),
		Timeout: timeout,
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "postgres"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
}

func GetRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		panic(err)
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		panic(err)
	}
	return b
}
