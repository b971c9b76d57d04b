package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig `json:"server"`

	// Database Configuration
	Database DatabaseConfig `json:"database"`

	// MongoDB Configuration (GridFS media store)
	MongoDB MongoConfig `json:"mongodb"`

	// Redis Configuration (cross-process broadcast, optional)
	Redis RedisConfig `json:"redis"`

	// Chat policy knobs
	Chat ChatConfig `json:"chat"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	ChatServicePort  string `json:"chat_service_port"`
	MediaServicePort string `json:"media_service_port"`
	MediaBaseURL     string `json:"media_base_url"` // prefix for fetchable media URLs
	JWTSecret        string `json:"jwt_secret"`
	Environment      string `json:"environment"` // development, staging, production
}

// DatabaseConfig contains MySQL connection configuration
type DatabaseConfig struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	DatabaseName string `json:"database_name"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

// MongoConfig contains MongoDB connection configuration
type MongoConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
}

// RedisConfig contains the optional Redis pub/sub configuration.
// When Enabled is false the broker fans out in-process only.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Enabled  bool   `json:"enabled"`
}

// ChatConfig contains the messaging policy constants. These gate the
// send pipeline and must never be hard-coded in components.
type ChatConfig struct {
	TextDailyLimit  int64 `json:"text_daily_limit"`  // accepted text messages per user per day
	MediaDailyLimit int64 `json:"media_daily_limit"` // accepted media messages per user per day
	TextReward      int64 `json:"text_reward"`       // coins credited per accepted text message
	StartingCoins   int64 `json:"starting_coins"`    // balance granted on registration
	MaxMediaBytes   int64 `json:"max_media_bytes"`   // decoded media size cap
	HistoryPageSize int   `json:"history_page_size"` // messages per history page
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using system env variables")
	}

	return &Config{
		Server: ServerConfig{
			ChatServicePort:  getEnvOrDefault("CHAT_SERVICE_PORT", "7003"),
			MediaServicePort: getEnvOrDefault("MEDIA_SERVICE_PORT", "8080"),
			MediaBaseURL:     getEnvOrDefault("MEDIA_BASE_URL", "http://localhost:8080/media/"),
			JWTSecret:        getEnvOrDefault("JWT_SECRET", "dev-secret"),
			Environment:      getEnvOrDefault("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:         getEnvOrDefault("DB_HOST", "localhost"),
			Port:         getEnvOrDefault("DB_PORT", "3306"),
			Username:     getEnvOrDefault("DB_USER", "vergiss"),
			Password:     getEnvOrDefault("DB_PASSWORD", "vergiss123"),
			DatabaseName: getEnvOrDefault("DB_NAME", "vergiss"),
			MaxOpenConns: getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		},
		MongoDB: MongoConfig{
			Host:     getEnvOrDefault("MONGO_HOST", "localhost"),
			Port:     getEnvOrDefault("MONGO_PORT", "27017"),
			Username: getEnvOrDefault("MONGO_USER", "admin"),
			Password: getEnvOrDefault("MONGO_PASSWORD", "admin123"),
			Database: getEnvOrDefault("MONGO_DB", "vergiss"),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getEnvIntOrDefault("REDIS_DB", 0),
			Enabled:  getEnvOrDefault("REDIS_ENABLED", "false") == "true",
		},
		Chat: ChatConfig{
			TextDailyLimit:  int64(getEnvIntOrDefault("CHAT_TEXT_DAILY_LIMIT", 100)),
			MediaDailyLimit: int64(getEnvIntOrDefault("CHAT_MEDIA_DAILY_LIMIT", 100)),
			TextReward:      int64(getEnvIntOrDefault("CHAT_TEXT_REWARD", 1)),
			StartingCoins:   int64(getEnvIntOrDefault("CHAT_STARTING_COINS", 50)),
			MaxMediaBytes:   int64(getEnvIntOrDefault("CHAT_MAX_MEDIA_BYTES", 5*1024*1024)),
			HistoryPageSize: getEnvIntOrDefault("CHAT_HISTORY_PAGE_SIZE", 20),
		},
	}
}

// DSN builds the MySQL connection string from the database section.
func (cfg *Config) DSN() string {
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "3306"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DatabaseName,
	)
}

// GetMongoURI builds the MongoDB connection string.
func (cfg *Config) GetMongoURI() string {
	if cfg.MongoDB.Username != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s",
			cfg.MongoDB.Username, cfg.MongoDB.Password, cfg.MongoDB.Host, cfg.MongoDB.Port)
	}
	return fmt.Sprintf("mongodb://%s:%s", cfg.MongoDB.Host, cfg.MongoDB.Port)
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
