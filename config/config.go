package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	API      APIConfig
	CORS     CORSConfig
	Log      LogConfig
	Storage  StorageConfig
	Social   SocialConfig
	Wallet   WalletConfig
	Cache    CacheConfig
}

type ServerConfig struct {
	Port string
	Env  string
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

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type APIConfig struct {
	KeyHeader               string
	RateLimitMessagesPerSec int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level string
}

// StorageConfig points at the FTP server holding database backups.
type StorageConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	BaseURL  string
}

// Configured reports whether enough storage settings are present to upload a backup.
func (s StorageConfig) Configured() bool {
	return s.Host != "" && s.User != ""
}

type SocialConfig struct {
	PopularThreshold int
	CandidatePool    int
}

type WalletConfig struct {
	MinWithdrawal decimal.Decimal
}

type CacheConfig struct {
	StatsTTLSeconds int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	minWithdrawal, err := decimal.NewFromString(getEnv("WALLET_MIN_WITHDRAWAL", "50"))
	if err != nil {
		return nil, fmt.Errorf("invalid WALLET_MIN_WITHDRAWAL: %w", err)
	}

	origins := strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"), ",")

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "adrena"),
			Password: getEnv("DB_PASSWORD", "adrena_password"),
			DBName:   getEnv("DB_NAME", "adrena_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-this-secret-key"),
			ExpiryHours: getEnvInt("JWT_EXPIRY_HOURS", 168),
		},
		API: APIConfig{
			KeyHeader:               getEnv("API_KEY_HEADER", "X-API-Key"),
			RateLimitMessagesPerSec: getEnvInt("RATE_LIMIT_MESSAGES_PER_SECOND", 10),
		},
		CORS: CORSConfig{
			AllowedOrigins: origins,
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			Host:     getEnv("FTP_HOST", ""),
			Port:     getEnv("FTP_PORT", "21"),
			User:     getEnv("FTP_USER", ""),
			Password: getEnv("FTP_PASSWORD", ""),
			BaseURL:  getEnv("STORAGE_BASE_URL", ""),
		},
		Social: SocialConfig{
			PopularThreshold: getEnvInt("SUGGESTION_POPULAR_THRESHOLD", 10),
			CandidatePool:    getEnvInt("SUGGESTION_CANDIDATE_POOL", 50),
		},
		Wallet: WalletConfig{
			MinWithdrawal: minWithdrawal,
		},
		Cache: CacheConfig{
			StatsTTLSeconds: getEnvInt("CACHE_STATS_TTL_SECONDS", 60),
		},
	}

	// Validate required fields
	if cfg.JWT.Secret == "change-this-secret-key" && cfg.Server.Env == "production" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	return cfg, nil
}

// GetDSN returns the database connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// GetFTPAddr returns the backup storage address
func (c *Config) GetFTPAddr() string {
	return fmt.Sprintf("%s:%s", c.Storage.Host, c.Storage.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return v
}
