package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	ClientURL    string

	JWTSecret string

	// Receipt blob storage (S3-compatible).
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// OCR engine.
	TesseractPath string
	TesseractLang string
	OCRTimeout    time.Duration

	// Best-effort admin notification mail. Disabled when SMTPHost is empty.
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	// Requests per RateLimitPeriod per client IP.
	RateLimit       int64
	RateLimitPeriod time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("CLIENT_URL", "http://localhost:3000")
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	viper.SetDefault("MINIO_ACCESS_KEY", "")
	viper.SetDefault("MINIO_SECRET_KEY", "")
	viper.SetDefault("MINIO_BUCKET", "receipts")
	viper.SetDefault("MINIO_USE_SSL", false)
	viper.SetDefault("TESSERACT_PATH", "tesseract")
	viper.SetDefault("TESSERACT_LANG", "eng")
	viper.SetDefault("OCR_TIMEOUT", "30s")
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USER", "")
	viper.SetDefault("SMTP_PASS", "")
	viper.SetDefault("SMTP_FROM", "")
	viper.SetDefault("RATE_LIMIT", 100)
	viper.SetDefault("RATE_LIMIT_PERIOD", "15m")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.ClientURL = viper.GetString("CLIENT_URL")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")

	cfg.MinioEndpoint = viper.GetString("MINIO_ENDPOINT")
	cfg.MinioAccessKey = viper.GetString("MINIO_ACCESS_KEY")
	cfg.MinioSecretKey = viper.GetString("MINIO_SECRET_KEY")
	cfg.MinioBucket = viper.GetString("MINIO_BUCKET")
	cfg.MinioUseSSL = viper.GetBool("MINIO_USE_SSL")

	cfg.TesseractPath = viper.GetString("TESSERACT_PATH")
	cfg.TesseractLang = viper.GetString("TESSERACT_LANG")
	cfg.OCRTimeout = viper.GetDuration("OCR_TIMEOUT")
	if cfg.OCRTimeout <= 0 {
		cfg.OCRTimeout = 30 * time.Second
	}

	cfg.SMTPHost = viper.GetString("SMTP_HOST")
	cfg.SMTPPort = viper.GetInt("SMTP_PORT")
	cfg.SMTPUser = viper.GetString("SMTP_USER")
	cfg.SMTPPass = viper.GetString("SMTP_PASS")
	cfg.SMTPFrom = viper.GetString("SMTP_FROM")

	cfg.RateLimit = viper.GetInt64("RATE_LIMIT")
	cfg.RateLimitPeriod = viper.GetDuration("RATE_LIMIT_PERIOD")
	if cfg.RateLimitPeriod <= 0 {
		cfg.RateLimitPeriod = 15 * time.Minute
	}

	return cfg, nil
}
