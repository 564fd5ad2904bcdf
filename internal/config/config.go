package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DBUrl         string
	JWTSecret     string
	TokenTTL      time.Duration
	SessionCookie string
	CookieSecure  bool
	CORSOrigin    string
	RedisURL      string
	LogLevel      string
	GinMode       string
	AutoMigrate   bool

	// Requêtes autorisées par minute et par IP sur /api/auth
	AuthRatePerMinute int

	AWSBucket          string
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
}

// LoadConfig lit le fichier .env s'il existe puis l'environnement du process.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               GetEnv("PORT", "8080"),
		DBUrl:              strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:          strings.TrimSpace(os.Getenv("JWT_SECRET")),
		TokenTTL:           GetEnvDuration("TOKEN_TTL", 24*time.Hour),
		SessionCookie:      GetEnv("SESSION_COOKIE", "token"),
		CookieSecure:       GetEnvBool("COOKIE_SECURE", false),
		CORSOrigin:         GetEnv("CORS_ORIGIN", "http://localhost:3000"),
		RedisURL:           os.Getenv("REDIS_URL"),
		LogLevel:           GetEnv("LOG_LEVEL", "info"),
		GinMode:            GetEnv("GIN_MODE", "debug"),
		AutoMigrate:        GetEnvBool("AUTO_MIGRATE", false),
		AuthRatePerMinute:  GetEnvInt("AUTH_RATE_PER_MINUTE", 20),
		AWSBucket:          os.Getenv("AWS_BUCKET_NAME"),
		AWSRegion:          GetEnv("AWS_REGION", "eu-west-3"),
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
	}

	if cfg.DBUrl == "" {
		return nil, errors.New("DATABASE_URL manquant")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET manquant")
	}
	return cfg, nil
}

// MediaEnabled indique si un bucket S3 est configuré pour les images des posts.
func (c *Config) MediaEnabled() bool {
	return c.AWSBucket != ""
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func GetEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetEnvDuration accepte le format de time.ParseDuration ("24h", "90m").
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}
