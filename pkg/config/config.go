package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Stripe   StripeConfig
	AI       AIConfig
	Storage  StorageConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	URL string
}

type JWTConfig struct {
	Secret string
}

type RedisConfig struct {
	URL string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	PremiumPrice  string
	SuccessURL    string
	CancelURL     string
}

type AIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type StorageConfig struct {
	Bucket string
	Region string
}

func Load() *Config {
	godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			PremiumPrice:  getEnv("STRIPE_PREMIUM_PRICE_ID", ""),
			SuccessURL:    getEnv("CHECKOUT_SUCCESS_URL", "https://humidorhub.app/subscription/success"),
			CancelURL:     getEnv("CHECKOUT_CANCEL_URL", "https://humidorhub.app/subscription/cancelled"),
		},
		AI: AIConfig{
			APIKey:  getEnv("AI_API_KEY", ""),
			BaseURL: getEnv("AI_BASE_URL", ""),
			Model:   getEnv("AI_MODEL", ""),
		},
		Storage: StorageConfig{
			Bucket: getEnv("AWS_BUCKET_NAME", "humidorhub-media"),
			Region: getEnv("AWS_REGION", "eu-central-1"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
