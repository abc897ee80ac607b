package config

import (
	"log/slog"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort   string `mapstructure:"SERVER_PORT"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	JWTSecret    string `mapstructure:"JWT_SECRET"`
	ClientOrigin string `mapstructure:"CLIENT_ORIGIN"`

	// Outbound email. BusinessEmail receives booking/contact copies.
	AWSRegion     string `mapstructure:"AWS_REGION"`
	SenderEmail   string `mapstructure:"SENDER_EMAIL"`
	BusinessEmail string `mapstructure:"BUSINESS_EMAIL"`

	// Payment prompt.
	StripeAPIKey string

	// Optional AI booking assist.
	VisionAPIURL string `mapstructure:"VISION_API_URL"`
	VisionAPIKey string `mapstructure:"VISION_API_KEY"`

	// Google sign-in.
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`

	MigrationsDir string `mapstructure:"MIGRATIONS_DIR"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		// A missing .env file is fine; everything can come from the environment.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Info("no .env file found, using environment only")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.StripeAPIKey = os.Getenv("STRIPE_API_KEY")

	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.MigrationsDir == "" {
		cfg.MigrationsDir = "migrations"
	}

	return &cfg, nil
}
