package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	APIBaseURL        string `mapstructure:"API_BASE_URL"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	HTTPTimeoutSecs   int    `mapstructure:"HTTP_TIMEOUT_SECONDS"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Identity provider (Identity Toolkit REST API).
	IdentityAPIKey  string `mapstructure:"IDENTITY_API_KEY"`
	IdentityBaseURL string `mapstructure:"IDENTITY_BASE_URL"`
	TokenURL        string `mapstructure:"TOKEN_URL"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("API_BASE_URL", "https://server10-mu.vercel.app/api")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("HTTP_TIMEOUT_SECONDS", 30)
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 120)
	viper.SetDefault("IDENTITY_API_KEY", "")
	viper.SetDefault("IDENTITY_BASE_URL", "https://identitytoolkit.googleapis.com/v1")
	viper.SetDefault("TOKEN_URL", "https://securetoken.googleapis.com/v1/token")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
