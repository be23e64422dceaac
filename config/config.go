package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort      string `mapstructure:"APP_PORT"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`
	Env          string `mapstructure:"ENV"`
	LogLevel     string `mapstructure:"LOG_LEVEL"`

	// Redis configuration.
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB         int    `mapstructure:"REDIS_CACHE_DB"`
	RedisReminderQueueDB int    `mapstructure:"REDIS_REMINDER_QUEUE_DB"`

	// Gemini agent configuration.
	GeminiAPIKey           string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel            string `mapstructure:"GEMINI_MODEL"`
	AgentTimeoutSeconds    int    `mapstructure:"AGENT_TIMEOUT_SECONDS"`
	AgentMaxAttempts       int    `mapstructure:"AGENT_MAX_ATTEMPTS"`
	AgentBreakerThreshold  int    `mapstructure:"AGENT_BREAKER_THRESHOLD"`
	AgentBreakerCoolOffSec int    `mapstructure:"AGENT_BREAKER_COOLOFF_SECONDS"`
	AgentCacheTTLSeconds   int    `mapstructure:"AGENT_CACHE_TTL_SECONDS"`

	// Matching configuration.
	MatchSearchRadiusKm float64 `mapstructure:"MATCH_SEARCH_RADIUS_KM"`

	MaxRequestsPerMin int `mapstructure:"MAX_REQUESTS_PER_MIN"`
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
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_REMINDER_QUEUE_DB", 3)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "karigar")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_MODEL", "models/gemini-1.5-pro")
	viper.SetDefault("AGENT_TIMEOUT_SECONDS", 30)
	viper.SetDefault("AGENT_MAX_ATTEMPTS", 3)
	viper.SetDefault("AGENT_BREAKER_THRESHOLD", 5)
	viper.SetDefault("AGENT_BREAKER_COOLOFF_SECONDS", 60)
	viper.SetDefault("AGENT_CACHE_TTL_SECONDS", 300)
	viper.SetDefault("MATCH_SEARCH_RADIUS_KM", 50.0)

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
