package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppHost           string `mapstructure:"APP_HOST"`
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	// Comma-separated browser origins allowed to call the server. An empty
	// list allows none.
	CORSOrigins string `mapstructure:"CORS_ORIGINS"`

	// Remote booking API.
	APIBaseURL    string        `mapstructure:"API_BASE_URL"`
	APITimeout    time.Duration `mapstructure:"API_TIMEOUT"`
	APIRatePerSec float64       `mapstructure:"API_RATE_PER_SEC"`
	APIRateBurst  int           `mapstructure:"API_RATE_BURST"`

	// Quiet period before a room availability query fires.
	AvailabilityDebounce time.Duration `mapstructure:"AVAILABILITY_DEBOUNCE"`

	// Session persistence.
	SessionBackend       string `mapstructure:"SESSION_BACKEND"`
	SessionFile          string `mapstructure:"SESSION_FILE"`
	SessionKey           string `mapstructure:"SESSION_KEY"`
	SessionEncryptionKey string `mapstructure:"SESSION_ENCRYPTION_KEY"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`

	// Mongo configuration.
	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`
}

var AppConfig Config

func LoadConfig() {
	// A local .env is optional; real environment variables still win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to read .env file: %v", err)
	}

	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig.APIBaseURL = strings.TrimRight(AppConfig.APIBaseURL, "/")
}

// Defaults returns the configuration produced by defaults alone.
func Defaults() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("Failed to build default config: %v", err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	// Loopback only unless overridden.
	v.SetDefault("APP_HOST", "127.0.0.1")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("API_BASE_URL", "http://localhost:8000/api")
	v.SetDefault("API_TIMEOUT", 10*time.Second)
	v.SetDefault("API_RATE_PER_SEC", 20.0)
	v.SetDefault("API_RATE_BURST", 10)
	v.SetDefault("AVAILABILITY_DEBOUNCE", 500*time.Millisecond)
	v.SetDefault("SESSION_BACKEND", "file")
	v.SetDefault("SESSION_FILE", defaultSessionFile())
	v.SetDefault("SESSION_KEY", "luxstay:session")
	v.SetDefault("SESSION_ENCRYPTION_KEY", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_SESSION_DB", 1)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "luxstay")
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".luxstay", "session.json")
	}
	return filepath.Join(home, ".luxstay", "session.json")
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
