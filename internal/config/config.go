package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DBDriver        string        `yaml:"db_driver"`
	DBHost          string        `yaml:"db_host"`
	DBPort          string        `yaml:"db_port"`
	DBUser          string        `yaml:"db_user"`
	DBPassword      string        `yaml:"db_password"`
	DBName          string        `yaml:"db_name"`
	DBLogLevel      string        `yaml:"db_log_level"`
	RedisHost       string        `yaml:"redis_host"`
	RedisPort       string        `yaml:"redis_port"`
	SessionSecret   string        `yaml:"session_secret"`
	JWTSecret       string        `yaml:"jwt_secret"`
	JWTExpiration   time.Duration `yaml:"jwt_expiration"`
	GinMode         string        `yaml:"gin_mode"`
	ServerPort      string        `yaml:"server_port"`
	Timezone        string        `yaml:"timezone"`
	SlackWebhookURL string        `yaml:"slack_webhook_url"`
}

// Load reads configuration from an optional YAML file named by CONFIG_FILE,
// then applies environment variables on top. Environment always wins.
func Load() *Config {
	file := &Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			log.Printf("Ignoring config file: %v", err)
		} else {
			file = loaded
		}
	}

	return &Config{
		DBDriver:        getEnv("DB_DRIVER", orDefault(file.DBDriver, "mysql")),
		DBHost:          getEnv("DB_HOST", orDefault(file.DBHost, "localhost")),
		DBPort:          getEnv("DB_PORT", orDefault(file.DBPort, "3306")),
		DBUser:          getEnv("DB_USER", orDefault(file.DBUser, "timesheet")),
		DBPassword:      getEnv("DB_PASSWORD", orDefault(file.DBPassword, "timesheetpassword")),
		DBName:          getEnv("DB_NAME", orDefault(file.DBName, "timesheets")),
		DBLogLevel:      getEnv("DB_LOG_LEVEL", orDefault(file.DBLogLevel, "warn")),
		RedisHost:       getEnv("REDIS_HOST", orDefault(file.RedisHost, "localhost")),
		RedisPort:       getEnv("REDIS_PORT", orDefault(file.RedisPort, "6379")),
		SessionSecret:   getEnv("SESSION_SECRET", orDefault(file.SessionSecret, "default-secret-key-change-me")),
		JWTSecret:       getEnv("JWT_SECRET", orDefault(file.JWTSecret, "default-jwt-secret-change-me")),
		JWTExpiration:   getDurationEnv("JWT_EXPIRATION", orDefaultDuration(file.JWTExpiration, 24*time.Hour)),
		GinMode:         getEnv("GIN_MODE", orDefault(file.GinMode, "debug")),
		ServerPort:      getEnv("SERVER_PORT", orDefault(file.ServerPort, "8080")),
		Timezone:        getEnv("APP_TIMEZONE", orDefault(file.Timezone, "UTC")),
		SlackWebhookURL: getEnv("SLACK_WEBHOOK_URL", file.SlackWebhookURL),
	}
}

// LoadFile parses a YAML configuration file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	return &cfg, nil
}

// Location resolves the configured timezone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Unknown timezone %q, using UTC", c.Timezone)
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func orDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

func orDefaultDuration(value, defaultValue time.Duration) time.Duration {
	if value == 0 {
		return defaultValue
	}
	return value
}
