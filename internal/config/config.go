package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	environment := GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(logrus.DebugLevel)
	case "production":
		log.SetLevel(logrus.ErrorLevel)
	default:
		// Default to info level for other environments
		log.SetLevel(logrus.InfoLevel)
	}
}

const defaultJWTSecret = "secret"

// Config used for the application configuration, loading the input from environment variables.
// It is built once at startup and passed by value to the components that need it.
type Config struct {
	// Server Configuration
	Environment string `json:"environment"`
	Port        int    `json:"port"`
	Host        string `json:"host"`

	// Database configuration
	DBDriver   string `json:"db_driver"`
	DBHost     string `json:"db_host"`
	DBPort     string `json:"db_port"`
	DBName     string `json:"db_name"`
	DBUser     string `json:"db_user"`
	DBPassword string `json:"db_password"`
	DBSSLMode  string `json:"db_sslmode"`
	DBPath     string `json:"db_path"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Security Configuration
	JWTSecret         string        `json:"jwt_secret"`
	TokenTTL          time.Duration `json:"token_ttl"`
	OAuthClientID     string        `json:"oauth_client_id"`
	OAuthClientSecret string        `json:"oauth_client_secret"`

	// HTTP surface
	CORSAllowedOrigins []string `json:"cors_allowed_origins"`
	RateLimitPerMinute int      `json:"rate_limit_per_minute"`

	// Recipes
	LinkDomain          string        `json:"link_domain"`
	MinCookingTime      int           `json:"min_cooking_time"`
	MinIngredientAmount int           `json:"min_ingredient_amount"`
	PageSize            int           `json:"page_size"`
	MaxPageSize         int           `json:"max_page_size"`
	IngredientCacheSize int           `json:"ingredient_cache_size"`
	IngredientCacheTTL  time.Duration `json:"ingredient_cache_ttl"`
	ImportMaxBytes      int64         `json:"import_max_bytes"`

	// Media storage
	ImageStorage string `json:"image_storage"`
	MediaRoot    string `json:"media_root"`
	MediaURL     string `json:"media_url"`
	S3Bucket     string `json:"s3_bucket"`
	S3Region     string `json:"s3_region"`
	S3Endpoint   string `json:"s3_endpoint"`
	S3AccessKey  string `json:"s3_access_key"`
	S3SecretKey  string `json:"s3_secret_key"`
	S3PublicURL  string `json:"s3_public_url"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Environment: %s, Port: %d, Host: %s, DBDriver: %s, DBHost: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], DBPath: %s, LogLevel: %s, JWTSecret: [REDACTED], OAuthClientID: %s, OAuthClientSecret: [REDACTED], LinkDomain: %s, ImageStorage: %s, S3Bucket: %s, S3AccessKey: %s, S3SecretKey: [REDACTED]}",
		c.Environment, c.Port, c.Host, c.DBDriver, c.DBHost, c.DBName, c.DBUser, c.DBPath, c.LogLevel,
		c.OAuthClientID, c.LinkDomain, c.ImageStorage, c.S3Bucket, maskKey(c.S3AccessKey))
}

// maskKey keeps only the first characters of an access key
func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-4)
}

// IsProduction reports whether the service runs with APP_ENV=production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// Returns an error if any environment variable is present but malformed or out of range
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config := &Config{
		Environment: GetEnvWithDefault("APP_ENV", "development"),
		Port:        port,
		Host:        GetEnvWithDefault("APP_HOST", "localhost"),

		DBDriver:   GetEnvWithDefault("DB_DRIVER", "sqlite"),
		DBHost:     GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:     GetEnvWithDefault("DB_PORT", "5432"),
		DBName:     GetEnvWithDefault("DB_NAME", "foodgram"),
		DBUser:     GetEnvWithDefault("DB_USER", "foodgram"),
		DBPassword: GetEnvWithDefault("DB_PASSWORD", "password"),
		DBSSLMode:  GetEnvWithDefault("DB_SSLMODE", "disable"),
		DBPath:     GetEnvWithDefault("DB_PATH", "foodgram.sqlite"),

		LogLevel: GetEnvWithDefault("LOG_LEVEL", "info"),

		JWTSecret:         GetEnvWithDefault("JWT_SECRET", defaultJWTSecret),
		TokenTTL:          time.Duration(GetEnvAsType("TOKEN_TTL_HOURS", 24)) * time.Hour,
		OAuthClientID:     GetEnvWithDefault("OAUTH_CLIENT_ID", "foodgram-web"),
		OAuthClientSecret: GetEnvWithDefault("OAUTH_CLIENT_SECRET", ""),

		CORSAllowedOrigins: splitList(GetEnvWithDefault("CORS_ALLOWED_ORIGINS", "")),
		RateLimitPerMinute: GetEnvAsType("RATE_LIMIT_PER_MINUTE", 300),

		LinkDomain:          GetEnvWithDefault("LINK_DOMAIN", "http://127.0.0.1:8080/s/"),
		MinCookingTime:      GetEnvAsType("MIN_COOKING_TIME", 1),
		MinIngredientAmount: GetEnvAsType("MIN_INGREDIENT_AMOUNT", 1),
		PageSize:            GetEnvAsType("PAGE_SIZE", 6),
		MaxPageSize:         GetEnvAsType("MAX_PAGE_SIZE", 100),
		IngredientCacheSize: GetEnvAsType("INGREDIENT_CACHE_SIZE", 256),
		IngredientCacheTTL:  time.Duration(GetEnvAsType("INGREDIENT_CACHE_TTL_SECONDS", 60)) * time.Second,
		ImportMaxBytes:      int64(GetEnvAsType("IMPORT_MAX_BYTES", 8<<20)),

		ImageStorage: GetEnvWithDefault("IMAGE_STORAGE", "local"),
		MediaRoot:    GetEnvWithDefault("MEDIA_ROOT", "media"),
		MediaURL:     GetEnvWithDefault("MEDIA_URL", "/media/"),
		S3Bucket:     GetEnvWithDefault("S3_BUCKET", ""),
		S3Region:     GetEnvWithDefault("S3_REGION", "auto"),
		S3Endpoint:   GetEnvWithDefault("S3_ENDPOINT", ""),
		S3AccessKey:  GetEnvWithDefault("S3_ACCESS_KEY", ""),
		S3SecretKey:  GetEnvWithDefault("S3_SECRET_KEY", ""),
		S3PublicURL:  GetEnvWithDefault("S3_PUBLIC_URL", ""),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

// Validate checks the cross-field rules of the configuration
func (c *Config) Validate() error {
	if c.MinCookingTime < 1 {
		return errors.New("MIN_COOKING_TIME must be at least 1")
	}
	if c.MinIngredientAmount < 1 {
		return errors.New("MIN_INGREDIENT_AMOUNT must be at least 1")
	}
	if c.PageSize < 1 || c.MaxPageSize < c.PageSize {
		return errors.New("PAGE_SIZE must be positive and not exceed MAX_PAGE_SIZE")
	}
	if c.ImportMaxBytes <= 0 {
		return errors.New("IMPORT_MAX_BYTES must be positive")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL_HOURS must be positive")
	}
	switch c.ImageStorage {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required when IMAGE_STORAGE=s3")
		}
	default:
		return fmt.Errorf("unsupported IMAGE_STORAGE: %s (supported: local, s3)", c.ImageStorage)
	}
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	return nil
}

// splitList splits a comma separated environment value, dropping blanks
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value", key)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			log.Warnf("Environment variable %s is not an integer, using default value", key)
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
