package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`
	ServerURL       string        `json:"server_url"`
	FrontendURL     string        `json:"frontend_url"`
	CORSOrigins     string        `json:"cors_origins"`

	// MongoDB configuration
	MongoURI      string `json:"mongodb_uri"`
	MongoDatabase string `json:"mongodb_database"`

	// Redis configuration (empty URL selects the in-memory cache)
	RedisURL       string        `json:"redis_url"`
	RedisPrefix    string        `json:"redis_prefix"`
	CacheTTL       time.Duration `json:"cache_ttl"`
	MaxConcurrency int           `json:"max_concurrency"`

	// CloudFlare R2 Configuration
	ObjectStorage  bool          `json:"object_storage"`
	R2Endpoint     string        `json:"r2_endpoint"`
	R2Bucket       string        `json:"r2_bucket"`
	R2PublicURL    string        `json:"r2_public_url"`
	R2NoPublicACL  bool          `json:"r2_no_public_acl"`
	AWSRegion      string        `json:"aws_region"`
	AWSAccessKey   string        `json:"aws_access_key_id"`
	AWSSecretKey   string        `json:"aws_secret_access_key"`
	StorageTimeout time.Duration `json:"storage_timeout"`
	SignedURLTTL   time.Duration `json:"signed_url_ttl"`

	// Local media
	UploadsDir     string `json:"uploads_dir"`
	DefaultOGImage string `json:"default_og_image"`
	MaxFileSize    int64  `json:"max_file_size"`

	// Live news provider
	NewsAPIKey   string `json:"news_api_key"`
	NewsProvider string `json:"news_provider"`

	// Moderation
	AdminUploadApproved bool `json:"admin_upload_approved"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// Security
	JWTSecret     string        `json:"jwt_secret"`
	JWTExpires    time.Duration `json:"jwt_expires"`
	SuperEmail    string        `json:"super_email"`
	SuperPassword string        `json:"super_password"`
}

// Load loads configuration from environment variables and validates it
func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := FromEnv()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

// FromEnv reads the configuration without touching .env files or validating it.
func FromEnv() *Config {
	return &Config{
		Port:            getEnv("PORT", "5000"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
		ServerURL:       strings.TrimRight(getEnv("SERVER_URL", ""), "/"),
		FrontendURL:     strings.TrimRight(getEnv("FRONTEND_URL", ""), "/"),
		CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:3000,https://moradabadujala.in"),

		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "ujala"),

		RedisURL:       getEnv("REDIS_URL", ""),
		RedisPrefix:    getEnv("REDIS_PREFIX", "ujala:live:"),
		CacheTTL:       getEnvAsDuration("CACHE_TTL", 10*time.Minute),
		MaxConcurrency: getEnvAsInt("MAX_CONCURRENCY", 4),

		ObjectStorage:  getEnvAsBool("OBJECT_STORAGE", false),
		R2Endpoint:     strings.TrimRight(getEnv("R2_ENDPOINT", ""), "/"),
		R2Bucket:       getEnv("R2_BUCKET", ""),
		R2PublicURL:    strings.TrimRight(getEnv("R2_PUBLIC_URL", ""), "/"),
		R2NoPublicACL:  getEnvAsBool("R2_NO_PUBLIC_ACL", false),
		AWSRegion:      getEnv("AWS_REGION", "auto"),
		AWSAccessKey:   getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		StorageTimeout: getEnvAsDuration("STORAGE_TIMEOUT", 20*time.Second),
		SignedURLTTL:   getEnvAsDuration("SIGNED_URL_TTL", 15*time.Minute),

		UploadsDir:     getEnv("UPLOADS_DIR", "./public/uploads"),
		DefaultOGImage: getEnv("DEFAULT_OG_IMAGE", ""),
		MaxFileSize:    getEnvAsInt64("MAX_FILE_SIZE", 50<<20),

		NewsAPIKey:   getEnv("NEWS_API_KEY", ""),
		NewsProvider: strings.ToLower(getEnv("NEWS_PROVIDER", "gnews")),

		AdminUploadApproved: getEnvAsBool("ADMIN_UPLOAD_APPROVED", false),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		JWTSecret:     getEnv("JWT_SECRET", "strong_secret"),
		JWTExpires:    getEnvAsDuration("JWT_EXPIRES", 24*time.Hour),
		SuperEmail:    getEnv("SEED_SUPER_EMAIL", ""),
		SuperPassword: getEnv("SEED_SUPER_PASS", ""),
	}
}

// StorageEnabled reports whether uploads go to object storage.
func (c *Config) StorageEnabled() bool {
	return c.ObjectStorage && c.R2Bucket != ""
}

// StorageEndpointURL is the path-style bucket URL on the storage endpoint,
// or empty when either part is unset.
func (c *Config) StorageEndpointURL() string {
	if c.R2Endpoint == "" || c.R2Bucket == "" {
		return ""
	}
	return c.R2Endpoint + "/" + c.R2Bucket
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.ObjectStorage && c.R2Bucket == "" {
		return errors.New("OBJECT_STORAGE is set but R2_BUCKET is empty")
	}
	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == "strong_secret") {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.NewsProvider != "gnews" && c.NewsProvider != "newsapi" {
		return errors.New("NEWS_PROVIDER must be gnews or newsapi")
	}
	if c.MaxConcurrency < 1 {
		c.MaxConcurrency = 1
	}
	return nil
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsInt64(name string, defaultVal int64) int64 {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

// getEnvAsBool accepts the usual strconv spellings plus "yes"/"on".
func getEnvAsBool(name string, defaultVal bool) bool {
	valueStr := strings.ToLower(strings.TrimSpace(getEnv(name, "")))
	switch valueStr {
	case "":
		return defaultVal
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %t", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
