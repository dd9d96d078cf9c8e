package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	domainconfig "forum-api/domain/config"
)

// Environments
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// Store drivers
const (
	DriverMemory   = "memory"
	DriverMongoDB  = "mongodb"
	DriverDynamoDB = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress  string        `yaml:"server_address"`
	Environment    string        `yaml:"environment"`
	LogLevel       string        `yaml:"log_level"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// Store configuration
	StoreDriver   string `yaml:"store_driver"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`

	// AWS configuration
	AWSRegion        string `yaml:"aws_region"`
	DynamoDBTable    string `yaml:"dynamodb_table"`
	DynamoDBIndex    string `yaml:"dynamodb_index"`
	DynamoDBEndpoint string `yaml:"dynamodb_endpoint"`
	EventBusName     string `yaml:"event_bus_name"`

	// Authentication
	JWTSecret     string        `yaml:"jwt_secret"`
	JWTIssuer     string        `yaml:"jwt_issuer"`
	JWTAudience   string        `yaml:"jwt_audience"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
	ResetTokenTTL time.Duration `yaml:"reset_token_ttl"`
	ResetURLBase  string        `yaml:"reset_url_base"`

	// Pagination
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`

	// Query cache, 0 disables it
	QueryCacheTTLSeconds int `yaml:"query_cache_ttl_seconds"`

	// Feature flags
	EnableMetrics        bool     `yaml:"enable_metrics"`
	EnableTracing        bool     `yaml:"enable_tracing"`
	EnableCORS           bool     `yaml:"enable_cors"`
	AllowedOrigins       []string `yaml:"allowed_origins"`
	EnableCircuitBreaker bool     `yaml:"enable_circuit_breaker"`

	// File is the YAML file the configuration was read from, if any
	File string `yaml:"-"`
}

// Defaults returns the built-in configuration
func Defaults() *Config {
	return &Config{
		ServerAddress:  ":8080",
		Environment:    Development,
		LogLevel:       "info",
		RequestTimeout: 30 * time.Second,

		StoreDriver:   DriverMemory,
		MongoDatabase: "forum",

		AWSRegion:     "us-east-1",
		DynamoDBIndex: "GSI1",

		JWTIssuer:     "forum-api",
		TokenTTL:      168 * time.Hour,
		ResetTokenTTL: time.Hour,

		DefaultPageSize: 10,
		MaxPageSize:     100,

		QueryCacheTTLSeconds: 0,

		EnableMetrics:        true,
		EnableCORS:           true,
		AllowedOrigins:       []string{"*"},
		EnableCircuitBreaker: true,
	}
}

// LoadConfig builds the configuration from defaults, the YAML file named by
// CONFIG_FILE and the environment, in increasing priority.
func LoadConfig() (*Config, error) {
	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	c.File = path
	return nil
}

func (c *Config) applyEnv() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", c.RequestTimeout)

	c.StoreDriver = strings.ToLower(getEnv("STORE_DRIVER", c.StoreDriver))
	c.MongoURI = getEnv("MONGO_URI", c.MongoURI)
	c.MongoDatabase = getEnv("MONGO_DATABASE", c.MongoDatabase)

	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.DynamoDBTable = getEnv("DYNAMODB_TABLE", c.DynamoDBTable)
	c.DynamoDBIndex = getEnv("DYNAMODB_INDEX", c.DynamoDBIndex)
	c.DynamoDBEndpoint = getEnv("DYNAMODB_ENDPOINT", c.DynamoDBEndpoint)
	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTIssuer = getEnv("JWT_ISSUER", c.JWTIssuer)
	c.JWTAudience = getEnv("JWT_AUDIENCE", c.JWTAudience)
	c.TokenTTL = getEnvDuration("TOKEN_TTL", c.TokenTTL)
	c.ResetTokenTTL = getEnvDuration("RESET_TOKEN_TTL", c.ResetTokenTTL)
	c.ResetURLBase = getEnv("RESET_URL_BASE", c.ResetURLBase)

	c.DefaultPageSize = getEnvInt("DEFAULT_PAGE_SIZE", c.DefaultPageSize)
	c.MaxPageSize = getEnvInt("MAX_PAGE_SIZE", c.MaxPageSize)
	c.QueryCacheTTLSeconds = getEnvInt("QUERY_CACHE_TTL_SECONDS", c.QueryCacheTTLSeconds)

	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
	c.AllowedOrigins = getEnvList("ALLOWED_ORIGINS", c.AllowedOrigins)
	c.EnableCircuitBreaker = getEnvBool("ENABLE_CIRCUIT_BREAKER", c.EnableCircuitBreaker)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	var errs []error
	if c.IsProduction() && c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required in production"))
	}
	switch c.StoreDriver {
	case DriverMemory:
	case DriverMongoDB:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongodb store"))
		}
	case DriverDynamoDB:
		if c.DynamoDBTable == "" {
			errs = append(errs, errors.New("DYNAMODB_TABLE is required for the dynamodb store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.DefaultPageSize < 1 || c.MaxPageSize < c.DefaultPageSize {
		errs = append(errs, fmt.Errorf("invalid page sizes: default %d, max %d", c.DefaultPageSize, c.MaxPageSize))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if c.QueryCacheTTLSeconds < 0 {
		errs = append(errs, errors.New("QUERY_CACHE_TTL_SECONDS must not be negative"))
	}
	return errors.Join(errs...)
}

// Domain returns the business rules for the environment with the configured
// overrides applied.
func (c *Config) Domain() *domainconfig.DomainConfig {
	d := domainconfig.LoadDomainConfig(c.Environment)
	d.DefaultPageSize = c.DefaultPageSize
	d.MaxPageSize = c.MaxPageSize
	d.TokenTTL = c.TokenTTL
	d.ResetTokenTTL = c.ResetTokenTTL
	return d
}

// Audience splits JWT_AUDIENCE on commas
func (c *Config) Audience() []string {
	if c.JWTAudience == "" {
		return nil
	}
	return splitList(c.JWTAudience)
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("30s") or plain seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return splitList(value)
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
