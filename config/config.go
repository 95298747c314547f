// Package config loads the process configuration once at startup.
// Nothing else in the module reads the environment.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/joho/godotenv"

	blog "github.com/goliatone/go-blog"
)

const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

// Config is built by Load and never mutated afterwards
type Config struct {
	Port      int
	APIPrefix string
	AppEnv    string

	StoreDriver   string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string
	StoreTimeout  time.Duration

	JWTSecret    string
	JWTExpiresIn time.Duration
	JWTIssuer    string
	SaltRounds   int

	UploadDir        string
	UploadPublicPath string
	UploadMaxBytes   int64

	RateLimitMax    int
	RateLimitWindow time.Duration
	CORSOrigins     []string
}

var _ blog.Config = (*Config)(nil)

// Load reads the optional env files, then the process env. A missing
// .env file is not an error.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{
		Port:      getEnvAsInt("PORT", 4000),
		APIPrefix: getEnvAsString("API_PREFIX", "/api"),
		AppEnv:    getEnvAsString("APP_ENV", "development"),

		StoreDriver:   strings.ToLower(getEnvAsString("STORE_DRIVER", StoreSQLite)),
		DatabaseURL:   getEnvAsString("DATABASE_URL", "file:blog.db?cache=shared"),
		MongoURI:      getEnvAsString("MONGO_URI", ""),
		MongoDatabase: getEnvAsString("MONGO_DATABASE", "blog"),
		StoreTimeout:  getEnvAsDuration("STORE_TIMEOUT", 10*time.Second),

		JWTSecret:    getEnvAsString("JWT_SECRET", ""),
		JWTExpiresIn: getEnvAsDuration("JWT_EXPIRES_IN", time.Hour),
		JWTIssuer:    getEnvAsString("JWT_ISSUER", "go-blog"),
		SaltRounds:   getEnvAsInt("SALT_ROUNDS", 10),

		UploadDir:        getEnvAsString("UPLOAD_DIR", "uploads"),
		UploadPublicPath: getEnvAsString("UPLOAD_PUBLIC_PATH", "/uploads"),
		UploadMaxBytes:   int64(getEnvAsInt("UPLOAD_MAX_BYTES", int(blog.DefaultMaxImageBytes))),

		RateLimitMax:    getEnvAsInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		CORSOrigins:     getEnvAsSlice("CORS_ORIGINS", []string{"*"}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var databaseRules, mongoRules []validation.Rule
	if c.StoreDriver == StoreMongo {
		mongoRules = append(mongoRules, validation.Required)
	} else {
		databaseRules = append(databaseRules, validation.Required)
	}

	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.StoreDriver, validation.Required, validation.In(StoreSQLite, StorePostgres, StoreMongo)),
		validation.Field(&c.DatabaseURL, databaseRules...),
		validation.Field(&c.MongoURI, mongoRules...),
		validation.Field(&c.MongoDatabase, mongoRules...),
		validation.Field(&c.JWTSecret, validation.Required),
		validation.Field(&c.JWTExpiresIn, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.SaltRounds, validation.Required, validation.Min(4), validation.Max(31)),
		validation.Field(&c.UploadDir, validation.Required),
		validation.Field(&c.UploadPublicPath, validation.Required),
		validation.Field(&c.UploadMaxBytes, validation.Required, validation.Min(1)),
		validation.Field(&c.RateLimitMax, validation.Required, validation.Min(1)),
		validation.Field(&c.RateLimitWindow, validation.Required, validation.Min(time.Second)),
	)
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) GetSigningKey() string {
	return c.JWTSecret
}

func (c *Config) GetIssuer() string {
	return c.JWTIssuer
}

func (c *Config) GetTokenExpiration() time.Duration {
	return c.JWTExpiresIn
}

func (c *Config) GetSaltRounds() int {
	return c.SaltRounds
}

func (c *Config) GetContextKey() string {
	return "user"
}

func (c *Config) GetTokenLookup() string {
	return "header:Authorization"
}

func (c *Config) GetAuthScheme() string {
	return "Bearer"
}

func getEnvAsString(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("90m") and the bare number of
// seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	var out []string
	for _, value := range strings.Split(os.Getenv(key), ",") {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
