package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "NEWSROOM_CONFIG"
	defaultJWTSecret = "change-me-in-production"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMongo  = "mongo"
	DriverSQL    = "sql"
	DriverMemory = "memory"
)

type Config struct {
	Port        string `yaml:"port"`
	StoreDriver string `yaml:"storeDriver"`
	MongoURI    string `yaml:"mongoUri"`
	DBName      string `yaml:"mongoDb"`
	DatabaseURL string `yaml:"databaseUrl"`

	JWTSecret     string `yaml:"jwtSecret"`
	TokenTTLHours int    `yaml:"tokenTtlHours"`
	SiteURL       string `yaml:"siteUrl"`
	CORSOrigin    string `yaml:"corsOrigin"`
	LogLevel      string `yaml:"logLevel"`

	SMTP   SMTPConfig   `yaml:"smtp"`
	Social SocialConfig `yaml:"social"`

	S3Bucket      string `yaml:"s3Bucket"`
	S3Region      string `yaml:"s3Region"`
	S3AccessKeyID string `yaml:"-"`
	S3SecretKey   string `yaml:"-"`
	MaxUploadMB   int64  `yaml:"maxUploadMb"`

	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"-"`

	ResetRequestsPerHour    int  `yaml:"resetRequestsPerHour"`
	ResetRevealUnknownEmail bool `yaml:"resetRevealUnknownEmail"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"-"`
	From     string `yaml:"from"`
}

// Configured reports whether outgoing mail can be delivered over SMTP.
func (s SMTPConfig) Configured() bool {
	return s.Host != "" && s.From != ""
}

// SocialConfig controls the announcement posted when an article goes live.
type SocialConfig struct {
	Enabled        bool   `yaml:"enabled"`
	BearerToken    string `yaml:"-"`
	Endpoint       string `yaml:"endpoint"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// Load starts from defaults, overlays the YAML file named by NEWSROOM_CONFIG
// (if any) and applies environment variables last.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Port:          "8080",
		StoreDriver:   DriverMongo,
		MongoURI:      "mongodb://localhost:27017",
		DBName:        "newsroom",
		JWTSecret:     defaultJWTSecret,
		TokenTTLHours: 24 * 7,
		SiteURL:       "http://localhost:8080",
		CORSOrigin:    "*",
		LogLevel:      "info",
		SMTP:          SMTPConfig{Port: 587},
		Social: SocialConfig{
			Endpoint:       "https://api.twitter.com/2/tweets",
			TimeoutSeconds: 30,
		},
		S3Region:    "us-east-1",
		MaxUploadMB: 10,
	}
}

func (c *Config) applyEnv() {
	setString(&c.Port, "PORT")
	setString(&c.StoreDriver, "STORE_DRIVER")
	setString(&c.MongoURI, "MONGODB_URI")
	setString(&c.DBName, "MONGODB_DB")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.JWTSecret, "JWT_SECRET")
	setInt(&c.TokenTTLHours, "TOKEN_TTL_HOURS")
	setString(&c.SiteURL, "SITE_URL")
	setString(&c.CORSOrigin, "CORS_ORIGIN")
	setString(&c.LogLevel, "LOG_LEVEL")

	setString(&c.SMTP.Host, "SMTP_HOST")
	setInt(&c.SMTP.Port, "SMTP_PORT")
	setString(&c.SMTP.Username, "SMTP_USERNAME")
	setString(&c.SMTP.Password, "SMTP_PASSWORD")
	setString(&c.SMTP.From, "EMAIL_FROM")

	setBool(&c.Social.Enabled, "SOCIAL_ENABLED")
	setString(&c.Social.BearerToken, "SOCIAL_BEARER_TOKEN")
	setString(&c.Social.Endpoint, "SOCIAL_ENDPOINT")
	setInt(&c.Social.TimeoutSeconds, "SOCIAL_TIMEOUT_SECONDS")

	setString(&c.S3Bucket, "AWS_S3_BUCKET")
	setString(&c.S3Region, "AWS_REGION")
	setString(&c.S3AccessKeyID, "AWS_ACCESS_KEY_ID")
	setString(&c.S3SecretKey, "AWS_SECRET_ACCESS_KEY")
	if v := os.Getenv("MAX_UPLOAD_MB"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.MaxUploadMB = n
		}
	}

	setString(&c.RedisAddr, "REDIS_ADDR")
	setString(&c.RedisPassword, "REDIS_PASSWORD")
	setInt(&c.ResetRequestsPerHour, "RESET_REQUESTS_PER_HOUR")
	setBool(&c.ResetRevealUnknownEmail, "RESET_REVEAL_UNKNOWN_EMAIL")

	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	c.SiteURL = strings.TrimRight(c.SiteURL, "/")
}

// Validate rejects settings the server cannot start with and logs the ones
// that only disable optional features.
func (c *Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" || c.DBName == "" {
			errs = append(errs, errors.New("MONGODB_URI and MONGODB_DB are required for the mongo store"))
		}
	case DriverSQL:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the sql store"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.StoreDriver != DriverMemory && (c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret) {
		errs = append(errs, errors.New("JWT_SECRET must be set to a strong secret"))
	}
	if c.TokenTTLHours <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL_HOURS must be positive"))
	}
	if c.Social.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("SOCIAL_TIMEOUT_SECONDS must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	if c.Social.Enabled && c.Social.BearerToken == "" {
		log.Printf("config: SOCIAL_ENABLED is set without SOCIAL_BEARER_TOKEN; announcements will be skipped")
	}
	if !c.SMTP.Configured() {
		log.Printf("config: SMTP_HOST or EMAIL_FROM not set; outgoing mail is only logged")
	}
	if c.S3Bucket == "" {
		log.Printf("config: AWS_S3_BUCKET not set; article images are disabled")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		} else {
			log.Printf("config: ignoring %s=%q: %v", key, v, err)
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		} else {
			log.Printf("config: ignoring %s=%q: %v", key, v, err)
		}
	}
}
