package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const DefaultPath = "config/config.yaml"

type Config struct {
	Server struct {
		Address        string   `yaml:"address"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"ttl"`
	} `yaml:"redis"`
	JWT struct {
		SigningKey string        `yaml:"signing_key"`
		TTL        time.Duration `yaml:"ttl"`
	} `yaml:"jwt"`
	Stripe struct {
		BaseURL       string        `yaml:"base_url"`
		APIKey        string        `yaml:"api_key"`
		WebhookSecret string        `yaml:"webhook_secret"`
		SyncInterval  time.Duration `yaml:"sync_interval"`
	} `yaml:"stripe"`
	S3 struct {
		Region    string `yaml:"region"`
		Bucket    string `yaml:"bucket"`
		Endpoint  string `yaml:"endpoint"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		PublicURL string `yaml:"public_url"`
	} `yaml:"s3"`
	Firebase struct {
		Credentials string `yaml:"credentials"`
	} `yaml:"firebase"`
	Admin struct {
		Emails []string `yaml:"emails"`
	} `yaml:"admin"`
}

// Load reads the YAML file at path, applies environment overrides and defaults, and
// validates the result. A missing file is not an error; environment and defaults still apply.
func Load(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg.applyEnv(os.Getenv)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Path returns CONFIG_PATH or the default location.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

func (c *Config) applyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	if port := getenv("PORT"); port != "" {
		c.Server.Address = ":" + strings.TrimPrefix(port, ":")
	}
	set(&c.Database.Driver, "DATABASE_DRIVER")
	set(&c.Database.URL, "DATABASE_URL")
	set(&c.Redis.Addr, "REDIS_ADDR")
	set(&c.Redis.Password, "REDIS_PASSWORD")
	set(&c.JWT.SigningKey, "JWT_SIGNING_KEY")
	set(&c.Stripe.BaseURL, "STRIPE_BASE_URL")
	set(&c.Stripe.APIKey, "STRIPE_API_KEY")
	set(&c.Stripe.WebhookSecret, "STRIPE_WEBHOOK_SECRET")
	set(&c.S3.Region, "S3_REGION")
	set(&c.S3.Bucket, "S3_BUCKET")
	set(&c.S3.Endpoint, "S3_ENDPOINT")
	set(&c.S3.AccessKey, "S3_ACCESS_KEY")
	set(&c.S3.SecretKey, "S3_SECRET_KEY")
	set(&c.S3.PublicURL, "S3_PUBLIC_URL")
	set(&c.Firebase.Credentials, "FIREBASE_CREDENTIALS")
	if v := getenv("ADMIN_EMAILS"); v != "" {
		c.Admin.Emails = nil
		for _, email := range strings.Split(v, ",") {
			if email = strings.TrimSpace(email); email != "" {
				c.Admin.Emails = append(c.Admin.Emails, email)
			}
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":4001"
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Redis.TTL == 0 {
		c.Redis.TTL = 5 * time.Minute
	}
	if c.JWT.TTL == 0 {
		c.JWT.TTL = 24 * time.Hour
	}
	if c.Stripe.BaseURL == "" {
		c.Stripe.BaseURL = "https://api.stripe.com"
	}
	if c.Stripe.SyncInterval == 0 {
		c.Stripe.SyncInterval = 10 * time.Minute
	}
}

func (c Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return errors.New("config: database url is required")
	}
	if c.JWT.SigningKey == "" {
		return errors.New("config: jwt signing key is required")
	}
	if c.S3.Bucket != "" && c.S3.Region == "" {
		return errors.New("config: s3 region is required when a bucket is set")
	}
	return nil
}
