package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Billing       BillingConfig
	Directory     DirectoryConfig
	Encryption    EncryptionConfig
	Registry      RegistryConfig
	AWS           AWSConfig
	Notify        NotifyConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `env:"ROAMJS_HOST" envDefault:"0.0.0.0"`
	Port            string        `env:"ROAMJS_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"ROAMJS_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"ROAMJS_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"ROAMJS_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"ROAMJS_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	AllowedOrigin   string        `env:"ROAMJS_ALLOWED_ORIGIN" envDefault:"https://roamresearch.com"`
	MaxBodyBytes    int64         `env:"ROAMJS_MAX_BODY_BYTES" envDefault:"1048576"`
}

// BillingConfig holds the billing provider secret key of each environment
type BillingConfig struct {
	SecretKey    string `env:"STRIPE_SECRET_KEY"`
	DevSecretKey string `env:"STRIPE_DEV_SECRET_KEY"`
}

// DirectoryConfig holds the identity directory API key of each environment
type DirectoryConfig struct {
	APIKey    string `env:"CLERK_API_KEY"`
	DevAPIKey string `env:"CLERK_DEV_API_KEY"`
}

// EncryptionConfig holds the token encryption passphrase of each environment
type EncryptionConfig struct {
	Secret    string `env:"ENCRYPTION_SECRET"`
	DevSecret string `env:"ENCRYPTION_SECRET_DEV"`
}

// RegistryConfig names the extension registration tables
type RegistryConfig struct {
	Table      string `env:"ROAMJS_EXTENSIONS_TABLE" envDefault:"RoamJSExtensions"`
	DevTable   string `env:"ROAMJS_EXTENSIONS_DEV_TABLE" envDefault:"RoamJSExtensionsDev"`
	OwnerIndex string `env:"ROAMJS_OWNER_INDEX" envDefault:"user-index"`
}

// AWSConfig holds AWS SDK settings shared by the registry and the notifier
type AWSConfig struct {
	Region    string `env:"AWS_REGION" envDefault:"us-east-1"`
	AccessKey string `env:"AWS_ACCESS_KEY_ID"`
	SecretKey string `env:"AWS_SECRET_ACCESS_KEY"`
	Endpoint  string `env:"ROAMJS_AWS_ENDPOINT"`
}

// NotifyConfig holds error report e-mail settings
type NotifyConfig struct {
	From string `env:"ROAMJS_ERROR_EMAIL_FROM" envDefault:"support@roamjs.com"`
	To   string `env:"ROAMJS_ERROR_EMAIL_TO" envDefault:"support@roamjs.com"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel string `env:"ROAMJS_LOG_LEVEL" envDefault:"info"`

	OTelEnabled        bool   `env:"ROAMJS_OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint       string `env:"ROAMJS_OTEL_ENDPOINT" envDefault:"localhost:4317"`
	OTelServiceName    string `env:"ROAMJS_OTEL_SERVICE_NAME" envDefault:"roamjs-gateway"`
	OTelServiceVersion string `env:"ROAMJS_OTEL_SERVICE_VERSION" envDefault:"1.0.0"`
	OTelInsecure       bool   `env:"ROAMJS_OTEL_INSECURE" envDefault:"true"`
}

// LoadConfig loads configuration from the process environment
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(env.ToMap(os.Environ()))
}

// LoadConfigFrom loads configuration from the given variables
func LoadConfigFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("server port is required"))
	}
	if c.Server.AllowedOrigin == "" {
		errs = append(errs, errors.New("allowed origin is required"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("max body bytes must be positive"))
	}

	// Production secrets are required; development ones may be empty, in
	// which case development requests fail verification.
	if c.Billing.SecretKey == "" {
		errs = append(errs, errors.New("STRIPE_SECRET_KEY is required"))
	}
	if c.Directory.APIKey == "" {
		errs = append(errs, errors.New("CLERK_API_KEY is required"))
	}
	if c.Encryption.Secret == "" {
		errs = append(errs, errors.New("ENCRYPTION_SECRET is required"))
	}

	if c.Registry.Table == "" || c.Registry.DevTable == "" || c.Registry.OwnerIndex == "" {
		errs = append(errs, errors.New("registry table names are required"))
	}
	if c.AWS.Region == "" {
		errs = append(errs, errors.New("AWS region is required"))
	}
	if c.Notify.From == "" || c.Notify.To == "" {
		errs = append(errs, errors.New("error e-mail sender and recipient are required"))
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			errs = append(errs, errors.New("OpenTelemetry endpoint is required when OTel is enabled"))
		}
		if c.Observability.OTelServiceName == "" {
			errs = append(errs, errors.New("OpenTelemetry service name is required when OTel is enabled"))
		}
	}

	return errors.Join(errs...)
}

// Addr returns the listen address of the HTTP server
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}
