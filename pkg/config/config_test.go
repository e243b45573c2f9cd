package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requiredEnv() map[string]string {
	return map[string]string{
		"STRIPE_SECRET_KEY": "sk_live_x",
		"CLERK_API_KEY":     "sk_clerk_x",
		"ENCRYPTION_SECRET": "passphrase",
	}
}

func TestLoadConfigFrom_Defaults(t *testing.T) {
	cfg, err := LoadConfigFrom(requiredEnv())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "https://roamresearch.com", cfg.Server.AllowedOrigin)
	assert.Equal(t, int64(1048576), cfg.Server.MaxBodyBytes)
	assert.Equal(t, "RoamJSExtensions", cfg.Registry.Table)
	assert.Equal(t, "RoamJSExtensionsDev", cfg.Registry.DevTable)
	assert.Equal(t, "user-index", cfg.Registry.OwnerIndex)
	assert.Equal(t, "us-east-1", cfg.AWS.Region)
	assert.Equal(t, "support@roamjs.com", cfg.Notify.To)
	assert.Equal(t, "info", cfg.Observability.LogLevel)
	assert.False(t, cfg.Observability.OTelEnabled)
	assert.Empty(t, cfg.Encryption.DevSecret)
}

func TestLoadConfigFrom_Overrides(t *testing.T) {
	environ := requiredEnv()
	environ["ROAMJS_PORT"] = "3003"
	environ["ROAMJS_READ_TIMEOUT"] = "5s"
	environ["STRIPE_DEV_SECRET_KEY"] = "sk_test_x"
	environ["ENCRYPTION_SECRET_DEV"] = "dev-passphrase"
	environ["ROAMJS_OTEL_ENABLED"] = "true"
	environ["ROAMJS_OTEL_ENDPOINT"] = "collector:4317"

	cfg, err := LoadConfigFrom(environ)
	require.NoError(t, err)
	assert.Equal(t, "3003", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "sk_test_x", cfg.Billing.DevSecretKey)
	assert.Equal(t, "dev-passphrase", cfg.Encryption.DevSecret)
	assert.True(t, cfg.Observability.OTelEnabled)
	assert.Equal(t, "collector:4317", cfg.Observability.OTelEndpoint)
}

func TestLoadConfigFrom_MissingSecrets(t *testing.T) {
	_, err := LoadConfigFrom(map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STRIPE_SECRET_KEY is required")
	assert.Contains(t, err.Error(), "CLERK_API_KEY is required")
	assert.Contains(t, err.Error(), "ENCRYPTION_SECRET is required")
}

func TestLoadConfigFrom_InvalidDuration(t *testing.T) {
	environ := requiredEnv()
	environ["ROAMJS_IDLE_TIMEOUT"] = "forever"

	_, err := LoadConfigFrom(environ)
	assert.ErrorContains(t, err, "parse env")
}

func TestValidate(t *testing.T) {
	cfg, err := LoadConfigFrom(requiredEnv())
	require.NoError(t, err)

	cfg.Observability.OTelEnabled = true
	cfg.Observability.OTelEndpoint = ""
	assert.ErrorContains(t, cfg.Validate(), "OpenTelemetry endpoint is required")

	cfg.Observability.OTelEnabled = false
	cfg.Server.MaxBodyBytes = 0
	assert.ErrorContains(t, cfg.Validate(), "max body bytes must be positive")
}
