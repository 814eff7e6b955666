package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearCRMEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{"API_KEY", "LOCATION_ID", "BASE_URL", "PORT", "CRM_TIMEOUT", "CRM_API_VERSION", "CRM_STUDENT_ID_FIELD"} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig_HasNoCredentials(t *testing.T) {
	cfg := DefaultConfig()

	assert.Empty(t, cfg.CRM.APIKey)
	assert.Empty(t, cfg.CRM.LocationID)
	assert.Equal(t, "https://api.gohighlevel.com/v1/", cfg.CRM.BaseURL)
	assert.Equal(t, "2021-07-28", cfg.CRM.APIVersion)
	assert.Equal(t, "student_id_", cfg.CRM.StudentIDField)
	assert.Equal(t, 10*time.Second, cfg.CRM.Timeout)
	assert.Equal(t, 3000, cfg.Port)
}

func TestNewConfigFromEnv_ReadsCRMSettings(t *testing.T) {
	clearCRMEnv(t)
	t.Setenv("API_KEY", "key-123")
	t.Setenv("LOCATION_ID", "loc-456")
	t.Setenv("BASE_URL", "https://crm.example.test/v1/")
	t.Setenv("PORT", "8081")
	t.Setenv("CRM_TIMEOUT", "3s")

	cfg, err := NewConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "key-123", cfg.CRM.APIKey)
	assert.Equal(t, "loc-456", cfg.CRM.LocationID)
	assert.Equal(t, "https://crm.example.test/v1/", cfg.CRM.BaseURL)
	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.CRM.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfigFromEnv_OptionsOverrideEnv(t *testing.T) {
	clearCRMEnv(t)
	t.Setenv("API_KEY", "from-env")

	cfg, err := NewConfigFromEnv(WithCRMAPIKey("from-option"))
	require.NoError(t, err)

	assert.Equal(t, "from-option", cfg.CRM.APIKey)
}

func TestNewConfigFromEnv_InvalidPort(t *testing.T) {
	clearCRMEnv(t)
	t.Setenv("PORT", "three-thousand")

	_, err := NewConfigFromEnv()

	assert.Error(t, err)
}

func TestValidate_MissingCredentialsFailFast(t *testing.T) {
	cfg := NewConfig()

	err := cfg.Validate()
	require.Error(t, err)

	assert.ErrorContains(t, err, "API_KEY is required")
	assert.ErrorContains(t, err, "LOCATION_ID is required")
}

func TestValidate_RejectsUnknownExporter(t *testing.T) {
	cfg := NewConfig(
		WithCRMAPIKey("k"),
		WithCRMLocationID("l"),
		WithOtelExporter("zipkin"),
	)

	assert.ErrorContains(t, cfg.Validate(), "OTEL_EXPORTER")
}

func TestListenAddr(t *testing.T) {
	cfg := NewConfig(WithPort(8123))

	assert.Equal(t, ":8123", cfg.ListenAddr())
}
