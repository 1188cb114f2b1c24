package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "rebateforge-site", cfg.ServiceName)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ProviderResend, cfg.Provider.Kind)
	assert.Equal(t, 10*time.Minute, cfg.RepeatWindow)
	assert.Equal(t, "create", cfg.Provider.DaprOperation)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("RESEND_API_KEY", "re_test")
	t.Setenv("RESEND_AUDIENCE_ID", "aud_123")
	t.Setenv("PORT", "9090")
	t.Setenv("PROVIDER", "Memory")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "re_test", cfg.Provider.ResendAPIKey)
	assert.Equal(t, "aud_123", cfg.Provider.AudienceID)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, ProviderMemory, cfg.Provider.Kind)
	assert.Empty(t, cfg.MissingCredentials())
}

func TestLoadFileThenEnvironmentOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`port: "7070"
log_level: debug
repeat_window: 30s
provider:
  kind: dapr
  audience_id: from-file
  dapr_binding: contacts
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("RESEND_AUDIENCE_ID", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.RepeatWindow)
	assert.Equal(t, ProviderDapr, cfg.Provider.Kind)
	assert.Equal(t, "contacts", cfg.Provider.DaprBinding)
	assert.Equal(t, "from-env", cfg.Provider.AudienceID)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("PROVIDER", "mailchimp")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mailchimp")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestMissingCredentials(t *testing.T) {
	cfg := &Config{Port: "8080", Provider: ProviderConfig{Kind: ProviderResend}}
	assert.Equal(t, []string{"RESEND_API_KEY", "RESEND_AUDIENCE_ID"}, cfg.MissingCredentials())

	cfg.Provider.Kind = ProviderDapr
	assert.Equal(t, []string{"RESEND_AUDIENCE_ID"}, cfg.MissingCredentials())
}
