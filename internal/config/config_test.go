package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, ProviderLog, cfg.Push.Provider)
	assert.Equal(t, 10*time.Second, cfg.Push.Timeout)
	assert.Equal(t, 30*24*time.Hour, cfg.Housekeeping.Retention)
	assert.Equal(t, time.UTC, cfg.DisplayLocation())
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	dir := writeConfig(t, `
http:
  port: 9000
push:
  provider: log
  timeout: 3s
  ratePerSecond: 5
  displayTimezone: Europe/Berlin
`)
	t.Setenv("CARE_HTTP_PORT", "9100")
	t.Setenv("CARE_PUSH_RATEPERSECOND", "7.5")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.HTTP.Port)
	assert.Equal(t, 3*time.Second, cfg.Push.Timeout)
	assert.InDelta(t, 7.5, cfg.Push.RatePerSecond, 0.0001)
	assert.Equal(t, "Europe/Berlin", cfg.DisplayLocation().String())
}

func TestLoad_EnvOnlyCamelCaseKey(t *testing.T) {
	t.Setenv("CARE_DATABASE_SLOWTHRESHOLD", "1s")
	t.Setenv("CARE_HOUSEKEEPING_RETENTION", "48h")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.Database.SlowThreshold)
	assert.Equal(t, 48*time.Hour, cfg.Housekeeping.Retention)
}

func TestLoad_ProviderValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"fcm without credentials", "push:\n  provider: fcm\n"},
		{"line without secrets", "push:\n  provider: line\n"},
		{"unknown provider", "push:\n  provider: pigeon\n"},
		{"bad timezone", "push:\n  displayTimezone: Mars/Olympus\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestCanonicalizeEnvKey(t *testing.T) {
	tests := []struct {
		envKey string
		want   string
	}{
		{"PUSH_DISPLAYTIMEZONE", "push.displayTimezone"},
		{"FIREBASE_CREDENTIALSPATH", "firebase.credentialsPath"},
		{"LINE_CHANNELTOKEN", "line.channelToken"},
		{"NEW_FEATURE_FLAG", "new.feature.flag"},
	}
	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			assert.Equal(t, tt.want, canonicalizeEnvKey(tt.envKey, keySkeleton))
		})
	}
}
