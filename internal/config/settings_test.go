package config

import (
	"errors"
	"os"
	"testing"

	"github.com/rgehrsitz/assetplan/internal/calculation"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearSettingsEnv unsets the settings variables; t.Setenv restores them after the test.
func clearSettingsEnv(t *testing.T) {
	for _, key := range []string{EnvLogLevel, EnvDateMode, EnvTaxPolicyFile, EnvRedisAddr, EnvValuationRPS} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadSettingsDefaults(t *testing.T) {
	clearSettingsEnv(t)

	settings, err := LoadSettings("testdata/does-not-exist.env")
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, settings.LogLevel)
	assert.Equal(t, calculation.DateLenient, settings.DateMode)
	assert.Empty(t, settings.TaxPolicyFile)
	assert.Empty(t, settings.RedisAddr)
	assert.Equal(t, 5.0, settings.ValuationRPS)
}

func TestLoadSettingsFromEnvFile(t *testing.T) {
	clearSettingsEnv(t)

	settings, err := LoadSettings("testdata/.env.test")
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, settings.LogLevel)
	assert.Equal(t, calculation.DateStrict, settings.DateMode)
	assert.Equal(t, "localhost:6379", settings.RedisAddr)
	assert.Equal(t, 2.5, settings.ValuationRPS)
}

func TestLoadSettingsProcessEnvWins(t *testing.T) {
	clearSettingsEnv(t)
	t.Setenv(EnvDateMode, "lenient")

	settings, err := LoadSettings("testdata/.env.test")
	require.NoError(t, err)
	assert.Equal(t, calculation.DateLenient, settings.DateMode)
}

func TestLoadSettingsInvalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{EnvLogLevel, "chatty"},
		{EnvDateMode, "sloppy"},
		{EnvValuationRPS, "zero"},
		{EnvValuationRPS, "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearSettingsEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := LoadSettings("testdata/does-not-exist.env")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}

	clearSettingsEnv(t)
	t.Setenv(EnvDateMode, "sloppy")
	_, err := LoadSettings("testdata/does-not-exist.env")
	assert.True(t, errors.Is(err, calculation.ErrInvalidParameter))
}
