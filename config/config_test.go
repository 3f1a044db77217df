package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWriteAndReadProjectConfig verifies a project config survives being written and read back.
func TestWriteAndReadProjectConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "medusa-stacktraces.json")

	projectConfig := GetDefaultProjectConfig()
	projectConfig.Symbolication.CorrectSelectors = false
	projectConfig.Symbolication.MinimumCompilerVersion = ">= 0.5.0"
	projectConfig.Logging.Level = zerolog.DebugLevel
	require.NoError(t, projectConfig.WriteToFile(path))

	readConfig, err := ReadProjectConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, projectConfig, readConfig)
	assert.NoError(t, readConfig.Validate())
}

// TestReadProjectConfigDefaults verifies fields missing from a config file keep their defaults.
func TestReadProjectConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"symbolication": {"stripMetadataOnMatch": false}}`), 0644))

	projectConfig, err := ReadProjectConfigFromFile(path)
	require.NoError(t, err)
	assert.True(t, projectConfig.Symbolication.CorrectSelectors)
	assert.False(t, projectConfig.Symbolication.StripMetadataOnMatch)
	assert.Equal(t, zerolog.InfoLevel, projectConfig.Logging.Level)

	_, err = ReadProjectConfigFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{`), 0644))
	_, err = ReadProjectConfigFromFile(path)
	assert.Error(t, err)
}

// TestValidate verifies malformed compiler version constraints and log levels are rejected.
func TestValidate(t *testing.T) {
	projectConfig := GetDefaultProjectConfig()
	assert.NoError(t, projectConfig.Validate())

	projectConfig.Symbolication.MinimumCompilerVersion = "not a version"
	assert.Error(t, projectConfig.Validate())

	projectConfig = GetDefaultProjectConfig()
	projectConfig.Logging.Level = zerolog.Level(42)
	assert.Error(t, projectConfig.Validate())
}
