package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development", Mode: "server"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: "/srv/reychango"},
		Auth:   AuthConfig{AccessTokenDuration: 24 * time.Hour},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"staging", func(c *Config) { c.App.Environment = "staging" }, ""},
		{"production", func(c *Config) { c.App.Environment = "production" }, ""},
		{"unknown environment", func(c *Config) { c.App.Environment = "test" }, "invalid environment"},
		{"environment is case sensitive", func(c *Config) { c.App.Environment = "DEVELOPMENT" }, "invalid environment"},
		{"empty environment", func(c *Config) { c.App.Environment = "" }, "ENV is required"},
		{"readonly mode", func(c *Config) { c.App.Mode = "readonly" }, ""},
		{"unknown mode", func(c *Config) { c.App.Mode = "offline" }, "invalid mode"},
		{"uppercase log level", func(c *Config) { c.Logger.Level = "DEBUG" }, ""},
		{"unknown log level", func(c *Config) { c.Logger.Level = "trace" }, "invalid log level"},
		{"empty data path", func(c *Config) { c.Data.BasePath = "" }, "data base path cannot be empty"},
		{"zero token duration", func(c *Config) { c.Auth.AccessTokenDuration = 0 }, "access token duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestExpandDataPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		in, want string
	}{
		{"", filepath.Join(homeDir, "Reychango", "data")},
		{"~/my-data", filepath.Join(homeDir, "my-data")},
		{"/absolute/path/to/data", "/absolute/path/to/data"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cfg := &Config{Data: DataConfig{BasePath: tt.in}}
			require.NoError(t, cfg.expandDataPath())
			assert.Equal(t, tt.want, cfg.Data.BasePath)
		})
	}

	cfg := &Config{Data: DataConfig{BasePath: "relative/path"}}
	require.NoError(t, cfg.expandDataPath())
	assert.True(t, filepath.IsAbs(cfg.Data.BasePath))
	assert.Contains(t, cfg.Data.BasePath, "relative/path")
}

func TestDataConfig_DBPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/srv/reychango", "db"), DataConfig{BasePath: "/srv/reychango"}.DBPath())
}

func TestGetConfigValue_Precedence(t *testing.T) {
	assert.Equal(t, "flag-value", getConfigValue("flag-value", "TEST_ENV_KEY", "default-value"))

	t.Setenv("TEST_ENV_KEY", "env-value")
	assert.Equal(t, "env-value", getConfigValue("", "TEST_ENV_KEY", "default-value"))

	assert.Equal(t, "default-value", getConfigValue("", "NONEXISTENT_KEY", "default-value"))
}

func TestGetBoolConfigValue(t *testing.T) {
	t.Setenv("TEST_BOOL", "YES")
	assert.True(t, getBoolConfigValue("", "TEST_BOOL", false))
	assert.False(t, getBoolConfigValue("off", "TEST_BOOL", true))
	assert.True(t, getBoolConfigValue("", "NONEXISTENT_BOOL", true))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, splitList(" https://a.example, ,https://b.example "))
	assert.Nil(t, splitList(""))
}

func TestLoadEnvFile_ValidFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := `# Test env file
ENV=staging
LOG_LEVEL=debug

DATA_PATH=/test/path
QUOTED_VALUE="some value"
SINGLE_QUOTED='another value'
  KEY_WITH_SPACES  =  value with spaces  
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	// t.Setenv registers cleanup; unsetting afterwards lets the file populate them.
	for _, key := range []string{"ENV", "LOG_LEVEL", "DATA_PATH", "QUOTED_VALUE", "SINGLE_QUOTED", "KEY_WITH_SPACES"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	require.NoError(t, loadEnvFile(envFile))

	assert.Equal(t, "staging", os.Getenv("ENV"))
	assert.Equal(t, "debug", os.Getenv("LOG_LEVEL"))
	assert.Equal(t, "/test/path", os.Getenv("DATA_PATH"))
	assert.Equal(t, "some value", os.Getenv("QUOTED_VALUE"))
	assert.Equal(t, "another value", os.Getenv("SINGLE_QUOTED"))
	assert.Equal(t, "value with spaces", os.Getenv("KEY_WITH_SPACES"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("VALID_KEY=valid_value\nINVALID LINE WITHOUT EQUALS\n"), 0o644))

	err := loadEnvFile(envFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestLoadEnvFile_NonExistentFile(t *testing.T) {
	assert.Error(t, loadEnvFile("/nonexistent/file/.env"))
}

func TestLoadEnvFile_ExistingEnvVarsNotOverwritten(t *testing.T) {
	t.Setenv("TEST_VAR", "original-value")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TEST_VAR=new-value"), 0o644))

	require.NoError(t, loadEnvFile(envFile))
	assert.Equal(t, "original-value", os.Getenv("TEST_VAR"))
}
