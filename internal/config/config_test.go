package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad tests the Load function with various scenarios
func TestLoad(t *testing.T) {
	// Save original environment to restore later
	originalEnv := make(map[string]string)
	envVars := []string{
		"RETAIL_SERVER_PORT", "RETAIL_SERVER_READ_TIMEOUT", "RETAIL_SERVER_WRITE_TIMEOUT",
		"RETAIL_SECURITY_ALLOWED_ORIGINS", "RETAIL_SECURITY_ENABLE_CORS",
		"RETAIL_LOGGING_LEVEL", "RETAIL_LOGGING_FORMAT", "RETAIL_LOGGING_OUTPUT",
		"RETAIL_PATHS_DATA_DIR", "RETAIL_PATHS_WEB_DIR", "RETAIL_PATHS_LOGS_DIR",
		"RETAIL_ANALYTICS_DATASET_FILE", "RETAIL_ANALYTICS_TOP_LIMIT",
		"RETAIL_ANALYTICS_MAX_TOP_LIMIT",
	}

	// Save original values
	for _, envVar := range envVars {
		originalEnv[envVar] = os.Getenv(envVar)
	}

	// Clean up environment variables
	defer func() {
		for _, envVar := range envVars {
			if val, exists := originalEnv[envVar]; exists && val != "" {
				os.Setenv(envVar, val)
			} else {
				os.Unsetenv(envVar)
			}
		}
	}()

	tests := []struct {
		name        string
		setupEnv    func()
		setupFile   func() string // returns temp file path
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "default configuration with no env vars",
			setupEnv: func() {
				for _, envVar := range envVars {
					os.Unsetenv(envVar)
				}
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
				assert.Equal(t, 1048576, cfg.Server.MaxHeaderBytes)
				assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)

				assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
				assert.True(t, cfg.Security.EnableCORS)
				assert.True(t, cfg.Security.RateLimit.Enabled)
				assert.Equal(t, 100.0, cfg.Security.RateLimit.RPS)
				assert.Equal(t, 50, cfg.Security.RateLimit.Burst)

				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "both", cfg.Logging.Output)
				assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)

				assert.Equal(t, "data", cfg.Paths.DataDir)
				assert.Equal(t, "web", cfg.Paths.WebDir)
				assert.Equal(t, "logs", cfg.Paths.LogsDir)
				assert.NotEmpty(t, cfg.Paths.ExecutableDir)

				assert.True(t, cfg.Analytics.AutoLoad)
				assert.Equal(t, 10, cfg.Analytics.TopLimit)
				assert.Equal(t, 50, cfg.Analytics.MaxTopLimit)
			},
		},
		{
			name: "custom environment variables",
			setupEnv: func() {
				os.Setenv("RETAIL_SERVER_PORT", "9090")
				os.Setenv("RETAIL_SERVER_READ_TIMEOUT", "30s")
				os.Setenv("RETAIL_SECURITY_ALLOWED_ORIGINS", "http://example.com,https://example.com")
				os.Setenv("RETAIL_SECURITY_ENABLE_CORS", "false")
				os.Setenv("RETAIL_LOGGING_LEVEL", "debug")
				os.Setenv("RETAIL_LOGGING_FORMAT", "text")
				os.Setenv("RETAIL_ANALYTICS_DATASET_FILE", "data/extract.xlsx")
				os.Setenv("RETAIL_ANALYTICS_TOP_LIMIT", "25")
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"http://example.com", "https://example.com"}, cfg.Security.AllowedOrigins)
				assert.False(t, cfg.Security.EnableCORS)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format) // validate() should force this to json
				assert.Equal(t, "data/extract.xlsx", cfg.Analytics.DatasetFile)
				assert.Equal(t, 25, cfg.Analytics.TopLimit)
			},
		},
		{
			name: "invalid port number",
			setupEnv: func() {
				os.Setenv("RETAIL_SERVER_PORT", "99999")
			},
			wantErr: true,
		},
		{
			name: "zero port number",
			setupEnv: func() {
				os.Setenv("RETAIL_SERVER_PORT", "0")
			},
			wantErr: true,
		},
		{
			name: "negative timeout",
			setupEnv: func() {
				os.Setenv("RETAIL_SERVER_READ_TIMEOUT", "-5s")
			},
			wantErr: true,
		},
		{
			name: "empty allowed origins",
			setupEnv: func() {
				os.Setenv("RETAIL_SECURITY_ALLOWED_ORIGINS", "")
			},
			wantErr: true,
		},
		{
			name: "zero top limit",
			setupEnv: func() {
				os.Setenv("RETAIL_ANALYTICS_TOP_LIMIT", "0")
			},
			wantErr: true,
		},
		{
			name: "config file applies where env is unset",
			setupEnv: func() {
				os.Setenv("RETAIL_SERVER_PORT", "7070")
			},
			setupFile: func() string {
				tempDir := t.TempDir()
				configFile := filepath.Join(tempDir, "config.yaml")
				configContent := `
server:
  port: 6060
  read_timeout: 20s
logging:
  level: error
analytics:
  top_limit: 15
`
				require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0644))
				// Change to temp directory so config file is found
				originalDir, _ := os.Getwd()
				os.Chdir(tempDir)
				t.Cleanup(func() { os.Chdir(originalDir) })
				return configFile
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				// Environment wins, file fills the rest
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, 20*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "error", cfg.Logging.Level)
				assert.Equal(t, 15, cfg.Analytics.TopLimit)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clean environment first
			for _, envVar := range envVars {
				os.Unsetenv(envVar)
			}

			if tt.setupEnv != nil {
				tt.setupEnv()
			}
			if tt.setupFile != nil {
				tt.setupFile()
			}

			cfg, err := Load()

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

// TestDefault verifies the built-in defaults are internally consistent
func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DefaultRateLimit, int(cfg.Security.RateLimit.RPS))
	assert.Equal(t, DefaultBurstSize, cfg.Security.RateLimit.Burst)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Logging.Format)
	assert.Equal(t, DefaultDataDir, cfg.Paths.DataDir)
	assert.Equal(t, DefaultTopLimit, cfg.Analytics.TopLimit)
	assert.Equal(t, MaxTopLimit, cfg.Analytics.MaxTopLimit)

	// Defaults must survive their own validation
	assert.NoError(t, cfg.validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "port too large",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "negative write timeout",
			mutate:  func(c *Config) { c.Server.WriteTimeout = -1 },
			wantErr: "write timeout must be positive",
		},
		{
			name:    "no allowed origins",
			mutate:  func(c *Config) { c.Security.AllowedOrigins = nil },
			wantErr: "allowed origin",
		},
		{
			name: "rate limit enabled with zero rps",
			mutate: func(c *Config) {
				c.Security.RateLimit.Enabled = true
				c.Security.RateLimit.RPS = 0
			},
			wantErr: "rate limit rps",
		},
		{
			name:    "negative top limit",
			mutate:  func(c *Config) { c.Analytics.TopLimit = -1 },
			wantErr: "top limit must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_Normalization(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""
	cfg.Analytics.TopLimit = 30
	cfg.Analytics.MaxTopLimit = 20

	require.NoError(t, cfg.validate())

	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
	// Max limit is raised to cover the configured default limit
	assert.Equal(t, 30, cfg.Analytics.MaxTopLimit)
}

func TestMergeConfigs(t *testing.T) {
	base := *Default()
	file := Config{}
	file.Server.Port = 9999
	file.Logging.Level = "warn"
	file.Analytics.DatasetFile = "data/history.csv"

	merged := mergeConfigs(base, file)

	assert.Equal(t, 9999, merged.Server.Port)
	assert.Equal(t, "warn", merged.Logging.Level)
	assert.Equal(t, "data/history.csv", merged.Analytics.DatasetFile)

	// Untouched fields keep base values
	assert.Equal(t, base.Server.ReadTimeout, merged.Server.ReadTimeout)
	assert.Equal(t, base.Security.AllowedOrigins, merged.Security.AllowedOrigins)
	assert.Equal(t, base.Analytics.TopLimit, merged.Analytics.TopLimit)
}

func TestLoadFromFile(t *testing.T) {
	t.Run("valid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "server:\n  port: 4242\nanalytics:\n  dataset_file: data/orders.xlsx\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		cfg, err := loadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, 4242, cfg.Server.Port)
		assert.Equal(t, "data/orders.xlsx", cfg.Analytics.DatasetFile)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0644))

		_, err := loadFromFile(path)
		assert.Error(t, err)
	})
}

func TestPathGetters(t *testing.T) {
	cfg := Default()
	cfg.Paths.ExecutableDir = "/opt/retail"

	assert.Equal(t, filepath.Join("/opt/retail", "data"), cfg.GetDataDir())
	assert.Equal(t, filepath.Join("/opt/retail", "web"), cfg.GetWebDir())
	assert.Equal(t, filepath.Join("/opt/retail", "logs"), cfg.GetLogsDir())

	// Absolute paths are used as-is
	cfg.Paths.DataDir = "/var/lib/retail"
	assert.Equal(t, "/var/lib/retail", cfg.GetDataDir())
}

func TestGetDatasetFile(t *testing.T) {
	cfg := Default()
	cfg.Paths.ExecutableDir = "/opt/retail"

	// Empty setting falls back to the well-known location
	assert.Equal(t, filepath.Join("/opt/retail", "data", DefaultDatasetName), cfg.GetDatasetFile())

	cfg.Analytics.DatasetFile = "data/superstore.csv"
	assert.Equal(t, filepath.Join("/opt/retail", "data", "superstore.csv"), cfg.GetDatasetFile())

	cfg.Analytics.DatasetFile = "/mnt/extracts/orders.xlsx"
	assert.Equal(t, "/mnt/extracts/orders.xlsx", cfg.GetDatasetFile())
}
