package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("port", "8080", "")
	fs.String("log-level", "", "")
	fs.String("namespace", "default", "")
	fs.String("name", "frontend-environment", "")
	fs.String("unmapped", "", "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, Defaults(), *cfg)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadHeaderTimeout)
	assert.Empty(t, cfg.Logging.Level)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("COFFEESHOP__SERVER__PORT", "9090")
	t.Setenv("COFFEESHOP__SERVER__SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("COFFEESHOP__LOGGING__LEVEL", "warn")
	t.Setenv("COFFEESHOP__PUBLISH__NAMESPACE", "cafe")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "cafe", cfg.Publish.Namespace)
	assert.Equal(t, "frontend-environment", cfg.Publish.Name)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("COFFEESHOP__SERVER__PORT", "9090")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--port", "7070", "--unmapped", "x"}))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port)
}

func TestLoad_UnsetFlagsDoNotOverride(t *testing.T) {
	t.Setenv("COFFEESHOP__PUBLISH__NAME", "from-env")

	fs := testFlags()
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Publish.Name)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "non numeric port", key: "COFFEESHOP__SERVER__PORT", value: "http"},
		{name: "unknown log level", key: "COFFEESHOP__LOGGING__LEVEL", value: "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load(nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validation of config failed")
		})
	}
}
