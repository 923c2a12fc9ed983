package store

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
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DAYTRADER_BASE_URL", "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout())
	assert.Equal(t, 500*time.Millisecond, cfg.Debounce())
	assert.Equal(t, 30*time.Second, cfg.StaleTime())
	assert.Equal(t, "9.99", cfg.Fee().StringFixed(2))
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Setenv("DAYTRADER_BASE_URL", "")
	p := writeConfig(t, `
api:
  base_url: https://trader.example.com/api
  timeout_seconds: 3
trade:
  order_fee: "15.95"
  debounce_ms: 250
cache:
  stale_seconds: 5
`)

	cfg, err := LoadConfig(p)
	require.NoError(t, err)

	assert.Equal(t, "https://trader.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout())
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce())
	assert.Equal(t, "15.95", cfg.Fee().String())
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("DAYTRADER_BASE_URL", "http://10.0.0.5:9000/api")

	cfg, err := LoadConfig(writeConfig(t, "api:\n  base_url: http://ignored/api\n"))
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:9000/api", cfg.API.BaseURL)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Setenv("DAYTRADER_BASE_URL", "")

	cases := map[string]string{
		"relative url": "api:\n  base_url: /api\n",
		"bad fee":      "trade:\n  order_fee: abc\n",
		"negative fee": "trade:\n  order_fee: \"-1\"\n",
		"bad debounce": "trade:\n  debounce_ms: -5\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestToken(t *testing.T) {
	t.Setenv("DAYTRADER_TOKEN", "abc123")
	assert.Equal(t, "abc123", Default().Token())
}
