package venueconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
trader:
  id: TRADER-001
socket:
  address: venue.example.com:9001
  tls: true
  server_name: venue.example.com
  suffix: "\r\n"
  heartbeat_interval: 30s
  api_key: placeholder
logging:
  level: info
  format: json
`

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadParsesYAML(t *testing.T) {
	path := writeTempConfig(t, sampleYAML)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "TRADER-001", cfg.Trader.ID)
	assert.Equal(t, "venue.example.com:9001", cfg.Socket.Address)
	assert.True(t, cfg.Socket.TLS)
	assert.Equal(t, "placeholder", cfg.Socket.APIKey)
}

func TestLoadOverridesAPIKeyFromEnv(t *testing.T) {
	path := writeTempConfig(t, sampleYAML)
	t.Setenv("VENUE_API_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Socket.APIKey)
}

func TestValidateRequiresFields(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.Validate())

	cfg.Trader.ID = "TRADER-001"
	cfg.Socket.Address = "venue:9001"
	cfg.Socket.Suffix = "\n"
	assert.NoError(t, cfg.Validate())

	cfg.Socket.TLS = true
	assert.Error(t, cfg.Validate())

	cfg.Socket.ServerName = "venue"
	assert.NoError(t, cfg.Validate())
}
