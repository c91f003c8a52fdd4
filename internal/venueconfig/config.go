// Package venueconfig defines configuration for connecting to a venue: the
// trader id, socket endpoint and framing, and logging. Config is loaded from a
// YAML file with sensitive fields overridable via VENUE_* environment
// variables, the same pattern the rest of the pack uses for bot config.
package venueconfig

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level venue connectivity configuration, mapped
// directly from the YAML file structure.
type Config struct {
	Trader  TraderConfig  `mapstructure:"trader"`
	Socket  SocketConfig  `mapstructure:"socket"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// TraderConfig identifies the owning trader node.
type TraderConfig struct {
	ID string `mapstructure:"id"`
}

// SocketConfig describes the venue TCP endpoint and framing.
//
//   - Address: "host:port" to dial.
//   - TLS: whether to negotiate TLS after connecting.
//   - ServerName: TLS server name; required when TLS is true.
//   - Suffix: the byte sequence delimiting frames (e.g. "\r\n").
//   - HeartbeatInterval: zero disables the heartbeat task.
//   - ReadIdleTimeout: zero disables the idle-read watchdog.
//   - APIKey: venue credential, overridable via VENUE_API_KEY.
type SocketConfig struct {
	Address           string        `mapstructure:"address"`
	TLS               bool          `mapstructure:"tls"`
	ServerName        string        `mapstructure:"server_name"`
	Suffix            string        `mapstructure:"suffix"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	ReadIdleTimeout   time.Duration `mapstructure:"read_idle_timeout"`
	APIKey            string        `mapstructure:"api_key"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads config from a YAML file with VENUE_* env var overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("VENUE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("venueconfig: read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("venueconfig: unmarshal config: %w", err)
	}

	if key := os.Getenv("VENUE_API_KEY"); key != "" {
		cfg.Socket.APIKey = key
	}

	return &cfg, nil
}

// Validate checks that required fields are set; it does not check value
// ranges.
func (c *Config) Validate() error {
	if c.Trader.ID == "" {
		return fmt.Errorf("trader.id is required")
	}
	if c.Socket.Address == "" {
		return fmt.Errorf("socket.address is required")
	}
	if c.Socket.Suffix == "" {
		return fmt.Errorf("socket.suffix is required")
	}
	if c.Socket.TLS && c.Socket.ServerName == "" {
		return fmt.Errorf("socket.server_name is required when socket.tls is true")
	}
	return nil
}
