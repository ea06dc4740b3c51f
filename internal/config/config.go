// Package config wraps viper to provide typed, nil-safe access to the
// netglance configuration file and NETGLANCE_* environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults applied when the config file or key is absent.
const (
	DefaultServerHost      = "127.0.0.1"
	DefaultServerPort      = 8421
	DefaultMaxEvents       = 50
	DefaultMonitorInterval = 60 * time.Second
)

// Config provides read access to configuration values. A Config wrapping a
// nil viper returns zero values rather than panicking.
type Config struct {
	v *viper.Viper
}

// New wraps an existing viper instance.
func New(v *viper.Viper) *Config {
	return &Config{v: v}
}

// Load reads configuration from the given path (optional) and the
// environment. Environment variables use the NETGLANCE_ prefix with
// underscores for nesting (e.g. NETGLANCE_SERVER_PORT).
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", DefaultServerHost)
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("demo_mode", false)
	v.SetDefault("monitor.max_events", DefaultMaxEvents)
	v.SetDefault("monitor.interval", DefaultMonitorInterval)

	v.SetEnvPrefix("NETGLANCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	return New(v), nil
}

// GetString returns the string value for key, or "" if unset.
func (c *Config) GetString(key string) string {
	if c.v == nil {
		return ""
	}
	return c.v.GetString(key)
}

// GetInt returns the int value for key, or 0 if unset.
func (c *Config) GetInt(key string) int {
	if c.v == nil {
		return 0
	}
	return c.v.GetInt(key)
}

// GetBool returns the bool value for key, or false if unset.
func (c *Config) GetBool(key string) bool {
	if c.v == nil {
		return false
	}
	return c.v.GetBool(key)
}

// GetDuration returns the duration value for key, or 0 if unset.
func (c *Config) GetDuration(key string) time.Duration {
	if c.v == nil {
		return 0
	}
	return c.v.GetDuration(key)
}

// IsSet reports whether key has a value.
func (c *Config) IsSet(key string) bool {
	if c.v == nil {
		return false
	}
	return c.v.IsSet(key)
}

// Sub returns the subtree rooted at key. Always returns a usable Config,
// never nil.
func (c *Config) Sub(key string) *Config {
	if c.v == nil {
		return New(nil)
	}
	sub := c.v.Sub(key)
	if sub == nil {
		return New(nil)
	}
	return New(sub)
}

// Unmarshal decodes the configuration into target.
func (c *Config) Unmarshal(target any) error {
	if c.v == nil {
		return nil
	}
	return c.v.Unmarshal(target)
}

// DemoMode reports whether scan commands should target the mock backend.
// Read at each call site, not cached: the flag is persisted externally and
// may flip between scans.
func (c *Config) DemoMode() bool {
	return c.GetBool("demo_mode")
}

// SetDemoMode overrides the demo-mode flag for this process.
func (c *Config) SetDemoMode(enabled bool) {
	if c.v != nil {
		c.v.Set("demo_mode", enabled)
	}
}

// MaxEvents returns the monitoring history capacity.
func (c *Config) MaxEvents() int {
	if n := c.GetInt("monitor.max_events"); n > 0 {
		return n
	}
	return DefaultMaxEvents
}

// MonitorInterval returns the default monitoring scan interval.
func (c *Config) MonitorInterval() time.Duration {
	if d := c.GetDuration("monitor.interval"); d > 0 {
		return d
	}
	return DefaultMonitorInterval
}

// ServerAddr returns the host:port the HTTP API listens on.
func (c *Config) ServerAddr() string {
	host := c.GetString("server.host")
	if host == "" {
		host = DefaultServerHost
	}
	port := c.GetInt("server.port")
	if port == 0 {
		port = DefaultServerPort
	}
	return fmt.Sprintf("%s:%d", host, port)
}
