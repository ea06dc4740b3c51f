package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestViperConfigGetString(t *testing.T) {
	v := viper.New()
	v.Set("name", "test")
	cfg := New(v)

	if got := cfg.GetString("name"); got != "test" {
		t.Errorf("GetString('name') = %q, want %q", got, "test")
	}
}

func TestViperConfigGetInt(t *testing.T) {
	v := viper.New()
	v.Set("port", 8080)
	cfg := New(v)

	if got := cfg.GetInt("port"); got != 8080 {
		t.Errorf("GetInt('port') = %d, want %d", got, 8080)
	}
}

func TestViperConfigGetBool(t *testing.T) {
	v := viper.New()
	v.Set("enabled", true)
	cfg := New(v)

	if got := cfg.GetBool("enabled"); !got {
		t.Error("GetBool('enabled') = false, want true")
	}
}

func TestViperConfigGetDuration(t *testing.T) {
	v := viper.New()
	v.Set("timeout", "5s")
	cfg := New(v)

	want := 5 * time.Second
	if got := cfg.GetDuration("timeout"); got != want {
		t.Errorf("GetDuration('timeout') = %v, want %v", got, want)
	}
}

func TestViperConfigIsSet(t *testing.T) {
	v := viper.New()
	v.Set("exists", true)
	cfg := New(v)

	if !cfg.IsSet("exists") {
		t.Error("IsSet('exists') = false, want true")
	}
	if cfg.IsSet("missing") {
		t.Error("IsSet('missing') = true, want false")
	}
}

func TestViperConfigSub(t *testing.T) {
	v := viper.New()
	v.Set("monitor.max_events", 25)
	v.Set("monitor.interval", 30)
	cfg := New(v)

	sub := cfg.Sub("monitor")
	if sub == nil {
		t.Fatal("Sub('monitor') = nil")
	}
	if got := sub.GetInt("max_events"); got != 25 {
		t.Errorf("sub.GetInt('max_events') = %d, want %d", got, 25)
	}
	if got := sub.GetInt("interval"); got != 30 {
		t.Errorf("sub.GetInt('interval') = %d, want %d", got, 30)
	}
}

func TestViperConfigSubMissing(t *testing.T) {
	v := viper.New()
	cfg := New(v)

	sub := cfg.Sub("nonexistent")
	if sub == nil {
		t.Fatal("Sub('nonexistent') should return empty Config, not nil")
	}
	// Should return zero values without panic.
	if got := sub.GetString("anything"); got != "" {
		t.Errorf("empty config GetString() = %q, want empty", got)
	}
}

func TestViperConfigUnmarshal(t *testing.T) {
	v := viper.New()
	v.Set("host", "localhost")
	v.Set("port", 9090)
	cfg := New(v)

	var target struct {
		Host string `mapstructure:"host"`
		Port int    `mapstructure:"port"`
	}
	if err := cfg.Unmarshal(&target); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if target.Host != "localhost" {
		t.Errorf("Host = %q, want %q", target.Host, "localhost")
	}
	if target.Port != 9090 {
		t.Errorf("Port = %d, want %d", target.Port, 9090)
	}
}

func TestNilViper(t *testing.T) {
	cfg := New(nil)
	// Should not panic and return zero values.
	if got := cfg.GetString("key"); got != "" {
		t.Errorf("nil viper GetString() = %q, want empty", got)
	}
	if cfg.DemoMode() {
		t.Error("nil viper DemoMode() = true, want false")
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.ServerAddr(); got != "127.0.0.1:8421" {
		t.Errorf("ServerAddr() = %q, want %q", got, "127.0.0.1:8421")
	}
	if got := cfg.MaxEvents(); got != DefaultMaxEvents {
		t.Errorf("MaxEvents() = %d, want %d", got, DefaultMaxEvents)
	}
	if got := cfg.MonitorInterval(); got != DefaultMonitorInterval {
		t.Errorf("MonitorInterval() = %v, want %v", got, DefaultMonitorInterval)
	}
	if cfg.DemoMode() {
		t.Error("DemoMode() = true by default, want false")
	}
}

func TestSetDemoMode(t *testing.T) {
	cfg := New(viper.New())

	cfg.SetDemoMode(true)
	if !cfg.DemoMode() {
		t.Error("DemoMode() = false after SetDemoMode(true)")
	}
	cfg.SetDemoMode(false)
	if cfg.DemoMode() {
		t.Error("DemoMode() = true after SetDemoMode(false)")
	}
}

func TestMaxEventsFloor(t *testing.T) {
	v := viper.New()
	v.Set("monitor.max_events", 0)
	cfg := New(v)

	if got := cfg.MaxEvents(); got != DefaultMaxEvents {
		t.Errorf("MaxEvents() with zero config = %d, want default %d", got, DefaultMaxEvents)
	}
}
