package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if got := cfg.API.Addr(); got != "127.0.0.1:3000" {
		t.Errorf("addr: got %q", got)
	}
	if cfg.Storage.Path != "vendo.db" {
		t.Errorf("storage path: got %q", cfg.Storage.Path)
	}
	if cfg.Machine.SessionTimeout != "30s" || cfg.Machine.PollInterval != "1s" {
		t.Errorf("timing defaults: %+v", cfg.Machine)
	}
	if cfg.Machine.FloatHundreds != 10 {
		t.Errorf("float hundreds: got %d", cfg.Machine.FloatHundreds)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.Port != 3000 {
		t.Errorf("got port %d, want default 3000", cfg.API.Port)
	}
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vendo.toml")
	data := `
[api]
port = 8080
metrics = false

[machine]
session_timeout = "45s"
float_quarters = 20
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.Port != 8080 || cfg.API.Metrics {
		t.Errorf("api section not applied: %+v", cfg.API)
	}
	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("unset host lost its default: %q", cfg.API.Host)
	}
	if cfg.Machine.SessionTimeout != "45s" {
		t.Errorf("session timeout: got %q", cfg.Machine.SessionTimeout)
	}
	if cfg.Machine.PollInterval != "1s" {
		t.Errorf("unset poll interval lost its default: %q", cfg.Machine.PollInterval)
	}
}

func TestLoadBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("[api\nport="), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed config loaded without error")
	}
}

func TestControllerConfig(t *testing.T) {
	m := MachineConfig{
		SessionTimeout: "45s",
		PollInterval:   "bogus", // falls back
		ConfirmDelay:   "",      // falls back
		DispenseDelay:  "-1s",   // non-positive falls back
	}
	cc := m.ControllerConfig()

	if cc.SessionTimeout != 45*time.Second {
		t.Errorf("session timeout: got %v", cc.SessionTimeout)
	}
	if cc.PollInterval != time.Second {
		t.Errorf("bogus poll interval: got %v, want 1s fallback", cc.PollInterval)
	}
	if cc.ConfirmDelay != 800*time.Millisecond {
		t.Errorf("empty confirm delay: got %v, want 800ms fallback", cc.ConfirmDelay)
	}
	if cc.DispenseDelay != 1500*time.Millisecond {
		t.Errorf("negative dispense delay: got %v, want 1500ms fallback", cc.DispenseDelay)
	}
	if cc.HistoryLimit <= 0 {
		t.Errorf("history limit not defaulted: %d", cc.HistoryLimit)
	}
}

func TestFloat(t *testing.T) {
	m := MachineConfig{FloatHundreds: 3, FloatFifties: 2, FloatQuarters: 1}
	f := m.Float()
	if f[100] != 3 || f[50] != 2 || f[25] != 1 {
		t.Errorf("float: %v", f)
	}
	if f.Total() != 425 {
		t.Errorf("float total: got %d, want 425", f.Total())
	}
}
