package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"jk80-print/internal/config"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != config.Default() {
		t.Fatalf("got %+v, want defaults", cfg)
	}
	if cfg.TargetName != "JK-80PL" || cfg.Channel != 1 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "transport: serial\nserial_port: /dev/rfcomm0\nbaud_rate: 9600\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Transport != "serial" || cfg.SerialPort != "/dev/rfcomm0" || cfg.BaudRate != 9600 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.TargetName != "JK-80PL" || cfg.QueueSize != 1 {
		t.Fatalf("defaults lost: %+v", cfg)
	}

	opts := cfg.PlatformOptions()
	if opts.Transport != "serial" || opts.SerialPort != "/dev/rfcomm0" {
		t.Fatalf("platform options = %+v", opts)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"transport": "transport: usb\n",
		"channel":   "channel: 31\n",
		"queue":     "queue_size: 0\n",
		"yaml":      "channel: [\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := config.Load(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestPath_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if got, want := config.Path(), filepath.Join(dir, "jk80-print", "config.yaml"); got != want {
		t.Fatalf("Path() = %q, want %q", got, want)
	}
}

func TestModel(t *testing.T) {
	cfg := config.Default()
	if got := cfg.Model(); got != "JK-80PL" {
		t.Errorf("default model = %q", got)
	}
	cfg.TargetName = "JK-80PL Pro"
	if got := cfg.Model(); got != "JK-80PL Pro" {
		t.Errorf("model = %q", got)
	}
	cfg.TargetName = ""
	if got := cfg.Model(); got != "JK-80PL" {
		t.Errorf("unfiltered model = %q", got)
	}
}
