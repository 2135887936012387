package config

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gigurra/morselamp/cmd/morse/code"
	"github.com/gigurra/morselamp/cmd/morse/driver"
	"github.com/gigurra/morselamp/cmd/morse/indicator"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
	s, err := cfg.Settings()
	if err != nil {
		t.Fatal(err)
	}
	if s != driver.DefaultSettings() {
		t.Errorf("Settings() = %+v, want %+v", s, driver.DefaultSettings())
	}
	if cfg.GPIO.LeftOffset != 35 || cfg.GPIO.RightOffset != 47 {
		t.Errorf("gpio defaults = %+v", cfg.GPIO)
	}
}

func TestLoadFillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"line":"right","gpio":{"left_offset":4,"right_offset":5}}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Line != "right" || cfg.Mode != "normal" || cfg.UnitMs != 2000 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.GPIO.Chip != "gpiochip0" || cfg.GPIO.LeftOffset != 4 {
		t.Errorf("gpio = %+v", cfg.GPIO)
	}
	if cfg.Audio == nil || cfg.Audio.FrequencyHz != 700 {
		t.Errorf("audio = %+v", cfg.Audio)
	}
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"mode":`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load of truncated JSON should fail")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg := DefaultConfig()
	cfg.Mode = "error"
	cfg.UnitMs = 250
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s, err := loaded.Settings()
	if err != nil {
		t.Fatal(err)
	}
	if s.Mode != code.ModeError || s.Unit != 250*time.Millisecond {
		t.Errorf("Settings() = %+v", s)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"mode", func(c *Config) { c.Mode = "loud" }},
		{"line", func(c *Config) { c.Line = "up" }},
		{"unit", func(c *Config) { c.UnitMs = -1 }},
		{"unit above max", func(c *Config) { c.UnitMs = int(driver.MaxUnit.Milliseconds()) + 1 }},
		{"indicator", func(c *Config) { c.Indicator = "smoke" }},
		{"gpio offsets", func(c *Config) { c.GPIO.RightOffset = c.GPIO.LeftOffset }},
		{"audio", func(c *Config) { c.Audio.FrequencyHz = 0 }},
		{"log level", func(c *Config) { c.LogLevel = "chatty" }},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.modify(cfg)
		snapshot := *cfg
		err := Validate(cfg)
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: Validate = %v, want ErrInvalid", tt.name, err)
		}
		if *cfg != snapshot {
			t.Errorf("%s: Validate modified the config", tt.name)
		}
	}
}

func TestSettingsRejectsHugeUnit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UnitMs = math.MaxInt
	if _, err := cfg.Settings(); !errors.Is(err, ErrInvalid) {
		t.Errorf("Settings() with unit_ms %d = %v, want ErrInvalid", cfg.UnitMs, err)
	}
}

func TestDiff(t *testing.T) {
	from := driver.DefaultSettings()
	to := driver.Settings{Mode: code.ModeError, Line: indicator.Left, Unit: 500 * time.Millisecond}

	changes := Diff(from, to)
	want := []Change{{driver.OptionMode, 1}, {driver.OptionUnit, 500}}
	if len(changes) != len(want) {
		t.Fatalf("Diff = %v, want %v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("change %d = %v, want %v", i, changes[i], want[i])
		}
	}
	if got := Diff(to, to); len(got) != 0 {
		t.Errorf("Diff of equal settings = %v", got)
	}
}

func TestSet(t *testing.T) {
	tests := []struct {
		option, value string
		check         func(*Config) bool
		wantErr       bool
	}{
		{"mode", "error", func(c *Config) bool { return c.Mode == "error" }, false},
		{"0", "1", func(c *Config) bool { return c.Mode == "error" }, false},
		{"mode", "2", nil, true},
		{"line", "right", func(c *Config) bool { return c.Line == "right" }, false},
		{"1", "7", func(c *Config) bool { return c.Line == "right" }, false},
		{"line", "up", nil, true},
		{"unit", "150", func(c *Config) bool { return c.UnitMs == 150 }, false},
		{"unit", "90ms", func(c *Config) bool { return c.UnitMs == 90 }, false},
		{"unit", "0", nil, true},
		{"2", "1", nil, true},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		err := Set(cfg, tt.option, tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Set(%q, %q) error = %v, wantErr %v", tt.option, tt.value, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !tt.check(cfg) {
			t.Errorf("Set(%q, %q) gave %+v", tt.option, tt.value, cfg)
		}
	}
}

func TestWatchReloadsOnSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := Save(path, DefaultConfig()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	if err := Watch(ctx, path, func(c *Config) { got <- c }); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Line = "right"
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-got:
		if c.Line != "right" {
			t.Errorf("reloaded line = %q, want right", c.Line)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after save")
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "mode: error\nunit_ms: 300\ngpio:\n  chip: gpiochip1\n  left_offset: 2\n  right_offset: 3\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "error" || cfg.UnitMs != 300 || cfg.Line != "left" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.GPIO.Chip != "gpiochip1" || cfg.GPIO.RightOffset != 3 {
		t.Errorf("gpio = %+v", cfg.GPIO)
	}

	cfg.Line = "right"
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	saved, _ := os.ReadFile(path)
	if !strings.Contains(string(saved), "line: right") {
		t.Errorf("saved YAML:\n%s", saved)
	}
}
