package common

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gigurra/morselamp/cmd/morse/config"
	"github.com/gigurra/morselamp/cmd/morse/indicator"
)

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	file := config.DefaultConfig()
	file.UnitMs = 400
	file.Line = "right"
	if err := config.Save(path, file); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		overrides Overrides
		wantLine  string
		wantMode  string
		wantUnit  int
	}{
		{"file values", Overrides{}, "right", "normal", 400},
		{"line flag", Overrides{Line: "left"}, "left", "normal", 400},
		{"mode and unit flags", Overrides{Mode: "error", UnitMs: 50}, "right", "error", 50},
	}

	for _, tt := range tests {
		cfg, err := LoadConfig(path, tt.overrides)
		if err != nil {
			t.Errorf("%s: LoadConfig: %v", tt.name, err)
			continue
		}
		if cfg.Line != tt.wantLine || cfg.Mode != tt.wantMode || cfg.UnitMs != tt.wantUnit {
			t.Errorf("%s: got line=%s mode=%s unit=%d", tt.name, cfg.Line, cfg.Mode, cfg.UnitMs)
		}
	}
}

func TestLoadConfigRejectsBadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	bad := []Overrides{
		{Mode: "loud"},
		{Line: "up"},
		{UnitMs: -3},
		{Indicator: "smoke"},
	}
	for _, o := range bad {
		if _, err := LoadConfig(path, o); err == nil {
			t.Errorf("LoadConfig(%+v) should fail", o)
		}
	}
}

func TestNewIndicator(t *testing.T) {
	cfg := config.DefaultConfig()
	var buf bytes.Buffer

	ind, err := NewIndicator(cfg, &buf)
	if err != nil {
		t.Fatalf("NewIndicator(terminal): %v", err)
	}
	if _, ok := ind.(*indicator.Terminal); !ok {
		t.Errorf("terminal indicator is %T", ind)
	}

	cfg.Indicator = config.IndicatorLog
	ind, err = NewIndicator(cfg, &buf)
	if err != nil {
		t.Fatalf("NewIndicator(log): %v", err)
	}
	if _, ok := ind.(*indicator.Log); !ok {
		t.Errorf("log indicator is %T", ind)
	}

	cfg.Indicator = "smoke"
	if _, err := NewIndicator(cfg, &buf); err == nil {
		t.Error("unknown indicator should fail")
	}
}

func TestFollowConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := config.Save(path, config.DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path, Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	dev, err := NewDevice(cfg, indicator.NewPanel())
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := FollowConfig(ctx, path, dev); err != nil {
		t.Fatalf("FollowConfig: %v", err)
	}

	cfg.Line = "right"
	if err := config.Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for dev.Settings().Line != indicator.Right {
		if time.Now().After(deadline) {
			t.Fatal("device did not follow the config change")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSetupLoggingRejectsUnknownLevel(t *testing.T) {
	if _, err := SetupLogging("chatty", false); err == nil {
		t.Error("unknown level should fail")
	}
	closeLog, err := SetupLogging("debug", false)
	if err != nil {
		t.Fatalf("SetupLogging(debug): %v", err)
	}
	closeLog()
}

func TestSetupLoggingToFile(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	closeLog, err := SetupLogging("info", true)
	if err != nil {
		t.Fatalf("SetupLogging: %v", err)
	}
	slog.Info("before close")
	closeLog()
	slog.Info("after close")

	data, err := os.ReadFile(LogPath())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "before close") {
		t.Errorf("log file = %q, want the record logged before close", data)
	}
	if strings.Contains(string(data), "after close") {
		t.Errorf("log file = %q, still written after close", data)
	}
}

func TestLogPathHonorsXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)
	if got, want := LogPath(), filepath.Join(dir, "morselamp", "morselamp.log"); got != want {
		t.Errorf("LogPath() = %q, want %q", got, want)
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		words []string
		want  string
	}{
		{[]string{"sos"}, "SOS"},
		{[]string{"ab", "cd"}, "AB CD"},
		{nil, ""},
		{[]string{"hi!"}, "HI!"},
	}
	for _, tt := range tests {
		if got := Message(tt.words); got != tt.want {
			t.Errorf("Message(%q) = %q, want %q", tt.words, got, tt.want)
		}
	}
}
