package configure

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gigurra/morselamp/cmd/morse/config"
)

func TestConfigureSavesOption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	tests := []struct {
		option, value string
		check         func(*config.Config) bool
	}{
		{"line", "right", func(c *config.Config) bool { return c.Line == "right" }},
		{"mode", "1", func(c *config.Config) bool { return c.Mode == "error" }},
		{"3", "1.5s", func(c *config.Config) bool { return c.UnitMs == 1500 }},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		if err := Run(&Params{Option: tt.option, Value: tt.value, Config: path}, &out); err != nil {
			t.Fatalf("configure %s %s: %v", tt.option, tt.value, err)
		}
		cfg, err := config.Load(path)
		if err != nil {
			t.Fatal(err)
		}
		if !tt.check(cfg) {
			t.Errorf("configure %s %s saved %+v", tt.option, tt.value, cfg)
		}
	}

	// Earlier options survive later ones.
	cfg, _ := config.Load(path)
	if cfg.Line != "right" || cfg.Mode != "error" {
		t.Errorf("final config = %+v", cfg)
	}
}

func TestConfigureRejectsBadValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	bad := []Params{
		{Option: "unit", Value: "0"},
		{Option: "speed", Value: "1"},
		{Option: "mode"},
	}
	for _, p := range bad {
		p.Config = path
		if err := Run(&p, &bytes.Buffer{}); err == nil {
			t.Errorf("configure %q %q should fail", p.Option, p.Value)
		}
	}
}

func TestConfigureShowsConfig(t *testing.T) {
	var out bytes.Buffer
	path := filepath.Join(t.TempDir(), "config.json")
	if err := Run(&Params{Config: path}, &out); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"mode", "normal", "gpiochip0 left=35 right=47", "700Hz"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}
