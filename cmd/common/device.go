package common

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gigurra/morselamp/cmd/morse/config"
	"github.com/gigurra/morselamp/cmd/morse/driver"
	"github.com/gigurra/morselamp/cmd/morse/indicator"
)

// Overrides are command line values that take precedence over the config
// file. Empty strings and zero leave the file value alone.
type Overrides struct {
	Mode      string
	Line      string
	UnitMs    int
	Indicator string
}

// LoadConfig loads the config at path (or the default path) and applies o.
func LoadConfig(path string, o Overrides) (*config.Config, error) {
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if o.Mode != "" {
		if err := config.Set(cfg, "mode", o.Mode); err != nil {
			return nil, err
		}
	}
	if o.Line != "" {
		if err := config.Set(cfg, "line", o.Line); err != nil {
			return nil, err
		}
	}
	if o.UnitMs != 0 {
		if err := config.Set(cfg, "unit", fmt.Sprint(o.UnitMs)); err != nil {
			return nil, err
		}
	}
	if o.Indicator != "" {
		cfg.Indicator = strings.ToLower(o.Indicator)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewIndicator opens the backend selected by cfg. Terminal output goes to out.
func NewIndicator(cfg *config.Config, out io.Writer) (indicator.Indicator, error) {
	switch cfg.Indicator {
	case config.IndicatorTerminal, "":
		return indicator.NewTerminal(out), nil
	case config.IndicatorLog:
		return indicator.NewLog(slog.Default()), nil
	case config.IndicatorAudio:
		a, err := indicator.NewAudio(cfg.Audio.FrequencyHz)
		if err != nil {
			return nil, err
		}
		return a, nil
	case config.IndicatorGPIO:
		g, err := indicator.NewGPIO(cfg.GPIO.Chip, cfg.GPIO.LeftOffset, cfg.GPIO.RightOffset)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown indicator %q", cfg.Indicator)
	}
}

// NewDevice builds a device from cfg driving ind, without starting it.
func NewDevice(cfg *config.Config, ind indicator.Indicator) (*driver.Device, error) {
	settings, err := cfg.Settings()
	if err != nil {
		return nil, err
	}
	return driver.New(ind, settings, driver.WithLogger(slog.Default()))
}

// FollowConfig reconfigures dev whenever the config file at path changes.
// Only options that actually changed are applied.
func FollowConfig(ctx context.Context, path string, dev *driver.Device) error {
	if path == "" {
		path = config.Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return config.Watch(ctx, path, func(cfg *config.Config) {
		settings, err := cfg.Settings()
		if err != nil {
			slog.Warn("ignoring config change", "error", err)
			return
		}
		for _, change := range config.Diff(dev.Settings(), settings) {
			if err := dev.Configure(change.Option, change.Value); err != nil {
				slog.Warn("config change rejected", "change", change, "error", err)
				continue
			}
			slog.Info("applied config change", "change", change)
		}
	})
}
