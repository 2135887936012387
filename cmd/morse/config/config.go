// Package config loads and saves the morselamp configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gigurra/morselamp/cmd/morse/code"
	"github.com/gigurra/morselamp/cmd/morse/driver"
	"github.com/gigurra/morselamp/cmd/morse/indicator"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid config")

// Indicator backends selectable in the config file.
const (
	IndicatorTerminal = "terminal"
	IndicatorLog      = "log"
	IndicatorAudio    = "audio"
	IndicatorGPIO     = "gpio"
)

var Indicators = []string{IndicatorTerminal, IndicatorLog, IndicatorAudio, IndicatorGPIO}

// Config represents the morselamp configuration file structure.
type Config struct {
	Mode      string       `json:"mode" yaml:"mode"`
	Line      string       `json:"line" yaml:"line"`
	UnitMs    int          `json:"unit_ms" yaml:"unit_ms"`
	Indicator string       `json:"indicator" yaml:"indicator"`
	GPIO      *GPIOConfig  `json:"gpio,omitempty" yaml:"gpio,omitempty"`
	Audio     *AudioConfig `json:"audio,omitempty" yaml:"audio,omitempty"`
	LogLevel  string       `json:"log_level,omitempty" yaml:"log_level,omitempty"`
}

// GPIOConfig names the character device and the two line offsets.
type GPIOConfig struct {
	Chip        string `json:"chip" yaml:"chip"`
	LeftOffset  int    `json:"left_offset" yaml:"left_offset"`
	RightOffset int    `json:"right_offset" yaml:"right_offset"`
}

type AudioConfig struct {
	FrequencyHz float64 `json:"frequency_hz" yaml:"frequency_hz"`
}

func DefaultConfig() *Config {
	return &Config{
		Mode:      code.ModeNormal.String(),
		Line:      indicator.Left.String(),
		UnitMs:    int(driver.DefaultUnit / time.Millisecond),
		Indicator: IndicatorTerminal,
		GPIO: &GPIOConfig{
			Chip:        "gpiochip0",
			LeftOffset:  35,
			RightOffset: 47,
		},
		Audio: &AudioConfig{
			FrequencyHz: 700,
		},
		LogLevel: "info",
	}
}

// Dir returns the config directory: $MORSELAMP_HOME, or ~/.morselamp.
func Dir() string {
	if dir := os.Getenv("MORSELAMP_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".morselamp")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.json")
}

// isYAML reports whether path should be read and written as YAML rather
// than JSON.
func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func unmarshal(path string, data []byte, cfg *Config) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, cfg)
	}
	return json.Unmarshal(data, cfg)
}

func marshal(path string, cfg *Config) ([]byte, error) {
	if isYAML(path) {
		return yaml.Marshal(cfg)
	}
	return json.MarshalIndent(cfg, "", "  ")
}

// Load reads the config at path, as YAML for .yaml/.yml files and JSON
// otherwise. A missing file yields the defaults, and missing fields are
// filled in from them.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := unmarshal(path, data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	def := DefaultConfig()
	if cfg.Mode == "" {
		cfg.Mode = def.Mode
	}
	if cfg.Line == "" {
		cfg.Line = def.Line
	}
	if cfg.UnitMs == 0 {
		cfg.UnitMs = def.UnitMs
	}
	if cfg.Indicator == "" {
		cfg.Indicator = def.Indicator
	}
	if cfg.GPIO == nil {
		cfg.GPIO = def.GPIO
	} else if cfg.GPIO.Chip == "" {
		cfg.GPIO.Chip = def.GPIO.Chip
	}
	if cfg.Audio == nil {
		cfg.Audio = def.Audio
	} else if cfg.Audio.FrequencyHz == 0 {
		cfg.Audio.FrequencyHz = def.Audio.FrequencyHz
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}

	return &cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := marshal(path, cfg)
	if err != nil {
		return err
	}

	// Write-then-rename so watchers never see a half written file.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Validate reports every problem in cfg. It never modifies cfg.
func Validate(cfg *Config) error {
	var errs []error
	if _, err := code.ParseMode(cfg.Mode); err != nil {
		errs = append(errs, err)
	}
	if _, err := indicator.ParseLine(cfg.Line); err != nil {
		errs = append(errs, err)
	}
	if cfg.UnitMs <= 0 || int64(cfg.UnitMs) > driver.MaxUnit.Milliseconds() {
		errs = append(errs, fmt.Errorf("unit_ms must be in 1..%d, got %d", driver.MaxUnit.Milliseconds(), cfg.UnitMs))
	}
	if !lo.Contains(Indicators, cfg.Indicator) {
		errs = append(errs, fmt.Errorf("unknown indicator %q (want one of %s)", cfg.Indicator, strings.Join(Indicators, ", ")))
	}
	if cfg.GPIO != nil {
		if cfg.GPIO.LeftOffset < 0 || cfg.GPIO.RightOffset < 0 {
			errs = append(errs, fmt.Errorf("gpio offsets must not be negative"))
		}
		if cfg.GPIO.LeftOffset == cfg.GPIO.RightOffset {
			errs = append(errs, fmt.Errorf("gpio left and right offsets are both %d", cfg.GPIO.LeftOffset))
		}
	}
	if cfg.Audio != nil && cfg.Audio.FrequencyHz <= 0 {
		errs = append(errs, fmt.Errorf("audio frequency must be positive, got %v", cfg.Audio.FrequencyHz))
	}
	if cfg.LogLevel != "" {
		if _, err := ParseLevel(cfg.LogLevel); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Settings converts the playback part of cfg into driver settings.
func (c *Config) Settings() (driver.Settings, error) {
	mode, err := code.ParseMode(c.Mode)
	if err != nil {
		return driver.Settings{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	line, err := indicator.ParseLine(c.Line)
	if err != nil {
		return driver.Settings{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if int64(c.UnitMs) > driver.MaxUnit.Milliseconds() {
		return driver.Settings{}, fmt.Errorf("%w: unit_ms %d is above %v", ErrInvalid, c.UnitMs, driver.MaxUnit)
	}
	s := driver.Settings{
		Mode: mode,
		Line: line,
		Unit: time.Duration(c.UnitMs) * time.Millisecond,
	}
	if err := s.Validate(); err != nil {
		return driver.Settings{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return s, nil
}

// Change is one driver option that differs between two configs.
type Change struct {
	Option driver.Option
	Value  int
}

func (c Change) String() string {
	return fmt.Sprintf("%s=%d", c.Option, c.Value)
}

// Diff lists the driver options that must be configured to go from one
// set of settings to another, in option order.
func Diff(from, to driver.Settings) []Change {
	var changes []Change
	if from.Mode != to.Mode {
		changes = append(changes, Change{driver.OptionMode, int(to.Mode)})
	}
	if from.Line != to.Line {
		changes = append(changes, Change{driver.OptionLine, int(to.Line)})
	}
	if from.Unit != to.Unit {
		changes = append(changes, Change{driver.OptionUnit, int(to.Unit / time.Millisecond)})
	}
	return changes
}

// Set updates one driver option of cfg from its textual form. Names and
// numeric ids are both accepted, e.g. ("mode", "error") or ("1", "1").
func Set(cfg *Config, option, value string) error {
	opt, err := driver.ParseOption(option)
	if err != nil {
		return err
	}
	n, err := driver.ParseValue(opt, value)
	if err != nil {
		return err
	}
	switch opt {
	case driver.OptionMode:
		cfg.Mode = code.Mode(n).String()
	case driver.OptionLine:
		cfg.Line = lo.Ternary(n != 0, indicator.Right, indicator.Left).String()
	case driver.OptionUnit:
		cfg.UnitMs = n
	}
	return nil
}
