package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/hotfire.report/internal/telemetry"
)

// DefaultConfigPath is the path to the canonical analysis defaults file.
const DefaultConfigPath = "config/analysis.defaults.json"

const maxFileSize = 1 * 1024 * 1024 // 1MB

// ChannelConfig describes one analog input channel.
type ChannelConfig struct {
	Name      string  `json:"name" yaml:"name"`
	FullScale float64 `json:"full_scale" yaml:"full_scale"`
	Unit      string  `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// PlotConfig controls the rendered output. It never affects the analysis.
type PlotConfig struct {
	// Channels selects and orders the plotted channels by index.
	Channels     []int             `json:"channels,omitempty" yaml:"channels,omitempty"`
	StateColors  map[string]string `json:"state_colors,omitempty" yaml:"state_colors,omitempty"`
	DefaultColor *string           `json:"default_color,omitempty" yaml:"default_color,omitempty"`
	Alpha        *float64          `json:"alpha,omitempty" yaml:"alpha,omitempty"`
}

// AnalysisConfig is the root configuration of a hot-fire analysis. Scalar
// fields are pointers so that a partial file falls back to the defaults.
type AnalysisConfig struct {
	Channels     []ChannelConfig `json:"channels,omitempty" yaml:"channels,omitempty"`
	BiasChannels []int           `json:"bias_channels,omitempty" yaml:"bias_channels,omitempty"`

	PreRoll        *int    `json:"pre_roll,omitempty" yaml:"pre_roll,omitempty"`
	PostRoll       *int    `json:"post_roll,omitempty" yaml:"post_roll,omitempty"`
	FallbackAnchor *int    `json:"fallback_anchor,omitempty" yaml:"fallback_anchor,omitempty"`
	SamplePeriod   *string `json:"sample_period,omitempty" yaml:"sample_period,omitempty"` // duration string like "1ms"

	Plot PlotConfig `json:"plot" yaml:"plot"`
}

func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }
func ptrFloat64(v float64) *float64 { return &v }

// DefaultAnalysisConfig returns the igniter stand configuration. It matches
// the contents of DefaultConfigPath.
func DefaultAnalysisConfig() *AnalysisConfig {
	var chans []ChannelConfig
	for _, c := range telemetry.DefaultChannels() {
		chans = append(chans, ChannelConfig{Name: c.Name, FullScale: c.FullScale, Unit: c.Unit})
	}
	return &AnalysisConfig{
		Channels:       chans,
		BiasChannels:   []int{0, 1, 2, 3},
		PreRoll:        ptrInt(telemetry.DefaultPreRoll),
		PostRoll:       ptrInt(telemetry.DefaultPostRoll),
		FallbackAnchor: ptrInt(telemetry.DefaultFallbackAnchor),
		SamplePeriod:   ptrString("1ms"),
		Plot: PlotConfig{
			Channels: []int{1, 2, 4, 3},
			StateColors: map[string]string{
				"Idle":    "green",
				"Prefire": "orange",
				"Firing":  "red",
			},
			DefaultColor: ptrString("gray"),
			Alpha:        ptrFloat64(0.25),
		},
	}
}

// EmptyAnalysisConfig returns an AnalysisConfig with every field unset.
func EmptyAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// LoadAnalysisConfig loads an AnalysisConfig from a .json, .yaml or .yml
// file. Omitted fields keep their defaults, so partial configs are safe.
func LoadAnalysisConfig(path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse into an empty config. The Get* methods provide fallback
	// defaults for any fields not specified in the file.
	cfg := EmptyAnalysisConfig()
	if ext == ".json" {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", filepath.Base(cleanPath), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching up from the
// current directory. Panics if the file cannot be loaded; intended for tests.
func MustLoadDefaultConfig() *AnalysisConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from cmd/tools/<tool>/
	}
	for _, path := range candidates {
		if cfg, err := LoadAnalysisConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *AnalysisConfig) Validate() error {
	chans := c.GetChannels()
	for i, ch := range chans {
		if ch.Name == "" {
			return fmt.Errorf("channel %d has no name", i)
		}
	}

	if c.SamplePeriod != nil && *c.SamplePeriod != "" {
		d, err := time.ParseDuration(*c.SamplePeriod)
		if err != nil {
			return fmt.Errorf("invalid sample_period '%s': %w", *c.SamplePeriod, err)
		}
		if d <= 0 {
			return fmt.Errorf("sample_period must be positive, got %s", d)
		}
	}

	for _, idx := range c.Plot.Channels {
		if idx < 0 || idx >= len(chans) {
			return fmt.Errorf("plot channel %d out of range [0, %d)", idx, len(chans))
		}
	}
	for name := range c.Plot.StateColors {
		if _, ok := telemetry.ParseState(name); !ok {
			return fmt.Errorf("state_colors: unknown state %q", name)
		}
	}
	if a := c.GetAlpha(); a < 0 || a > 1 {
		return fmt.Errorf("plot alpha must be between 0 and 1, got %f", a)
	}

	return c.ToTelemetry().Validate()
}

// GetChannels returns the configured channels, or the igniter stand wiring
// when none are configured.
func (c *AnalysisConfig) GetChannels() []ChannelConfig {
	if len(c.Channels) == 0 {
		return DefaultAnalysisConfig().Channels
	}
	return c.Channels
}

// GetBiasChannels returns the bias-corrected channel indices. The stand
// default applies only when the stand channels are in use.
func (c *AnalysisConfig) GetBiasChannels() []int {
	if c.BiasChannels == nil && len(c.Channels) == 0 {
		return DefaultAnalysisConfig().BiasChannels
	}
	return c.BiasChannels
}

// GetPreRoll returns the pre_roll value or the default.
func (c *AnalysisConfig) GetPreRoll() int {
	if c.PreRoll == nil {
		return telemetry.DefaultPreRoll
	}
	return *c.PreRoll
}

// GetPostRoll returns the post_roll value or the default.
func (c *AnalysisConfig) GetPostRoll() int {
	if c.PostRoll == nil {
		return telemetry.DefaultPostRoll
	}
	return *c.PostRoll
}

// GetFallbackAnchor returns the fallback_anchor value or the default.
func (c *AnalysisConfig) GetFallbackAnchor() int {
	if c.FallbackAnchor == nil {
		return telemetry.DefaultFallbackAnchor
	}
	return *c.FallbackAnchor
}

// GetSamplePeriod parses and returns the SamplePeriod as a time.Duration.
func (c *AnalysisConfig) GetSamplePeriod() time.Duration {
	if c.SamplePeriod == nil || *c.SamplePeriod == "" {
		return telemetry.DefaultSamplePeriod
	}
	d, err := time.ParseDuration(*c.SamplePeriod)
	if err != nil {
		return telemetry.DefaultSamplePeriod
	}
	return d
}

// GetDefaultColor returns the shading color for unmapped states.
func (c *AnalysisConfig) GetDefaultColor() string {
	if c.Plot.DefaultColor == nil || *c.Plot.DefaultColor == "" {
		return "gray"
	}
	return *c.Plot.DefaultColor
}

// GetAlpha returns the phase shading opacity.
func (c *AnalysisConfig) GetAlpha() float64 {
	if c.Plot.Alpha == nil {
		return 0.25
	}
	return *c.Plot.Alpha
}

// GetStateColors returns the state to color mapping for phase shading.
func (c *AnalysisConfig) GetStateColors() map[string]string {
	if c.Plot.StateColors == nil {
		return DefaultAnalysisConfig().Plot.StateColors
	}
	return c.Plot.StateColors
}

// ToTelemetry converts the configuration into explicit analysis options.
func (c *AnalysisConfig) ToTelemetry() telemetry.Options {
	cfgChans := c.GetChannels()
	chans := make([]telemetry.Channel, len(cfgChans))
	for i, ch := range cfgChans {
		chans[i] = telemetry.Channel{Name: ch.Name, FullScale: ch.FullScale, Unit: ch.Unit}
	}
	return telemetry.Options{
		Channels:       chans,
		BiasChannels:   c.GetBiasChannels(),
		PreRoll:        c.GetPreRoll(),
		PostRoll:       c.GetPostRoll(),
		FallbackAnchor: c.GetFallbackAnchor(),
		SamplePeriod:   c.GetSamplePeriod(),
	}
}

// GetPlotChannels returns the channel selection for output, or nil for all.
func (c *AnalysisConfig) GetPlotChannels() []int {
	if len(c.Plot.Channels) == 0 && len(c.Channels) == 0 {
		return DefaultAnalysisConfig().Plot.Channels
	}
	if len(c.Plot.Channels) == 0 {
		return nil
	}
	return c.Plot.Channels
}
