package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/hotfire.report/internal/telemetry"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestDefaultAnalysisConfig(t *testing.T) {
	cfg := DefaultAnalysisConfig()
	require.NoError(t, cfg.Validate())

	if cfg.GetPreRoll() != 250 {
		t.Errorf("GetPreRoll() = %d, want 250", cfg.GetPreRoll())
	}
	if cfg.GetSamplePeriod() != time.Millisecond {
		t.Errorf("GetSamplePeriod() = %s, want 1ms", cfg.GetSamplePeriod())
	}
	assert.Equal(t, []int{1, 2, 4, 3}, cfg.GetPlotChannels())
	assert.Equal(t, "gray", cfg.GetDefaultColor())
	assert.Equal(t, 0.25, cfg.GetAlpha())
}

func TestDefaultsFileMatchesCode(t *testing.T) {
	fromFile := MustLoadDefaultConfig()
	if diff := cmp.Diff(DefaultAnalysisConfig(), fromFile); diff != "" {
		t.Errorf("%s differs from DefaultAnalysisConfig (-code +file):\n%s", DefaultConfigPath, diff)
	}
}

func TestEmptyConfigUsesDefaults(t *testing.T) {
	cfg := EmptyAnalysisConfig()
	require.NoError(t, cfg.Validate())
	if diff := cmp.Diff(telemetry.DefaultOptions(), cfg.ToTelemetry()); diff != "" {
		t.Errorf("ToTelemetry() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int{1, 2, 4, 3}, cfg.GetPlotChannels())
	assert.Equal(t, "green", cfg.GetStateColors()["Idle"])
}

func TestLoadAnalysisConfigJSON(t *testing.T) {
	path := writeConfig(t, "stand.json", `{
  "channels": [
    {"name": "ref", "full_scale": 0},
    {"name": "chamber", "full_scale": 500, "unit": "psi"}
  ],
  "bias_channels": [1],
  "pre_roll": 100,
  "sample_period": "2ms"
}`)

	cfg, err := LoadAnalysisConfig(path)
	require.NoError(t, err)

	opts := cfg.ToTelemetry()
	assert.Len(t, opts.Channels, 2)
	assert.Equal(t, 500.0, opts.Channels[1].FullScale)
	assert.Equal(t, []int{1}, opts.BiasChannels)
	assert.Equal(t, 100, opts.PreRoll)
	assert.Equal(t, telemetry.DefaultPostRoll, opts.PostRoll)
	assert.Equal(t, 2*time.Millisecond, opts.SamplePeriod)
	assert.Nil(t, cfg.GetPlotChannels(), "custom channels plot everything by default")
}

func TestLoadAnalysisConfigYAML(t *testing.T) {
	path := writeConfig(t, "stand.yaml", `
post_roll: 1200
fallback_anchor: 500
plot:
  channels: [3]
  state_colors:
    Purge: "#4040ff"
  alpha: 0.5
`)

	cfg, err := LoadAnalysisConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 1200, cfg.GetPostRoll())
	assert.Equal(t, 500, cfg.GetFallbackAnchor())
	assert.Equal(t, []int{3}, cfg.GetPlotChannels())
	assert.Equal(t, map[string]string{"Purge": "#4040ff"}, cfg.GetStateColors())
	assert.Equal(t, 0.5, cfg.GetAlpha())
	assert.Len(t, cfg.GetChannels(), 5)
}

func TestLoadAnalysisConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"bad extension", "stand.toml", `pre_roll = 1`},
		{"bad json", "stand.json", `{"pre_roll": }`},
		{"bad duration", "stand.json", `{"sample_period": "soon"}`},
		{"negative period", "stand.json", `{"sample_period": "-1ms"}`},
		{"plot channel out of range", "stand.json", `{"plot": {"channels": [7]}}`},
		{"unknown state color", "stand.yaml", "plot:\n  state_colors:\n    Armed: blue\n"},
		{"alpha out of range", "stand.json", `{"plot": {"alpha": 2}}`},
		{"bias channel out of range", "stand.json", `{"bias_channels": [9]}`},
		{"unnamed channel", "stand.json", `{"channels": [{"full_scale": 1}]}`},
		{"negative pre roll", "stand.json", `{"pre_roll": -5}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAnalysisConfig(writeConfig(t, tt.file, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := LoadAnalysisConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
