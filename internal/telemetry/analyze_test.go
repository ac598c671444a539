package telemetry

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeZeroesIdleBaseline(t *testing.T) {
	log := strings.Join([]string{
		"[0,0,0,398,0] igniter_state: Idle,",
		"[0,0,0,398,0] igniter_state: Idle,",
		"[0,0,0,398,0] igniter_state: Idle,",
		"[0,0,0,398,0] igniter_state: Prefire,",
	}, "\n")

	res, err := Analyze(strings.NewReader(log), DefaultOptions(), nil)
	require.NoError(t, err)

	assert.Equal(t, Anchor{Index: 3}, res.Anchor)
	assert.Equal(t, Window{Start: 0, End: 4}, res.Window)
	assert.Equal(t, Physical(398, 200), res.Bias.Values[3])
	assert.Equal(t, 3, res.Bias.Samples)

	chamber, ok := res.Channel(3)
	require.True(t, ok)
	for i := 0; i < 3; i++ {
		assert.Equal(t, 0.0, chamber.Values[i], "idle record %d", i)
	}

	// Tank is not bias corrected.
	tank, _ := res.Channel(4)
	assert.Equal(t, Physical(0, 300), tank.Values[0])

	assert.InDelta(t, -0.003, res.Time[0], 1e-12)
	assert.Equal(t, []PhaseSegment{{Idle, 0, 3}, {Prefire, 3, 4}}, res.Segments)
}

func TestAnalyzeSimulatedRun(t *testing.T) {
	lines := Simulate(SimConfig{
		IdleRecords:  1000,
		TrailingIdle: 500,
		Baseline:     []int{0, 420, 410, 400, 2000},
		Delta: map[State][]int{
			Prefire: {0, 0, 600, 100, 0},
			Firing:  {0, 1500, 1200, 1800, -100},
			Purge:   {0, 200, 50, 20, 0},
		},
	})
	require.Len(t, lines, 1000+250+1000+2000+500)

	res, err := Analyze(strings.NewReader(strings.Join(lines, "\n")), DefaultOptions(), []int{1, 2, 4, 3})
	require.NoError(t, err)

	assert.Equal(t, 1000, res.Anchor.Index)
	assert.False(t, res.Anchor.Fallback)
	assert.Equal(t, Window{Start: 750, End: 4500}, res.Window)
	assert.Len(t, res.Time, 3750)
	assert.InDelta(t, -0.25, res.Time[0], 1e-12)

	var states []State
	for _, s := range res.Segments {
		states = append(states, s.State)
	}
	assert.Equal(t, []State{Idle, Prefire, Firing, Purge, Idle}, states)
	assert.Equal(t, 250, res.Segments[0].End)

	chamber, _ := res.Channel(3)
	assert.Equal(t, 0.0, chamber.Values[0])
	assert.InDelta(t, Physical(2200, 200)-Physical(400, 200), chamber.Values[600], 1e-9)

	sum := res.Summaries()
	require.Len(t, sum, 4)
	assert.Equal(t, "chamber", sum[3].Name)
	assert.InDelta(t, 0.250, sum[3].PeakTime, 1e-9)
}

func TestAnalyzeFallbackAnchor(t *testing.T) {
	var lines []string
	for i := 0; i < 3000; i++ {
		lines = append(lines, FormatLine([]int{0, 400, 400, 400, 400}, Idle))
	}
	res, err := Analyze(strings.NewReader(strings.Join(lines, "\n")), DefaultOptions(), nil)
	require.NoError(t, err)

	assert.True(t, res.Anchor.Fallback)
	assert.Equal(t, DefaultFallbackAnchor, res.Anchor.Index)
	assert.Equal(t, Window{Start: 1750, End: 3000}, res.Window)
	assert.Equal(t, 2000, res.Bias.Samples)
}

func TestAnalyzeStageErrors(t *testing.T) {
	_, err := Analyze(strings.NewReader("[0,0,0] igniter_state: Idle,"), DefaultOptions(), nil)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "parse: line 1: "), err.Error())
	assert.ErrorIs(t, err, ErrChannelCount)

	log := strings.Join([]string{
		FormatLine([]int{0, 0, 0, 0, 0}, Purge),
		FormatLine([]int{0, 0, 0, 0, 0}, Prefire),
	}, "\n")
	_, err = Analyze(strings.NewReader(log), DefaultOptions(), nil)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "calibrate: "), err.Error())
	var ce *CalibrationError
	assert.True(t, errors.As(err, &ce))

	_, err = Analyze(strings.NewReader(""), DefaultOptions(), []int{9})
	assert.ErrorContains(t, err, "options: selected channel 9")
}

func TestAnalyzeRecordsChecksWidth(t *testing.T) {
	_, err := AnalyzeRecords([]RawRecord{{Samples: []int{1}, State: Idle}}, DefaultOptions(), nil)
	assert.ErrorIs(t, err, ErrChannelCount)
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())

	bad := []func(*Options){
		func(o *Options) { o.Channels = nil },
		func(o *Options) { o.BiasChannels = []int{5} },
		func(o *Options) { o.BiasChannels = []int{1, 1} },
		func(o *Options) { o.PreRoll = -1 },
		func(o *Options) { o.FallbackAnchor = -1 },
		func(o *Options) { o.SamplePeriod = 0 },
	}
	for i, mutate := range bad {
		o := DefaultOptions()
		mutate(&o)
		assert.Error(t, o.Validate(), "case %d", i)
	}
}
