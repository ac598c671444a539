package telemetry

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	p := NewParser(5)

	tests := []struct {
		name  string
		line  string
		want  RawRecord
		isErr error
	}{
		{
			name: "minimal grammar",
			line: "[0,0,0,398,0] igniter_state: Idle,",
			want: RawRecord{Samples: []int{0, 0, 0, 398, 0}, State: Idle},
		},
		{
			name: "controller debug dump",
			line: "ECUTelemtryData { ecu_data: ECUDataFrame { time: 0.0, igniter_state: Prefire, sensor_states: [1, 2, 3, 398, 4095], valve_states: [0, 0, 255, 0] }, avg_loop_time: 0.00009406 }",
			want: RawRecord{Samples: []int{1, 2, 3, 398, 4095}, State: Prefire},
		},
		{
			name: "valve list before sensor list",
			line: "ECUDataFrame { time: 1.0, igniter_state: Firing, valve_states: [0, 0, 255, 255, 0], sensor_states: [9, 8, 7, 6, 5] }",
			want: RawRecord{Samples: []int{9, 8, 7, 6, 5}, State: Firing},
		},
		{
			name: "out of range counts pass through",
			line: "[5000,-1,0,0,0] igniter_state: Purge,",
			want: RawRecord{Samples: []int{5000, -1, 0, 0, 0}, State: Purge},
		},
		{name: "no list", line: "igniter_state: Idle,", isErr: ErrNoSamples},
		{name: "unterminated list", line: "[1,2,3,4,5 igniter_state: Idle,", isErr: ErrNoSamples},
		{name: "too few", line: "[1,2,3,4] igniter_state: Idle,", isErr: ErrChannelCount},
		{name: "too many", line: "[1,2,3,4,5,6] igniter_state: Idle,", isErr: ErrChannelCount},
		{name: "empty list", line: "[] igniter_state: Idle,", isErr: ErrChannelCount},
		{name: "not a number", line: "[1,2,x,4,5] igniter_state: Idle,", isErr: ErrBadSample},
		{name: "no state field", line: "[1,2,3,4,5]", isErr: ErrNoState},
		{name: "state not terminated", line: "[1,2,3,4,5] igniter_state: Idle", isErr: ErrNoState},
		{name: "unknown state", line: "[1,2,3,4,5] igniter_state: Armed,", isErr: ErrUnknownState},
		{name: "empty state label", line: "[1,2,3,4,5] igniter_state: ,", isErr: ErrNoState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse(tt.line)
			if tt.isErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.isErr)
				var pe *ParseError
				require.True(t, errors.As(err, &pe))
				assert.Equal(t, tt.line, pe.Text)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSuggestsState(t *testing.T) {
	_, err := NewParser(1).Parse("[1] igniter_state: Prefir,")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "Prefire"`)
}

func TestFormatLineRoundTrip(t *testing.T) {
	cases := [][]int{
		{0},
		{0, 0, 0, 398, 0},
		{4095, 1, 2048, 17, 3000, 12, 99},
	}
	for _, samples := range cases {
		for _, st := range States {
			line := FormatLine(samples, st)
			got, err := NewParser(len(samples)).Parse(line)
			require.NoError(t, err, line)
			assert.Equal(t, samples, got.Samples)
			assert.Equal(t, st, got.State)
		}
	}
}

func TestReadLog(t *testing.T) {
	log := strings.Join([]string{
		FormatLine([]int{1, 2}, Idle),
		"",
		FormatLine([]int{3, 4}, Prefire),
	}, "\n")

	recs, err := NewParser(2).ReadLog(strings.NewReader(log))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, Prefire, recs[1].State)
}

func TestReadLogReportsLine(t *testing.T) {
	log := strings.Join([]string{
		FormatLine([]int{1, 2}, Idle),
		FormatLine([]int{1, 2}, Idle),
		"[1,2,3] igniter_state: Idle,",
	}, "\n")

	_, err := NewParser(2).ReadLog(strings.NewReader(log))
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 3, pe.Line)
	assert.True(t, strings.HasPrefix(err.Error(), "line 3: "))
}

func TestStateText(t *testing.T) {
	for _, st := range States {
		b, err := st.MarshalText()
		require.NoError(t, err)
		var back State
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, st, back)
	}
	var s State
	assert.Error(t, s.UnmarshalText([]byte("idle")))
	assert.Equal(t, "State(9)", State(9).String())
}
