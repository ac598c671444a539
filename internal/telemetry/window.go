package telemetry

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PhaseSegment is a maximal run of one state inside the window. Start and
// End are half-open indices into the windowed series.
type PhaseSegment struct {
	State State
	Start int
	End   int
}

// SegmentSpan is a PhaseSegment expressed on the time axis, in seconds.
type SegmentSpan struct {
	State State
	Start float64
	End   float64
}

// ChannelSeries is the windowed, calibrated signal of one channel.
type ChannelSeries struct {
	Index  int
	Name   string
	Unit   string
	Values []float64
	Biased bool
	Bias   float64
}

// ChannelSummary describes a channel over the analysis window.
type ChannelSummary struct {
	Name     string
	Unit     string
	Peak     float64
	PeakTime float64
	Min      float64
	Mean     float64
}

// Result is the calibrated, time-aligned and phase-annotated output.
type Result struct {
	Records  int
	Anchor   Anchor
	Window   Window
	Bias     Bias
	Time     []float64
	Channels []ChannelSeries
	Segments []PhaseSegment

	step float64
}

// TimeAxis returns the time in seconds of each record in w, relative to the
// anchor. For an unclamped window it starts at -preRoll*period.
func TimeAxis(w Window, anchor int, period time.Duration) []float64 {
	step := period.Seconds()
	t := make([]float64, w.Len())
	for i := range t {
		t[i] = float64(w.Start+i-anchor) * step
	}
	return t
}

// Segments splits a state sequence into contiguous runs of equal state.
func Segments(states []State) []PhaseSegment {
	if len(states) == 0 {
		return nil
	}
	var segs []PhaseSegment
	cur := PhaseSegment{State: states[0], Start: 0}
	for i := 1; i < len(states); i++ {
		if states[i] != cur.State {
			cur.End = i
			segs = append(segs, cur)
			cur = PhaseSegment{State: states[i], Start: i}
		}
	}
	cur.End = len(states)
	return append(segs, cur)
}

// BuildResult slices calibrated records to the window and assembles the
// output for the requested channels, in the requested order. A nil selection
// keeps every channel.
func BuildResult(records []CalibratedRecord, anchor Anchor, w Window, bias Bias, opts Options, selection []int) *Result {
	if selection == nil {
		selection = make([]int, len(opts.Channels))
		for i := range selection {
			selection[i] = i
		}
	}

	biased := make(map[int]bool, len(opts.BiasChannels))
	for _, idx := range opts.BiasChannels {
		biased[idx] = true
	}

	res := &Result{
		Records: len(records),
		Anchor:  anchor,
		Window:  w,
		Bias:    bias,
		Time:    TimeAxis(w, anchor.Index, opts.SamplePeriod),
		step:    opts.SamplePeriod.Seconds(),
	}

	windowed := records[w.Start:w.End]
	for _, idx := range selection {
		ch := opts.Channels[idx]
		vals := make([]float64, len(windowed))
		for i, r := range windowed {
			vals[i] = r.Values[idx]
		}
		res.Channels = append(res.Channels, ChannelSeries{
			Index:  idx,
			Name:   ch.Name,
			Unit:   ch.Unit,
			Values: vals,
			Biased: biased[idx],
			Bias:   bias.Values[idx],
		})
	}

	states := make([]State, len(windowed))
	for i, r := range windowed {
		states[i] = r.State
	}
	res.Segments = Segments(states)

	return res
}

// TimeAt returns the time of windowed index i. Indices at or past the end of
// the window are extrapolated so that a segment's End has a time too.
func (r *Result) TimeAt(i int) float64 {
	return float64(r.Window.Start+i-r.Anchor.Index) * r.step
}

// SegmentTimes expresses the phase segments on the time axis.
func (r *Result) SegmentTimes() []SegmentSpan {
	spans := make([]SegmentSpan, len(r.Segments))
	for i, s := range r.Segments {
		spans[i] = SegmentSpan{State: s.State, Start: r.TimeAt(s.Start), End: r.TimeAt(s.End)}
	}
	return spans
}

// Channel returns the series for the given channel index.
func (r *Result) Channel(index int) (ChannelSeries, bool) {
	for _, c := range r.Channels {
		if c.Index == index {
			return c, true
		}
	}
	return ChannelSeries{}, false
}

// Summaries reports peak, minimum and mean of each output channel over the window.
func (r *Result) Summaries() []ChannelSummary {
	out := make([]ChannelSummary, 0, len(r.Channels))
	for _, c := range r.Channels {
		if len(c.Values) == 0 {
			continue
		}
		peak := floats.MaxIdx(c.Values)
		out = append(out, ChannelSummary{
			Name:     c.Name,
			Unit:     c.Unit,
			Peak:     c.Values[peak],
			PeakTime: r.Time[peak],
			Min:      floats.Min(c.Values),
			Mean:     stat.Mean(c.Values, nil),
		})
	}
	return out
}
