package telemetry

import (
	"fmt"
	"io"
)

// Analyze runs the whole pipeline over a telemetry log: parse every line,
// anchor on the first ignition, remove idle bias and window the result.
// Errors are prefixed with the stage that failed.
func Analyze(r io.Reader, opts Options, selection []int) (*Result, error) {
	if err := checkOptions(opts, selection); err != nil {
		return nil, err
	}

	records, err := NewParser(len(opts.Channels)).ReadLog(r)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return analyzeRecords(records, opts, selection)
}

// AnalyzeRecords is Analyze for records that have already been parsed.
func AnalyzeRecords(records []RawRecord, opts Options, selection []int) (*Result, error) {
	if err := checkOptions(opts, selection); err != nil {
		return nil, err
	}
	for i, r := range records {
		if len(r.Samples) != len(opts.Channels) {
			return nil, fmt.Errorf("parse: record %d: %w", i, &ParseError{
				Err:    ErrChannelCount,
				Detail: fmt.Sprintf("got %d samples, want %d", len(r.Samples), len(opts.Channels)),
			})
		}
	}
	return analyzeRecords(records, opts, selection)
}

func analyzeRecords(records []RawRecord, opts Options, selection []int) (*Result, error) {
	anchor := FindAnchor(StatesOf(records), opts.FallbackAnchor)

	cal := NewCalibrator(opts.Channels, opts.BiasChannels)
	physical := cal.Convert(records)
	bias, err := cal.ComputeBias(physical, anchor.Index)
	if err != nil {
		return nil, fmt.Errorf("calibrate: %w", err)
	}
	corrected := cal.ApplyBias(physical, bias)

	w := AnalysisWindow(anchor.Index, len(corrected), opts.PreRoll, opts.PostRoll)
	return BuildResult(corrected, anchor, w, bias, opts, selection), nil
}

func checkOptions(opts Options, selection []int) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("options: %w", err)
	}
	for _, idx := range selection {
		if idx < 0 || idx >= len(opts.Channels) {
			return fmt.Errorf("options: selected channel %d out of range [0, %d)", idx, len(opts.Channels))
		}
	}
	return nil
}
