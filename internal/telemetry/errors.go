package telemetry

import (
	"errors"
	"fmt"
)

var (
	ErrNoSamples      = errors.New("no bracketed sample list")
	ErrBadSample      = errors.New("sample is not a number")
	ErrChannelCount   = errors.New("channel count mismatch")
	ErrNoState        = errors.New("missing igniter_state field")
	ErrUnknownState   = errors.New("unknown igniter state")
	ErrNoIdleBaseline = errors.New("no idle samples before anchor")
)

// ParseError reports a log line that does not follow the telemetry grammar.
// Line is 1-based and zero when the line was parsed on its own.
type ParseError struct {
	Line   int
	Text   string
	Detail string
	Err    error
}

func (e *ParseError) Error() string {
	msg := e.Err.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// CalibrationError reports that no bias baseline could be measured.
type CalibrationError struct {
	Anchor int
}

func (e *CalibrationError) Error() string {
	return fmt.Sprintf("%s (anchor %d)", ErrNoIdleBaseline, e.Anchor)
}

func (e *CalibrationError) Unwrap() error { return ErrNoIdleBaseline }
