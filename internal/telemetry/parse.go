package telemetry

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	stateField   = "igniter_state: "
	sensorsField = "sensor_states: ["

	maxLineBytes = 1 << 20
)

// RawRecord is one parsed log line: ADC counts per channel plus the igniter state.
type RawRecord struct {
	Samples []int
	State   State
}

// Parser turns telemetry log lines into RawRecords for a fixed channel count.
type Parser struct {
	channels int
}

// NewParser returns a parser expecting exactly channels samples per line.
func NewParser(channels int) *Parser {
	return &Parser{channels: channels}
}

// Parse decodes a single line. The line must contain a bracketed list of
// integer samples and an "igniter_state: <Name>," field. When the line is a
// full controller dump, the list labelled sensor_states is used.
func (p *Parser) Parse(line string) (RawRecord, error) {
	samples, err := p.parseSamples(line)
	if err != nil {
		return RawRecord{}, err
	}

	state, err := parseStateField(line)
	if err != nil {
		return RawRecord{}, err
	}

	return RawRecord{Samples: samples, State: state}, nil
}

func (p *Parser) parseSamples(line string) ([]int, error) {
	open := strings.Index(line, sensorsField)
	if open >= 0 {
		open += len(sensorsField) - 1
	} else {
		open = strings.IndexByte(line, '[')
	}
	if open < 0 {
		return nil, &ParseError{Text: line, Err: ErrNoSamples}
	}
	closeRel := strings.IndexByte(line[open:], ']')
	if closeRel < 0 {
		return nil, &ParseError{Text: line, Err: ErrNoSamples, Detail: "unterminated list"}
	}

	body := strings.TrimSpace(line[open+1 : open+closeRel])
	var fields []string
	if body != "" {
		fields = strings.Split(body, ",")
	}
	if len(fields) != p.channels {
		return nil, &ParseError{
			Text:   line,
			Err:    ErrChannelCount,
			Detail: fmt.Sprintf("got %d samples, want %d", len(fields), p.channels),
		}
	}

	samples := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, &ParseError{Text: line, Err: ErrBadSample, Detail: fmt.Sprintf("channel %d: %q", i, strings.TrimSpace(f))}
		}
		samples[i] = v
	}
	return samples, nil
}

func parseStateField(line string) (State, error) {
	start := strings.Index(line, stateField)
	if start < 0 {
		return 0, &ParseError{Text: line, Err: ErrNoState}
	}
	rest := line[start+len(stateField):]
	end := strings.IndexByte(rest, ',')
	if end < 0 {
		return 0, &ParseError{Text: line, Err: ErrNoState, Detail: "state not terminated by ','"}
	}

	label := strings.TrimSpace(rest[:end])
	if label == "" {
		return 0, &ParseError{Text: line, Err: ErrNoState, Detail: "empty state label"}
	}
	state, ok := ParseState(label)
	if !ok {
		detail := fmt.Sprintf("%q", label)
		if s := suggestState(label); s != "" {
			detail += fmt.Sprintf(" (did you mean %q?)", s)
		}
		return 0, &ParseError{Text: line, Err: ErrUnknownState, Detail: detail}
	}
	return state, nil
}

// FormatLine renders samples and a state in the minimal log grammar accepted by Parse.
func FormatLine(samples []int, state State) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range samples {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	b.WriteString("] ")
	b.WriteString(stateField)
	b.WriteString(state.String())
	b.WriteByte(',')
	return b.String()
}

// ReadLog parses every line of r. Blank lines are ignored; the first malformed
// line aborts the read and is reported with its 1-based line number.
func (p *Parser) ReadLog(r io.Reader) ([]RawRecord, error) {
	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var records []RawRecord
	lineNo := 0
	for scan.Scan() {
		lineNo++
		line := scan.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := p.Parse(line)
		if err != nil {
			if pe, ok := err.(*ParseError); ok {
				pe.Line = lineNo
			}
			return nil, err
		}
		records = append(records, rec)
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return records, nil
}
