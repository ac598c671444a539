package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"

	"github.com/banshee-data/hotfire.report/internal/telemetry"
)

var ErrRunNotFound = errors.New("run not found")

// Run is the persisted summary of one analysis.
type Run struct {
	ID             string
	CreatedAt      time.Time
	SourcePath     string
	SourceHash     string
	Records        int
	AnchorIndex    int
	AnchorFallback bool
	WindowStart    int
	WindowEnd      int
	IdleSamples    int

	Bias     []ChannelBias
	Segments []Segment
}

type ChannelBias struct {
	Index int
	Name  string
	Bias  float64
}

type Segment struct {
	State      string
	StartIndex int
	EndIndex   int
	StartTime  float64
	EndTime    float64
}

// SourceHash fingerprints a telemetry log so repeat analyses of the same
// file can be found.
func SourceHash(data []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(data))
}

// NewRun summarises an analysis result for storage.
func NewRun(res *telemetry.Result, opts telemetry.Options, sourcePath string, source []byte) Run {
	run := Run{
		SourcePath:     sourcePath,
		SourceHash:     SourceHash(source),
		Records:        res.Records,
		AnchorIndex:    res.Anchor.Index,
		AnchorFallback: res.Anchor.Fallback,
		WindowStart:    res.Window.Start,
		WindowEnd:      res.Window.End,
		IdleSamples:    res.Bias.Samples,
	}
	for _, idx := range opts.BiasChannels {
		run.Bias = append(run.Bias, ChannelBias{Index: idx, Name: opts.Channels[idx].Name, Bias: res.Bias.Values[idx]})
	}
	for i, span := range res.SegmentTimes() {
		seg := res.Segments[i]
		run.Segments = append(run.Segments, Segment{
			State:      seg.State.String(),
			StartIndex: seg.Start,
			EndIndex:   seg.End,
			StartTime:  span.Start,
			EndTime:    span.End,
		})
	}
	return run
}

// RecordRun stores run and returns its newly assigned ID.
func (db *DB) RecordRun(run Run) (string, error) {
	id := uuid.NewString()
	created := time.Now().UTC()

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (
			run_id, created_unix_nanos, source_path, source_hash, record_count,
			anchor_index, anchor_fallback, window_start, window_end, idle_samples
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, created.UnixNano(), run.SourcePath, run.SourceHash, run.Records,
		run.AnchorIndex, run.AnchorFallback, run.WindowStart, run.WindowEnd, run.IdleSamples,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, b := range run.Bias {
		if _, err := tx.Exec(
			`INSERT INTO run_bias (run_id, channel_index, channel_name, bias) VALUES (?, ?, ?, ?)`,
			id, b.Index, b.Name, b.Bias,
		); err != nil {
			return "", fmt.Errorf("insert bias for channel %d: %w", b.Index, err)
		}
	}

	for seq, s := range run.Segments {
		if _, err := tx.Exec(
			`INSERT INTO run_segments (run_id, seq, state, start_index, end_index, start_time, end_time)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, seq, s.State, s.StartIndex, s.EndIndex, s.StartTime, s.EndTime,
		); err != nil {
			return "", fmt.Errorf("insert segment %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

const runColumns = `run_id, created_unix_nanos, source_path, source_hash, record_count,
	anchor_index, anchor_fallback, window_start, window_end, idle_samples`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var r Run
	var createdNanos int64
	err := row.Scan(&r.ID, &createdNanos, &r.SourcePath, &r.SourceHash, &r.Records,
		&r.AnchorIndex, &r.AnchorFallback, &r.WindowStart, &r.WindowEnd, &r.IdleSamples)
	if err != nil {
		return Run{}, err
	}
	r.CreatedAt = time.Unix(0, createdNanos).UTC()
	return r, nil
}

// GetRun loads a run with its bias values and phase segments.
func (db *DB) GetRun(id string) (*Run, error) {
	run, err := scanRun(db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}

	rows, err := db.Query(`SELECT channel_index, channel_name, bias FROM run_bias WHERE run_id = ? ORDER BY channel_index`, id)
	if err != nil {
		return nil, fmt.Errorf("query bias: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b ChannelBias
		if err := rows.Scan(&b.Index, &b.Name, &b.Bias); err != nil {
			return nil, err
		}
		run.Bias = append(run.Bias, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	segRows, err := db.Query(`SELECT state, start_index, end_index, start_time, end_time FROM run_segments WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer segRows.Close()
	for segRows.Next() {
		var s Segment
		if err := segRows.Scan(&s.State, &s.StartIndex, &s.EndIndex, &s.StartTime, &s.EndTime); err != nil {
			return nil, err
		}
		run.Segments = append(run.Segments, s)
	}
	if err := segRows.Err(); err != nil {
		return nil, err
	}

	return &run, nil
}

// ListRuns returns the most recent runs first, without bias or segments.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`SELECT `+runColumns+` FROM runs ORDER BY created_unix_nanos DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// FindRunByHash returns the most recent run of a log with the given
// fingerprint, or ErrRunNotFound.
func (db *DB) FindRunByHash(hash string) (*Run, error) {
	var id string
	err := db.QueryRow(`SELECT run_id FROM runs WHERE source_hash = ? ORDER BY created_unix_nanos DESC LIMIT 1`, hash).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find run: %w", err)
	}
	return db.GetRun(id)
}
