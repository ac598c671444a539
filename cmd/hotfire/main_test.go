package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/hotfire.report/internal/config"
	"github.com/banshee-data/hotfire.report/internal/db"
	"github.com/banshee-data/hotfire.report/internal/telemetry"
	"github.com/banshee-data/hotfire.report/internal/testutil"
)

func TestAnalyzeWritesOutputs(t *testing.T) {
	testutil.CaptureLogs(t)
	logPath := testutil.WriteLog(t, testutil.HotFireLog(600))
	dir := t.TempDir()
	out := outputs{
		png:   filepath.Join(dir, "run.png"),
		html:  filepath.Join(dir, "run.html"),
		db:    filepath.Join(dir, "runs.db"),
		title: "test fire",
	}

	require.NoError(t, analyze(logPath, config.DefaultAnalysisConfig(), out))
	assert.FileExists(t, out.png)
	assert.FileExists(t, out.html)

	store, err := db.NewDB(out.db)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 600, runs[0].AnchorIndex)
}

func TestAnalyzeWarnsOnFallback(t *testing.T) {
	logs := testutil.CaptureLogs(t)
	var lines []string
	for i := 0; i < 2500; i++ {
		lines = append(lines, telemetry.FormatLine([]int{0, 400, 400, 400, 400}, telemetry.Idle))
	}

	require.NoError(t, analyze(testutil.WriteLog(t, lines), config.DefaultAnalysisConfig(), outputs{}))

	warned := false
	for _, l := range *logs {
		if strings.HasPrefix(l, "WARNING: ") && strings.Contains(l, "fallback anchor") {
			warned = true
		}
	}
	assert.True(t, warned, "fallback anchor must be reported")
}

func TestAnalyzeReportsStage(t *testing.T) {
	testutil.CaptureLogs(t)
	path := testutil.WriteLog(t, []string{
		telemetry.FormatLine([]int{0, 0, 0, 0, 0}, telemetry.Idle),
		"[0,0,0,0,0] igniter_state: Idle",
	})

	err := analyze(path, config.DefaultAnalysisConfig(), outputs{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse: line 2: ")
	assert.ErrorIs(t, err, telemetry.ErrNoState)

	path = testutil.WriteLog(t, []string{
		telemetry.FormatLine([]int{0, 0, 0, 0, 0}, telemetry.Firing),
		telemetry.FormatLine([]int{0, 0, 0, 0, 0}, telemetry.Purge),
	})
	err = analyze(path, config.DefaultAnalysisConfig(), outputs{})
	assert.ErrorIs(t, err, telemetry.ErrNoIdleBaseline)
}

func TestFlagDefaults(t *testing.T) {
	assert.Equal(t, "telem-data.log", *logPath)
	assert.Empty(t, *dbPath)
	assert.False(t, *showVersion)
}
