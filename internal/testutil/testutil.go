// Package testutil provides shared test fixtures for telemetry logs.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/hotfire.report/internal/monitoring"
	"github.com/banshee-data/hotfire.report/internal/telemetry"
)

// StandBaseline is a plausible idle ADC reading for the default five channels.
var StandBaseline = []int{0, 420, 410, 400, 2000}

// HotFireLog returns a simulated hot fire with idle records before the
// Prefire transition, so the anchor lands on index idle.
func HotFireLog(idle int) []string {
	return telemetry.Simulate(telemetry.SimConfig{
		IdleRecords:  idle,
		TrailingIdle: 100,
		Baseline:     StandBaseline,
		Delta: map[telemetry.State][]int{
			telemetry.Prefire: {0, 0, 600, 100, 0},
			telemetry.Firing:  {0, 1500, 1200, 1800, -100},
		},
	})
}

// JoinLog joins lines into log file contents with a trailing newline.
func JoinLog(lines []string) string {
	return strings.Join(lines, "\n") + "\n"
}

// WriteLog writes lines to a temporary telem-data.log and returns its path.
func WriteLog(t testing.TB, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "telem-data.log")
	if err := os.WriteFile(path, []byte(JoinLog(lines)), 0644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

// CaptureLogs redirects monitoring.Logf for the duration of the test and
// returns the formatted messages.
func CaptureLogs(t testing.TB) *[]string {
	t.Helper()
	var logs []string
	original := monitoring.Logf
	monitoring.SetLogger(func(format string, v ...interface{}) {
		logs = append(logs, fmt.Sprintf(format, v...))
	})
	t.Cleanup(func() { monitoring.Logf = original })
	return &logs
}
