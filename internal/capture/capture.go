// Package capture records engine controller telemetry from a serial port
// into the line-oriented log that the analysis reads.
package capture

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/banshee-data/hotfire.report/internal/monitoring"
)

// telemetryMarker identifies telemetry frames among other controller output.
const telemetryMarker = "igniter_state: "

// Stats counts the lines seen during a capture.
type Stats struct {
	Recorded int
	Skipped  int
}

// Recorder copies telemetry lines from a port to a log writer.
type Recorder struct {
	port io.ReadCloser
	out  io.Writer
}

// NewRecorder returns a recorder reading from port and appending to out.
func NewRecorder(port io.ReadCloser, out io.Writer) *Recorder {
	return &Recorder{port: port, out: out}
}

// Run records until ctx is cancelled or the port reaches EOF. Cancelling
// closes the port so the blocked read returns.
func (r *Recorder) Run(ctx context.Context) (Stats, error) {
	scan := bufio.NewScanner(r.port)
	lineChan := make(chan string)
	scanErrChan := make(chan error, 1)

	go func() {
		defer close(lineChan)
		for scan.Scan() {
			select {
			case lineChan <- scan.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scan.Err(); err != nil {
			scanErrChan <- err
		}
	}()

	w := bufio.NewWriter(r.out)
	defer w.Flush()

	var stats Stats
	for {
		select {
		case <-ctx.Done():
			r.port.Close()
			return stats, ctx.Err()

		case err := <-scanErrChan:
			return stats, fmt.Errorf("read port: %w", err)

		case line, ok := <-lineChan:
			if !ok {
				select {
				case err := <-scanErrChan:
					return stats, fmt.Errorf("read port: %w", err)
				default:
				}
				return stats, w.Flush()
			}
			line = strings.TrimRight(line, "\r")
			if !strings.Contains(line, telemetryMarker) {
				stats.Skipped++
				continue
			}
			if _, err := w.WriteString(line + "\n"); err != nil {
				return stats, fmt.Errorf("write log: %w", err)
			}
			stats.Recorded++
			if stats.Recorded%1000 == 0 {
				if err := w.Flush(); err != nil {
					return stats, fmt.Errorf("write log: %w", err)
				}
				monitoring.Logf("captured %d telemetry lines", stats.Recorded)
			}
		}
	}
}
