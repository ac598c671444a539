// gen-telemlog writes a synthetic igniter telemetry log for exercising the
// analysis without a test stand.
package main

import (
	"bufio"
	"flag"
	"log"
	"os"
	"time"

	"github.com/banshee-data/hotfire.report/internal/telemetry"
)

var (
	out      = flag.String("out", "telem-data.log", "Output log path")
	idle     = flag.Int("idle", 2000, "Idle records before the fire command")
	trailing = flag.Int("trailing", 1000, "Idle records after purge")
	prefire  = flag.Duration("prefire", telemetry.DefaultPrefireDuration, "Prefire duration")
	fire     = flag.Duration("fire", telemetry.DefaultFireDuration, "Firing duration")
	purge    = flag.Duration("purge", telemetry.DefaultPurgeDuration, "Purge duration")
)

func main() {
	flag.Parse()

	lines := telemetry.Simulate(telemetry.SimConfig{
		IdleRecords:     *idle,
		TrailingIdle:    *trailing,
		PrefireDuration: *prefire,
		FireDuration:    *fire,
		PurgeDuration:   *purge,
		SamplePeriod:    time.Millisecond,
		Baseline:        []int{0, 420, 410, 398, 1900},
		Delta: map[telemetry.State][]int{
			telemetry.Prefire: {0, 0, 650, 40, 0},
			telemetry.Firing:  {0, 1400, 1250, 1700, -120},
			telemetry.Purge:   {0, 250, 600, 60, -120},
		},
	})

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("failed to create %s: %v", *out, err)
	}
	w := bufio.NewWriter(f)
	for _, l := range lines {
		w.WriteString(l)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		log.Fatalf("failed to write %s: %v", *out, err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("failed to close %s: %v", *out, err)
	}
	log.Printf("wrote %d records to %s", len(lines), *out)
}
