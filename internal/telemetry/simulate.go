package telemetry

import "time"

// Igniter timing used by the controller firmware unless reconfigured.
const (
	DefaultPrefireDuration = 250 * time.Millisecond
	DefaultFireDuration    = 1000 * time.Millisecond
	DefaultPurgeDuration   = 2000 * time.Millisecond
)

// SimConfig describes a synthetic igniter test run.
type SimConfig struct {
	// IdleRecords precede the fire command.
	IdleRecords int
	// TrailingIdle records follow the purge.
	TrailingIdle int

	PrefireDuration time.Duration
	FireDuration    time.Duration
	PurgeDuration   time.Duration
	SamplePeriod    time.Duration

	// Baseline holds the ADC count of every channel while idle.
	Baseline []int
	// Delta is added to Baseline for each channel while the state is active.
	Delta map[State][]int
}

// Simulate walks the igniter state machine and returns one log line per
// sample period.
func Simulate(cfg SimConfig) []string {
	period := cfg.SamplePeriod
	if period <= 0 {
		period = DefaultSamplePeriod
	}
	phases := []struct {
		state State
		n     int
	}{
		{Idle, cfg.IdleRecords},
		{Prefire, recordsFor(orDefault(cfg.PrefireDuration, DefaultPrefireDuration), period)},
		{Firing, recordsFor(orDefault(cfg.FireDuration, DefaultFireDuration), period)},
		{Purge, recordsFor(orDefault(cfg.PurgeDuration, DefaultPurgeDuration), period)},
		{Idle, cfg.TrailingIdle},
	}

	var lines []string
	for _, ph := range phases {
		samples := make([]int, len(cfg.Baseline))
		copy(samples, cfg.Baseline)
		for ch, d := range cfg.Delta[ph.state] {
			if ch < len(samples) {
				samples[ch] += d
			}
		}
		line := FormatLine(samples, ph.state)
		for i := 0; i < ph.n; i++ {
			lines = append(lines, line)
		}
	}
	return lines
}

func recordsFor(d, period time.Duration) int {
	return int(d / period)
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
