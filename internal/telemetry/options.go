package telemetry

import (
	"fmt"
	"time"
)

// Channel describes one analog input of the controller.
type Channel struct {
	Name      string
	FullScale float64
	Unit      string
}

// Options carries every parameter the analysis depends on. Nothing in this
// package reads configuration from anywhere else.
type Options struct {
	Channels     []Channel
	BiasChannels []int

	// PreRoll and PostRoll bound the analysis window around the anchor, in records.
	PreRoll  int
	PostRoll int
	// FallbackAnchor is used when the log has no Idle->Prefire transition.
	FallbackAnchor int
	// SamplePeriod is the spacing of consecutive records.
	SamplePeriod time.Duration
}

const (
	DefaultPreRoll        = 250
	DefaultPostRoll       = 3500
	DefaultFallbackAnchor = 2000
	DefaultSamplePeriod   = time.Millisecond
)

// DefaultChannels is the igniter test stand wiring.
func DefaultChannels() []Channel {
	return []Channel{
		{Name: "n/a", FullScale: 0},
		{Name: "fuel-injector", FullScale: 300, Unit: "psi"},
		{Name: "gox-injector", FullScale: 200, Unit: "psi"},
		{Name: "chamber", FullScale: 200, Unit: "psi"},
		{Name: "tank", FullScale: 300, Unit: "psi"},
	}
}

// DefaultOptions returns the stand defaults.
func DefaultOptions() Options {
	return Options{
		Channels:       DefaultChannels(),
		BiasChannels:   []int{0, 1, 2, 3},
		PreRoll:        DefaultPreRoll,
		PostRoll:       DefaultPostRoll,
		FallbackAnchor: DefaultFallbackAnchor,
		SamplePeriod:   DefaultSamplePeriod,
	}
}

// Validate checks the options for internal consistency.
func (o Options) Validate() error {
	if len(o.Channels) == 0 {
		return fmt.Errorf("at least one channel is required")
	}
	seen := make(map[int]bool, len(o.BiasChannels))
	for _, idx := range o.BiasChannels {
		if idx < 0 || idx >= len(o.Channels) {
			return fmt.Errorf("bias channel %d out of range [0, %d)", idx, len(o.Channels))
		}
		if seen[idx] {
			return fmt.Errorf("bias channel %d listed twice", idx)
		}
		seen[idx] = true
	}
	if o.PreRoll < 0 || o.PostRoll < 0 {
		return fmt.Errorf("pre_roll and post_roll must be non-negative, got %d and %d", o.PreRoll, o.PostRoll)
	}
	if o.FallbackAnchor < 0 {
		return fmt.Errorf("fallback_anchor must be non-negative, got %d", o.FallbackAnchor)
	}
	if o.SamplePeriod <= 0 {
		return fmt.Errorf("sample period must be positive, got %s", o.SamplePeriod)
	}
	return nil
}
