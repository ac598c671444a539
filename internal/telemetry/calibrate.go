package telemetry

import (
	"gonum.org/v1/gonum/floats"
)

const (
	adcReferenceVolts = 5.0
	adcMaxCount       = 4095.0
	sensorZeroVolts   = 0.5
	sensorSpanVolts   = 4.0
)

// Physical converts an ADC count to engineering units. The sensors output
// 0.5 V at zero and span 4 V over full scale on a 5 V, 12-bit converter.
func Physical(raw int, fullScale float64) float64 {
	volts := adcReferenceVolts * float64(raw) / adcMaxCount
	return (volts - sensorZeroVolts) / sensorSpanVolts * fullScale
}

// CalibratedRecord holds physical values, index-aligned with the channels.
type CalibratedRecord struct {
	Values []float64
	State  State
}

// Bias is the per-channel offset removed from every record. Channels that
// are not bias corrected hold zero.
type Bias struct {
	Values  []float64
	Samples int
}

// Calibrator converts raw counts and removes idle bias.
type Calibrator struct {
	channels     []Channel
	biasChannels []int
}

// NewCalibrator returns a calibrator for the given channels. Only channels
// listed in biasChannels have their idle offset removed.
func NewCalibrator(channels []Channel, biasChannels []int) *Calibrator {
	return &Calibrator{channels: channels, biasChannels: biasChannels}
}

// Convert applies Physical to every sample of every record.
func (c *Calibrator) Convert(records []RawRecord) []CalibratedRecord {
	out := make([]CalibratedRecord, len(records))
	for i, r := range records {
		vals := make([]float64, len(c.channels))
		for ch := range c.channels {
			vals[ch] = Physical(r.Samples[ch], c.channels[ch].FullScale)
		}
		out[i] = CalibratedRecord{Values: vals, State: r.State}
	}
	return out
}

// ComputeBias averages each bias-corrected channel over the Idle records
// strictly before anchor. It fails with a *CalibrationError when there are none.
func (c *Calibrator) ComputeBias(records []CalibratedRecord, anchor int) (Bias, error) {
	bias := Bias{Values: make([]float64, len(c.channels))}

	limit := min(anchor, len(records))
	for i := 0; i < limit; i++ {
		if records[i].State != Idle {
			continue
		}
		bias.Samples++
		// Running mean keeps a constant baseline exact.
		k := float64(bias.Samples)
		for _, ch := range c.biasChannels {
			bias.Values[ch] += (records[i].Values[ch] - bias.Values[ch]) / k
		}
	}

	if bias.Samples == 0 {
		return Bias{}, &CalibrationError{Anchor: anchor}
	}
	return bias, nil
}

// ApplyBias returns new records with the bias subtracted from every record.
// Channels beyond len(bias.Values) are copied unchanged, so the zero Bias is
// a no-op.
func (c *Calibrator) ApplyBias(records []CalibratedRecord, bias Bias) []CalibratedRecord {
	out := make([]CalibratedRecord, len(records))
	for i, r := range records {
		vals := make([]float64, len(r.Values))
		copy(vals, r.Values)
		n := min(len(vals), len(bias.Values))
		floats.Sub(vals[:n], bias.Values[:n])
		out[i] = CalibratedRecord{Values: vals, State: r.State}
	}
	return out
}
