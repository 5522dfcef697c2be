// Package traffic implements the TPS shaping profiles: pure functions of
// elapsed time that tell the execution controller what rate to target.
package traffic

// Profile maps elapsed time to a target transactions-per-second rate.
// TpsAt must never return a negative value. MaxTps is an upper bound used
// only for worker-pool sizing hints, not an enforced ceiling.
type Profile interface {
	TpsAt(elapsedMs, totalMs int64) float64
	MaxTps() float64
}

// Stable holds a constant target TPS for the whole test.
type Stable struct {
	TargetTps float64
}

func (s Stable) TpsAt(elapsedMs, totalMs int64) float64 { return s.TargetTps }
func (s Stable) MaxTps() float64                        { return s.TargetTps }

// Ramp linearly interpolates from StartTps to TargetTps over RampMillis,
// then holds steady at TargetTps.
type Ramp struct {
	StartTps   float64
	TargetTps  float64
	RampMillis int64
}

func (r Ramp) TpsAt(elapsedMs, totalMs int64) float64 {
	if r.RampMillis <= 0 || elapsedMs >= r.RampMillis {
		return r.TargetTps
	}
	ratio := float64(elapsedMs) / float64(r.RampMillis)
	return r.StartTps + (r.TargetTps-r.StartTps)*ratio
}

func (r Ramp) MaxTps() float64 {
	if r.StartTps > r.TargetTps {
		return r.StartTps
	}
	return r.TargetTps
}

// Spike holds BaseTps except during [SpikeStartMillis, SpikeStartMillis+SpikeDurationMs)
// where it holds SpikeTps.
type Spike struct {
	BaseTps          float64
	SpikeTps         float64
	SpikeStartMillis int64
	SpikeDurationMs  int64
}

func (s Spike) TpsAt(elapsedMs, totalMs int64) float64 {
	if elapsedMs >= s.SpikeStartMillis && elapsedMs < s.SpikeStartMillis+s.SpikeDurationMs {
		return s.SpikeTps
	}
	return s.BaseTps
}

func (s Spike) MaxTps() float64 {
	if s.SpikeTps > s.BaseTps {
		return s.SpikeTps
	}
	return s.BaseTps
}
