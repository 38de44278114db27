package audio

import (
	"errors"
	"math"
)

var (
	// ErrSilentAudio is returned when a signal has no energy to normalize.
	ErrSilentAudio = errors.New("audio: signal is silent")
	// ErrEmptyTrack is returned when a track to be tiled has no samples.
	ErrEmptyTrack = errors.New("audio: track is empty")
)

// Framing used by Trim. Frames are centered on hop boundaries and
// zero-padded at the edges.
const (
	TrimFrameLength = 2048
	TrimHopLength   = 512

	powerFloor = 1e-10
)

// BiquadFilter implements a basic Biquad digital filter over mono samples.
type BiquadFilter struct {
	sampleRate float64

	// Coefficients
	a0, a1, a2 float64
	b0, b1, b2 float64

	// State
	x1, x2 float64
	y1, y2 float64
}

// NewLowPass create a new LowPass Biquad filter.
func NewLowPass(sampleRate, cutoff, q float64) *BiquadFilter {
	f := &BiquadFilter{sampleRate: sampleRate}
	f.updateLowPass(cutoff, q)
	return f
}

// NewHighPass create a new HighPass Biquad filter.
func NewHighPass(sampleRate, cutoff, q float64) *BiquadFilter {
	f := &BiquadFilter{sampleRate: sampleRate}
	f.updateHighPass(cutoff, q)
	return f
}

func (f *BiquadFilter) updateLowPass(cutoff, q float64) {
	omega := 2.0 * math.Pi * cutoff / f.sampleRate
	sn := math.Sin(omega)
	cs := math.Cos(omega)
	alpha := sn / (2.0 * q)

	f.b0 = (1.0 - cs) / 2.0
	f.b1 = 1.0 - cs
	f.b2 = (1.0 - cs) / 2.0
	f.a0 = 1.0 + alpha
	f.a1 = -2.0 * cs
	f.a2 = 1.0 - alpha
}

func (f *BiquadFilter) updateHighPass(cutoff, q float64) {
	omega := 2.0 * math.Pi * cutoff / f.sampleRate
	sn := math.Sin(omega)
	cs := math.Cos(omega)
	alpha := sn / (2.0 * q)

	f.b0 = (1.0 + cs) / 2.0
	f.b1 = -(1.0 + cs)
	f.b2 = (1.0 + cs) / 2.0
	f.a0 = 1.0 + alpha
	f.a1 = -2.0 * cs
	f.a2 = 1.0 - alpha
}

// Process filters samples in place. Filter state carries over between calls.
func (f *BiquadFilter) Process(samples []float64) {
	for i, x := range samples {
		y := (f.b0/f.a0)*x + (f.b1/f.a0)*f.x1 + (f.b2/f.a0)*f.x2 -
			(f.a1/f.a0)*f.y1 - (f.a2/f.a0)*f.y2

		f.x2 = f.x1
		f.x1 = x
		f.y2 = f.y1
		f.y1 = y

		samples[i] = y
	}
}

// BandFilter applies a high-pass at lowCutoff and a low-pass at highCutoff.
// A zero cutoff skips that stage.
func BandFilter(samples []float64, sampleRate, lowCutoff, highCutoff float64) {
	// Q=0.707 is a standard Butterworth response (flat passband)
	if lowCutoff > 0 {
		NewHighPass(sampleRate, lowCutoff, 0.707).Process(samples)
	}
	if highCutoff > 0 {
		NewLowPass(sampleRate, highCutoff, 0.707).Process(samples)
	}
}

// Peak returns the maximum absolute amplitude.
func Peak(samples []float64) float64 {
	var peak float64
	for _, v := range samples {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	return peak
}

// PeakNormalize scales samples in place so the peak equals target.
// An all-zero (or empty) signal returns ErrSilentAudio and is left untouched.
func PeakNormalize(samples []float64, target float64) error {
	peak := Peak(samples)
	if peak == 0 || math.IsNaN(peak) || math.IsInf(peak, 0) {
		return ErrSilentAudio
	}
	gain := target / peak
	for i := range samples {
		samples[i] *= gain
	}
	return nil
}

// Trim strips leading and trailing frames whose RMS level is more than topDB
// below the loudest frame. The result is a subslice of samples.
func Trim(samples []float64, topDB float64) []float64 {
	n := len(samples)
	if n == 0 {
		return samples
	}

	energy := make([]float64, n+1)
	for i, v := range samples {
		energy[i+1] = energy[i] + v*v
	}

	frames := 1 + n/TrimHopLength
	power := make([]float64, frames)
	var ref float64
	for i := range power {
		lo := i*TrimHopLength - TrimFrameLength/2
		hi := lo + TrimFrameLength
		lo = max(lo, 0)
		hi = min(hi, n)
		if hi > lo {
			power[i] = (energy[hi] - energy[lo]) / TrimFrameLength
		}
		ref = max(ref, power[i])
	}

	refDB := powerToDB(ref)
	first, last := -1, -1
	for i, p := range power {
		if powerToDB(p)-refDB > -topDB {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return samples[:0]
	}

	start := min(first*TrimHopLength, n)
	end := min((last+1)*TrimHopLength, n)
	return samples[start:end]
}

func powerToDB(p float64) float64 {
	return 10 * math.Log10(max(p, powerFloor))
}

// Tile returns track repeated and truncated to exactly n samples.
func Tile(track []float64, n int) ([]float64, error) {
	if n <= 0 {
		return []float64{}, nil
	}
	if len(track) == 0 {
		return nil, ErrEmptyTrack
	}
	out := make([]float64, n)
	for i := 0; i < n; i += len(track) {
		copy(out[i:], track)
	}
	return out, nil
}

// Mix returns voice + music*gain. music must be at least as long as voice.
func Mix(voice, music []float64, gain float64) []float64 {
	out := make([]float64, len(voice))
	for i, v := range voice {
		out[i] = v + music[i]*gain
	}
	return out
}
