package dsp

import (
	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// Resample maps curve linearly onto a target axis of length n using
// linear interpolation between adjacent source samples. Source index 0
// maps to output index 0 and source index len(curve)-1 maps to output
// index n-1, so Resample(curve, len(curve)) reproduces curve exactly.
// Edge values clamp; there is no extrapolation.
func Resample(curve []float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	out := make([]float64, n)
	if len(curve) == 0 {
		return out
	}
	if len(curve) == 1 || n == 1 {
		for i := range out {
			out[i] = curve[0]
		}
		return out
	}

	step := float64(len(curve)-1) / float64(n-1)
	for j := 0; j < n; j++ {
		pos := float64(j) * step
		idx := int(pos)
		if idx >= len(curve)-1 {
			out[j] = curve[len(curve)-1]
			continue
		}
		frac := pos - float64(idx)
		out[j] = curve[idx] + frac*(curve[idx+1]-curve[idx])
	}
	return out
}

// ShapeDynamics multiplies event by the stretch-resampled slice of
// curve covering [start, start+len(event)). The requested range is
// clamped to the curve's bounds; a range entirely outside the curve
// degrades to a constant scale by the nearest edge value. The output
// always has the same length as event.
func ShapeDynamics(event []float64, curve []float64, start int) []float64 {
	out := make([]float64, len(event))
	if len(event) == 0 {
		return out
	}
	if len(curve) == 0 {
		return out
	}

	lo := start
	hi := start + len(event)
	if lo < 0 {
		lo = 0
	}
	if hi > len(curve) {
		hi = len(curve)
	}
	if lo >= hi {
		edge := curve[0]
		if start >= len(curve) {
			edge = curve[len(curve)-1]
		}
		for i, v := range event {
			out[i] = v * edge
		}
		return out
	}

	gains := Resample(curve[lo:hi], len(event))
	for i, v := range event {
		out[i] = v * gains[i]
	}
	return out
}

// OnePole implements a first-order recursive smoothing filter
// y[n] = (1-a)·x[n] + a·y[n-1].
type OnePole struct {
	coeff float64
	state float64
}

// NewOnePole creates a one-pole smoother. coeff is clamped to [0, 0.999].
func NewOnePole(coeff float64) *OnePole {
	if coeff < 0 {
		coeff = 0
	}
	if coeff > 0.999 {
		coeff = 0.999
	}
	return &OnePole{coeff: coeff}
}

// Process filters one sample.
func (f *OnePole) Process(input float64) float64 {
	f.state = dspcore.FlushDenormals((1.0-f.coeff)*input + f.coeff*f.state)
	return f.state
}

// Reset clears the filter state.
func (f *OnePole) Reset() {
	f.state = 0
}
