package mixdown

import (
	"fmt"
	"math"
)

// Accumulate adds samples scaled by gain into buf at the given start
// offset. A write that would run outside the buffer is skipped in its
// entirety; this is the boundary policy for events placed near the
// track's end, not an error.
func Accumulate(buf []float64, samples []float64, start int, gain float64) {
	if start < 0 || start+len(samples) > len(buf) {
		return
	}
	for i, v := range samples {
		buf[start+i] += v * gain
	}
}

// NormalizePeak scales buf in place so its peak magnitude is 1.0. A
// silent or empty buffer is left unchanged.
func NormalizePeak(buf []float64) {
	peak := maxAbs(buf)
	if peak < 1e-12 {
		return
	}
	inv := 1.0 / peak
	for i := range buf {
		buf[i] *= inv
	}
}

// Mix sums the original signal with the normalized drum and piano
// layers and applies a final peak normalization. All three inputs must
// have the same length; a mismatch is a contract violation.
func Mix(original []float64, drums []float64, piano []float64) ([]float64, error) {
	if len(drums) != len(original) {
		return nil, fmt.Errorf("drum layer length %d does not match original %d", len(drums), len(original))
	}
	if len(piano) != len(original) {
		return nil, fmt.Errorf("piano layer length %d does not match original %d", len(piano), len(original))
	}

	d := append([]float64(nil), drums...)
	p := append([]float64(nil), piano...)
	NormalizePeak(d)
	NormalizePeak(p)

	out := make([]float64, len(original))
	for i := range original {
		out[i] = original[i] + d[i] + p[i]
	}
	NormalizePeak(out)
	return out, nil
}

func maxAbs(x []float64) float64 {
	m := 0.0
	for _, v := range x {
		a := math.Abs(v)
		if a > m {
			m = a
		}
	}
	return m
}
