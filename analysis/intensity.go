package analysis

import (
	"fmt"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

// Flux derives a rhythmic intensity curve from a waveform via
// half-wave rectified spectral flux. It is a deterministic stand-in
// for the external neural intensity model: same signature, no learned
// weights. The returned curve has one value per STFT hop and is
// peak-normalized to [0,1]; the pipeline resamples it onto the track
// axis.
type Flux struct {
	FrameSize int // STFT frame length, power of two
	HopSize   int
}

func DefaultFlux() Flux {
	return Flux{FrameSize: 1024, HopSize: 512}
}

func (f Flux) Validate() error {
	if f.FrameSize < 2 || f.FrameSize&(f.FrameSize-1) != 0 {
		return fmt.Errorf("frame size must be a power of two >= 2: %d", f.FrameSize)
	}
	if f.HopSize < 1 {
		return fmt.Errorf("hop size must be >= 1: %d", f.HopSize)
	}
	return nil
}

// Intensity computes the flux curve. Inputs shorter than one frame
// yield a single-value curve; the resampler turns that into a constant
// fill downstream.
func (f Flux) Intensity(waveform []float64, sampleRate int) ([]float64, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if len(waveform) < f.FrameSize {
		return []float64{0}, nil
	}

	plan, err := algofft.NewPlanReal64(f.FrameSize)
	if err != nil {
		return nil, fmt.Errorf("fft plan: %w", err)
	}

	nFrames := 1 + (len(waveform)-f.FrameSize)/f.HopSize
	nBins := f.FrameSize/2 + 1
	window := hann(f.FrameSize)
	buf := make([]float64, f.FrameSize)
	spec := make([]complex128, nBins)
	prevMag := make([]float64, nBins)
	curMag := make([]float64, nBins)

	curve := make([]float64, nFrames)
	for i := 0; i < nFrames; i++ {
		pos := i * f.HopSize
		for j := 0; j < f.FrameSize; j++ {
			buf[j] = waveform[pos+j] * window[j]
		}
		plan.Forward(spec, buf)

		flux := 0.0
		for k := 1; k < nBins; k++ {
			curMag[k] = cmplx.Abs(spec[k])
			if d := curMag[k] - prevMag[k]; d > 0 {
				flux += d
			}
		}
		curve[i] = flux
		prevMag, curMag = curMag, prevMag
	}

	peak := 0.0
	for _, v := range curve {
		if v > peak {
			peak = v
		}
	}
	if peak < 1e-12 {
		return curve, nil
	}
	inv := 1.0 / peak
	for i := range curve {
		curve[i] *= inv
	}
	return curve, nil
}
