package synth

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-approx"
	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"

	"github.com/cwbudde/algo-groove/dsp"
)

// KickConfig controls kick drum synthesis: a sine oscillator under an
// exponential decay envelope.
type KickConfig struct {
	SampleRate int
	DurationS  float64
	FreqHz     float64
	Amp        float64
	DecayPerS  float64
}

func DefaultKickConfig() KickConfig {
	return KickConfig{
		SampleRate: 44100,
		DurationS:  0.1,
		FreqHz:     50.0,
		Amp:        0.5,
		DecayPerS:  30.0,
	}
}

func (c *KickConfig) Validate() error {
	if c.SampleRate < 1 {
		return fmt.Errorf("sample rate must be >= 1: %d", c.SampleRate)
	}
	if c.DurationS <= 0 {
		return fmt.Errorf("duration must be > 0: %g", c.DurationS)
	}
	if c.FreqHz <= 0 {
		return fmt.Errorf("frequency must be > 0: %g", c.FreqHz)
	}
	if c.Amp < 0 {
		return fmt.Errorf("amplitude must be >= 0: %g", c.Amp)
	}
	if c.DecayPerS <= 0 {
		return fmt.Errorf("decay must be > 0: %g", c.DecayPerS)
	}
	return nil
}

// Kick synthesizes a kick drum hit. Output is a deterministic function
// of the config.
func Kick(cfg KickConfig) ([]float64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := numSamples(cfg.DurationS, cfg.SampleRate)
	out := make([]float64, n)
	w := 2.0 * math.Pi * cfg.FreqHz / float64(cfg.SampleRate)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(cfg.SampleRate)
		out[i] = cfg.Amp * math.Sin(w*float64(i)) * math.Exp(-t*cfg.DecayPerS)
	}
	return out, nil
}

// SnareConfig controls snare synthesis: Gaussian noise through a
// one-pole smoothing filter under a steep exponential decay.
type SnareConfig struct {
	SampleRate  int
	DurationS   float64
	Amp         float64
	DecayPerS   float64
	FilterCoeff float64
}

func DefaultSnareConfig() SnareConfig {
	return SnareConfig{
		SampleRate:  44100,
		DurationS:   0.1,
		Amp:         0.5,
		DecayPerS:   100.0,
		FilterCoeff: 0.6,
	}
}

func (c *SnareConfig) Validate() error {
	if c.SampleRate < 1 {
		return fmt.Errorf("sample rate must be >= 1: %d", c.SampleRate)
	}
	if c.DurationS <= 0 {
		return fmt.Errorf("duration must be > 0: %g", c.DurationS)
	}
	if c.Amp < 0 {
		return fmt.Errorf("amplitude must be >= 0: %g", c.Amp)
	}
	if c.DecayPerS <= 0 {
		return fmt.Errorf("decay must be > 0: %g", c.DecayPerS)
	}
	if c.FilterCoeff < 0 || c.FilterCoeff >= 1 {
		return fmt.Errorf("filter coefficient must be in [0,1): %g", c.FilterCoeff)
	}
	return nil
}

// Snare synthesizes a snare hit. Noise is drawn from rng so identical
// generator state reproduces identical output.
func Snare(cfg SnareConfig, rng *rand.Rand) ([]float64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, errors.New("nil rng")
	}
	n := numSamples(cfg.DurationS, cfg.SampleRate)
	out := make([]float64, n)
	lp := dsp.NewOnePole(cfg.FilterCoeff)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(cfg.SampleRate)
		noise := lp.Process(rng.NormFloat64())
		out[i] = cfg.Amp * noise * math.Exp(-t*cfg.DecayPerS)
	}
	return out, nil
}

// HiHatConfig controls hi-hat synthesis: unfiltered Gaussian noise
// under the steepest decay of the percussive events.
type HiHatConfig struct {
	SampleRate int
	DurationS  float64
	Amp        float64
	DecayPerS  float64
}

func DefaultHiHatConfig() HiHatConfig {
	return HiHatConfig{
		SampleRate: 44100,
		DurationS:  0.05,
		Amp:        0.3,
		DecayPerS:  600.0,
	}
}

func (c *HiHatConfig) Validate() error {
	if c.SampleRate < 1 {
		return fmt.Errorf("sample rate must be >= 1: %d", c.SampleRate)
	}
	if c.DurationS <= 0 {
		return fmt.Errorf("duration must be > 0: %g", c.DurationS)
	}
	if c.Amp < 0 {
		return fmt.Errorf("amplitude must be >= 0: %g", c.Amp)
	}
	if c.DecayPerS <= 0 {
		return fmt.Errorf("decay must be > 0: %g", c.DecayPerS)
	}
	return nil
}

// HiHat synthesizes a hi-hat hit from rng-drawn noise.
func HiHat(cfg HiHatConfig, rng *rand.Rand) ([]float64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, errors.New("nil rng")
	}
	n := numSamples(cfg.DurationS, cfg.SampleRate)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(cfg.SampleRate)
		out[i] = cfg.Amp * rng.NormFloat64() * math.Exp(-t*cfg.DecayPerS)
	}
	return out, nil
}

// PianoConfig controls piano note synthesis: a sine at the MIDI note's
// equal-temperament frequency under a slow decay, optionally summed
// with a convolution reverb tail for timbral variation.
type PianoConfig struct {
	SampleRate int
	Note       int
	DurationS  float64
	Amp        float64
	DecayPerS  float64

	ReverbTail  bool
	ReverbIRS   float64 // impulse response length in seconds
	ReverbMix   float64 // tail level relative to the dry tone
	ReverbDecay float64 // impulse response decay rate per second
}

func DefaultPianoConfig() PianoConfig {
	return PianoConfig{
		SampleRate:  44100,
		Note:        60,
		DurationS:   0.5,
		Amp:         0.4,
		DecayPerS:   3.0,
		ReverbTail:  false,
		ReverbIRS:   0.05,
		ReverbMix:   0.25,
		ReverbDecay: 60.0,
	}
}

func (c *PianoConfig) Validate() error {
	if c.SampleRate < 1 {
		return fmt.Errorf("sample rate must be >= 1: %d", c.SampleRate)
	}
	if c.Note < 0 || c.Note > 127 {
		return fmt.Errorf("MIDI note must be in 0..127: %d", c.Note)
	}
	if c.DurationS <= 0 {
		return fmt.Errorf("duration must be > 0: %g", c.DurationS)
	}
	if c.Amp < 0 {
		return fmt.Errorf("amplitude must be >= 0: %g", c.Amp)
	}
	if c.DecayPerS <= 0 {
		return fmt.Errorf("decay must be > 0: %g", c.DecayPerS)
	}
	if c.ReverbTail {
		if c.ReverbIRS <= 0 {
			return fmt.Errorf("reverb IR length must be > 0: %g", c.ReverbIRS)
		}
		if c.ReverbMix < 0 {
			return fmt.Errorf("reverb mix must be >= 0: %g", c.ReverbMix)
		}
		if c.ReverbDecay <= 0 {
			return fmt.Errorf("reverb decay must be > 0: %g", c.ReverbDecay)
		}
	}
	return nil
}

// PianoNote synthesizes a decayed sine tone for the configured MIDI
// note. rng is only consulted when the reverb tail is enabled (random
// impulse response); it may be nil otherwise.
func PianoNote(cfg PianoConfig, rng *rand.Rand) ([]float64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ReverbTail && rng == nil {
		return nil, errors.New("nil rng with reverb tail enabled")
	}

	n := numSamples(cfg.DurationS, cfg.SampleRate)
	tone := make([]float64, n)
	freq := midiNoteToFreq(cfg.Note)
	w := 2.0 * math.Pi * freq / float64(cfg.SampleRate)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(cfg.SampleRate)
		tone[i] = cfg.Amp * math.Sin(w*float64(i)) * math.Exp(-t*cfg.DecayPerS)
	}
	if !cfg.ReverbTail || cfg.ReverbMix == 0 {
		return tone, nil
	}

	ir := randomImpulse(cfg, rng)
	tail := convolveTruncated(tone, ir)
	if tail == nil {
		return tone, nil
	}
	for i := range tone {
		tone[i] += cfg.ReverbMix * tail[i]
	}
	return tone, nil
}

// randomImpulse draws a short decaying noise burst used as the reverb
// impulse response.
func randomImpulse(cfg PianoConfig, rng *rand.Rand) []float32 {
	n := numSamples(cfg.ReverbIRS, cfg.SampleRate)
	ir := make([]float32, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(cfg.SampleRate)
		ir[i] = float32((rng.Float64()*2.0 - 1.0) * math.Exp(-t*cfg.ReverbDecay))
	}
	return ir
}

// convolveTruncated convolves input with ir via streaming overlap-add
// and returns the first len(input) samples. Returns nil if the
// convolver cannot be constructed (the caller then skips the tail).
func convolveTruncated(input []float64, ir []float32) []float64 {
	if len(input) == 0 || len(ir) == 0 {
		return nil
	}
	const partSize = 128
	ola, err := dspconv.NewStreamingOverlapAdd32(ir, partSize)
	if err != nil {
		return nil
	}

	out := make([]float64, len(input))
	blockOut := make([]float32, partSize)
	block := make([]float32, partSize)
	processed := 0
	for processed < len(input) {
		blockLen := partSize
		if processed+blockLen > len(input) {
			blockLen = len(input) - processed
		}
		for i := 0; i < partSize; i++ {
			if i < blockLen {
				block[i] = float32(input[processed+i])
			} else {
				block[i] = 0
			}
		}
		if err := ola.ProcessBlockTo(blockOut, block); err != nil {
			return nil
		}
		for i := 0; i < blockLen; i++ {
			out[processed+i] = float64(blockOut[i])
		}
		processed += blockLen
	}
	return out
}

// midiNoteToFreq converts a MIDI note number to frequency in Hz.
func midiNoteToFreq(note int) float64 {
	const a4Freq = 440.0
	const a4Note = 69
	exponent := float32(note-a4Note) / 12.0
	return a4Freq * float64(pow2Approx(exponent))
}

func pow2Approx(x float32) float32 {
	const ln2 = 0.69314718055994530942
	return approx.FastExp(x * ln2)
}

func numSamples(durationS float64, sampleRate int) int {
	n := int(math.Round(durationS * float64(sampleRate)))
	if n < 1 {
		n = 1
	}
	return n
}
