// Package enhance wires the placement, synthesis, shaping, and mixing
// stages into one deterministic pipeline that layers synthesized drums
// and piano onto a track.
package enhance

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-groove/dsp"
	"github.com/cwbudde/algo-groove/mixdown"
	"github.com/cwbudde/algo-groove/place"
	"github.com/cwbudde/algo-groove/synth"
)

// IntensityModel maps a waveform to a rhythmic intensity curve. The
// curve may have any length and any value range; the pipeline
// resamples it onto the track's sample axis before use.
type IntensityModel interface {
	Intensity(waveform []float64, sampleRate int) ([]float64, error)
}

// BeatDetector maps a waveform to beat and onset timestamps in
// seconds.
type BeatDetector interface {
	Detect(waveform []float64, sampleRate int) (beats []float64, onsets []float64, err error)
}

// Config holds every tunable of the pipeline. Event durations inside
// the synth configs are per-event values decided by the planner; the
// remaining synth fields (frequency, amplitude, decay, filter, reverb)
// act as instrument voicing defaults.
type Config struct {
	SampleRate int
	Seed       int64

	Drums      place.DrumConfig
	Piano      place.PianoConfig
	Kick       synth.KickConfig
	Snare      synth.SnareConfig
	HiHat      synth.HiHatConfig
	PianoVoice synth.PianoConfig
}

func DefaultConfig() Config {
	return Config{
		SampleRate: 44100,
		Seed:       1,
		Drums:      place.DefaultDrumConfig(),
		Piano:      place.DefaultPianoConfig(),
		Kick:       synth.DefaultKickConfig(),
		Snare:      synth.DefaultSnareConfig(),
		HiHat:      synth.DefaultHiHatConfig(),
		PianoVoice: synth.DefaultPianoConfig(),
	}
}

func (c *Config) Validate() error {
	if c.SampleRate < 1 {
		return fmt.Errorf("sample rate must be >= 1: %d", c.SampleRate)
	}
	if err := c.Drums.Validate(); err != nil {
		return fmt.Errorf("drum placement: %w", err)
	}
	if err := c.Piano.Validate(); err != nil {
		return fmt.Errorf("piano placement: %w", err)
	}
	if err := c.Kick.Validate(); err != nil {
		return fmt.Errorf("kick voice: %w", err)
	}
	if err := c.Snare.Validate(); err != nil {
		return fmt.Errorf("snare voice: %w", err)
	}
	if err := c.HiHat.Validate(); err != nil {
		return fmt.Errorf("hihat voice: %w", err)
	}
	if err := c.PianoVoice.Validate(); err != nil {
		return fmt.Errorf("piano voice: %w", err)
	}
	return nil
}

// Enhancer runs the enhancement pipeline with a fixed configuration.
type Enhancer struct {
	cfg Config
}

// New validates cfg and returns a ready pipeline.
func New(cfg Config) (*Enhancer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Enhancer{cfg: cfg}, nil
}

// Process layers synthesized drums and piano onto waveform. curve is
// the model-produced intensity curve (any length); beats and onsets
// are timestamps in seconds from an external detector. The output has
// the same length as waveform and never exceeds unit amplitude. Each
// call reseeds from Config.Seed, so identical inputs produce identical
// output.
func (e *Enhancer) Process(waveform []float64, curve []float64, beats []float64, onsets []float64) ([]float64, error) {
	if len(waveform) == 0 {
		return nil, errors.New("empty waveform")
	}
	for i, v := range curve {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite intensity curve value %g at index %d", v, i)
		}
	}

	sr := e.cfg.SampleRate
	full := dsp.Resample(curve, len(waveform))

	intensities := make([]float64, len(beats))
	for i, b := range beats {
		intensities[i] = full[nearestSample(b, sr, len(full))]
	}

	drumEvents, err := place.PlanBeats(e.cfg.Drums, beats, intensities, onsets)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(e.cfg.Seed))
	durationS := float64(len(waveform)) / float64(sr)
	pianoEvents, err := place.PlanPiano(e.cfg.Piano, durationS, rng)
	if err != nil {
		return nil, err
	}

	drums := make([]float64, len(waveform))
	for _, ev := range drumEvents {
		hit, err := e.renderDrum(ev, rng)
		if err != nil {
			return nil, fmt.Errorf("%s at %.3fs: %w", ev.Kind, ev.StartS, err)
		}
		start := int(math.Round(ev.StartS * float64(sr)))
		shaped := dsp.ShapeDynamics(hit, full, start)
		mixdown.Accumulate(drums, shaped, start, ev.Gain)
	}
	mixdown.NormalizePeak(drums)

	piano := make([]float64, len(waveform))
	for _, ev := range pianoEvents {
		voice := e.cfg.PianoVoice
		voice.SampleRate = sr
		voice.Note = ev.Note
		voice.DurationS = ev.DurationS
		note, err := synth.PianoNote(voice, rng)
		if err != nil {
			return nil, fmt.Errorf("piano note %d at %.3fs: %w", ev.Note, ev.StartS, err)
		}
		start := int(math.Round(ev.StartS * float64(sr)))
		shaped := dsp.ShapeDynamics(note, full, start)
		mixdown.Accumulate(piano, shaped, start, ev.Gain)
	}
	mixdown.NormalizePeak(piano)

	return mixdown.Mix(waveform, drums, piano)
}

// ProcessWith derives the intensity curve and beat grid from the given
// collaborators, then runs Process.
func (e *Enhancer) ProcessWith(model IntensityModel, detector BeatDetector, waveform []float64) ([]float64, error) {
	if model == nil {
		return nil, errors.New("nil intensity model")
	}
	if detector == nil {
		return nil, errors.New("nil beat detector")
	}
	curve, err := model.Intensity(waveform, e.cfg.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("intensity model: %w", err)
	}
	beats, onsets, err := detector.Detect(waveform, e.cfg.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("beat detector: %w", err)
	}
	return e.Process(waveform, curve, beats, onsets)
}

func (e *Enhancer) renderDrum(ev place.Event, rng *rand.Rand) ([]float64, error) {
	switch ev.Kind {
	case place.KindKick:
		cfg := e.cfg.Kick
		cfg.SampleRate = e.cfg.SampleRate
		cfg.DurationS = ev.DurationS
		return synth.Kick(cfg)
	case place.KindSnare:
		cfg := e.cfg.Snare
		cfg.SampleRate = e.cfg.SampleRate
		cfg.DurationS = ev.DurationS
		return synth.Snare(cfg, rng)
	case place.KindHiHat:
		cfg := e.cfg.HiHat
		cfg.SampleRate = e.cfg.SampleRate
		cfg.DurationS = ev.DurationS
		return synth.HiHat(cfg, rng)
	default:
		return nil, fmt.Errorf("unexpected drum event kind %s", ev.Kind)
	}
}

func nearestSample(t float64, sampleRate int, length int) int {
	idx := int(math.Round(t * float64(sampleRate)))
	if idx < 0 {
		idx = 0
	}
	if idx > length-1 {
		idx = length - 1
	}
	return idx
}
